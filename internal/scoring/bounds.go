package scoring

import (
	"fmt"
	"math"

	"github.com/MikeSquared-Agency/Tradeoff/internal/model"
)

// Bounds is the [Start, End] range a key output is appreciated against.
type Bounds struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// AppreciationError reports a key output that needs manual bounds but has
// none.
type AppreciationError struct {
	KeyOutput string
}

func (e *AppreciationError) Error() string {
	return fmt.Sprintf("appreciation error: key output %q has automatic bounds disabled but no start and end", e.KeyOutput)
}

// Warning is a non-fatal configuration contradiction.
type Warning struct {
	KeyOutput string `json:"key_output"`
	Message   string `json:"message"`
}

func (w Warning) String() string {
	return fmt.Sprintf("key output %q: %s", w.KeyOutput, w.Message)
}

// ComputeBounds derives the bounds of every key output. Automatic key
// outputs span the min and max over the whole result tree; manual ones use
// their start and end.
func ComputeBounds(c *model.Case, res model.Results) (map[string]Bounds, []Warning, error) {
	bounds := make(map[string]Bounds, len(c.KeyOutputs))
	var warnings []Warning

	for _, ko := range c.KeyOutputs {
		if !ko.Automatic {
			if ko.Start == nil || ko.End == nil {
				return nil, warnings, &AppreciationError{KeyOutput: ko.Name}
			}
			bounds[ko.Name] = Bounds{Start: *ko.Start, End: *ko.End}
			continue
		}
		if ko.Start != nil || ko.End != nil {
			warnings = append(warnings, Warning{
				KeyOutput: ko.Name,
				Message:   "automatic bounds enabled, start and end are ignored",
			})
		}
		bounds[ko.Name] = observedRange(ko.Name, res)
	}
	return bounds, warnings, nil
}

func observedRange(name string, res model.Results) Bounds {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, sr := range res {
		for _, cell := range sr.Options {
			v, ok := cell.KeyOutputs[name]
			if !ok {
				continue
			}
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
	}
	if lo > hi {
		return Bounds{}
	}
	return Bounds{Start: lo, End: hi}
}

// FreezeBounds returns a copy of the case whose key outputs all use the
// given bounds as manual bounds.
func FreezeBounds(c *model.Case, bounds map[string]Bounds) *model.Case {
	out := c.Clone()
	for i := range out.KeyOutputs {
		b := bounds[out.KeyOutputs[i].Name]
		out.KeyOutputs[i].Automatic = false
		out.KeyOutputs[i].Start = model.Float64Ptr(b.Start)
		out.KeyOutputs[i].End = model.Float64Ptr(b.End)
	}
	return out
}

// AppreciateValue maps a raw value onto [0, 100]. Values outside the bounds
// are clamped and a degenerate range scores 0. The non-linear form follows a
// quarter sine between the bounds.
func AppreciateValue(value float64, b Bounds, smallerTheBetter, linear bool) float64 {
	if value < b.Start {
		if smallerTheBetter {
			return 100
		}
		return 0
	}
	if value > b.End {
		if smallerTheBetter {
			return 0
		}
		return 100
	}

	span := b.End - b.Start
	if span < 1e-6 {
		return 0
	}

	var score float64
	switch {
	case linear && smallerTheBetter:
		score = 100 * (b.End - value) / span
	case linear:
		score = 100 * (value - b.Start) / span
	default:
		s := math.Sin(0.5 * math.Pi * (value - b.Start) / span)
		if smallerTheBetter {
			s = 1 - s
		}
		score = 100 * s
	}
	return clamp(score, 0, 100)
}

func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
