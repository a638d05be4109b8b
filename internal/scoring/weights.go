package scoring

import (
	"fmt"

	"github.com/MikeSquared-Agency/Tradeoff/internal/model"
)

// WeightInputs are the four quantities that define one key output's
// effective weight.
type WeightInputs struct {
	KeyOutput      float64
	Theme          float64
	SumWithinTheme float64
	SumTheme       float64
}

// KeyOutputWeight is (key output / sum within theme) * (theme / sum of
// themes), or 0 when either denominator is 0.
func KeyOutputWeight(w WeightInputs) float64 {
	if w.SumWithinTheme == 0 || w.SumTheme == 0 {
		return 0
	}
	return (w.KeyOutput / w.SumWithinTheme) * (w.Theme / w.SumTheme)
}

// WeightSet holds the effective weight of every key output, in declared
// order. Weights never sum to more than 1.0 (±0.001 tolerance).
type WeightSet struct {
	KeyOutputs []string  `json:"key_outputs"`
	Values     []float64 `json:"values"`
}

// Weights derives the effective key output weights of a case.
func Weights(c *model.Case) WeightSet {
	withinTheme := make(map[string]float64)
	for _, ko := range c.KeyOutputs {
		withinTheme[ko.Theme] += ko.Weight
	}
	var sumTheme float64
	for _, t := range c.Themes {
		sumTheme += t.Weight
	}

	ws := WeightSet{
		KeyOutputs: c.KeyOutputNames(),
		Values:     make([]float64, len(c.KeyOutputs)),
	}
	for i, ko := range c.KeyOutputs {
		ws.Values[i] = KeyOutputWeight(WeightInputs{
			KeyOutput:      ko.Weight,
			Theme:          c.ThemeWeight(ko.Theme),
			SumWithinTheme: withinTheme[ko.Theme],
			SumTheme:       sumTheme,
		})
	}
	return ws
}

// Sum returns the total of all weights.
func (w WeightSet) Sum() float64 {
	var total float64
	for _, v := range w.Values {
		total += v
	}
	return total
}

// Validate checks that no weight is negative and the total does not exceed
// 1.0. Themes without weighted key outputs make the total smaller than 1.
func (w WeightSet) Validate() error {
	if len(w.KeyOutputs) != len(w.Values) {
		return fmt.Errorf("%d weights for %d key outputs", len(w.Values), len(w.KeyOutputs))
	}
	for i, v := range w.Values {
		if v < 0 {
			return fmt.Errorf("negative weight for %q: %f", w.KeyOutputs[i], v)
		}
	}
	if w.Sum()-1.0 > 0.001 {
		return fmt.Errorf("weights sum to %.4f, must not exceed 1.0", w.Sum())
	}
	return nil
}

// Apply multiplies appreciations by their weights. Both slices follow the
// key output order.
func (w WeightSet) Apply(appreciations []float64) []float64 {
	out := make([]float64, len(appreciations))
	for i, a := range appreciations {
		if i < len(w.Values) {
			out[i] = a * w.Values[i]
		}
	}
	return out
}

