package scoring

import (
	"log/slog"

	"github.com/MikeSquared-Agency/Tradeoff/internal/model"
)

// KeyOutputScore captures one key output's contribution to an option's
// appreciation.
type KeyOutputScore struct {
	Name     string  `json:"name"`
	Value    float64 `json:"value"`
	Score    float64 `json:"score"`
	Weight   float64 `json:"weight"`
	Weighted float64 `json:"weighted"`
}

// Appreciator turns raw key output values into weighted 0-100 appreciations
// using fixed bounds and weights.
type Appreciator struct {
	keyOutputs []model.KeyOutput
	bounds     []Bounds
	weights    WeightSet
	scenarios  []model.Scenario
	logger     *slog.Logger
}

// NewAppreciator derives bounds from the evaluated result tree. Warnings are
// logged and also returned.
func NewAppreciator(c *model.Case, res model.Results, logger *slog.Logger) (*Appreciator, []Warning, error) {
	bounds, warnings, err := ComputeBounds(c, res)
	for _, w := range warnings {
		logger.Warn("appreciation warning", "case", c.Name, "key_output", w.KeyOutput, "message", w.Message)
	}
	if err != nil {
		return nil, warnings, err
	}
	return NewAppreciatorWithBounds(c, bounds, logger), warnings, nil
}

// NewAppreciatorWithBounds uses the given bounds as-is. Key outputs missing
// from the map get a degenerate [0, 0] range.
func NewAppreciatorWithBounds(c *model.Case, bounds map[string]Bounds, logger *slog.Logger) *Appreciator {
	a := &Appreciator{
		keyOutputs: append([]model.KeyOutput(nil), c.KeyOutputs...),
		bounds:     make([]Bounds, len(c.KeyOutputs)),
		weights:    Weights(c),
		scenarios:  append([]model.Scenario(nil), c.Scenarios...),
		logger:     logger,
	}
	for i, ko := range c.KeyOutputs {
		a.bounds[i] = bounds[ko.Name]
	}
	return a
}

// Bounds returns the bounds in use, keyed by key output.
func (a *Appreciator) Bounds() map[string]Bounds {
	out := make(map[string]Bounds, len(a.keyOutputs))
	for i, ko := range a.keyOutputs {
		out[ko.Name] = a.bounds[i]
	}
	return out
}

// Weights returns the effective key output weights.
func (a *Appreciator) Weights() WeightSet {
	return a.weights
}

// Score appreciates a vector of key output values in declared order and
// returns the per key output scores and their weighted sum.
func (a *Appreciator) Score(values []float64) ([]KeyOutputScore, float64) {
	scores := make([]KeyOutputScore, len(a.keyOutputs))
	var total float64
	for i, ko := range a.keyOutputs {
		var v float64
		if i < len(values) {
			v = values[i]
		}
		s := AppreciateValue(v, a.bounds[i], ko.SmallerTheBetter, ko.Linear)
		w := a.weights.Values[i]
		scores[i] = KeyOutputScore{Name: ko.Name, Value: v, Score: s, Weight: w, Weighted: s * w}
		total += s * w
	}
	return scores, total
}

// OptionAppreciation is Score without the breakdown.
func (a *Appreciator) OptionAppreciation(values []float64) float64 {
	var total float64
	for i, ko := range a.keyOutputs {
		if i >= len(values) {
			break
		}
		total += AppreciateValue(values[i], a.bounds[i], ko.SmallerTheBetter, ko.Linear) * a.weights.Values[i]
	}
	return total
}

// AppreciateCell writes appreciations, weighted appreciations and the option
// appreciation into the cell.
func (a *Appreciator) AppreciateCell(cell *model.Cell) {
	values := make([]float64, len(a.keyOutputs))
	for i, ko := range a.keyOutputs {
		values[i] = cell.KeyOutputs[ko.Name]
	}
	scores, total := a.Score(values)

	cell.Appreciations = make(map[string]float64, len(scores))
	cell.WeightedAppreciations = make(map[string]float64, len(scores))
	for _, s := range scores {
		cell.Appreciations[s.Name] = s.Score
		cell.WeightedAppreciations[s.Name] = s.Weighted
	}
	cell.OptionAppreciation = total
}

// AppreciateScenario appreciates every option of one scenario and records
// the highest appreciated option. Ties keep the first option in optionOrder.
func (a *Appreciator) AppreciateScenario(sr *model.ScenarioResult, optionOrder []string) {
	best, bestValue := "", 0.0
	for _, name := range optionOrder {
		cell, ok := sr.Options[name]
		if !ok {
			continue
		}
		a.AppreciateCell(cell)
		if best == "" || cell.OptionAppreciation > bestValue {
			best, bestValue = name, cell.OptionAppreciation
		}
	}
	sr.HighestWeightedOption = best
}

// AppreciateAll appreciates the whole tree and applies scenario weights:
// scenario appreciation = option appreciation * scenario weight / sum of
// scenario weights, or 0 when the weights sum to 0.
func (a *Appreciator) AppreciateAll(res model.Results, optionOrder []string) {
	var totalWeight float64
	for _, s := range a.scenarios {
		totalWeight += s.Weight
	}
	for _, s := range a.scenarios {
		sr, ok := res[s.Name]
		if !ok {
			continue
		}
		a.AppreciateScenario(sr, optionOrder)
		for _, cell := range sr.Options {
			if totalWeight == 0 {
				cell.ScenarioAppreciation = 0
				continue
			}
			cell.ScenarioAppreciation = cell.OptionAppreciation * s.Weight / totalWeight
		}
	}
	a.logger.Debug("appreciated results", "scenarios", len(res), "total_scenario_weight", totalWeight)
}

// OptionNames returns the option names of a case in declared order.
func OptionNames(c *model.Case) []string {
	names := make([]string, len(c.Options))
	for i, o := range c.Options {
		names[i] = o.Name
	}
	return names
}
