package model

// Cell holds the outcome of one (scenario, decision maker's option) pair.
// KeyOutputs is filled by evaluation, everything else by appreciation.
type Cell struct {
	KeyOutputs            map[string]float64 `json:"key_outputs"`
	Appreciations         map[string]float64 `json:"appreciations,omitempty"`
	WeightedAppreciations map[string]float64 `json:"weighted_appreciations,omitempty"`
	OptionAppreciation    float64            `json:"decision_makers_option_appreciation"`
	ScenarioAppreciation  float64            `json:"scenario_appreciations"`
}

// ScenarioResult groups the cells of all options within one scenario.
type ScenarioResult struct {
	Options               map[string]*Cell `json:"options"`
	HighestWeightedOption string           `json:"highest_weighted_option,omitempty"`
}

// Results is the full result tree, keyed by scenario name.
type Results map[string]*ScenarioResult

// Cell returns the cell of a pair, or nil when it has not been evaluated.
func (r Results) Cell(scenario, option string) *Cell {
	sr, ok := r[scenario]
	if !ok {
		return nil
	}
	return sr.Options[option]
}

// Clone returns a deep copy of the tree.
func (r Results) Clone() Results {
	out := make(Results, len(r))
	for scen, sr := range r {
		cp := &ScenarioResult{
			Options:               make(map[string]*Cell, len(sr.Options)),
			HighestWeightedOption: sr.HighestWeightedOption,
		}
		for opt, cell := range sr.Options {
			cp.Options[opt] = cell.Clone()
		}
		out[scen] = cp
	}
	return out
}

// Clone returns a deep copy of the cell.
func (c *Cell) Clone() *Cell {
	return &Cell{
		KeyOutputs:            cloneMap(c.KeyOutputs),
		Appreciations:         cloneMap(c.Appreciations),
		WeightedAppreciations: cloneMap(c.WeightedAppreciations),
		OptionAppreciation:    c.OptionAppreciation,
		ScenarioAppreciation:  c.ScenarioAppreciation,
	}
}

func cloneMap(m map[string]float64) map[string]float64 {
	if m == nil {
		return nil
	}
	out := make(map[string]float64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
