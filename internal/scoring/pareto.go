package scoring

import (
	"sort"

	"github.com/MikeSquared-Agency/Tradeoff/internal/model"
)

// ParetoCandidate is one option scored on every key output of a scenario.
// Appreciations follow the key output order; higher is always better since
// smaller-the-better outputs are already inverted by appreciation.
type ParetoCandidate struct {
	Option        string    `json:"option"`
	Appreciations []float64 `json:"appreciations"`
	Total         float64   `json:"decision_makers_option_appreciation"`
}

// ComputeFrontier returns the Pareto-optimal candidates from the input set.
// A candidate is dominated if another candidate is >= on all key outputs
// and strictly better on at least one.
// O(n^2) dominance check, fine for the handful of options a case carries.
func ComputeFrontier(candidates []ParetoCandidate) []ParetoCandidate {
	if len(candidates) <= 1 {
		return candidates
	}

	var frontier []ParetoCandidate
	for i := range candidates {
		dominated := false
		for j := range candidates {
			if i == j {
				continue
			}
			if dominates(candidates[j], candidates[i]) {
				dominated = true
				break
			}
		}
		if !dominated {
			frontier = append(frontier, candidates[i])
		}
	}
	return frontier
}

// dominates returns true if a dominates b.
func dominates(a, b ParetoCandidate) bool {
	if len(a.Appreciations) != len(b.Appreciations) {
		return false
	}
	strictly := false
	for i := range a.Appreciations {
		if a.Appreciations[i] < b.Appreciations[i] {
			return false
		}
		if a.Appreciations[i] > b.Appreciations[i] {
			strictly = true
		}
	}
	return strictly
}

// ScenarioCandidates builds Pareto candidates from an appreciated scenario,
// in declared option order.
func ScenarioCandidates(c *model.Case, sr *model.ScenarioResult) []ParetoCandidate {
	names := c.KeyOutputNames()
	var out []ParetoCandidate
	for _, opt := range c.Options {
		cell, ok := sr.Options[opt.Name]
		if !ok {
			continue
		}
		pc := ParetoCandidate{
			Option:        opt.Name,
			Appreciations: make([]float64, len(names)),
			Total:         cell.OptionAppreciation,
		}
		for i, n := range names {
			pc.Appreciations[i] = cell.Appreciations[n]
		}
		out = append(out, pc)
	}
	return out
}

// RankedOption is an option's scenario-weighted appreciation summed over
// all scenarios.
type RankedOption struct {
	Option       string  `json:"option"`
	Appreciation float64 `json:"appreciation"`
}

// RankOptions orders options by their summed scenario appreciations, best
// first. Ties keep declared order.
func RankOptions(c *model.Case, res model.Results) []RankedOption {
	ranked := make([]RankedOption, 0, len(c.Options))
	for _, opt := range c.Options {
		r := RankedOption{Option: opt.Name}
		for _, s := range c.Scenarios {
			if cell := res.Cell(s.Name, opt.Name); cell != nil {
				r.Appreciation += cell.ScenarioAppreciation
			}
		}
		ranked = append(ranked, r)
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Appreciation > ranked[j].Appreciation
	})
	return ranked
}
