// Package optimize searches re-allocations of one option's budget across
// the decision levers for a better appreciated option.
package optimize

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/MikeSquared-Agency/Tradeoff/internal/evaluate"
	"github.com/MikeSquared-Agency/Tradeoff/internal/model"
	"github.com/MikeSquared-Agency/Tradeoff/internal/scoring"
)

// DefaultMaxCombinations bounds the grid when the caller does not.
const DefaultMaxCombinations = 60000

// cancelCheckEvery is how many trials run between context checks.
const cancelCheckEvery = 1024

// Request names the scenario to optimize for and the option to create.
type Request struct {
	Scenario        string `json:"scenario"`
	OptionName      string `json:"option_name"`
	MaxCombinations int    `json:"max_combinations"`
}

// Outcome describes one optimization run.
type Outcome struct {
	Scenario         string        `json:"scenario"`
	BaseOption       string        `json:"base_option"`
	BaseValues       []float64     `json:"base_values"`
	BaseAppreciation float64       `json:"base_appreciation"`
	Option           string        `json:"option"`
	Values           []float64     `json:"values"`
	Appreciation     float64       `json:"appreciation"`
	Gain             float64       `json:"gain"`
	Improved         bool          `json:"improved"`
	Budget           float64       `json:"budget"`
	StepSize         float64       `json:"step_size"`
	Trials           int           `json:"trials"`
	Duration         time.Duration `json:"duration"`
}

type Optimizer struct {
	logger *slog.Logger
}

func New(logger *slog.Logger) *Optimizer {
	return &Optimizer{logger: logger}
}

// Optimize grid-searches splits of the best option's budget in req.Scenario.
// res must be evaluated and appreciated for c; prog must be compiled from c.
// Trials are appreciated against the bounds of res frozen as manual bounds,
// so their scores compare with the incumbent's. The returned case is a copy
// of c with those bounds kept as manual bounds and one new option: the best
// trial if it strictly beats the incumbent, the incumbent's values
// otherwise. Appreciating it again therefore never ranks the new option
// below the incumbent. c and res are not modified.
func (o *Optimizer) Optimize(ctx context.Context, c *model.Case, prog *evaluate.Program, res model.Results, req Request) (*model.Case, *Outcome, error) {
	start := time.Now()
	if c.OptionIndex(req.OptionName) >= 0 {
		return nil, nil, fmt.Errorf("option %q: %w", req.OptionName, ErrOptionExists)
	}
	if len(c.InternalInputs) == 0 {
		return nil, nil, ErrNoLevers
	}
	maxComb := req.MaxCombinations
	if maxComb <= 0 {
		maxComb = DefaultMaxCombinations
	}
	si := c.ScenarioIndex(req.Scenario)
	if si < 0 {
		return nil, nil, fmt.Errorf("unknown scenario %q", req.Scenario)
	}

	base, baseAppreciation, err := incumbent(c, res, req.Scenario)
	if err != nil {
		return nil, nil, err
	}
	budget := base.Budget()
	if budget <= 0 {
		return nil, nil, fmt.Errorf("option %q has budget %v: %w", base.Name, budget, ErrNonPositiveBudget)
	}

	k := len(c.InternalInputs)
	scaled := ScaleBudget(budget)
	step, units, err := StepSize(budget, scaled, k, maxComb)
	if err != nil {
		return nil, nil, err
	}

	bounds, _, err := scoring.ComputeBounds(c, res)
	if err != nil {
		return nil, nil, fmt.Errorf("global bounds: %w", err)
	}
	trialCase := scoring.FreezeBounds(c, bounds)
	appreciator := scoring.NewAppreciatorWithBounds(trialCase, bounds, o.logger)
	uncertainties := trialCase.Scenarios[si].Values

	o.logger.Debug("starting grid search",
		"scenario", req.Scenario,
		"base_option", base.Name,
		"budget", budget,
		"scaled_budget", scaled,
		"step_size", step,
		"combinations", Combinations(units, k).String())

	best := append([]float64(nil), base.Values...)
	bestValue := baseAppreciation
	improved := false
	trials := 0
	var runErr error

	ForEachComposition(budget, units, k, func(values []float64) bool {
		if trials%cancelCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				runErr = err
				return false
			}
		}
		trials++
		candidate := append([]float64(nil), values...)
		kos, err := prog.Run(candidate, uncertainties)
		if err != nil {
			runErr = err
			return false
		}
		if v := appreciator.OptionAppreciation(kos); v > bestValue {
			best, bestValue, improved = candidate, v, true
		}
		return true
	})
	if runErr != nil {
		return nil, nil, fmt.Errorf("grid search: %w", runErr)
	}

	out := trialCase
	if err := out.AddOption(req.OptionName, best); err != nil {
		return nil, nil, err
	}

	outcome := &Outcome{
		Scenario:         req.Scenario,
		BaseOption:       base.Name,
		BaseValues:       append([]float64(nil), base.Values...),
		BaseAppreciation: baseAppreciation,
		Option:           req.OptionName,
		Values:           best,
		Appreciation:     bestValue,
		Gain:             bestValue - baseAppreciation,
		Improved:         improved,
		Budget:           budget,
		StepSize:         step,
		Trials:           trials,
		Duration:         time.Since(start),
	}
	o.logger.Info("optimized option",
		"scenario", outcome.Scenario,
		"base_option", outcome.BaseOption,
		"base_appreciation", outcome.BaseAppreciation,
		"option", outcome.Option,
		"appreciation", outcome.Appreciation,
		"gain", outcome.Gain,
		"trials", outcome.Trials,
		"duration", outcome.Duration)
	return out, outcome, nil
}

// incumbent returns the highest appreciated option of a scenario. It falls
// back to scanning the cells when the scenario has no recorded winner.
func incumbent(c *model.Case, res model.Results, scenario string) (model.Option, float64, error) {
	sr, ok := res[scenario]
	if !ok || len(sr.Options) == 0 {
		return model.Option{}, 0, fmt.Errorf("scenario %q: %w", scenario, ErrNotAppreciated)
	}
	name := sr.HighestWeightedOption
	if name == "" {
		var best float64
		for _, opt := range c.Options {
			cell, ok := sr.Options[opt.Name]
			if ok && (name == "" || cell.OptionAppreciation > best) {
				name, best = opt.Name, cell.OptionAppreciation
			}
		}
	}
	idx := c.OptionIndex(name)
	cell, ok := sr.Options[name]
	if idx < 0 || !ok {
		return model.Option{}, 0, fmt.Errorf("scenario %q: best option %q not found: %w", scenario, name, ErrNotAppreciated)
	}
	return c.Options[idx], cell.OptionAppreciation, nil
}
