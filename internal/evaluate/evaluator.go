// Package evaluate executes an ordered dependency plan for (scenario,
// decision maker's option) pairs.
package evaluate

import (
	"fmt"
	"log/slog"

	"github.com/MikeSquared-Agency/Tradeoff/internal/hierarchy"
	"github.com/MikeSquared-Agency/Tradeoff/internal/model"
)

// Evaluator runs a compiled program against the options and scenarios of
// a case. Options added to the case after New are visible to it.
type Evaluator struct {
	c       *model.Case
	program *Program
	logger  *slog.Logger
}

// New compiles the plan for the case.
func New(c *model.Case, plan *hierarchy.Plan, logger *slog.Logger) (*Evaluator, error) {
	prog, err := Compile(c, plan)
	if err != nil {
		return nil, err
	}
	logger.Debug("compiled evaluation program",
		"case", c.Name,
		"statements", len(prog.instructions),
		"slots", len(prog.slots))
	return &Evaluator{c: c, program: prog, logger: logger}, nil
}

// Program returns the compiled program shared by every pair.
func (e *Evaluator) Program() *Program {
	return e.program
}

// EvaluateAllDependencies returns the key outputs of one pair.
func (e *Evaluator) EvaluateAllDependencies(scenario, option string) (map[string]float64, error) {
	si := e.c.ScenarioIndex(scenario)
	if si < 0 {
		return nil, fmt.Errorf("unknown scenario %q", scenario)
	}
	oi := e.c.OptionIndex(option)
	if oi < 0 {
		return nil, fmt.Errorf("unknown decision makers option %q", option)
	}
	kos, err := e.program.Evaluate(e.c.Options[oi].Values, e.c.Scenarios[si].Values)
	if err != nil {
		return nil, fmt.Errorf("evaluate %s/%s: %w", scenario, option, err)
	}
	return kos, nil
}

// EvaluateSelectedScenario evaluates every option within one scenario.
func (e *Evaluator) EvaluateSelectedScenario(scenario string) (*model.ScenarioResult, error) {
	sr := &model.ScenarioResult{Options: make(map[string]*model.Cell, len(e.c.Options))}
	for _, opt := range e.c.Options {
		kos, err := e.EvaluateAllDependencies(scenario, opt.Name)
		if err != nil {
			return nil, err
		}
		sr.Options[opt.Name] = &model.Cell{KeyOutputs: kos}
	}
	return sr, nil
}

// EvaluateAllScenarios evaluates the full scenario x option cross product.
func (e *Evaluator) EvaluateAllScenarios() (model.Results, error) {
	res := make(model.Results, len(e.c.Scenarios))
	for _, s := range e.c.Scenarios {
		sr, err := e.EvaluateSelectedScenario(s.Name)
		if err != nil {
			return nil, err
		}
		res[s.Name] = sr
	}
	e.logger.Debug("evaluated case",
		"case", e.c.Name,
		"scenarios", len(e.c.Scenarios),
		"options", len(e.c.Options))
	return res, nil
}
