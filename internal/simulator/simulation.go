// Package simulator sequences the build, evaluate, appreciate and optimize
// steps for a case and keeps cases available to the API and CLI.
package simulator

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/MikeSquared-Agency/Tradeoff/internal/evaluate"
	"github.com/MikeSquared-Agency/Tradeoff/internal/hierarchy"
	"github.com/MikeSquared-Agency/Tradeoff/internal/model"
	"github.com/MikeSquared-Agency/Tradeoff/internal/optimize"
	"github.com/MikeSquared-Agency/Tradeoff/internal/scoring"
	"github.com/MikeSquared-Agency/Tradeoff/internal/store"
)

// CaseError reports a step called before the step it depends on.
type CaseError struct {
	Message string
}

func (e *CaseError) Error() string { return e.Message }

var (
	ErrNotBuilt       = &CaseError{Message: "first build a case with Build()"}
	ErrNotEvaluated   = &CaseError{Message: "first evaluate a case with Evaluate()"}
	ErrNotAppreciated = &CaseError{Message: "first appreciate a case with Appreciate()"}
)

// rank orders statuses; an unbuilt simulation has rank 0.
var rank = map[store.CaseStatus]int{
	store.StatusBuilt:       1,
	store.StatusEvaluated:   2,
	store.StatusAppreciated: 3,
	store.StatusOptimized:   4,
}

// Simulation holds one case and everything derived from it. It is not safe
// for concurrent use; Service serializes access per case.
type Simulation struct {
	c         *model.Case
	plan      *hierarchy.Plan
	evaluator *evaluate.Evaluator
	results   model.Results
	bounds    map[string]scoring.Bounds
	warnings  []scoring.Warning
	outcome   *optimize.Outcome
	status    store.CaseStatus

	optimizer *optimize.Optimizer
	logger    *slog.Logger
}

// NewSimulation wraps a case. The case is copied.
func NewSimulation(c *model.Case, logger *slog.Logger) *Simulation {
	return &Simulation{
		c:         c.Clone(),
		optimizer: optimize.New(logger),
		logger:    logger,
	}
}

func (s *Simulation) at(status store.CaseStatus) bool {
	return rank[s.status] >= rank[status]
}

// Build validates the case, orders its dependencies and compiles them.
func (s *Simulation) Build() error {
	if err := s.c.Validate(); err != nil {
		return err
	}
	plan, err := hierarchy.Order(s.c.Dependencies, s.c.KnownInputs())
	if err != nil {
		return err
	}
	ev, err := evaluate.New(s.c, plan, s.logger)
	if err != nil {
		return err
	}
	s.plan, s.evaluator = plan, ev
	s.results, s.bounds, s.warnings, s.outcome = nil, nil, nil, nil
	s.status = store.StatusBuilt
	s.logger.Info("case built", "case", s.c.Name, "statements", len(plan.Statements))
	return nil
}

// Evaluate computes key outputs for every scenario and option.
func (s *Simulation) Evaluate() error {
	if !s.at(store.StatusBuilt) {
		return ErrNotBuilt
	}
	res, err := s.evaluator.EvaluateAllScenarios()
	if err != nil {
		return err
	}
	s.results = res
	s.bounds, s.warnings = nil, nil
	s.status = store.StatusEvaluated
	return nil
}

// Appreciate scores the evaluated results. Weight problems and unusable
// bounds are errors; bounds that had to be widened come back as warnings.
func (s *Simulation) Appreciate() ([]scoring.Warning, error) {
	if !s.at(store.StatusEvaluated) {
		return nil, ErrNotEvaluated
	}
	if err := scoring.Weights(s.c).Validate(); err != nil {
		return nil, fmt.Errorf("appreciate %s: %w", s.c.Name, err)
	}
	a, warnings, err := scoring.NewAppreciator(s.c, s.results, s.logger)
	if err != nil {
		return warnings, err
	}
	a.AppreciateAll(s.results, scoring.OptionNames(s.c))
	s.bounds, s.warnings = a.Bounds(), warnings
	if s.status != store.StatusOptimized {
		s.status = store.StatusAppreciated
	}
	return warnings, nil
}

// Optimize adds a new option holding the best re-split of the scenario's
// top option budget, then re-evaluates and re-appreciates the case. The
// optimized case carries the search bounds as manual bounds, so existing
// options keep their scores.
func (s *Simulation) Optimize(ctx context.Context, req optimize.Request) (*optimize.Outcome, error) {
	if !s.at(store.StatusBuilt) {
		return nil, ErrNotBuilt
	}
	if !s.at(store.StatusEvaluated) {
		return nil, ErrNotEvaluated
	}
	if !s.at(store.StatusAppreciated) {
		return nil, ErrNotAppreciated
	}

	next, outcome, err := s.optimizer.Optimize(ctx, s.c, s.evaluator.Program(), s.results, req)
	if err != nil {
		return nil, err
	}
	ev, err := evaluate.New(next, s.plan, s.logger)
	if err != nil {
		return nil, err
	}
	res, err := ev.EvaluateAllScenarios()
	if err != nil {
		return nil, err
	}
	s.c, s.evaluator, s.results = next, ev, res
	s.status = store.StatusEvaluated
	if _, err := s.Appreciate(); err != nil {
		return nil, err
	}
	s.outcome = outcome
	s.status = store.StatusOptimized
	return outcome, nil
}

// Modify changes one user weight and returns the previous value. Results
// stay evaluated but must be appreciated again.
func (s *Simulation) Modify(field, element string, value float64) (float64, error) {
	if !s.at(store.StatusBuilt) {
		return 0, ErrNotBuilt
	}
	old, err := s.c.SetWeight(field, element, value)
	if err != nil {
		return 0, err
	}
	if s.at(store.StatusAppreciated) {
		s.status = store.StatusEvaluated
	}
	s.bounds, s.warnings = nil, nil
	s.logger.Info("weight modified", "case", s.c.Name, "field", field, "element", element, "old", old, "new", value)
	return old, nil
}

// Run builds, evaluates and appreciates in one go.
func (s *Simulation) Run() ([]scoring.Warning, error) {
	if err := s.Build(); err != nil {
		return nil, err
	}
	if err := s.Evaluate(); err != nil {
		return nil, err
	}
	return s.Appreciate()
}

// Resume rebuilds a simulation up to a stored status. Evaluation is
// deterministic, so stored results are recomputed rather than trusted.
func Resume(c *model.Case, status store.CaseStatus, logger *slog.Logger) (*Simulation, error) {
	s := NewSimulation(c, logger)
	if err := s.Build(); err != nil {
		return nil, err
	}
	if rank[status] >= rank[store.StatusEvaluated] {
		if err := s.Evaluate(); err != nil {
			return nil, err
		}
	}
	if rank[status] >= rank[store.StatusAppreciated] {
		if _, err := s.Appreciate(); err != nil {
			return nil, err
		}
	}
	if status == store.StatusOptimized {
		s.status = status
	}
	return s, nil
}

func (s *Simulation) Status() store.CaseStatus { return s.status }

// Case returns the simulation's case. Callers must not modify it.
func (s *Simulation) Case() *model.Case { return s.c }

func (s *Simulation) Plan() *hierarchy.Plan { return s.plan }

// Results returns the current result tree, nil before Evaluate.
func (s *Simulation) Results() model.Results { return s.results }

func (s *Simulation) Bounds() map[string]scoring.Bounds { return s.bounds }

func (s *Simulation) Warnings() []scoring.Warning { return s.warnings }

// LastOutcome returns the most recent optimizer outcome, if any.
func (s *Simulation) LastOutcome() *optimize.Outcome { return s.outcome }

// Evaluator exposes the compiled evaluator for single pair queries.
func (s *Simulation) Evaluator() (*evaluate.Evaluator, error) {
	if !s.at(store.StatusBuilt) {
		return nil, ErrNotBuilt
	}
	return s.evaluator, nil
}

// Frontier returns the Pareto optimal options of one appreciated scenario.
func (s *Simulation) Frontier(scenario string) ([]scoring.ParetoCandidate, error) {
	if !s.at(store.StatusAppreciated) {
		return nil, ErrNotAppreciated
	}
	sr, ok := s.results[scenario]
	if !ok {
		return nil, fmt.Errorf("unknown scenario %q", scenario)
	}
	return scoring.ComputeFrontier(scoring.ScenarioCandidates(s.c, sr)), nil
}

// Ranking orders options by scenario weighted appreciation.
func (s *Simulation) Ranking() ([]scoring.RankedOption, error) {
	if !s.at(store.StatusAppreciated) {
		return nil, ErrNotAppreciated
	}
	return scoring.RankOptions(s.c, s.results), nil
}
