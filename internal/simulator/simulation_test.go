package simulator

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MikeSquared-Agency/Tradeoff/internal/hierarchy"
	"github.com/MikeSquared-Agency/Tradeoff/internal/model"
	"github.com/MikeSquared-Agency/Tradeoff/internal/model/modeltest"
	"github.com/MikeSquared-Agency/Tradeoff/internal/optimize"
	"github.com/MikeSquared-Agency/Tradeoff/internal/store"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestStepsRequireTheirPredecessor(t *testing.T) {
	sim := NewSimulation(modeltest.Beerwiser(), discardLogger())

	assert.Equal(t, ErrNotBuilt, sim.Evaluate())
	_, err := sim.Appreciate()
	assert.Equal(t, ErrNotEvaluated, err)
	_, err = sim.Optimize(context.Background(), optimize.Request{Scenario: "Base case", OptionName: "x"})
	assert.Equal(t, ErrNotBuilt, err)
	_, err = sim.Modify(model.FieldThemeWeight, "People", 1)
	assert.Equal(t, ErrNotBuilt, err)

	require.NoError(t, sim.Build())
	_, err = sim.Appreciate()
	assert.Equal(t, ErrNotEvaluated, err)
	_, err = sim.Optimize(context.Background(), optimize.Request{Scenario: "Base case", OptionName: "x"})
	assert.Equal(t, ErrNotEvaluated, err)

	require.NoError(t, sim.Evaluate())
	_, err = sim.Optimize(context.Background(), optimize.Request{Scenario: "Base case", OptionName: "x"})
	assert.Equal(t, ErrNotAppreciated, err)
	_, err = sim.Frontier("Base case")
	assert.Equal(t, ErrNotAppreciated, err)

	var caseErr *CaseError
	assert.True(t, errors.As(err, &caseErr))
	assert.Equal(t, "first appreciate a case with Appreciate()", caseErr.Error())
}

func TestRunBeerwiser(t *testing.T) {
	sim := NewSimulation(modeltest.Beerwiser(), discardLogger())
	warnings, err := sim.Run()
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.Equal(t, store.StatusAppreciated, sim.Status())

	res := sim.Results()
	assert.InDelta(t, 65.5198, res.Cell("Base case", "Equal spread").OptionAppreciation, 1e-3)
	assert.Equal(t, "Equal spread", res["Base case"].HighestWeightedOption)
	assert.Equal(t, "Focus on water recycling", res["Optimistic"].HighestWeightedOption)
	assert.Equal(t, "Focus on training", res["Pessimistic"].HighestWeightedOption)

	ranking, err := sim.Ranking()
	require.NoError(t, err)
	require.Len(t, ranking, 3)
	assert.Equal(t, "Focus on training", ranking[0].Option)

	b := sim.Bounds()["Accidents reduction"]
	assert.InDelta(t, 3.4884, b.Start, 1e-4)
	assert.InDelta(t, 17.442, b.End, 1e-4)
}

func TestNewSimulationCopiesCase(t *testing.T) {
	c := modeltest.Beerwiser()
	sim := NewSimulation(c, discardLogger())
	c.Options[0].Values[0] = 0
	assert.Equal(t, 150000.0, sim.Case().Options[0].Values[0])
}

func TestBuildRejectsInvalidCase(t *testing.T) {
	c := modeltest.Beerwiser()
	c.Scenarios = nil
	sim := NewSimulation(c, discardLogger())
	assert.Error(t, sim.Build())
	assert.Equal(t, store.CaseStatus(""), sim.Status())
}

func TestBuildRejectsCycle(t *testing.T) {
	c := modeltest.Beerwiser()
	c.Dependencies = append(c.Dependencies,
		model.Dependency{Destination: "loop a", Argument1: "loop b", Operator: "+"},
		model.Dependency{Destination: "loop b", Argument1: "loop a", Operator: "+"},
	)
	err := NewSimulation(c, discardLogger()).Build()
	assert.ErrorIs(t, err, hierarchy.ErrUnresolvable)
}

func TestModifyDropsAppreciation(t *testing.T) {
	sim := NewSimulation(modeltest.Beerwiser(), discardLogger())
	_, err := sim.Run()
	require.NoError(t, err)
	before := sim.Results().Cell("Base case", "Equal spread").OptionAppreciation

	old, err := sim.Modify(model.FieldScenarioWeight, "Base case", 5)
	require.NoError(t, err)
	assert.Equal(t, 2.0, old)
	assert.Equal(t, store.StatusEvaluated, sim.Status())

	_, err = sim.Optimize(context.Background(), optimize.Request{Scenario: "Base case", OptionName: "x"})
	assert.Equal(t, ErrNotAppreciated, err)

	_, err = sim.Appreciate()
	require.NoError(t, err)
	cell := sim.Results().Cell("Base case", "Equal spread")
	assert.InDelta(t, before, cell.OptionAppreciation, 1e-6)
	assert.InDelta(t, before*5/9, cell.ScenarioAppreciation, 1e-9)
}

func TestModifyRejectsOtherFields(t *testing.T) {
	sim := NewSimulation(modeltest.Beerwiser(), discardLogger())
	require.NoError(t, sim.Build())
	_, err := sim.Modify("fixed_input", "Accident cost", 1)
	assert.Error(t, err)
	_, err = sim.Modify(model.FieldKeyOutputWeight, "Unknown", 1)
	assert.Error(t, err)
	assert.Equal(t, store.StatusBuilt, sim.Status())
}

func TestOptimizeReappreciates(t *testing.T) {
	sim := NewSimulation(modeltest.Beerwiser(), discardLogger())
	_, err := sim.Run()
	require.NoError(t, err)

	outcome, err := sim.Optimize(context.Background(), optimize.Request{Scenario: "Base case", OptionName: "Optimized"})
	require.NoError(t, err)
	assert.Equal(t, store.StatusOptimized, sim.Status())
	assert.Equal(t, "Equal spread", outcome.BaseOption)
	assert.Equal(t, []float64{25000, 275000}, outcome.Values)
	assert.InDelta(t, 65.7116, outcome.Appreciation, 1e-3)
	assert.Same(t, outcome, sim.LastOutcome())

	require.Len(t, sim.Case().Options, 4)
	res := sim.Results()
	for _, s := range []string{"Base case", "Optimistic", "Pessimistic"} {
		require.NotNil(t, res.Cell(s, "Optimized"), s)
	}
	// The search bounds stay in place, so old options keep their scores.
	assert.InDelta(t, 3.4884, sim.Bounds()["Accidents reduction"].Start, 1e-4)
	assert.InDelta(t, 65.5198, res.Cell("Base case", "Equal spread").OptionAppreciation, 1e-3)
	assert.InDelta(t, 65.7116, res.Cell("Base case", "Optimized").OptionAppreciation, 1e-3)
	assert.InDelta(t, 65.9549, res.Cell("Optimistic", "Optimized").OptionAppreciation, 1e-3)
	assert.Equal(t, "Optimized", res["Base case"].HighestWeightedOption)
	assert.Equal(t, "Optimized", res["Optimistic"].HighestWeightedOption)
	assert.Equal(t, "Focus on training", res["Pessimistic"].HighestWeightedOption)

	_, err = sim.Optimize(context.Background(), optimize.Request{Scenario: "Base case", OptionName: "Optimized"})
	assert.ErrorIs(t, err, optimize.ErrOptionExists)
}

func TestResume(t *testing.T) {
	c := modeltest.Beerwiser()

	built, err := Resume(c, store.StatusBuilt, discardLogger())
	require.NoError(t, err)
	assert.Equal(t, store.StatusBuilt, built.Status())
	assert.Nil(t, built.Results())

	evaluated, err := Resume(c, store.StatusEvaluated, discardLogger())
	require.NoError(t, err)
	assert.Equal(t, store.StatusEvaluated, evaluated.Status())
	assert.Zero(t, evaluated.Results().Cell("Base case", "Equal spread").OptionAppreciation)

	optimized, err := Resume(c, store.StatusOptimized, discardLogger())
	require.NoError(t, err)
	assert.Equal(t, store.StatusOptimized, optimized.Status())
	assert.InDelta(t, 65.5198, optimized.Results().Cell("Base case", "Equal spread").OptionAppreciation, 1e-3)
}

func TestFrontier(t *testing.T) {
	sim := NewSimulation(modeltest.Beerwiser(), discardLogger())
	_, err := sim.Run()
	require.NoError(t, err)

	frontier, err := sim.Frontier("Base case")
	require.NoError(t, err)
	assert.NotEmpty(t, frontier)

	_, err = sim.Frontier("Unknown")
	assert.Error(t, err)
}

func TestOptimizedOptionNeverRanksBelowIncumbent(t *testing.T) {
	for _, scenario := range []string{"Base case", "Optimistic", "Pessimistic"} {
		t.Run(scenario, func(t *testing.T) {
			sim := NewSimulation(modeltest.Beerwiser(), discardLogger())
			_, err := sim.Run()
			require.NoError(t, err)

			outcome, err := sim.Optimize(context.Background(), optimize.Request{Scenario: scenario, OptionName: "Rebalanced"})
			require.NoError(t, err)

			res := sim.Results()
			got := res.Cell(scenario, "Rebalanced").OptionAppreciation
			assert.GreaterOrEqual(t, got, res.Cell(scenario, outcome.BaseOption).OptionAppreciation)
			assert.InDelta(t, outcome.Appreciation, got, 1e-6)
			assert.InDelta(t, outcome.BaseAppreciation, res.Cell(scenario, outcome.BaseOption).OptionAppreciation, 1e-6)

			// Reloading from the stored case scores the same way.
			resumed, err := Resume(sim.Case(), store.StatusOptimized, discardLogger())
			require.NoError(t, err)
			assert.InDelta(t, got, resumed.Results().Cell(scenario, "Rebalanced").OptionAppreciation, 1e-6)
		})
	}
}
