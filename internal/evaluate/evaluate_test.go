package evaluate

import (
	"errors"
	"io"
	"log/slog"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MikeSquared-Agency/Tradeoff/internal/hierarchy"
	"github.com/MikeSquared-Agency/Tradeoff/internal/model"
	"github.com/MikeSquared-Agency/Tradeoff/internal/model/modeltest"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newEvaluator(t *testing.T, c *model.Case) *Evaluator {
	t.Helper()
	plan, err := hierarchy.Order(c.Dependencies, c.KnownInputs())
	require.NoError(t, err)
	e, err := New(c, plan, discardLogger())
	require.NoError(t, err)
	return e
}

// tiny builds a one-lever, one-uncertainty case around the given statements.
func tiny(deps ...model.Dependency) *model.Case {
	return &model.Case{
		Name:           "tiny",
		KeyOutputs:     []model.KeyOutput{{Name: "KO", Theme: "T", Automatic: true, Weight: 1}},
		Themes:         []model.Theme{{Name: "T", Weight: 1}},
		FixedInputs:    []model.FixedInput{{Name: "f", Value: 4}},
		InternalInputs: []string{"lever"},
		ExternalInputs: []string{"u"},
		Options:        []model.Option{{Name: "A", Values: []float64{10}}},
		Scenarios:      []model.Scenario{{Name: "S", Values: []float64{3}, Weight: 1}},
		Dependencies:   deps,
	}
}

func TestApply(t *testing.T) {
	tests := []struct {
		op   string
		x, y float64
		want float64
	}{
		{"+", 2, 3, 5},
		{"-", 2, 3, -1},
		{"*", 2, 3, 6},
		{"/", 3, 2, 1.5},
		{"/", 3, 0, 0},
		{"/", 0, 0, 0},
		{"-*", 2, 3, -6},
		{"-/", 3, 2, -1.5},
		{"-/", 3, 0, 0},
		{"<", 2, 3, 1},
		{"<", 3, 3, 0},
		{">", 3, 2, 1},
		{"<=", 3, 3, 1},
		{">=", 2, 3, 0},
		{"min", 2, 3, 2},
		{"max", 2, 3, 3},
	}
	for _, tt := range tests {
		t.Run(tt.op, func(t *testing.T) {
			got, err := Apply(tt.op, tt.x, tt.y)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestApplyUnknownOperator(t *testing.T) {
	_, err := Apply("unknown_op", 1, 2)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "operator unknown_op not available")

	var ee *EvaluationError
	assert.True(t, errors.As(err, &ee))
}

func TestSqueeze(t *testing.T) {
	tests := []struct {
		name string
		x    float64
		p    model.Squeeze
		want float64
	}{
		{"below saturation", 10, model.Squeeze{SaturationPoint: 30, Accessibility: 0.9, ProbabilityOfSuccess: 0.8, MaximumEffect: 0.5}, 0.12},
		{"saturated", 10, model.Squeeze{SaturationPoint: 5, Accessibility: 0.95, ProbabilityOfSuccess: 0.85, MaximumEffect: 0.7}, 0.565},
		{"zero saturation point", 10, model.Squeeze{SaturationPoint: 0, Accessibility: 0.9, ProbabilityOfSuccess: 0.8, MaximumEffect: 0.5}, 0},
		{"zero investment", 0, model.Squeeze{SaturationPoint: 30, Accessibility: 0.9, ProbabilityOfSuccess: 0.8, MaximumEffect: 0.5}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Squeeze(tt.x, tt.p), 0.0005)
		})
	}
}

func TestOperatorString(t *testing.T) {
	op, err := ParseOperator("squeezed *")
	require.NoError(t, err)
	assert.Equal(t, OpSqueeze, op)
	assert.Equal(t, "squeezed *", op.String())
}

func TestEvaluateBeerwiser(t *testing.T) {
	e := newEvaluator(t, modeltest.Beerwiser())

	kos, err := e.EvaluateAllDependencies("Optimistic", "Focus on water recycling")
	require.NoError(t, err)
	assert.InDelta(t, 3.4884, kos["Accidents reduction"], 1e-6)
	assert.InDelta(t, 6818181.818, kos["Water use reduction"], 1e-3)
	assert.InDelta(t, 0.051036, kos["Production cost reduction"], 1e-6)
	assert.Len(t, kos, 3)
}

func TestEvaluateAllScenarios(t *testing.T) {
	c := modeltest.Beerwiser()
	e := newEvaluator(t, c)

	res, err := e.EvaluateAllScenarios()
	require.NoError(t, err)
	require.Len(t, res, 3)
	for _, s := range c.Scenarios {
		require.Len(t, res[s.Name].Options, 3)
	}
	// Accidents reduction does not depend on the scenario.
	assert.Equal(t,
		res.Cell("Base case", "Equal spread").KeyOutputs["Accidents reduction"],
		res.Cell("Pessimistic", "Equal spread").KeyOutputs["Accidents reduction"])
	assert.InDelta(t, 3.4884, res.Cell("Optimistic", "Focus on water recycling").KeyOutputs["Accidents reduction"], 1e-6)
}

func TestEvaluateUnknownNames(t *testing.T) {
	e := newEvaluator(t, modeltest.Beerwiser())

	_, err := e.EvaluateAllDependencies("Doomsday", "Equal spread")
	assert.ErrorContains(t, err, `unknown scenario "Doomsday"`)

	_, err = e.EvaluateAllDependencies("Base case", "Nothing")
	assert.ErrorContains(t, err, `unknown decision makers option "Nothing"`)

	_, err = e.EvaluateSelectedScenario("Doomsday")
	assert.Error(t, err)
}

func TestEvaluateAccumulates(t *testing.T) {
	c := tiny(
		model.Dependency{Destination: "KO", Argument1: "lever", Argument2: "f", Operator: "*"},
		model.Dependency{Destination: "KO", Argument1: "u", Argument2: "", Operator: "*"},
		model.Dependency{Destination: "KO", Argument1: " 2 ", Argument2: "ghost", Operator: "+"},
	)
	kos, err := newEvaluator(t, c).EvaluateAllDependencies("S", "A")
	require.NoError(t, err)
	// 10*4 + 3*1 + (2+0)
	assert.Equal(t, 45.0, kos["KO"])
}

func TestEvaluateSqueezeDefaultsSecondArgument(t *testing.T) {
	sq := &model.Squeeze{SaturationPoint: 30, Accessibility: 0.9, ProbabilityOfSuccess: 0.8, MaximumEffect: 0.5}
	c := tiny(model.Dependency{Destination: "KO", Argument1: "lever", Operator: model.OperatorSqueeze, Squeeze: sq})

	kos, err := newEvaluator(t, c).EvaluateAllDependencies("S", "A")
	require.NoError(t, err)
	assert.InDelta(t, 0.12, kos["KO"], 1e-9)

	c = tiny(model.Dependency{Destination: "KO", Argument1: "lever", Argument2: "u", Operator: model.OperatorSqueeze, Squeeze: sq})
	kos, err = newEvaluator(t, c).EvaluateAllDependencies("S", "A")
	require.NoError(t, err)
	// min(10, 3) = 3 -> 3/30 * 0.36
	assert.InDelta(t, 0.036, kos["KO"], 1e-9)
}

func TestCompileUnknownOperator(t *testing.T) {
	c := tiny(model.Dependency{Destination: "KO", Argument1: "lever", Argument2: "2", Operator: "^"})
	plan, err := hierarchy.Order(c.Dependencies, c.KnownInputs())
	require.NoError(t, err)

	_, err = New(c, plan, discardLogger())
	var ee *EvaluationError
	require.True(t, errors.As(err, &ee))
	assert.Equal(t, "^", ee.Operator)
	assert.Equal(t, "KO", ee.Destination)
	assert.Contains(t, err.Error(), "operator ^ not available")
}

func TestRunRejectsWrongShape(t *testing.T) {
	e := newEvaluator(t, tiny(model.Dependency{Destination: "KO", Argument1: "lever", Operator: "*"}))
	_, err := e.Program().Run([]float64{1, 2}, []float64{3})
	assert.Error(t, err)
	_, err = e.Program().Run([]float64{1}, nil)
	assert.Error(t, err)

	values, err := e.Program().Run([]float64{7}, []float64{0})
	require.NoError(t, err)
	assert.False(t, math.IsNaN(values[0]))
	assert.Equal(t, 7.0, values[0])
}
