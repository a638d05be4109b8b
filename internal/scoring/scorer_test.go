package scoring

import (
	"errors"
	"io"
	"log/slog"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MikeSquared-Agency/Tradeoff/internal/evaluate"
	"github.com/MikeSquared-Agency/Tradeoff/internal/hierarchy"
	"github.com/MikeSquared-Agency/Tradeoff/internal/model"
	"github.com/MikeSquared-Agency/Tradeoff/internal/model/modeltest"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func float64Ptr(v float64) *float64 { return &v }

func evaluated(t *testing.T, c *model.Case) model.Results {
	t.Helper()
	plan, err := hierarchy.Order(c.Dependencies, c.KnownInputs())
	require.NoError(t, err)
	e, err := evaluate.New(c, plan, discardLogger())
	require.NoError(t, err)
	res, err := e.EvaluateAllScenarios()
	require.NoError(t, err)
	return res
}

func TestAppreciateValue(t *testing.T) {
	tests := []struct {
		name   string
		value  float64
		bounds Bounds
		stb    bool
		linear bool
		want   float64
	}{
		{"linear inside", 10, Bounds{5, 20}, false, true, 33.33},
		{"linear stb above end", 30, Bounds{5, 20}, true, true, 0},
		{"nonlinear stb inside", 150, Bounds{0, 235}, true, false, 15.71},
		{"nonlinear below start", -20, Bounds{5, 20}, false, false, 0},
		{"degenerate range", 10, Bounds{10.345, 10.345}, false, true, 0},
		{"degenerate range at value", 3, Bounds{3, 3}, true, true, 0},
		{"stb below start", 1, Bounds{5, 20}, true, true, 100},
		{"above end", 21, Bounds{5, 20}, false, false, 100},
		{"linear at start", 5, Bounds{5, 20}, false, true, 0},
		{"linear stb at start", 5, Bounds{5, 20}, true, true, 100},
		{"linear at end", 20, Bounds{5, 20}, false, true, 100},
		{"linear stb at end", 20, Bounds{5, 20}, true, true, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AppreciateValue(tt.value, tt.bounds, tt.stb, tt.linear)
			if math.Abs(got-tt.want) > 0.01 {
				t.Errorf("got %f, want %f", got, tt.want)
			}
		})
	}
}

func TestAppreciateValueStaysInRange(t *testing.T) {
	for _, stb := range []bool{false, true} {
		for _, linear := range []bool{false, true} {
			for v := -50.0; v <= 300; v += 7.3 {
				got := AppreciateValue(v, Bounds{0, 235}, stb, linear)
				if got < 0 || got > 100 {
					t.Fatalf("value %f (stb=%v linear=%v) appreciated to %f", v, stb, linear, got)
				}
			}
		}
	}
}

func TestKeyOutputWeight(t *testing.T) {
	tests := []struct {
		name string
		in   WeightInputs
		want float64
	}{
		{"regular", WeightInputs{KeyOutput: 3, Theme: 5, SumWithinTheme: 3, SumTheme: 15}, 0.3333},
		{"shared theme", WeightInputs{KeyOutput: 2, Theme: 4, SumWithinTheme: 8, SumTheme: 20}, 0.05},
		{"no weight within theme", WeightInputs{KeyOutput: 10, Theme: 8, SumWithinTheme: 0, SumTheme: 2}, 0},
		{"no theme weight", WeightInputs{KeyOutput: 2, Theme: 3, SumWithinTheme: 4, SumTheme: 0}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, KeyOutputWeight(tt.in), 0.0001)
		})
	}
}

func TestWeightsBeerwiser(t *testing.T) {
	ws := Weights(modeltest.Beerwiser())
	require.NoError(t, ws.Validate())
	assert.InDeltaSlice(t, []float64{1.0 / 3, 1.0 / 6, 0.5}, ws.Values, 1e-9)
	assert.InDelta(t, 1.0, ws.Sum(), 1e-9)

	weighted := ws.Apply([]float64{50, 49.756, 81.12})
	assert.InDeltaSlice(t, []float64{16.67, 8.29, 40.56}, weighted, 0.01)
}

func TestWeightSetValidate(t *testing.T) {
	assert.Error(t, WeightSet{KeyOutputs: []string{"a"}, Values: []float64{-0.1}}.Validate())
	assert.Error(t, WeightSet{KeyOutputs: []string{"a", "b"}, Values: []float64{0.8, 0.8}}.Validate())
	assert.Error(t, WeightSet{KeyOutputs: []string{"a"}, Values: nil}.Validate())
	assert.NoError(t, WeightSet{KeyOutputs: []string{"a", "b"}, Values: []float64{0.5, 0}}.Validate())
}

func TestComputeBoundsBeerwiser(t *testing.T) {
	c := modeltest.Beerwiser()
	bounds, warnings, err := ComputeBounds(c, evaluated(t, c))
	require.NoError(t, err)
	assert.Empty(t, warnings)

	assert.InDelta(t, 3.4884, bounds["Accidents reduction"].Start, 1e-6)
	assert.InDelta(t, 17.442, bounds["Accidents reduction"].End, 1e-6)
	assert.InDelta(t, 1227272.73, bounds["Water use reduction"].Start, 0.01)
	assert.InDelta(t, 6818181.82, bounds["Water use reduction"].End, 0.01)
	assert.InDelta(t, 0.036998, bounds["Production cost reduction"].Start, 1e-6)
	assert.InDelta(t, 0.054694, bounds["Production cost reduction"].End, 1e-6)
}

func TestComputeBoundsManual(t *testing.T) {
	c := modeltest.Beerwiser()
	res := evaluated(t, c)

	c.KeyOutputs[0].Automatic = false
	c.KeyOutputs[0].Start = float64Ptr(0)
	c.KeyOutputs[0].End = float64Ptr(20)
	c.KeyOutputs[1].Start = float64Ptr(1)

	bounds, warnings, err := ComputeBounds(c, res)
	require.NoError(t, err)
	assert.Equal(t, Bounds{Start: 0, End: 20}, bounds["Accidents reduction"])
	require.Len(t, warnings, 1)
	assert.Equal(t, "Water use reduction", warnings[0].KeyOutput)
	assert.InDelta(t, 1227272.73, bounds["Water use reduction"].Start, 0.01)

	c.KeyOutputs[2].Automatic = false
	_, _, err = ComputeBounds(c, res)
	var ae *AppreciationError
	require.True(t, errors.As(err, &ae))
	assert.Equal(t, "Production cost reduction", ae.KeyOutput)
}

func TestAppreciateAllBeerwiser(t *testing.T) {
	c := modeltest.Beerwiser()
	res := evaluated(t, c)
	a, warnings, err := NewAppreciator(c, res, discardLogger())
	require.NoError(t, err)
	assert.Empty(t, warnings)

	a.AppreciateAll(res, OptionNames(c))

	cell := res.Cell("Base case", "Focus on training")
	assert.InDelta(t, 100, cell.Appreciations["Accidents reduction"], 0.01)
	assert.InDelta(t, 1.95, cell.Appreciations["Water use reduction"], 0.01)
	assert.InDelta(t, 56.73, cell.Appreciations["Production cost reduction"], 0.01)
	assert.InDelta(t, 33.33, cell.WeightedAppreciations["Accidents reduction"], 0.01)
	assert.InDelta(t, 0.33, cell.WeightedAppreciations["Water use reduction"], 0.01)
	assert.InDelta(t, 28.36, cell.WeightedAppreciations["Production cost reduction"], 0.01)
	assert.InDelta(t, 62.02, cell.OptionAppreciation, 0.01)
	assert.InDelta(t, 20.67, cell.ScenarioAppreciation, 0.01)

	assert.InDelta(t, 65.5198, res.Cell("Base case", "Equal spread").OptionAppreciation, 1e-4)
	assert.Equal(t, "Equal spread", res["Base case"].HighestWeightedOption)
	assert.Equal(t, "Focus on water recycling", res["Optimistic"].HighestWeightedOption)
	assert.Equal(t, "Focus on training", res["Pessimistic"].HighestWeightedOption)

	for scen, sr := range res {
		for opt, cell := range sr.Options {
			for ko, v := range cell.Appreciations {
				if v < 0 || v > 100 {
					t.Errorf("%s/%s/%s appreciation %f out of range", scen, opt, ko, v)
				}
			}
		}
	}
}

func TestAppreciateAllZeroScenarioWeights(t *testing.T) {
	c := modeltest.Beerwiser()
	for i := range c.Scenarios {
		c.Scenarios[i].Weight = 0
	}
	res := evaluated(t, c)
	a, _, err := NewAppreciator(c, res, discardLogger())
	require.NoError(t, err)
	a.AppreciateAll(res, OptionNames(c))

	cell := res.Cell("Base case", "Equal spread")
	assert.Greater(t, cell.OptionAppreciation, 0.0)
	assert.Equal(t, 0.0, cell.ScenarioAppreciation)
}

func TestFrozenBoundsReproduceScores(t *testing.T) {
	c := modeltest.Beerwiser()
	res := evaluated(t, c)
	a, _, err := NewAppreciator(c, res, discardLogger())
	require.NoError(t, err)

	frozen := FreezeBounds(c, a.Bounds())
	for _, ko := range frozen.KeyOutputs {
		assert.False(t, ko.Automatic)
		require.NotNil(t, ko.Start)
		require.NotNil(t, ko.End)
	}
	assert.True(t, c.KeyOutputs[0].Automatic, "original case must not change")

	// A single-cell tree would collapse automatic bounds; frozen ones hold.
	single := model.Results{"Base case": {Options: map[string]*model.Cell{
		"Equal spread": res.Cell("Base case", "Equal spread").Clone(),
	}}}
	b, _, err := NewAppreciator(frozen, single, discardLogger())
	require.NoError(t, err)
	b.AppreciateAll(single, []string{"Equal spread"})
	assert.InDelta(t, 65.5198, single.Cell("Base case", "Equal spread").OptionAppreciation, 1e-4)
}

func TestScore(t *testing.T) {
	c := modeltest.Beerwiser()
	res := evaluated(t, c)
	a, _, err := NewAppreciator(c, res, discardLogger())
	require.NoError(t, err)

	kos := res.Cell("Base case", "Equal spread").KeyOutputs
	values := []float64{kos["Accidents reduction"], kos["Water use reduction"], kos["Production cost reduction"]}
	scores, total := a.Score(values)
	require.Len(t, scores, 3)
	assert.Equal(t, "Accidents reduction", scores[0].Name)
	assert.InDelta(t, 50, scores[0].Score, 1e-6)
	assert.InDelta(t, 65.5198, total, 1e-4)
	assert.InDelta(t, total, a.OptionAppreciation(values), 1e-9)
}
