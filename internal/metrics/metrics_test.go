package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRegistersCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.CasesCreated.Inc()
	m.Optimizations.WithLabelValues("true").Inc()
	m.Errors.WithLabelValues("evaluate").Add(2)
	m.OptimizeTrials.Observe(3001)

	families, err := reg.Gather()
	require.NoError(t, err)

	counters := make(map[string]float64)
	histograms := make(map[string]uint64)
	for _, f := range families {
		for _, metric := range f.GetMetric() {
			if c := metric.GetCounter(); c != nil {
				counters[f.GetName()] += c.GetValue()
			}
			if h := metric.GetHistogram(); h != nil {
				histograms[f.GetName()] += h.GetSampleCount()
			}
		}
	}
	assert.Equal(t, 1.0, counters["tradeoff_cases_created_total"])
	assert.Equal(t, 1.0, counters["tradeoff_optimizations_total"])
	assert.Equal(t, 2.0, counters["tradeoff_errors_total"])
	assert.Equal(t, uint64(1), histograms["tradeoff_optimize_trials"])
}

func TestNewTwiceOnSameRegistryPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(reg)
	assert.Panics(t, func() { New(reg) })
}
