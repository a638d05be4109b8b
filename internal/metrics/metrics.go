// Package metrics exposes Prometheus collectors for case processing.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "tradeoff"

type Metrics struct {
	CasesCreated    prometheus.Counter
	CasesDeleted    prometheus.Counter
	Evaluations     prometheus.Counter
	EvaluationTime  prometheus.Histogram
	Optimizations   *prometheus.CounterVec
	OptimizeTrials  prometheus.Histogram
	OptimizeGain    prometheus.Histogram
	OptimizeTime    prometheus.Histogram
	WeightsModified *prometheus.CounterVec
	Errors          *prometheus.CounterVec
}

// New registers the collectors with reg. Pass prometheus.DefaultRegisterer
// to serve them from promhttp.Handler.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		CasesCreated: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cases_created_total",
			Help:      "Cases built from a case document.",
		}),
		CasesDeleted: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cases_deleted_total",
			Help:      "Cases removed from the store.",
		}),
		Evaluations: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "evaluations_total",
			Help:      "Full evaluate and appreciate passes over a case.",
		}),
		EvaluationTime: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "evaluation_duration_seconds",
			Help:      "Time spent evaluating and appreciating a case.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
		}),
		Optimizations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "optimizations_total",
			Help:      "Optimizer runs by whether a better split was found.",
		}, []string{"improved"}),
		OptimizeTrials: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "optimize_trials",
			Help:      "Lever splits evaluated per optimizer run.",
			Buckets:   prometheus.ExponentialBuckets(10, 4, 8),
		}),
		OptimizeGain: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "optimize_gain",
			Help:      "Appreciation gained over the incumbent option.",
			Buckets:   []float64{0, 0.01, 0.1, 0.5, 1, 2, 5, 10, 25},
		}),
		OptimizeTime: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "optimize_duration_seconds",
			Help:      "Time spent in the optimizer grid search.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		}),
		WeightsModified: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "weights_modified_total",
			Help:      "User weight changes by field.",
		}, []string{"field"}),
		Errors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "errors_total",
			Help:      "Failed operations by operation name.",
		}, []string{"operation"}),
	}
}
