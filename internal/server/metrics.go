package server

import "github.com/prometheus/client_golang/prometheus"

// llmBuckets covers the latency range seen across model backends, from
// sub-second cached answers to long reasoning calls.
var llmBuckets = []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120}

var (
	// comparisonsTotal counts comparison requests by resolution method and
	// outcome.
	comparisonsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quorum_comparisons_total",
			Help: "Comparison requests",
		},
		[]string{"method", "status"},
	)

	// comparisonDuration records end-to-end comparison latency in seconds.
	comparisonDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "quorum_comparison_duration_seconds",
			Help:    "Comparison duration",
			Buckets: llmBuckets,
		},
	)

	// providerCallsTotal counts individual provider outcomes inside
	// comparisons.
	providerCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quorum_provider_calls_total",
			Help: "Provider call outcomes",
		},
		[]string{"provider", "status"},
	)
)

func init() {
	prometheus.MustRegister(
		comparisonsTotal,
		comparisonDuration,
		providerCallsTotal,
	)
}
