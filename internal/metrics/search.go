package metrics

import "github.com/prometheus/client_golang/prometheus"

// Recall path failure reasons.
const (
	ReasonError    = "error"
	ReasonPanic    = "panic"
	ReasonTimeout  = "timeout"
	ReasonRejected = "rejected"
)

// Search pipeline Prometheus metrics.
var (
	RecallPathDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "recall_path_duration_seconds",
			Help:      "Recall path duration in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"path"},
	)

	RecallPathResults = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "recall_path_results",
			Help:      "Number of candidates returned by a recall path",
			Buckets:   []float64{0, 1, 5, 10, 25, 50, 100, 250, 500},
		},
		[]string{"path"},
	)

	RecallPathFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "recall_path_failures_total",
			Help:      "Recall paths that degraded to an empty result",
		},
		[]string{"path", "reason"},
	)

	FusionRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fusion_runs_total",
			Help:      "Fusion runs by method",
		},
		[]string{"method"},
	)

	RerankRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rerank_runs_total",
			Help:      "Rerank runs by outcome",
		},
		[]string{"outcome"}, // "applied" / "passthrough" / "disabled"
	)

	RerankFetchFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rerank_fetch_failures_total",
			Help:      "Document fetches that failed during rerank",
		},
	)

	SearchRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_requests_total",
			Help:      "Search requests by outcome",
		},
		[]string{"outcome"}, // "ok" / "empty" / "invalid"
	)
)
