package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Query embedding label values.
const (
	EmbedOK    = "ok"
	EmbedEmpty = "empty"
	EmbedError = "error"

	CacheHit  = "hit"
	CacheMiss = "miss"
)

// Only search queries are embedded, so these series measure the vector recall path's provider cost.
// Latency buckets stop at the recall path timeout range.
var (
	QueryEmbeddingsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "query_embeddings_total",
			Help:      "Query embedding calls by provider, model and status",
		},
		[]string{"provider", "model", "status"},
	)

	QueryEmbeddingDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "query_embedding_duration_seconds",
			Help:      "Latency of successful query embedding calls",
			Buckets:   []float64{0.01, 0.025, 0.05, 0.1, 0.2, 0.4, 0.8, 1.6},
		},
		[]string{"provider", "model"},
	)

	QueryEmbeddingTokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "query_embedding_tokens_total",
			Help:      "Provider tokens billed for query embeddings",
		},
		[]string{"provider", "model", "kind"},
	)

	QueryEmbeddingFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "query_embedding_failures_total",
			Help:      "Failed query embedding calls by reason",
		},
		[]string{"provider", "model", "reason"},
	)

	QueryEmbeddingCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "query_embedding_cache_total",
			Help:      "Query embedding cache lookups by result",
		},
		[]string{"result"},
	)
)

// ObserveQueryEmbedding records a successful provider call.
func ObserveQueryEmbedding(provider, model string, took time.Duration, promptTokens, totalTokens int) {
	QueryEmbeddingsTotal.WithLabelValues(provider, model, EmbedOK).Inc()
	QueryEmbeddingDuration.WithLabelValues(provider, model).Observe(took.Seconds())
	if totalTokens > 0 {
		QueryEmbeddingTokensTotal.WithLabelValues(provider, model, "prompt").Add(float64(promptTokens))
		QueryEmbeddingTokensTotal.WithLabelValues(provider, model, "total").Add(float64(totalTokens))
	}
}

// QueryEmbeddingFailed records a failed provider call.
func QueryEmbeddingFailed(provider, model, reason string) {
	QueryEmbeddingsTotal.WithLabelValues(provider, model, EmbedError).Inc()
	QueryEmbeddingFailuresTotal.WithLabelValues(provider, model, reason).Inc()
}
