package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "searchd"

var registerOnce sync.Once

// Register registers all collectors with the default registry. Must be called once from main;
// repeated calls are no-ops.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			httpRequestDuration,
			httpRequestsTotal,
			httpRequestsInFlight,
			QueryEmbeddingsTotal,
			QueryEmbeddingDuration,
			QueryEmbeddingTokensTotal,
			QueryEmbeddingFailuresTotal,
			QueryEmbeddingCacheTotal,
			RecallPathDuration,
			RecallPathResults,
			RecallPathFailuresTotal,
			FusionRunsTotal,
			RerankRunsTotal,
			RerankFetchFailuresTotal,
			SearchRequestsTotal,
		)
	})
}
