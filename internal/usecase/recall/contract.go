package recall

import (
	"context"

	"github.com/kailas-cloud/searchd/internal/domain"
	"github.com/kailas-cloud/searchd/internal/domain/recall"
	"github.com/kailas-cloud/searchd/internal/domain/search/filter"
)

// Index defines the index backend queries used by the recall paths.
type Index interface {
	SearchKeyword(ctx context.Context, index, query string, filters filter.Expression, topK int) ([]recall.Result, error)
	SearchVector(ctx context.Context, index string, vector []float32, filters filter.Expression, k int) ([]recall.Result, error)
	SearchHot(ctx context.Context, index string, filters filter.Expression, topK int) ([]recall.Result, error)
}

// Embedder vectorizes query text.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
