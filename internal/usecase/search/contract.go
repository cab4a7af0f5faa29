package search

import (
	"context"

	"github.com/kailas-cloud/searchd/internal/domain/recall"
	"github.com/kailas-cloud/searchd/internal/domain/search/request"
	"github.com/kailas-cloud/searchd/internal/usecase/fusion"
)

// IndexNamer maps a tenant to its index.
type IndexNamer interface {
	Name(appKey string) string
}

// Recaller gathers candidates from every enabled recall path.
type Recaller interface {
	Recall(ctx context.Context, index string, req *request.Request) []recall.Result
}

// Fuser merges per-source candidate lists.
type Fuser interface {
	Fuse(method request.FusionMethod, lists []fusion.List) []recall.Result
}

// Reranker applies the tenant sort rule and then the explicit field sort, if any.
type Reranker interface {
	Rank(ctx context.Context, index, appKey string, by *request.Sort, candidates []recall.Result) []recall.Result
}
