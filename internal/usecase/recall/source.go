package recall

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/searchd/internal/domain/recall"
	"github.com/kailas-cloud/searchd/internal/domain/search/request"
	"github.com/kailas-cloud/searchd/internal/metrics"
)

// Source is one recall path. The set is closed: KeywordSource, VectorSource and HotSource.
//
// Recall fails soft: backend errors are logged and yield an empty list.
type Source interface {
	Path() recall.Source
	Enabled(req *request.Request) bool
	Recall(ctx context.Context, index string, req *request.Request) []recall.Result

	sealed()
}

// softFail runs fetch and converts any error into an empty result, recording path metrics.
func softFail(
	ctx context.Context, logger *zap.Logger, path recall.Source, index string,
	fetch func(ctx context.Context) ([]recall.Result, error),
) []recall.Result {
	start := time.Now()
	results, err := fetch(ctx)
	metrics.RecallPathDuration.WithLabelValues(string(path)).Observe(time.Since(start).Seconds())

	if err != nil {
		reason := metrics.ReasonError
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			reason = metrics.ReasonTimeout
		}
		metrics.RecallPathFailuresTotal.WithLabelValues(string(path), reason).Inc()
		logger.Warn("Recall path failed",
			zap.String("path", string(path)),
			zap.String("index", index),
			zap.String("reason", reason),
			zap.Error(err),
		)
		return nil
	}

	metrics.RecallPathResults.WithLabelValues(string(path)).Observe(float64(len(results)))
	return results
}

// KeywordSource recalls by weighted multi-field text match with required filters.
type KeywordSource struct {
	index  Index
	topK   int
	logger *zap.Logger
}

// NewKeywordSource creates the keyword recall path.
func NewKeywordSource(index Index, topK int, logger *zap.Logger) *KeywordSource {
	return &KeywordSource{index: index, topK: topK, logger: logger}
}

// Path returns recall.Keyword.
func (s *KeywordSource) Path() recall.Source { return recall.Keyword }

// Enabled requires the keyword flag and a query.
func (s *KeywordSource) Enabled(req *request.Request) bool {
	return req.Strategy().Keyword && req.HasQuery()
}

// Recall runs the text query.
func (s *KeywordSource) Recall(ctx context.Context, index string, req *request.Request) []recall.Result {
	return softFail(ctx, s.logger, recall.Keyword, index, func(ctx context.Context) ([]recall.Result, error) {
		return s.index.SearchKeyword(ctx, index, req.Query(), req.Filters(), s.topK)
	})
}

func (s *KeywordSource) sealed() {}

// VectorSource recalls by kNN over the query embedding.
type VectorSource struct {
	index    Index
	embedder Embedder
	logger   *zap.Logger
}

// NewVectorSource creates the vector recall path.
func NewVectorSource(index Index, embedder Embedder, logger *zap.Logger) *VectorSource {
	return &VectorSource{index: index, embedder: embedder, logger: logger}
}

// Path returns recall.Vector.
func (s *VectorSource) Path() recall.Source { return recall.Vector }

// Enabled requires an enabled vector config and a query.
func (s *VectorSource) Enabled(req *request.Request) bool {
	return s.embedder != nil && req.Strategy().VectorEnabled() && req.HasQuery()
}

// Recall embeds the query and runs kNN. An empty embedding yields no results.
func (s *VectorSource) Recall(ctx context.Context, index string, req *request.Request) []recall.Result {
	return softFail(ctx, s.logger, recall.Vector, index, func(ctx context.Context) ([]recall.Result, error) {
		emb, err := s.embedder.Embed(ctx, req.Query())
		if err != nil {
			return nil, err
		}
		if len(emb.Embedding) == 0 {
			s.logger.Debug("No query embedding, skipping vector recall", zap.String("index", index))
			return nil, nil
		}
		return s.index.SearchVector(ctx, index, emb.Embedding, req.Filters(), req.Strategy().Vector.K)
	})
}

func (s *VectorSource) sealed() {}

// HotSource recalls the most popular documents, independent of the query.
// Request filters narrow the hot list the same way they narrow keyword and vector recall.
type HotSource struct {
	index  Index
	topK   int
	logger *zap.Logger
}

// NewHotSource creates the hot recall path.
func NewHotSource(index Index, topK int, logger *zap.Logger) *HotSource {
	return &HotSource{index: index, topK: topK, logger: logger}
}

// Path returns recall.Hot.
func (s *HotSource) Path() recall.Source { return recall.Hot }

// Enabled requires only the hot flag.
func (s *HotSource) Enabled(req *request.Request) bool {
	return req.Strategy().Hot
}

// Recall lists top documents by popularity.
func (s *HotSource) Recall(ctx context.Context, index string, req *request.Request) []recall.Result {
	return softFail(ctx, s.logger, recall.Hot, index, func(ctx context.Context) ([]recall.Result, error) {
		return s.index.SearchHot(ctx, index, req.Filters(), s.topK)
	})
}

func (s *HotSource) sealed() {}
