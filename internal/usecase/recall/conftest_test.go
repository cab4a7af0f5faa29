package recall

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/searchd/internal/domain"
	"github.com/kailas-cloud/searchd/internal/domain/recall"
	"github.com/kailas-cloud/searchd/internal/domain/search/filter"
	"github.com/kailas-cloud/searchd/internal/domain/search/request"
)

// mockIndex implements Index for tests.
type mockIndex struct {
	keywordFn func(ctx context.Context, index, query string, filters filter.Expression, topK int) ([]recall.Result, error)
	vectorFn  func(ctx context.Context, index string, vector []float32, filters filter.Expression, k int) ([]recall.Result, error)
	hotFn     func(ctx context.Context, index string, filters filter.Expression, topK int) ([]recall.Result, error)
}

func (m *mockIndex) SearchKeyword(
	ctx context.Context, index, query string, filters filter.Expression, topK int,
) ([]recall.Result, error) {
	if m.keywordFn != nil {
		return m.keywordFn(ctx, index, query, filters, topK)
	}
	return nil, nil
}

func (m *mockIndex) SearchVector(
	ctx context.Context, index string, vector []float32, filters filter.Expression, k int,
) ([]recall.Result, error) {
	if m.vectorFn != nil {
		return m.vectorFn(ctx, index, vector, filters, k)
	}
	return nil, nil
}

func (m *mockIndex) SearchHot(
	ctx context.Context, index string, filters filter.Expression, topK int,
) ([]recall.Result, error) {
	if m.hotFn != nil {
		return m.hotFn(ctx, index, filters, topK)
	}
	return nil, nil
}

type mockEmbedder struct {
	vec    []float32
	err    error
	called bool
}

func (m *mockEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	m.called = true
	if m.err != nil {
		return domain.EmbeddingResult{}, m.err
	}
	return domain.EmbeddingResult{Embedding: m.vec}, nil
}

func newRequest(t *testing.T, p request.Params) *request.Request {
	t.Helper()
	req, err := request.New(p)
	if err != nil {
		t.Fatalf("request.New: %v", err)
	}
	return &req
}

func categoryFilter(t *testing.T) filter.Expression {
	t.Helper()
	expr, err := filter.FromMap(map[string]any{"category": "books"})
	if err != nil {
		t.Fatalf("filter.FromMap: %v", err)
	}
	return expr
}

func newTestEngine(t *testing.T, cfg Config, sources ...Source) *Engine {
	t.Helper()
	e, err := NewEngine(cfg, zap.NewNop(), sources...)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	t.Cleanup(e.Release)
	return e
}

func ids(results []recall.Result) []string {
	return recall.IDs(results)
}
