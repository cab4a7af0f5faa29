package index

import (
	"context"
	"testing"

	"github.com/kailas-cloud/searchd/internal/db"
	"github.com/kailas-cloud/searchd/internal/domain/search/filter"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	searchTextFn   func(ctx context.Context, q *db.TextQuery) (*db.SearchResult, error)
	searchKNNFn    func(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
	searchSortedFn func(ctx context.Context, q *db.SortQuery) (*db.SearchResult, error)
	hGetAllEachFn  func(ctx context.Context, keys []string) []db.HashResult
}

func (m *mockStore) SearchText(ctx context.Context, q *db.TextQuery) (*db.SearchResult, error) {
	if m.searchTextFn != nil {
		return m.searchTextFn(ctx, q)
	}
	return &db.SearchResult{}, nil
}

func (m *mockStore) SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error) {
	if m.searchKNNFn != nil {
		return m.searchKNNFn(ctx, q)
	}
	return &db.SearchResult{}, nil
}

func (m *mockStore) SearchSorted(ctx context.Context, q *db.SortQuery) (*db.SearchResult, error) {
	if m.searchSortedFn != nil {
		return m.searchSortedFn(ctx, q)
	}
	return &db.SearchResult{}, nil
}

func (m *mockStore) HGetAllEach(ctx context.Context, keys []string) []db.HashResult {
	if m.hGetAllEachFn != nil {
		return m.hGetAllEachFn(ctx, keys)
	}
	return make([]db.HashResult, len(keys))
}

func testConfig() Config {
	return Config{
		Prefix:        "search",
		KeywordFields: []db.TextField{{Name: "title", Weight: 2}, {Name: "content", Weight: 1}},
		VectorField:   "embedding",
		HotField:      "sales",
	}
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	return New(ms, testConfig()), ms
}

func mustFilters(t *testing.T, m map[string]any) filter.Expression {
	t.Helper()
	e, err := filter.FromMap(m)
	if err != nil {
		t.Fatalf("FromMap: %v", err)
	}
	return e
}
