package rule

import (
	"context"
	"testing"

	domrule "github.com/kailas-cloud/searchd/internal/domain/rule"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	hsetFn    func(ctx context.Context, key string, fields map[string]string) error
	hgetAllFn func(ctx context.Context, key string) (map[string]string, error)
	hdelFn    func(ctx context.Context, key string, fields ...string) error
}

func (m *mockStore) HSet(ctx context.Context, key string, fields map[string]string) error {
	if m.hsetFn != nil {
		return m.hsetFn(ctx, key, fields)
	}
	return nil
}

func (m *mockStore) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	if m.hgetAllFn != nil {
		return m.hgetAllFn(ctx, key)
	}
	return map[string]string{}, nil
}

func (m *mockStore) HDel(ctx context.Context, key string, fields ...string) error {
	if m.hdelFn != nil {
		return m.hdelFn(ctx, key, fields...)
	}
	return nil
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	return New(ms, "searchd:"), ms
}

func mustRule(t *testing.T, id, appKey string) domrule.SortRule {
	t.Helper()
	sales, err := domrule.NewFactor("sales", 0.4, domrule.Log, map[string]string{"source": "orders"})
	if err != nil {
		t.Fatalf("NewFactor: %v", err)
	}
	score, err := domrule.NewFactor(domrule.ScoreField, 1, domrule.Linear, nil)
	if err != nil {
		t.Fatalf("NewFactor: %v", err)
	}
	r, err := domrule.New(id, appKey, []domrule.Factor{sales, score}, true)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return r
}
