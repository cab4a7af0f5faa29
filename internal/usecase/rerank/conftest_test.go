package rerank

import (
	"context"
	"math"
	"testing"

	"github.com/kailas-cloud/searchd/internal/domain/document"
	"github.com/kailas-cloud/searchd/internal/domain/recall"
	domrule "github.com/kailas-cloud/searchd/internal/domain/rule"
)

// mockFetcher serves documents from an in-memory map.
type mockFetcher struct {
	docs   map[string]map[string]string
	errs   map[string]error
	calls  int
	gotIDs []string
}

func (m *mockFetcher) FetchDocuments(_ context.Context, _ string, ids []string) []document.Fetched {
	m.calls++
	m.gotIDs = ids
	out := make([]document.Fetched, len(ids))
	for i, id := range ids {
		out[i] = document.Fetched{ID: id}
		if err, ok := m.errs[id]; ok {
			out[i].Err = err
			continue
		}
		if fields, ok := m.docs[id]; ok {
			out[i].Doc = document.Reconstruct(id, fields)
			out[i].Found = true
		}
	}
	return out
}

func mustFactor(t *testing.T, field string, weight float64, mode domrule.Mode) domrule.Factor {
	t.Helper()
	f, err := domrule.NewFactor(field, weight, mode, nil)
	if err != nil {
		t.Fatalf("NewFactor: %v", err)
	}
	return f
}

func mustRule(t *testing.T, id, appKey string, enabled bool, factors ...domrule.Factor) domrule.SortRule {
	t.Helper()
	r, err := domrule.New(id, appKey, factors, enabled)
	if err != nil {
		t.Fatalf("rule.New: %v", err)
	}
	return r
}

func candidates(pairs ...any) []recall.Result {
	out := make([]recall.Result, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, recall.New(pairs[i].(string), float32(pairs[i+1].(float64)), recall.Fusion))
	}
	return out
}

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-3
}
