package search

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/searchd/internal/domain/document"
	"github.com/kailas-cloud/searchd/internal/domain/recall"
	domrule "github.com/kailas-cloud/searchd/internal/domain/rule"
	"github.com/kailas-cloud/searchd/internal/domain/search/request"
	"github.com/kailas-cloud/searchd/internal/usecase/fusion"
	"github.com/kailas-cloud/searchd/internal/usecase/rerank"
)

type prefixNamer struct{}

func (prefixNamer) Name(appKey string) string { return "test_" + appKey }

type mockRecaller struct {
	results  []recall.Result
	called   bool
	gotIndex string
}

func (m *mockRecaller) Recall(_ context.Context, index string, _ *request.Request) []recall.Result {
	m.called = true
	m.gotIndex = index
	return m.results
}

type mockFetcher struct {
	docs map[string]map[string]string
}

func (m *mockFetcher) FetchDocuments(_ context.Context, _ string, ids []string) []document.Fetched {
	out := make([]document.Fetched, len(ids))
	for i, id := range ids {
		out[i] = document.Fetched{ID: id}
		if fields, ok := m.docs[id]; ok {
			out[i].Doc = document.Reconstruct(id, fields)
			out[i].Found = true
		}
	}
	return out
}

// newTestService wires the real fusion and rerank engines around a canned recaller.
func newTestService(rec *mockRecaller, docs map[string]map[string]string, rules ...domrule.SortRule) *Service {
	reranker := rerank.New(&mockFetcher{docs: docs}, rerank.NewRuleStore(rules...), zap.NewNop())
	return New(prefixNamer{}, rec, fusion.New(fusion.Config{}), reranker, Weights{
		Keyword: DefaultKeywordWeight,
		Hot:     DefaultHotWeight,
	})
}

// keywordResults returns n keyword hits with strictly decreasing scores.
func keywordResults(n int) []recall.Result {
	out := make([]recall.Result, n)
	for i := range out {
		out[i] = recall.New(fmt.Sprintf("d%02d", i+1), float32(n-i), recall.Keyword)
	}
	return out
}
