package searchd

import (
	"context"

	domrule "github.com/kailas-cloud/searchd/internal/domain/rule"
	"github.com/kailas-cloud/searchd/internal/domain/search/request"
	healthuc "github.com/kailas-cloud/searchd/internal/usecase/health"
	searchuc "github.com/kailas-cloud/searchd/internal/usecase/search"
)

// --- searchUseCase mock ---

type mockSearchUC struct {
	executeFn func(ctx context.Context, p request.Params) (*searchuc.Response, error)
}

func (m *mockSearchUC) ExecuteSearch(ctx context.Context, p request.Params) (*searchuc.Response, error) {
	return m.executeFn(ctx, p)
}

// --- ruleUseCase mock ---

type mockRuleUC struct {
	getFn    func(ctx context.Context, appKey string) (domrule.SortRule, error)
	listFn   func(ctx context.Context) []domrule.SortRule
	putFn    func(ctx context.Context, rule domrule.SortRule) error
	deleteFn func(ctx context.Context, appKey string) error
}

func (m *mockRuleUC) Get(ctx context.Context, appKey string) (domrule.SortRule, error) {
	return m.getFn(ctx, appKey)
}

func (m *mockRuleUC) List(ctx context.Context) []domrule.SortRule {
	return m.listFn(ctx)
}

func (m *mockRuleUC) Put(ctx context.Context, rule domrule.SortRule) error {
	return m.putFn(ctx, rule)
}

func (m *mockRuleUC) Delete(ctx context.Context, appKey string) error {
	return m.deleteFn(ctx, appKey)
}

// --- healthUseCase mock ---

type mockHealthUC struct {
	report healthuc.Report
}

func (m *mockHealthUC) Check(_ context.Context) healthuc.Report { return m.report }

// --- Embedder mock ---

type mockEmbedder struct {
	fn func(ctx context.Context, text string) (EmbeddingResult, error)
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) (EmbeddingResult, error) {
	return m.fn(ctx, text)
}

// --- helpers ---

func testClient(searchSvc searchUseCase, ruleSvc ruleUseCase) *Client {
	return &Client{
		searchSvc: searchSvc,
		ruleSvc:   ruleSvc,
	}
}

func healthReport() healthuc.Report {
	return healthuc.Report{
		Status: healthuc.Degraded,
		Checks: map[string]healthuc.CheckResult{
			healthuc.ComponentIndex:     healthuc.CheckOK,
			healthuc.ComponentEmbedding: healthuc.CheckError,
		},
	}
}
