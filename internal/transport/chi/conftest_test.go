package chi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	domrule "github.com/kailas-cloud/searchd/internal/domain/rule"
	"github.com/kailas-cloud/searchd/internal/domain/search/request"
	healthuc "github.com/kailas-cloud/searchd/internal/usecase/health"
	searchuc "github.com/kailas-cloud/searchd/internal/usecase/search"
)

type mockSearcher struct {
	fn  func(ctx context.Context, p request.Params) (*searchuc.Response, error)
	got request.Params
}

func (m *mockSearcher) ExecuteSearch(ctx context.Context, p request.Params) (*searchuc.Response, error) {
	m.got = p
	if m.fn != nil {
		return m.fn(ctx, p)
	}
	return &searchuc.Response{Page: 1, PageSize: 20}, nil
}

type mockRules struct {
	getFn    func(ctx context.Context, appKey string) (domrule.SortRule, error)
	putFn    func(ctx context.Context, rule domrule.SortRule) error
	deleteFn func(ctx context.Context, appKey string) error
	rules    []domrule.SortRule
}

func (m *mockRules) Get(ctx context.Context, appKey string) (domrule.SortRule, error) {
	return m.getFn(ctx, appKey)
}

func (m *mockRules) List(_ context.Context) []domrule.SortRule { return m.rules }

func (m *mockRules) Put(ctx context.Context, rule domrule.SortRule) error {
	if m.putFn != nil {
		return m.putFn(ctx, rule)
	}
	return nil
}

func (m *mockRules) Delete(ctx context.Context, appKey string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, appKey)
	}
	return nil
}

type mockHealth struct {
	report healthuc.Report
}

func (m *mockHealth) Check(_ context.Context) healthuc.Report { return m.report }

func newTestRouter(s *mockSearcher, rules *mockRules, health *mockHealth) http.Handler {
	if s == nil {
		s = &mockSearcher{}
	}
	if rules == nil {
		rules = &mockRules{}
	}
	if health == nil {
		health = &mockHealth{report: healthuc.Report{Status: healthuc.Healthy}}
	}
	server := NewServer(s, rules, health, zap.NewNop())
	r := chi.NewRouter()
	r.Use(JSONRecoverer(zap.NewNop()))
	return HandlerWithOptions(server, ChiServerOptions{BaseRouter: r, ErrorHandlerFunc: ParamErrorHandler})
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rr.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v (body %q)", err, rr.Body.String())
	}
	return v
}
