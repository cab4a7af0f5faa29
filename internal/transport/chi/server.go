package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/searchd/internal/domain"
	domrule "github.com/kailas-cloud/searchd/internal/domain/rule"
	"github.com/kailas-cloud/searchd/internal/domain/search/request"
	"github.com/kailas-cloud/searchd/internal/logger"
	healthuc "github.com/kailas-cloud/searchd/internal/usecase/health"
	searchuc "github.com/kailas-cloud/searchd/internal/usecase/search"
)

const maxBodyBytes = 1 << 20

// Searcher executes search requests.
type Searcher interface {
	ExecuteSearch(ctx context.Context, p request.Params) (*searchuc.Response, error)
}

// RuleAdmin manages tenant sort rules.
type RuleAdmin interface {
	Get(ctx context.Context, appKey string) (domrule.SortRule, error)
	List(ctx context.Context) []domrule.SortRule
	Put(ctx context.Context, rule domrule.SortRule) error
	Delete(ctx context.Context, appKey string) error
}

// HealthReporter aggregates dependency checks.
type HealthReporter interface {
	Check(ctx context.Context) healthuc.Report
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server implements ServerInterface.
type Server struct {
	search        Searcher
	rules         RuleAdmin
	health        HealthReporter
	logger        *zap.Logger
	errorHandlers []errorHandler
}

var _ ServerInterface = (*Server)(nil)

// NewServer creates an HTTP API server.
func NewServer(search Searcher, rules RuleAdmin, health HealthReporter, logger *zap.Logger) *Server {
	s := &Server{
		search: search,
		rules:  rules,
		health: health,
		logger: logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrInvalidRequest, http.StatusBadRequest, ErrorResponseCodeValidationFailed),
		sentinelHandler(domain.ErrInvalidRule, http.StatusBadRequest, ErrorResponseCodeValidationFailed),
		sentinelHandler(domain.ErrRuleNotFound, http.StatusNotFound, ErrorResponseCodeRuleNotFound),
	}
	return s
}

// Search handles POST /api/v1/search.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	params, err := searchParamsFromDTO(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeValidationFailed, err.Error())
		return
	}

	resp, err := s.search.ExecuteSearch(r.Context(), params)
	if err != nil {
		s.handleDomainError(r.Context(), w, err)
		return
	}

	writeJSON(w, http.StatusOK, searchResponseToDTO(resp))
}

// ListRules handles GET /api/v1/rules.
func (s *Server) ListRules(w http.ResponseWriter, r *http.Request) {
	rules := s.rules.List(r.Context())
	items := make([]SortRule, len(rules))
	for i, rule := range rules {
		items[i] = ruleToDTO(rule)
	}
	writeJSON(w, http.StatusOK, RuleListResponse{Items: items})
}

// GetRule handles GET /api/v1/rules/{appKey}.
func (s *Server) GetRule(w http.ResponseWriter, r *http.Request, appKey AppKey) {
	rule, err := s.rules.Get(r.Context(), appKey)
	if err != nil {
		s.handleDomainError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, ruleToDTO(rule))
}

// PutRule handles PUT /api/v1/rules/{appKey}.
func (s *Server) PutRule(w http.ResponseWriter, r *http.Request, appKey AppKey) {
	var dto SortRule
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&dto); err != nil {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	rule, err := ruleFromDTO(appKey, dto)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeValidationFailed, err.Error())
		return
	}

	if err := s.rules.Put(r.Context(), rule); err != nil {
		s.handleDomainError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, ruleToDTO(rule))
}

// DeleteRule handles DELETE /api/v1/rules/{appKey}.
func (s *Server) DeleteRule(w http.ResponseWriter, r *http.Request, appKey AppKey) {
	if err := s.rules.Delete(r.Context(), appKey); err != nil {
		s.handleDomainError(r.Context(), w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HealthCheck handles GET /health. Only a failing index makes the service unavailable;
// a failing embedding provider degrades vector recall.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request, params HealthCheckParams) {
	report := s.health.Check(r.Context())

	resp := HealthResponse{Status: string(report.Status)}
	if boolOr(params.Verbose, true) {
		resp.Checks = make(map[string]string, len(report.Checks))
		for k, v := range report.Checks {
			resp.Checks[k] = string(v)
		}
	}

	status := http.StatusOK
	if report.Checks[healthuc.ComponentIndex] == healthuc.CheckError {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, resp)
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// ParamErrorHandler reports parameter binding failures as JSON.
func ParamErrorHandler(w http.ResponseWriter, _ *http.Request, err error) {
	writeError(w, http.StatusBadRequest, ErrorResponseCodeBadRequest, err.Error())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorResponseCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a client-safe message without exposing internals.
// Validation errors carry their detail; everything else collapses to its sentinel.
func safeDomainMessage(err error) string {
	if errors.Is(err, domain.ErrInvalidRequest) || errors.Is(err, domain.ErrInvalidRule) {
		return err.Error()
	}
	if errors.Is(err, domain.ErrRuleNotFound) {
		return domain.ErrRuleNotFound.Error()
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorResponseCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(ctx context.Context, w http.ResponseWriter, err error) {
	log := logger.FromContext(ctx)
	log.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, ErrorResponseCodeInternalError, "internal error")
}
