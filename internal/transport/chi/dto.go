package chi

import (
	"fmt"

	domrule "github.com/kailas-cloud/searchd/internal/domain/rule"
	"github.com/kailas-cloud/searchd/internal/domain/search/filter"
	"github.com/kailas-cloud/searchd/internal/domain/search/request"
	searchuc "github.com/kailas-cloud/searchd/internal/usecase/search"
)

// ErrorResponseCode is a machine-readable error code.
type ErrorResponseCode string

// Error codes.
const (
	ErrorResponseCodeBadRequest       ErrorResponseCode = "bad_request"
	ErrorResponseCodeValidationFailed ErrorResponseCode = "validation_failed"
	ErrorResponseCodeRuleNotFound     ErrorResponseCode = "rule_not_found"
	ErrorResponseCodeInternalError    ErrorResponseCode = "internal_error"
)

// ErrorResponse is the JSON error envelope.
type ErrorResponse struct {
	Code    ErrorResponseCode `json:"code"`
	Message string            `json:"message"`
}

// SearchRequest is the body of POST /api/v1/search.
type SearchRequest struct {
	Query    string          `json:"query"`
	AppKey   string          `json:"appKey"`
	Strategy *RecallStrategy `json:"recallStrategy,omitempty"`
	Filters  map[string]any  `json:"filters,omitempty"`
	Sort     *SortSpec       `json:"sort,omitempty"`
	Fusion   string          `json:"fusion,omitempty"`
	Page     int             `json:"page,omitempty"`
	PageSize int             `json:"pageSize,omitempty"`
}

// RecallStrategy selects recall paths. Omitted flags default to true.
type RecallStrategy struct {
	Keyword *bool         `json:"keyword,omitempty"`
	Hot     *bool         `json:"hot,omitempty"`
	Vector  *VectorRecall `json:"vector,omitempty"`
}

// VectorRecall configures the vector path. An omitted weight defaults to 0.3; an explicit 0 is kept.
type VectorRecall struct {
	Enabled bool     `json:"enabled"`
	Weight  *float64 `json:"weight,omitempty"`
	K       int      `json:"k,omitempty"`
}

// SortSpec orders results by a document field.
type SortSpec struct {
	Field string `json:"field"`
	Order string `json:"order,omitempty"`
}

// SearchResponse is one page of hits.
type SearchResponse struct {
	Hits     []SearchHit `json:"hits"`
	Total    int         `json:"total"`
	Page     int         `json:"page"`
	PageSize int         `json:"pageSize"`
	Took     int64       `json:"took"`
}

// SearchHit is a ranked document id.
type SearchHit struct {
	ID     string  `json:"id"`
	Score  float32 `json:"score"`
	Source string  `json:"source"`
}

// SortRule is the JSON form of a tenant sort rule.
type SortRule struct {
	RuleID  string   `json:"ruleId"`
	AppKey  string   `json:"appKey"`
	Enabled *bool    `json:"enabled,omitempty"`
	Factors []Factor `json:"factors"`
}

// Factor is one weighted scoring term.
type Factor struct {
	Field  string            `json:"field"`
	Weight float64           `json:"weight"`
	Mode   string            `json:"mode,omitempty"`
	Params map[string]string `json:"params,omitempty"`
}

// RuleListResponse lists stored rules.
type RuleListResponse struct {
	Items []SortRule `json:"items"`
}

// HealthResponse reports dependency health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

func boolOr(p *bool, def bool) bool {
	if p == nil {
		return def
	}
	return *p
}

func searchParamsFromDTO(req SearchRequest) (request.Params, error) {
	filters, err := filter.FromMap(req.Filters)
	if err != nil {
		return request.Params{}, fmt.Errorf("filters: %w", err)
	}

	p := request.Params{
		Query:    req.Query,
		AppKey:   req.AppKey,
		Filters:  filters,
		Fusion:   request.FusionMethod(req.Fusion),
		Page:     req.Page,
		PageSize: req.PageSize,
	}
	if req.Strategy != nil {
		st := request.Strategy{
			Keyword: boolOr(req.Strategy.Keyword, true),
			Hot:     boolOr(req.Strategy.Hot, true),
		}
		if v := req.Strategy.Vector; v != nil {
			st.Vector = &request.VectorConfig{Enabled: v.Enabled, Weight: v.Weight, K: v.K}
		}
		p.Strategy = &st
	}
	if req.Sort != nil {
		p.Sort = &request.Sort{Field: req.Sort.Field, Direction: request.Direction(req.Sort.Order)}
	}
	return p, nil
}

func searchResponseToDTO(resp *searchuc.Response) SearchResponse {
	hits := make([]SearchHit, len(resp.Hits))
	for i, h := range resp.Hits {
		hits[i] = SearchHit{ID: h.ID, Score: h.Score, Source: string(h.Source)}
	}
	return SearchResponse{
		Hits:     hits,
		Total:    resp.Total,
		Page:     resp.Page,
		PageSize: resp.PageSize,
		Took:     resp.Took.Milliseconds(),
	}
}

func ruleFromDTO(appKey string, dto SortRule) (domrule.SortRule, error) {
	if dto.AppKey != "" && dto.AppKey != appKey {
		return domrule.SortRule{}, fmt.Errorf("body appKey %q does not match path %q", dto.AppKey, appKey)
	}
	factors := make([]domrule.Factor, 0, len(dto.Factors))
	for _, f := range dto.Factors {
		factor, err := domrule.NewFactor(f.Field, f.Weight, domrule.Mode(f.Mode), f.Params)
		if err != nil {
			return domrule.SortRule{}, err
		}
		factors = append(factors, factor)
	}
	return domrule.New(dto.RuleID, appKey, factors, boolOr(dto.Enabled, true))
}

func ruleToDTO(r domrule.SortRule) SortRule {
	enabled := r.Enabled()
	factors := make([]Factor, len(r.Factors()))
	for i, f := range r.Factors() {
		factors[i] = Factor{Field: f.Field(), Weight: f.Weight(), Mode: string(f.Mode()), Params: f.Params()}
	}
	return SortRule{RuleID: r.ID(), AppKey: r.AppKey(), Enabled: &enabled, Factors: factors}
}
