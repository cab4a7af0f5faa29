package searchd

import (
	"context"
	"fmt"
	"time"

	"github.com/kailas-cloud/searchd/internal/domain/search/filter"
	"github.com/kailas-cloud/searchd/internal/domain/search/request"
	searchuc "github.com/kailas-cloud/searchd/internal/usecase/search"
)

// Search runs the full pipeline for one request and returns the requested page.
// Invalid requests return an error matching ErrInvalidRequest.
func (c *Client) Search(ctx context.Context, req SearchRequest) (resp SearchResponse, err error) {
	start := time.Now()
	defer func() {
		c.obs.observe("search", start, err, "app_key", req.AppKey, "hits", len(resp.Hits), "total", resp.Total)
	}()

	params, err := toParams(req)
	if err != nil {
		return SearchResponse{}, err
	}
	res, err := c.searchSvc.ExecuteSearch(ctx, params)
	if err != nil {
		return SearchResponse{}, fmt.Errorf("search: %w", err)
	}
	return fromResponse(res), nil
}

func toParams(req SearchRequest) (request.Params, error) {
	conds := make([]filter.Condition, 0, len(req.Filters))
	for k, v := range req.Filters {
		cond, err := filter.NewMatch(k, v)
		if err != nil {
			return request.Params{}, fmt.Errorf("%w: filter %q: %w", ErrInvalidRequest, k, err)
		}
		conds = append(conds, cond)
	}
	filters, err := filter.NewExpression(conds)
	if err != nil {
		return request.Params{}, fmt.Errorf("%w: filters: %w", ErrInvalidRequest, err)
	}

	p := request.Params{
		Query:    req.Query,
		AppKey:   req.AppKey,
		Filters:  filters,
		Fusion:   request.FusionMethod(req.Fusion),
		Page:     req.Page,
		PageSize: req.PageSize,
	}
	if st := req.Strategy; st != nil {
		rs := request.Strategy{Keyword: st.Keyword, Hot: st.Hot}
		if v := st.Vector; v != nil {
			rs.Vector = &request.VectorConfig{Enabled: v.Enabled, Weight: v.Weight, K: v.K}
		}
		p.Strategy = &rs
	}
	if req.Sort != nil {
		p.Sort = &request.Sort{Field: req.Sort.Field, Direction: request.Direction(req.Sort.Order)}
	}
	return p, nil
}

func fromResponse(res *searchuc.Response) SearchResponse {
	hits := make([]SearchHit, len(res.Hits))
	for i, h := range res.Hits {
		hits[i] = SearchHit{ID: h.ID, Score: float64(h.Score), Source: string(h.Source)}
	}
	return SearchResponse{
		Hits:     hits,
		Total:    res.Total,
		Page:     res.Page,
		PageSize: res.PageSize,
		Took:     res.Took,
	}
}
