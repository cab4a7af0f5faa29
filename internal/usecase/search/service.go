package search

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/searchd/internal/domain/recall"
	"github.com/kailas-cloud/searchd/internal/domain/search/request"
	"github.com/kailas-cloud/searchd/internal/logger"
	"github.com/kailas-cloud/searchd/internal/metrics"
	"github.com/kailas-cloud/searchd/internal/usecase/fusion"
)

// Default fusion weights for the query-independent recall paths.
// The vector weight comes from each request.
const (
	DefaultKeywordWeight = 0.5
	DefaultHotWeight     = 0.2
)

// Search request outcomes.
const (
	OutcomeOK      = "ok"
	OutcomeEmpty   = "empty"
	OutcomeInvalid = "invalid"
)

// Weights are the fusion weights of the keyword and hot paths.
type Weights struct {
	Keyword float64
	Hot     float64
}

// Hit is one ranked result on a page.
type Hit struct {
	ID     string
	Score  float32
	Source recall.Source
}

// Response is one page of ranked hits.
// Total counts candidates after rerank, before pagination.
type Response struct {
	Hits     []Hit
	Total    int
	Page     int
	PageSize int
	Took     time.Duration
}

// Service runs the recall, fusion, rerank and pagination pipeline.
type Service struct {
	index    IndexNamer
	recaller Recaller
	fuser    Fuser
	reranker Reranker
	weights  Weights
}

// New creates a search service.
func New(index IndexNamer, recaller Recaller, fuser Fuser, reranker Reranker, weights Weights) *Service {
	return &Service{
		index:    index,
		recaller: recaller,
		fuser:    fuser,
		reranker: reranker,
		weights:  weights,
	}
}

// ExecuteSearch validates params and returns the requested page.
// Validation failures wrap domain.ErrInvalidRequest. Backend failures never surface:
// a search whose every path failed is an empty, successful response.
func (s *Service) ExecuteSearch(ctx context.Context, p request.Params) (*Response, error) {
	start := time.Now()

	req, err := request.New(p)
	if err != nil {
		metrics.SearchRequestsTotal.WithLabelValues(OutcomeInvalid).Inc()
		return nil, fmt.Errorf("validate search request: %w", err)
	}

	index := s.index.Name(req.AppKey())
	ctx = logger.With(ctx, zap.String("index", index))
	candidates := s.recaller.Recall(ctx, index, &req)
	fused := s.fuser.Fuse(req.Fusion(), s.lists(&req, candidates))
	ranked := s.reranker.Rank(ctx, index, req.AppKey(), req.Sort(), fused)

	from, to := req.Window(len(ranked))
	hits := make([]Hit, 0, to-from)
	for _, r := range ranked[from:to] {
		hits = append(hits, Hit{ID: r.ID(), Score: r.Score(), Source: r.Source()})
	}

	outcome := OutcomeOK
	if len(ranked) == 0 {
		outcome = OutcomeEmpty
	}
	metrics.SearchRequestsTotal.WithLabelValues(outcome).Inc()

	took := time.Since(start)
	logger.FromContext(ctx).Debug("Search executed",
		zap.Int("candidates", len(candidates)),
		zap.Int("total", len(ranked)),
		zap.Int("page", req.Page()),
		zap.Duration("took", took),
	)

	return &Response{
		Hits:     hits,
		Total:    len(ranked),
		Page:     req.Page(),
		PageSize: req.PageSize(),
		Took:     took,
	}, nil
}

// lists splits candidates per recall path in keyword, vector, hot order.
func (s *Service) lists(req *request.Request, candidates []recall.Result) []fusion.List {
	groups := recall.GroupBySource(candidates, recall.Paths)
	out := make([]fusion.List, 0, len(groups))
	for i, path := range recall.Paths {
		if len(groups[i]) == 0 {
			continue
		}
		out = append(out, fusion.List{Source: path, Weight: s.weight(req, path), Results: groups[i]})
	}
	return out
}

func (s *Service) weight(req *request.Request, path recall.Source) float64 {
	switch path {
	case recall.Keyword:
		return s.weights.Keyword
	case recall.Hot:
		return s.weights.Hot
	case recall.Vector:
		if v := req.Strategy().Vector; v != nil {
			return v.FusionWeight()
		}
	}
	return 0
}
