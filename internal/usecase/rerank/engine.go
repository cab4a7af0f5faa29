package rerank

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/kailas-cloud/searchd/internal/domain/document"
	"github.com/kailas-cloud/searchd/internal/domain/recall"
	domrule "github.com/kailas-cloud/searchd/internal/domain/rule"
	"github.com/kailas-cloud/searchd/internal/domain/search/request"
	"github.com/kailas-cloud/searchd/internal/metrics"
)

// Rerank outcomes.
const (
	OutcomeApplied     = "applied"
	OutcomePassthrough = "passthrough"
	OutcomeDisabled    = "disabled"
)

// Engine re-scores fused candidates with the tenant's sort rule.
type Engine struct {
	docs   DocumentFetcher
	rules  RuleResolver
	logger *zap.Logger
}

// New creates a rerank engine.
func New(docs DocumentFetcher, rules RuleResolver, logger *zap.Logger) *Engine {
	return &Engine{docs: docs, rules: rules, logger: logger}
}

// Rank reranks candidates with the tenant's rule and then, when by is set, sorts them by that field.
// Candidate documents are fetched at most once across both steps.
func (e *Engine) Rank(
	ctx context.Context, index, appKey string, by *request.Sort, candidates []recall.Result,
) []recall.Result {
	docs := e.docSet(index, candidates)
	ranked := e.rerank(ctx, appKey, candidates, docs)
	if by != nil {
		ranked = e.sortByField(ctx, *by, ranked, docs)
	}
	return ranked
}

// Rerank scores candidates with the tenant's rule and stable-sorts them by final score.
// Without an active rule, or with an empty one, candidates are returned unchanged.
func (e *Engine) Rerank(ctx context.Context, index, appKey string, candidates []recall.Result) []recall.Result {
	return e.rerank(ctx, appKey, candidates, e.docSet(index, candidates))
}

func (e *Engine) rerank(ctx context.Context, appKey string, candidates []recall.Result, ds *docSet) []recall.Result {
	rule, ok := e.rules.Get(appKey)
	if !ok {
		metrics.RerankRunsTotal.WithLabelValues(OutcomeDisabled).Inc()
		return candidates
	}
	if len(rule.Factors()) == 0 || len(candidates) == 0 {
		metrics.RerankRunsTotal.WithLabelValues(OutcomePassthrough).Inc()
		return candidates
	}

	var docs map[string]document.Document
	if len(rule.Fields()) > 0 {
		docs = ds.get(ctx)
	}

	scored := make([]scoredResult, len(candidates))
	for i, c := range candidates {
		var doc *document.Document
		if d, found := docs[c.ID()]; found {
			doc = &d
		}
		scored[i] = scoredResult{result: c, score: finalScore(rule, float64(c.Score()), doc)}
	}
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].score > scored[j].score })

	out := make([]recall.Result, len(scored))
	for i, s := range scored {
		out[i] = s.result.Rescored(float32(s.score), recall.Rerank)
	}
	metrics.RerankRunsTotal.WithLabelValues(OutcomeApplied).Inc()
	return out
}

// SortByField stable-sorts candidates by a numeric document field.
// Candidates without a numeric value keep their relative order after all valued ones.
func (e *Engine) SortByField(
	ctx context.Context, index string, by request.Sort, candidates []recall.Result,
) []recall.Result {
	return e.sortByField(ctx, by, candidates, e.docSet(index, candidates))
}

func (e *Engine) sortByField(
	ctx context.Context, by request.Sort, candidates []recall.Result, ds *docSet,
) []recall.Result {
	if by.Field == "" || len(candidates) < 2 {
		return candidates
	}
	docs := ds.get(ctx)

	type keyed struct {
		result recall.Result
		value  float64
		ok     bool
	}
	items := make([]keyed, len(candidates))
	for i, c := range candidates {
		items[i] = keyed{result: c}
		if d, found := docs[c.ID()]; found {
			items[i].value, items[i].ok = d.Numeric(by.Field)
		}
	}

	desc := by.Direction != request.Asc
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.ok != b.ok {
			return a.ok
		}
		if !a.ok || a.value == b.value {
			return false
		}
		if desc {
			return a.value > b.value
		}
		return a.value < b.value
	})

	out := make([]recall.Result, len(items))
	for i, it := range items {
		out[i] = it.result
	}
	return out
}

func (e *Engine) fetch(ctx context.Context, index string, ids []string) map[string]document.Document {
	fetched := e.docs.FetchDocuments(ctx, index, ids)
	docs := make(map[string]document.Document, len(fetched))
	for _, f := range fetched {
		if f.Err != nil {
			metrics.RerankFetchFailuresTotal.Inc()
			e.logger.Warn("Rerank document fetch failed",
				zap.String("id", f.ID),
				zap.String("index", index),
				zap.Error(f.Err),
			)
			continue
		}
		if f.Found {
			docs[f.ID] = f.Doc
		}
	}
	return docs
}

// docSet loads the documents of one candidate set on first use.
type docSet struct {
	engine *Engine
	index  string
	ids    []string
	docs   map[string]document.Document
	loaded bool
}

func (e *Engine) docSet(index string, candidates []recall.Result) *docSet {
	return &docSet{engine: e, index: index, ids: recall.IDs(candidates)}
}

func (s *docSet) get(ctx context.Context) map[string]document.Document {
	if !s.loaded {
		s.docs = s.engine.fetch(ctx, s.index, s.ids)
		s.loaded = true
	}
	return s.docs
}

type scoredResult struct {
	result recall.Result
	score  float64
}

// finalScore sums factor contributions. A listed _score factor replaces the implicit base term.
// Missing or non-numeric fields contribute 0.
func finalScore(rule domrule.SortRule, base float64, doc *document.Document) float64 {
	total := 0.0
	if !rule.HasScoreFactor() {
		total = base
	}
	for _, f := range rule.Factors() {
		if f.IsScore() {
			total += base * f.Weight()
			continue
		}
		if doc == nil {
			continue
		}
		if v, ok := doc.Numeric(f.Field()); ok {
			total += f.Contribution(v)
		}
	}
	return total
}
