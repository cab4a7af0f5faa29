package fusion

import (
	"sort"

	"github.com/kailas-cloud/searchd/internal/domain/recall"
	"github.com/kailas-cloud/searchd/internal/domain/search/request"
	"github.com/kailas-cloud/searchd/internal/metrics"
)

// Defaults for fusion tuning.
const (
	DefaultTopK = 100
	DefaultRRFK = 60
)

// List is one recall source's ranked results and its fusion weight.
// Weight is ignored by RRF.
type List struct {
	Source  recall.Source
	Weight  float64
	Results []recall.Result
}

// Config tunes the fusion engine.
// TopK truncates weighted output; RRFTopK truncates RRF output (0 = keep all).
type Config struct {
	TopK    int
	RRFK    int
	RRFTopK int
}

// Engine merges per-source recall lists into one ranked list.
type Engine struct {
	cfg Config
}

// New creates a fusion engine, filling zero config values with defaults.
func New(cfg Config) *Engine {
	if cfg.TopK <= 0 {
		cfg.TopK = DefaultTopK
	}
	if cfg.RRFK <= 0 {
		cfg.RRFK = DefaultRRFK
	}
	return &Engine{cfg: cfg}
}

// Fuse merges lists with the given method. Lists are processed in slice order,
// which also fixes the tie-break between equal scores.
func (e *Engine) Fuse(method request.FusionMethod, lists []List) []recall.Result {
	metrics.FusionRunsTotal.WithLabelValues(string(method)).Inc()
	if method == request.RRF {
		return RRF(lists, e.cfg.RRFK, e.cfg.RRFTopK)
	}
	return Weighted(lists, e.cfg.TopK)
}

// accumulator sums per-id contributions, remembering first-appearance order.
type accumulator struct {
	order  []string
	scores map[string]float64
}

func newAccumulator(capacity int) *accumulator {
	return &accumulator{
		order:  make([]string, 0, capacity),
		scores: make(map[string]float64, capacity),
	}
}

func (a *accumulator) add(id string, v float64) {
	if _, ok := a.scores[id]; !ok {
		a.order = append(a.order, id)
	}
	a.scores[id] += v
}

// results sorts by score descending (stable over first appearance) and truncates to topK (<= 0 keeps all).
func (a *accumulator) results(source recall.Source, topK int) []recall.Result {
	ids := a.order
	sort.SliceStable(ids, func(i, j int) bool {
		return a.scores[ids[i]] > a.scores[ids[j]]
	})
	if topK > 0 && len(ids) > topK {
		ids = ids[:topK]
	}
	out := make([]recall.Result, len(ids))
	for i, id := range ids {
		out[i] = recall.New(id, float32(a.scores[id]), source)
	}
	return out
}

func totalLen(lists []List) int {
	n := 0
	for _, l := range lists {
		n += len(l.Results)
	}
	return n
}

// firstOccurrences yields each id of a list once, at its best (first) rank.
func firstOccurrences(results []recall.Result, fn func(rank int, r recall.Result)) {
	seen := make(map[string]struct{}, len(results))
	for rank, r := range results {
		if _, ok := seen[r.ID()]; ok {
			continue
		}
		seen[r.ID()] = struct{}{}
		fn(rank, r)
	}
}
