package recall

// Source tags which pipeline stage produced a Result.
type Source string

// Source constants.
const (
	Keyword Source = "keyword"
	Vector  Source = "vector"
	Hot     Source = "hot"
	Fusion  Source = "fusion"
	RRF     Source = "rrf"
	Rerank  Source = "rerank"
)

// Paths lists the recall paths in their fixed merge order.
var Paths = []Source{Keyword, Vector, Hot}

// IsValid checks if the source is one of the known tags.
func (s Source) IsValid() bool {
	switch s {
	case Keyword, Vector, Hot, Fusion, RRF, Rerank:
		return true
	}
	return false
}

// Result is a scored candidate document.
// Two results with the same id are the same candidate regardless of score or source.
type Result struct {
	id     string
	score  float32
	source Source
}

// New creates a recall result.
func New(id string, score float32, source Source) Result {
	return Result{id: id, score: score, source: source}
}

// ID returns the document identifier.
func (r Result) ID() string { return r.id }

// Score returns the score, comparable only within the same source before fusion.
func (r Result) Score() float32 { return r.score }

// Source returns the producing stage.
func (r Result) Source() Source { return r.source }

// SameCandidate reports whether both results refer to the same document.
func (r Result) SameCandidate(other Result) bool { return r.id == other.id }

// Rescored returns a copy with a new score and source tag.
func (r Result) Rescored(score float32, source Source) Result {
	return Result{id: r.id, score: score, source: source}
}

// GroupBySource splits a concatenated result list into one list per source, in the given order.
// Relative order within each source is preserved. Sources absent from order are dropped.
func GroupBySource(results []Result, order []Source) [][]Result {
	idx := make(map[Source]int, len(order))
	for i, s := range order {
		idx[s] = i
	}
	out := make([][]Result, len(order))
	for _, r := range results {
		if i, ok := idx[r.source]; ok {
			out[i] = append(out[i], r)
		}
	}
	return out
}

// IDs returns the ids of results in order.
func IDs(results []Result) []string {
	ids := make([]string, len(results))
	for i, r := range results {
		ids[i] = r.id
	}
	return ids
}
