package searchd

import "time"

// FusionMethod selects how recall lists are merged.
type FusionMethod string

// Fusion method constants.
const (
	FusionWeighted FusionMethod = "weighted"
	FusionRRF      FusionMethod = "rrf"
)

// SortOrder is the direction of an explicit field sort.
type SortOrder string

// Sort order constants.
const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// FactorMode is the transform applied to a factor's field value.
type FactorMode string

// Factor mode constants.
const (
	ModeLinear FactorMode = "linear"
	ModeLog    FactorMode = "log"
)

// Strategy selects the recall paths of a request.
// A nil Strategy on SearchRequest means keyword + hot.
type Strategy struct {
	Keyword bool
	Hot     bool
	Vector  *VectorStrategy
}

// VectorStrategy configures the vector recall path.
// A nil Weight falls back to 0.3 and a zero K to 100.
// Weight(0) keeps vector candidates without letting them score in weighted fusion.
type VectorStrategy struct {
	Enabled bool
	Weight  *float64
	K       int
}

// Weight returns a pointer to w for VectorStrategy.Weight.
func Weight(w float64) *float64 { return &w }

// SortBy orders the final hits by a numeric document field.
type SortBy struct {
	Field string
	Order SortOrder
}

// SearchRequest is a single search call.
type SearchRequest struct {
	Query    string
	AppKey   string
	Strategy *Strategy
	Filters  map[string]string
	Sort     *SortBy
	Fusion   FusionMethod
	Page     int
	PageSize int
}

// SearchHit is a single ranked document.
type SearchHit struct {
	ID     string
	Score  float64
	Source string // keyword, vector, hot or rerank
}

// SearchResponse is one page of ranked hits.
type SearchResponse struct {
	Hits     []SearchHit
	Total    int
	Page     int
	PageSize int
	Took     time.Duration
}

// Factor is one weighted scoring term of a sort rule.
// Field "_score" refers to the candidate's incoming score.
type Factor struct {
	Field  string
	Weight float64
	Mode   FactorMode
	Params map[string]string
}

// SortRule is a tenant's rerank configuration.
type SortRule struct {
	ID       string // defaults to "<appKey>-custom" on Put
	AppKey   string
	Disabled bool
	Factors  []Factor
}
