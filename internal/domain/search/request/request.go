package request

import (
	"fmt"

	"github.com/kailas-cloud/searchd/internal/domain"
	"github.com/kailas-cloud/searchd/internal/domain/search/filter"
)

// Search parameter limits.
const (
	// MaxQueryLength is the maximum allowed search query length.
	MaxQueryLength      = 4096
	DefaultPageSize     = 20
	MaxPageSize         = 100
	DefaultVectorWeight = 0.3
	DefaultVectorK      = 100
	MaxVectorK          = 1000
)

// FusionMethod selects how recall lists are merged.
type FusionMethod string

// Fusion methods.
const (
	Weighted FusionMethod = "weighted"
	RRF      FusionMethod = "rrf"
)

// IsValid checks if the method is one of the supported values.
func (m FusionMethod) IsValid() bool {
	return m == Weighted || m == RRF
}

// Direction is a sort direction.
type Direction string

// Sort directions.
const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// Sort orders final results by a document field.
type Sort struct {
	Field     string
	Direction Direction
}

// VectorConfig configures the vector recall path.
// A nil Weight means DefaultVectorWeight; an explicit zero keeps vector
// candidates but removes their contribution to weighted fusion.
type VectorConfig struct {
	Enabled bool
	Weight  *float64
	K       int
}

// FusionWeight returns the vector list weight for weighted fusion.
func (vc VectorConfig) FusionWeight() float64 {
	if vc.Weight == nil {
		return DefaultVectorWeight
	}
	return *vc.Weight
}

// Strategy selects which recall paths run for a request.
type Strategy struct {
	Keyword bool
	Hot     bool
	Vector  *VectorConfig
}

// DefaultStrategy enables keyword and hot recall; vector recall is opt-in.
func DefaultStrategy() Strategy {
	return Strategy{Keyword: true, Hot: true}
}

// VectorEnabled reports whether the vector path is configured and on.
func (s Strategy) VectorEnabled() bool {
	return s.Vector != nil && s.Vector.Enabled
}

// Params are the raw, unvalidated inputs of a search request.
type Params struct {
	Query    string
	AppKey   string
	Strategy *Strategy
	Filters  filter.Expression
	Sort     *Sort
	Fusion   FusionMethod
	Page     int
	PageSize int
}

// Request is a validated search request.
type Request struct {
	query    string
	appKey   string
	strategy Strategy
	filters  filter.Expression
	sort     *Sort
	fusion   FusionMethod
	page     int
	pageSize int
}

// New validates and normalizes search parameters.
// Defaults: strategy keyword+hot, fusion=weighted, page=1, pageSize=20 (clamped to 100).
func New(p Params) (Request, error) {
	if p.Query == "" && p.Filters.IsEmpty() {
		return Request{}, fmt.Errorf("%w: query or filters required", domain.ErrInvalidRequest)
	}
	if len(p.Query) > MaxQueryLength {
		return Request{}, fmt.Errorf("%w: query too long (max %d chars)", domain.ErrInvalidRequest, MaxQueryLength)
	}

	fusion := p.Fusion
	if fusion == "" {
		fusion = Weighted
	}
	if !fusion.IsValid() {
		return Request{}, fmt.Errorf("%w: invalid fusion method %q", domain.ErrInvalidRequest, fusion)
	}

	strategy := DefaultStrategy()
	if p.Strategy != nil {
		strategy = *p.Strategy
		if strategy.Vector != nil {
			vc, err := normalizeVector(*strategy.Vector)
			if err != nil {
				return Request{}, err
			}
			strategy.Vector = &vc
		}
	}

	var sort *Sort
	if p.Sort != nil && p.Sort.Field != "" {
		s := *p.Sort
		if s.Direction == "" {
			s.Direction = Desc
		}
		if s.Direction != Asc && s.Direction != Desc {
			return Request{}, fmt.Errorf("%w: invalid sort direction %q", domain.ErrInvalidRequest, s.Direction)
		}
		sort = &s
	}

	page := p.Page
	if page < 1 {
		page = 1
	}
	pageSize := p.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}

	return Request{
		query:    p.Query,
		appKey:   p.AppKey,
		strategy: strategy,
		filters:  p.Filters,
		sort:     sort,
		fusion:   fusion,
		page:     page,
		pageSize: pageSize,
	}, nil
}

func normalizeVector(vc VectorConfig) (VectorConfig, error) {
	if vc.Weight != nil && *vc.Weight < 0 {
		return VectorConfig{}, fmt.Errorf("%w: vector weight must be non-negative", domain.ErrInvalidRequest)
	}
	w := vc.FusionWeight()
	vc.Weight = &w
	if vc.K <= 0 {
		vc.K = DefaultVectorK
	}
	if vc.K > MaxVectorK {
		vc.K = MaxVectorK
	}
	return vc, nil
}

// Query returns the free-text query (may be empty).
func (r *Request) Query() string { return r.query }

// HasQuery reports whether free text was provided.
func (r *Request) HasQuery() bool { return r.query != "" }

// AppKey returns the tenant identifier.
func (r *Request) AppKey() string { return r.appKey }

// Strategy returns the recall path selection.
func (r *Request) Strategy() Strategy { return r.strategy }

// Filters returns the equality filter expression.
func (r *Request) Filters() filter.Expression { return r.filters }

// Sort returns the explicit sort, or nil for relevance order.
func (r *Request) Sort() *Sort { return r.sort }

// Fusion returns the fusion method.
func (r *Request) Fusion() FusionMethod { return r.fusion }

// Page returns the 1-based page number.
func (r *Request) Page() int { return r.page }

// PageSize returns the number of hits per page.
func (r *Request) PageSize() int { return r.pageSize }

// Offset returns the number of ranked candidates skipped before this page.
func (r *Request) Offset() int { return (r.page - 1) * r.pageSize }

// Window returns the [start, end) slice bounds of this page over total candidates.
func (r *Request) Window(total int) (start, end int) {
	start = min(r.Offset(), total)
	end = min(start+r.pageSize, total)
	return start, end
}
