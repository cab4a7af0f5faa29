package rule

import (
	"fmt"
	"math"

	"github.com/kailas-cloud/searchd/internal/domain"
)

// ScoreField is the reserved factor field meaning the candidate's incoming score.
const ScoreField = "_score"

// DefaultRuleID identifies the process-wide pass-through rule.
const DefaultRuleID = "default"

// MaxFactors bounds the factor list of a single rule.
const MaxFactors = 32

// Mode is the transform applied to a factor's field value.
type Mode string

// Factor transform modes.
const (
	Linear Mode = "linear"
	// Log applies ln(1 + max(0, v)).
	Log Mode = "log"
)

// IsValid checks if the mode is one of the supported values.
func (m Mode) IsValid() bool {
	return m == Linear || m == Log
}

// Factor is one weighted scoring term of a sort rule.
type Factor struct {
	field  string
	weight float64
	mode   Mode
	params map[string]string
}

// NewFactor validates and creates a factor. An empty mode defaults to linear.
func NewFactor(field string, weight float64, m Mode, params map[string]string) (Factor, error) {
	if field == "" {
		return Factor{}, fmt.Errorf("%w: factor field is required", domain.ErrInvalidRule)
	}
	if math.IsNaN(weight) || math.IsInf(weight, 0) {
		return Factor{}, fmt.Errorf("%w: factor %q weight must be finite", domain.ErrInvalidRule, field)
	}
	if m == "" {
		m = Linear
	}
	if !m.IsValid() {
		return Factor{}, fmt.Errorf("%w: factor %q has invalid mode %q", domain.ErrInvalidRule, field, m)
	}
	return Factor{field: field, weight: weight, mode: m, params: params}, nil
}

// Field returns the document field name (or ScoreField).
func (f Factor) Field() string { return f.field }

// Weight returns the signed factor weight.
func (f Factor) Weight() float64 { return f.weight }

// Mode returns the transform mode.
func (f Factor) Mode() Mode { return f.mode }

// Params returns free-form factor parameters.
func (f Factor) Params() map[string]string { return f.params }

// IsScore reports whether the factor refers to the incoming score.
func (f Factor) IsScore() bool { return f.field == ScoreField }

// Transform applies the factor's mode to a raw value.
func (f Factor) Transform(v float64) float64 {
	if f.mode == Log {
		return math.Log1p(max(0, v))
	}
	return v
}

// Contribution returns transform(v) * weight.
func (f Factor) Contribution(v float64) float64 {
	return f.Transform(v) * f.weight
}

// SortRule is a tenant's ordered list of scoring factors.
type SortRule struct {
	id      string
	appKey  string
	factors []Factor
	enabled bool
}

// New validates and creates a sort rule.
func New(id, appKey string, factors []Factor, enabled bool) (SortRule, error) {
	if id == "" {
		return SortRule{}, fmt.Errorf("%w: rule id is required", domain.ErrInvalidRule)
	}
	if appKey == "" {
		return SortRule{}, fmt.Errorf("%w: appKey is required", domain.ErrInvalidRule)
	}
	if len(factors) > MaxFactors {
		return SortRule{}, fmt.Errorf("%w: too many factors (max %d)", domain.ErrInvalidRule, MaxFactors)
	}
	fs := make([]Factor, len(factors))
	copy(fs, factors)
	return SortRule{id: id, appKey: appKey, factors: fs, enabled: enabled}, nil
}

// Default returns the pass-through rule: a single _score factor with weight 1.0.
func Default() SortRule {
	return SortRule{
		id:      DefaultRuleID,
		factors: []Factor{{field: ScoreField, weight: 1.0, mode: Linear}},
		enabled: true,
	}
}

// ID returns the rule identifier.
func (r SortRule) ID() string { return r.id }

// AppKey returns the owning tenant.
func (r SortRule) AppKey() string { return r.appKey }

// Factors returns the ordered factor list.
func (r SortRule) Factors() []Factor { return r.factors }

// Enabled reports whether the rule should be applied.
func (r SortRule) Enabled() bool { return r.enabled }

// HasScoreFactor reports whether any factor refers to the incoming score.
func (r SortRule) HasScoreFactor() bool {
	for _, f := range r.factors {
		if f.IsScore() {
			return true
		}
	}
	return false
}

// Fields returns the distinct document fields the rule reads, excluding ScoreField.
func (r SortRule) Fields() []string {
	seen := make(map[string]struct{}, len(r.factors))
	var out []string
	for _, f := range r.factors {
		if f.IsScore() {
			continue
		}
		if _, ok := seen[f.field]; ok {
			continue
		}
		seen[f.field] = struct{}{}
		out = append(out, f.field)
	}
	return out
}
