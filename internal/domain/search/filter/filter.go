package filter

import (
	"fmt"
	"sort"
)

// MaxConditions is the maximum number of equality conditions per expression.
const MaxConditions = 32

// Expression is a conjunction of field equality conditions.
// Conditions are kept sorted by key so query strings are deterministic.
type Expression struct {
	must []Condition
}

// NewExpression validates and creates a filter Expression.
func NewExpression(must []Condition) (Expression, error) {
	if len(must) > MaxConditions {
		return Expression{}, fmt.Errorf("too many filter conditions (max %d)", MaxConditions)
	}
	sorted := make([]Condition, len(must))
	copy(sorted, must)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].key < sorted[j].key })
	return Expression{must: sorted}, nil
}

// FromMap builds an Expression from a field->value equality map.
// Values are rendered with fmt.Sprint, so numbers and booleans match their tag form.
func FromMap(m map[string]any) (Expression, error) {
	conds := make([]Condition, 0, len(m))
	for k, v := range m {
		c, err := NewMatch(k, fmt.Sprint(v))
		if err != nil {
			return Expression{}, err
		}
		conds = append(conds, c)
	}
	return NewExpression(conds)
}

// Must returns the required conditions.
func (e Expression) Must() []Condition { return e.must }

// IsEmpty reports whether the expression has no conditions.
func (e Expression) IsEmpty() bool { return len(e.must) == 0 }

// Lookup returns the match value for key.
func (e Expression) Lookup(key string) (string, bool) {
	for _, c := range e.must {
		if c.key == key {
			return c.match, true
		}
	}
	return "", false
}

// Condition is a single field equality clause.
type Condition struct {
	key   string
	match string
}

// NewMatch creates an exact match condition.
func NewMatch(key, match string) (Condition, error) {
	if key == "" {
		return Condition{}, fmt.Errorf("filter key is required")
	}
	if match == "" {
		return Condition{}, fmt.Errorf("match value is required for key %q", key)
	}
	return Condition{key: key, match: match}, nil
}

// Key returns the field name.
func (c Condition) Key() string { return c.key }

// Match returns the exact match value.
func (c Condition) Match() string { return c.match }
