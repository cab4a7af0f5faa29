package rerank

import (
	"sort"
	"sync"

	domrule "github.com/kailas-cloud/searchd/internal/domain/rule"
)

// RuleStore holds one sort rule per tenant. Safe for concurrent use.
type RuleStore struct {
	mu    sync.RWMutex
	rules map[string]domrule.SortRule
	def   domrule.SortRule
}

// NewRuleStore creates a store seeded with rules. Later rules for the same appKey win.
func NewRuleStore(rules ...domrule.SortRule) *RuleStore {
	s := &RuleStore{
		rules: make(map[string]domrule.SortRule, len(rules)),
		def:   domrule.Default(),
	}
	for _, r := range rules {
		s.rules[r.AppKey()] = r
	}
	return s
}

// Get returns the tenant's rule when present and enabled, the default rule when absent,
// and false when the tenant's rule is disabled.
func (s *RuleStore) Get(appKey string) (domrule.SortRule, bool) {
	s.mu.RLock()
	r, ok := s.rules[appKey]
	s.mu.RUnlock()

	if !ok {
		return s.def, true
	}
	if !r.Enabled() {
		return domrule.SortRule{}, false
	}
	return r, true
}

// Lookup returns the stored rule for appKey regardless of its enabled flag.
func (s *RuleStore) Lookup(appKey string) (domrule.SortRule, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.rules[appKey]
	return r, ok
}

// GetByID finds a stored rule by its identifier.
func (s *RuleStore) GetByID(id string) (domrule.SortRule, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.rules {
		if r.ID() == id {
			return r, true
		}
	}
	return domrule.SortRule{}, false
}

// Add upserts rule, replacing any prior rule for the same appKey.
func (s *RuleStore) Add(rule domrule.SortRule) {
	s.mu.Lock()
	s.rules[rule.AppKey()] = rule
	s.mu.Unlock()
}

// Remove deletes the tenant's rule. Reports whether a rule existed.
func (s *RuleStore) Remove(appKey string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rules[appKey]; !ok {
		return false
	}
	delete(s.rules, appKey)
	return true
}

// List returns all stored rules ordered by appKey.
func (s *RuleStore) List() []domrule.SortRule {
	s.mu.RLock()
	out := make([]domrule.SortRule, 0, len(s.rules))
	for _, r := range s.rules {
		out = append(out, r)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].AppKey() < out[j].AppKey() })
	return out
}
