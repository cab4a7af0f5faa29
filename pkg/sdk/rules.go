package searchd

import (
	"context"
	"time"

	domrule "github.com/kailas-cloud/searchd/internal/domain/rule"
)

// RuleService manages tenant sort rules. Changes are persisted in Redis
// and visible to the next search.
type RuleService struct {
	svc ruleUseCase
	obs *observer
}

// Get returns the rule configured for appKey, or ErrRuleNotFound.
func (s *RuleService) Get(ctx context.Context, appKey string) (rule SortRule, err error) {
	start := time.Now()
	defer func() { s.obs.observe("rule.get", start, err, "app_key", appKey) }()

	r, err := s.svc.Get(ctx, appKey)
	if err != nil {
		return SortRule{}, err
	}
	return fromDomainRule(r), nil
}

// List returns every configured rule, ordered by appKey.
func (s *RuleService) List(ctx context.Context) []SortRule {
	start := time.Now()
	defer func() { s.obs.observe("rule.list", start, nil) }()

	rules := s.svc.List(ctx)
	out := make([]SortRule, len(rules))
	for i, r := range rules {
		out[i] = fromDomainRule(r)
	}
	return out
}

// Put creates or replaces the rule for rule.AppKey.
// Invalid factors return an error matching ErrInvalidRule.
func (s *RuleService) Put(ctx context.Context, rule SortRule) (err error) {
	start := time.Now()
	defer func() { s.obs.observe("rule.put", start, err, "app_key", rule.AppKey) }()

	r, err := toDomainRule(rule)
	if err != nil {
		return err
	}
	return s.svc.Put(ctx, r)
}

// Delete removes the rule for appKey; the tenant falls back to the default rule.
func (s *RuleService) Delete(ctx context.Context, appKey string) (err error) {
	start := time.Now()
	defer func() { s.obs.observe("rule.delete", start, err, "app_key", appKey) }()

	return s.svc.Delete(ctx, appKey)
}

func toDomainRule(rule SortRule) (domrule.SortRule, error) {
	factors := make([]domrule.Factor, 0, len(rule.Factors))
	for _, f := range rule.Factors {
		factor, err := domrule.NewFactor(f.Field, f.Weight, domrule.Mode(f.Mode), f.Params)
		if err != nil {
			return domrule.SortRule{}, err
		}
		factors = append(factors, factor)
	}
	id := rule.ID
	if id == "" {
		id = rule.AppKey + "-custom"
	}
	return domrule.New(id, rule.AppKey, factors, !rule.Disabled)
}

func fromDomainRule(r domrule.SortRule) SortRule {
	factors := make([]Factor, len(r.Factors()))
	for i, f := range r.Factors() {
		factors[i] = Factor{Field: f.Field(), Weight: f.Weight(), Mode: FactorMode(f.Mode()), Params: f.Params()}
	}
	return SortRule{ID: r.ID(), AppKey: r.AppKey(), Disabled: !r.Enabled(), Factors: factors}
}
