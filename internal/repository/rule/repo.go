package rule

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/kailas-cloud/searchd/internal/domain"
	domrule "github.com/kailas-cloud/searchd/internal/domain/rule"
)

// store is the consumer interface for rule persistence (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HDel(ctx context.Context, key string, fields ...string) error
}

// Repo persists sort rules in a single Redis hash: field = appKey, value = rule JSON.
type Repo struct {
	store store
	key   string
}

// New creates a rule repository storing rules under <prefix>sort_rules.
func New(s store, prefix string) *Repo {
	return &Repo{store: s, key: prefix + "sort_rules"}
}

// Save upserts the rule for its appKey.
func (r *Repo) Save(ctx context.Context, rule domrule.SortRule) error {
	data, err := ruleToJSON(rule)
	if err != nil {
		return err
	}
	if err := r.store.HSet(ctx, r.key, map[string]string{rule.AppKey(): data}); err != nil {
		return fmt.Errorf("hset rule %s: %w", rule.AppKey(), err)
	}
	return nil
}

// Delete removes the rule stored for appKey.
func (r *Repo) Delete(ctx context.Context, appKey string) error {
	if err := r.store.HDel(ctx, r.key, appKey); err != nil {
		return fmt.Errorf("hdel rule %s: %w", appKey, err)
	}
	return nil
}

// List returns all stored rules sorted by appKey.
// Entries that fail to decode are skipped and reported in the joined error.
func (r *Repo) List(ctx context.Context) ([]domrule.SortRule, error) {
	m, err := r.store.HGetAll(ctx, r.key)
	if err != nil {
		return nil, fmt.Errorf("hgetall rules: %w", err)
	}

	appKeys := make([]string, 0, len(m))
	for k := range m {
		appKeys = append(appKeys, k)
	}
	sort.Strings(appKeys)

	rules := make([]domrule.SortRule, 0, len(m))
	var errs []error
	for _, k := range appKeys {
		rule, err := ruleFromJSON(m[k])
		if err != nil {
			errs = append(errs, fmt.Errorf("rule %s: %w", k, err))
			continue
		}
		if rule.AppKey() != k {
			errs = append(errs, fmt.Errorf("rule %s: stored under mismatched appKey %q: %w", k, rule.AppKey(), domain.ErrInvalidRule))
			continue
		}
		rules = append(rules, rule)
	}
	return rules, errors.Join(errs...)
}
