package sortrule

import (
	"context"

	domrule "github.com/kailas-cloud/searchd/internal/domain/rule"
)

// Repository persists sort rules.
type Repository interface {
	Save(ctx context.Context, rule domrule.SortRule) error
	Delete(ctx context.Context, appKey string) error
	List(ctx context.Context) ([]domrule.SortRule, error)
}

// Store is the live rule set read by the rerank engine.
type Store interface {
	Lookup(appKey string) (domrule.SortRule, bool)
	Add(rule domrule.SortRule)
	Remove(appKey string) bool
	List() []domrule.SortRule
}
