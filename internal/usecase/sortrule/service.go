package sortrule

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/searchd/internal/domain"
	domrule "github.com/kailas-cloud/searchd/internal/domain/rule"
)

// Service administers tenant sort rules: persisted first, then swapped into the live store.
type Service struct {
	repo   Repository
	store  Store
	logger *zap.Logger
}

// New creates a sort rule service.
func New(repo Repository, store Store, logger *zap.Logger) *Service {
	return &Service{repo: repo, store: store, logger: logger}
}

// Load seeds the live store: configured rules first, then persisted rules on top.
// Corrupt persisted entries are logged and skipped; a backend failure is returned
// after the seeds are in place.
func (s *Service) Load(ctx context.Context, seeds []domrule.SortRule) error {
	for _, r := range seeds {
		s.store.Add(r)
	}

	persisted, err := s.repo.List(ctx)
	for _, r := range persisted {
		s.store.Add(r)
	}
	s.logger.Info("Sort rules loaded",
		zap.Int("seeded", len(seeds)),
		zap.Int("persisted", len(persisted)),
	)
	if err != nil {
		if len(persisted) > 0 {
			s.logger.Warn("Skipped invalid persisted sort rules", zap.Error(err))
			return nil
		}
		return fmt.Errorf("load sort rules: %w", err)
	}
	return nil
}

// Get returns the stored rule for appKey, enabled or not.
func (s *Service) Get(_ context.Context, appKey string) (domrule.SortRule, error) {
	r, ok := s.store.Lookup(appKey)
	if !ok {
		return domrule.SortRule{}, fmt.Errorf("get rule %q: %w", appKey, domain.ErrRuleNotFound)
	}
	return r, nil
}

// List returns every stored rule ordered by appKey.
func (s *Service) List(_ context.Context) []domrule.SortRule {
	return s.store.List()
}

// Put upserts the tenant's rule.
func (s *Service) Put(ctx context.Context, rule domrule.SortRule) error {
	if err := s.repo.Save(ctx, rule); err != nil {
		return fmt.Errorf("save rule: %w", err)
	}
	s.store.Add(rule)
	return nil
}

// Delete removes the tenant's rule; the tenant falls back to the default rule.
func (s *Service) Delete(ctx context.Context, appKey string) error {
	if _, ok := s.store.Lookup(appKey); !ok {
		return fmt.Errorf("delete rule %q: %w", appKey, domain.ErrRuleNotFound)
	}
	if err := s.repo.Delete(ctx, appKey); err != nil {
		return fmt.Errorf("delete rule: %w", err)
	}
	s.store.Remove(appKey)
	return nil
}
