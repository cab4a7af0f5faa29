package rerank

import (
	"context"

	"github.com/kailas-cloud/searchd/internal/domain/document"
	domrule "github.com/kailas-cloud/searchd/internal/domain/rule"
)

// DocumentFetcher point-gets documents for scoring.
type DocumentFetcher interface {
	FetchDocuments(ctx context.Context, index string, ids []string) []document.Fetched
}

// RuleResolver resolves the active sort rule for a tenant.
type RuleResolver interface {
	Get(appKey string) (domrule.SortRule, bool)
}
