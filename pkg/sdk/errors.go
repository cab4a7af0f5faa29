package searchd

import "github.com/kailas-cloud/searchd/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrInvalidRequest         = domain.ErrInvalidRequest
	ErrInvalidRule            = domain.ErrInvalidRule
	ErrRuleNotFound           = domain.ErrRuleNotFound
	ErrEmbeddingProviderError = domain.ErrEmbeddingProviderError
)
