package domain

import "errors"

var (
	// ErrInvalidRequest signals a search request the caller must fix.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrInvalidRule signals a malformed sort rule definition.
	ErrInvalidRule = errors.New("invalid sort rule")
	// ErrRuleNotFound signals a missing sort rule.
	ErrRuleNotFound = errors.New("sort rule not found")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
)
