package domain

import (
	"context"
	"fmt"
)

// Embedder turns a search query into the vector used for kNN recall.
type Embedder interface {
	Embed(ctx context.Context, text string) (EmbeddingResult, error)
}

// EmbedderFunc adapts a plain function to Embedder.
type EmbedderFunc func(ctx context.Context, text string) (EmbeddingResult, error)

// Embed calls f.
func (f EmbedderFunc) Embed(ctx context.Context, text string) (EmbeddingResult, error) {
	return f(ctx, text)
}

// EmbeddingResult is a query vector with the provider's token usage.
// A nil Embedding is not an error: vector recall sits the request out.
type EmbeddingResult struct {
	Embedding    []float32
	PromptTokens int
	TotalTokens  int
}

// WithQueryInstruction prefixes every query with instruction before it reaches inner,
// for models trained with separate query and passage prompts. An empty instruction returns inner.
func WithQueryInstruction(inner Embedder, instruction string) Embedder {
	if instruction == "" {
		return inner
	}
	return EmbedderFunc(func(ctx context.Context, text string) (EmbeddingResult, error) {
		res, err := inner.Embed(ctx, instruction+text)
		if err != nil {
			return EmbeddingResult{}, fmt.Errorf("embed with query instruction: %w", err)
		}
		return res, nil
	})
}
