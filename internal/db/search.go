package db

import "github.com/kailas-cloud/searchd/internal/domain/search/filter"

// TextField is a full-text field with its query-time weight.
type TextField struct {
	Name   string
	Weight float64
}

// TextQuery is the input for weighted multi-field text search.
type TextQuery struct {
	IndexName string
	Query     string
	Fields    []TextField
	Filters   filter.Expression
	TopK      int
}

// KNNQuery is the input for vector similarity search.
type KNNQuery struct {
	IndexName string
	Field     string
	Vector    []float32
	K         int
	Filters   filter.Expression
}

// SortQuery is the input for a field-sorted listing (no relevance scoring).
type SortQuery struct {
	IndexName  string
	Field      string
	Descending bool
	Filters    filter.Expression
	TopK       int
}

// SearchResult is the output of a search operation.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single document hit from a search.
type SearchEntry struct {
	Key   string
	Score float64
}
