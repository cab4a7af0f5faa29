package index

import (
	"context"
	"fmt"
	"strings"

	"github.com/kailas-cloud/searchd/internal/db"
	"github.com/kailas-cloud/searchd/internal/domain/document"
	"github.com/kailas-cloud/searchd/internal/domain/recall"
	"github.com/kailas-cloud/searchd/internal/domain/search/filter"
)

// DefaultTenant names the index used when a request carries no appKey.
const DefaultTenant = "default"

// store is the consumer interface for index operations (ISP).
type store interface {
	SearchText(ctx context.Context, q *db.TextQuery) (*db.SearchResult, error)
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
	SearchSorted(ctx context.Context, q *db.SortQuery) (*db.SearchResult, error)
	HGetAllEach(ctx context.Context, keys []string) []db.HashResult
}

// Config describes how tenant indexes are named and which fields each recall path reads.
type Config struct {
	Prefix        string
	KeywordFields []db.TextField
	VectorField   string
	HotField      string
}

// Repo adapts the RediSearch store to tenant indexes and recall results.
type Repo struct {
	store store
	cfg   Config
}

// New creates an index repository.
func New(s store, cfg Config) *Repo {
	return &Repo{store: s, cfg: cfg}
}

// Name returns the tenant index name for appKey: <prefix>_<lower(appKey)>.
func (r *Repo) Name(appKey string) string {
	tenant := strings.ToLower(strings.TrimSpace(appKey))
	if tenant == "" {
		tenant = DefaultTenant
	}
	return r.cfg.Prefix + "_" + tenant
}

func ftIndex(index string) string { return index + ":idx" }

func docPrefix(index string) string { return index + ":" }

// SearchKeyword runs a weighted multi-field text query with required equality filters.
func (r *Repo) SearchKeyword(
	ctx context.Context, index, query string, filters filter.Expression, topK int,
) ([]recall.Result, error) {
	sr, err := r.store.SearchText(ctx, &db.TextQuery{
		IndexName: ftIndex(index),
		Query:     query,
		Fields:    r.cfg.KeywordFields,
		Filters:   filters,
		TopK:      topK,
	})
	if err != nil {
		return nil, fmt.Errorf("keyword search %s: %w", index, err)
	}
	return toResults(sr, index, recall.Keyword, scoreNative), nil
}

// SearchVector runs a kNN query against the configured vector field.
func (r *Repo) SearchVector(
	ctx context.Context, index string, vector []float32, filters filter.Expression, k int,
) ([]recall.Result, error) {
	sr, err := r.store.SearchKNN(ctx, &db.KNNQuery{
		IndexName: ftIndex(index),
		Field:     r.cfg.VectorField,
		Vector:    vector,
		K:         k,
		Filters:   filters,
	})
	if err != nil {
		return nil, fmt.Errorf("vector search %s: %w", index, err)
	}
	return toResults(sr, index, recall.Vector, scoreNative), nil
}

// SearchHot lists the top documents by the configured popularity field, descending.
// Scores are synthetic: 1/(rank+1), so only the order is meaningful.
func (r *Repo) SearchHot(
	ctx context.Context, index string, filters filter.Expression, topK int,
) ([]recall.Result, error) {
	sr, err := r.store.SearchSorted(ctx, &db.SortQuery{
		IndexName:  ftIndex(index),
		Field:      r.cfg.HotField,
		Descending: true,
		Filters:    filters,
		TopK:       topK,
	})
	if err != nil {
		return nil, fmt.Errorf("hot search %s: %w", index, err)
	}
	return toResults(sr, index, recall.Hot, scoreByRank), nil
}

// FetchDocuments point-gets documents by id in one pipelined round trip.
// Results are returned in ids order; a failed or missing id has Found=false.
func (r *Repo) FetchDocuments(ctx context.Context, index string, ids []string) []document.Fetched {
	if len(ids) == 0 {
		return nil
	}
	prefix := docPrefix(index)
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = prefix + id
	}

	hashes := r.store.HGetAllEach(ctx, keys)
	out := make([]document.Fetched, len(ids))
	for i, id := range ids {
		out[i] = document.Fetched{ID: id}
		if i >= len(hashes) {
			out[i].Err = fmt.Errorf("fetch %s: no reply", id)
			continue
		}
		h := hashes[i]
		if h.Err != nil {
			out[i].Err = fmt.Errorf("fetch %s: %w", id, h.Err)
			continue
		}
		if len(h.Fields) == 0 {
			continue
		}
		out[i].Doc = document.Reconstruct(id, h.Fields)
		out[i].Found = true
	}
	return out
}

type scoreFn func(rank int, entry db.SearchEntry) float32

func scoreNative(_ int, entry db.SearchEntry) float32 { return float32(entry.Score) }

func scoreByRank(rank int, _ db.SearchEntry) float32 { return 1 / float32(rank+1) }

func toResults(sr *db.SearchResult, index string, source recall.Source, score scoreFn) []recall.Result {
	if sr == nil || len(sr.Entries) == 0 {
		return nil
	}
	prefix := docPrefix(index)
	out := make([]recall.Result, 0, len(sr.Entries))
	for i, entry := range sr.Entries {
		id := strings.TrimPrefix(entry.Key, prefix)
		out = append(out, recall.New(id, score(i, entry), source))
	}
	return out
}
