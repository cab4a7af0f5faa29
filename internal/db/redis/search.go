package redis

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/searchd/internal/db"
	"github.com/kailas-cloud/searchd/internal/domain/search/filter"
)

const knnScoreAlias = "knn_dist"

// SearchText runs a weighted multi-field full-text search via FT.SEARCH.
func (s *Store) SearchText(ctx context.Context, q *db.TextQuery) (*db.SearchResult, error) {
	if q.IndexName == "" {
		return nil, fmt.Errorf("index name is required")
	}
	if q.Query == "" {
		return nil, fmt.Errorf("query is required")
	}
	if q.TopK <= 0 {
		return nil, fmt.Errorf("topK must be positive")
	}

	queryStr := buildTextQuery(q.Query, q.Fields)
	if filterStr := buildFilter(q.Filters); filterStr != "" {
		queryStr = filterStr + " " + queryStr
	}

	cmd := s.builder().Arbitrary("FT.SEARCH").Args(
		q.IndexName, queryStr,
		"NOCONTENT", "WITHSCORES",
		"LIMIT", "0", strconv.Itoa(q.TopK),
		"DIALECT", "2",
	).Build()
	raw, err := s.exec(ctx, cmd).ToArray()
	if err != nil {
		return nil, &db.Error{Op: db.OpSearch, Err: err}
	}

	return parseScoredResult(raw)
}

// SearchKNN runs a KNN vector similarity search via FT.SEARCH.
// Scores are cosine distances converted to similarity, clamped to [0,1].
func (s *Store) SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error) {
	if q.IndexName == "" {
		return nil, fmt.Errorf("index name is required")
	}
	if q.Field == "" {
		return nil, fmt.Errorf("vector field is required")
	}
	if len(q.Vector) == 0 {
		return nil, fmt.Errorf("vector is required")
	}
	if q.K <= 0 {
		return nil, fmt.Errorf("k must be positive")
	}

	knnPart := fmt.Sprintf("[KNN %d @%s $BLOB AS %s]", q.K, q.Field, knnScoreAlias)
	var queryStr string
	if filterStr := buildFilter(q.Filters); filterStr != "" {
		queryStr = fmt.Sprintf("(%s)=>%s", filterStr, knnPart)
	} else {
		queryStr = "*=>" + knnPart
	}

	cmd := s.builder().Arbitrary("FT.SEARCH").Args(
		q.IndexName, queryStr,
		"PARAMS", "2", "BLOB", vectorToBytes(q.Vector),
		"SORTBY", knnScoreAlias,
		"RETURN", "1", knnScoreAlias,
		"LIMIT", "0", strconv.Itoa(q.K),
		"DIALECT", "2",
	).Build()
	raw, err := s.exec(ctx, cmd).ToArray()
	if err != nil {
		return nil, &db.Error{Op: db.OpSearch, Err: err}
	}

	return parseKNNResult(raw)
}

// SearchSorted lists documents ordered by a sortable field, without relevance scoring.
// Entries carry a zero score; callers derive a score from position.
func (s *Store) SearchSorted(ctx context.Context, q *db.SortQuery) (*db.SearchResult, error) {
	if q.IndexName == "" {
		return nil, fmt.Errorf("index name is required")
	}
	if q.Field == "" {
		return nil, fmt.Errorf("sort field is required")
	}
	if q.TopK <= 0 {
		return nil, fmt.Errorf("topK must be positive")
	}

	queryStr := buildFilter(q.Filters)
	if queryStr == "" {
		queryStr = "*"
	}
	order := "ASC"
	if q.Descending {
		order = "DESC"
	}

	cmd := s.builder().Arbitrary("FT.SEARCH").Args(
		q.IndexName, queryStr,
		"NOCONTENT",
		"SORTBY", q.Field, order,
		"LIMIT", "0", strconv.Itoa(q.TopK),
		"DIALECT", "2",
	).Build()
	raw, err := s.exec(ctx, cmd).ToArray()
	if err != nil {
		return nil, &db.Error{Op: db.OpSearch, Err: err}
	}

	return parseKeysResult(raw)
}

// --- Result parsing ---

func parseTotal(raw []rueidis.RedisMessage) (int64, error) {
	if len(raw) == 0 {
		return 0, nil
	}
	total, err := raw[0].AsInt64()
	if err != nil {
		return 0, fmt.Errorf("parse total: %w", err)
	}
	return total, nil
}

// parseScoredResult handles NOCONTENT WITHSCORES replies: [total, key1, score1, key2, score2, ...].
func parseScoredResult(raw []rueidis.RedisMessage) (*db.SearchResult, error) {
	total, err := parseTotal(raw)
	if err != nil {
		return nil, err
	}
	if total == 0 {
		return &db.SearchResult{}, nil
	}

	entries := make([]db.SearchEntry, 0, (len(raw)-1)/2)
	for i := 1; i+1 < len(raw); i += 2 {
		key, err := raw[i].ToString()
		if err != nil {
			continue
		}
		scoreStr, err := raw[i+1].ToString()
		if err != nil {
			continue
		}
		score, err := strconv.ParseFloat(scoreStr, 64)
		if err != nil {
			continue
		}
		entries = append(entries, db.SearchEntry{Key: key, Score: score})
	}

	return &db.SearchResult{Total: int(total), Entries: entries}, nil
}

// parseKNNResult handles [total, key1, [knn_dist, d1], key2, [knn_dist, d2], ...].
func parseKNNResult(raw []rueidis.RedisMessage) (*db.SearchResult, error) {
	total, err := parseTotal(raw)
	if err != nil {
		return nil, err
	}
	if total == 0 {
		return &db.SearchResult{}, nil
	}

	entries := make([]db.SearchEntry, 0, (len(raw)-1)/2)
	for i := 1; i+1 < len(raw); i += 2 {
		key, err := raw[i].ToString()
		if err != nil {
			continue
		}
		fields, err := raw[i+1].ToArray()
		if err != nil {
			continue
		}
		distStr, ok := parseFieldPairs(fields)[knnScoreAlias]
		if !ok {
			continue
		}
		dist, err := strconv.ParseFloat(distStr, 64)
		if err != nil {
			continue
		}
		entries = append(entries, db.SearchEntry{
			Key:   key,
			Score: max(0, 1.0-dist), // cosine distance → similarity
		})
	}

	return &db.SearchResult{Total: int(total), Entries: entries}, nil
}

// parseKeysResult handles NOCONTENT replies: [total, key1, key2, ...].
func parseKeysResult(raw []rueidis.RedisMessage) (*db.SearchResult, error) {
	total, err := parseTotal(raw)
	if err != nil {
		return nil, err
	}
	if total == 0 {
		return &db.SearchResult{}, nil
	}

	entries := make([]db.SearchEntry, 0, len(raw)-1)
	for i := 1; i < len(raw); i++ {
		key, err := raw[i].ToString()
		if err != nil {
			continue
		}
		entries = append(entries, db.SearchEntry{Key: key})
	}

	return &db.SearchResult{Total: int(total), Entries: entries}, nil
}

func parseFieldPairs(fields []rueidis.RedisMessage) map[string]string {
	m := make(map[string]string, len(fields)/2)
	for j := 0; j+1 < len(fields); j += 2 {
		name, err := fields[j].ToString()
		if err != nil {
			continue
		}
		value, err := fields[j+1].ToString()
		if err != nil {
			continue
		}
		m[name] = value
	}
	return m
}

// --- Query building ---

// buildTextQuery expands the query over each weighted field:
// (@title:(q)) => { $weight: 2; } | @description:(q)
func buildTextQuery(query string, fields []db.TextField) string {
	escaped := queryEscaper.Replace(query)
	if len(fields) == 0 {
		return escaped
	}

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		clause := fmt.Sprintf("@%s:(%s)", f.Name, escaped)
		if f.Weight > 0 && f.Weight != 1 {
			clause = fmt.Sprintf("(%s) => { $weight: %s; }", clause, strconv.FormatFloat(f.Weight, 'f', -1, 64))
		}
		parts = append(parts, clause)
	}
	return "(" + strings.Join(parts, " | ") + ")"
}

// buildFilter translates filter.Expression into an FT.SEARCH tag pre-filter.
func buildFilter(expr filter.Expression) string {
	if expr.IsEmpty() {
		return ""
	}
	parts := make([]string, 0, len(expr.Must()))
	for _, cond := range expr.Must() {
		parts = append(parts, buildTagFilter(cond.Key(), cond.Match()))
	}
	return strings.Join(parts, " ")
}

func buildTagFilter(key, value string) string {
	return fmt.Sprintf("@%s:{%s}", key, tagEscaper.Replace(value))
}

var tagEscaper = strings.NewReplacer(
	",", "\\,",
	".", "\\.",
	"<", "\\<",
	">", "\\>",
	"{", "\\{",
	"}", "\\}",
	"\"", "\\\"",
	"'", "\\'",
	":", "\\:",
	";", "\\;",
	"!", "\\!",
	"@", "\\@",
	"#", "\\#",
	"$", "\\$",
	"%", "\\%",
	"^", "\\^",
	"&", "\\&",
	"*", "\\*",
	"(", "\\(",
	")", "\\)",
	"-", "\\-",
	"+", "\\+",
	"=", "\\=",
	"~", "\\~",
	"|", "\\|",
	" ", "\\ ",
)

var queryEscaper = strings.NewReplacer(
	`\`, `\\`,
	`'`, `\'`,
	`"`, `\"`,
	`@`, `\@`,
	`{`, `\{`,
	`}`, `\}`,
	`(`, `\(`,
	`)`, `\)`,
	`|`, `\|`,
	`-`, `\-`,
	`~`, `\~`,
	`*`, `\*`,
	`[`, `\[`,
	`]`, `\]`,
	`!`, `\!`,
	`%`, `\%`,
	`^`, `\^`,
	`$`, `\$`,
	`<`, `\<`,
	`>`, `\>`,
	`=`, `\=`,
	`;`, `\;`,
	`+`, `\+`,
	`:`, `\:`,
)

func vectorToBytes(v []float32) string {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return string(buf)
}
