package redis

import (
	"context"
	"fmt"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/searchd/internal/db"
)

// HSet sets hash fields.
func (s *Store) HSet(ctx context.Context, key string, fields map[string]string) error {
	if len(fields) == 0 {
		return nil
	}
	cmd := s.builder().Hset().Key(key).FieldValue()
	for k, v := range fields {
		cmd = cmd.FieldValue(k, v)
	}
	if err := s.exec(ctx, cmd.Build()).Error(); err != nil {
		return &db.Error{Op: db.OpHSet, Err: err}
	}
	return nil
}

// HGetAll returns all fields of a hash. A missing key yields an empty map.
func (s *Store) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	cmd := s.builder().Hgetall().Key(key).Build()
	m, err := s.exec(ctx, cmd).AsStrMap()
	if err != nil {
		return nil, &db.Error{Op: db.OpHGetAll, Err: err}
	}
	return m, nil
}

// HGetAllEach fetches multiple hashes in a single DoMulti round-trip.
// Failures are reported per key so one bad entry does not sink the batch.
func (s *Store) HGetAllEach(ctx context.Context, keys []string) []db.HashResult {
	if len(keys) == 0 {
		return nil
	}

	cmds := make([]rueidis.Completed, len(keys))
	for i, key := range keys {
		cmds[i] = s.builder().Hgetall().Key(key).Build()
	}

	results := s.client.DoMulti(ctx, cmds...)
	out := make([]db.HashResult, len(keys))
	for i := range keys {
		if i >= len(results) {
			out[i] = db.HashResult{Err: &db.Error{Op: db.OpHGetAll, Err: fmt.Errorf("key %s: no reply", keys[i])}}
			continue
		}
		m, err := results[i].AsStrMap()
		if err != nil {
			out[i] = db.HashResult{Err: &db.Error{Op: db.OpHGetAll, Err: fmt.Errorf("key %s: %w", keys[i], err)}}
			continue
		}
		out[i] = db.HashResult{Fields: m}
	}
	return out
}

// HDel removes specific fields from a hash.
func (s *Store) HDel(ctx context.Context, key string, fields ...string) error {
	if len(fields) == 0 {
		return nil
	}
	cmd := s.builder().Hdel().Key(key).Field(fields...).Build()
	if err := s.exec(ctx, cmd).Error(); err != nil {
		return &db.Error{Op: db.OpHDel, Err: err}
	}
	return nil
}
