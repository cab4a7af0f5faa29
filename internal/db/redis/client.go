package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/searchd/internal/db"
)

var _ db.Store = (*Store)(nil)

// ErrNoAddrs is returned by NewStore when Config.Addrs is empty.
var ErrNoAddrs = errors.New("redis: at least one address is required")

// Readiness polling starts fast and backs off while the server is still loading.
const (
	readyPollMin = 50 * time.Millisecond
	readyPollMax = time.Second
)

// Config is the Redis Stack endpoint searchd reads tenant indexes, rules and cached embeddings from.
type Config struct {
	Addrs    []string
	Password string
}

// Store serves every db.Store call from one rueidis client.
// Client-side caching is off: documents and rules change underneath it.
// FT.SEARCH replies are parsed as RESP2 arrays.
type Store struct {
	client rueidis.Client
}

// NewStore connects to cfg.Addrs. It does not wait for the server; see WaitForReady.
func NewStore(cfg Config) (*Store, error) {
	if len(cfg.Addrs) == 0 {
		return nil, ErrNoAddrs
	}
	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:  cfg.Addrs,
		Password:     cfg.Password,
		DisableCache: true,
		AlwaysRESP2:  true,
	})
	if err != nil {
		return nil, fmt.Errorf("redis connect %v: %w", cfg.Addrs, err)
	}
	return &Store{client: client}, nil
}

// Ping sends PING.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.exec(ctx, s.builder().Ping().Build()).Error(); err != nil {
		return &db.Error{Op: "PING", Err: err}
	}
	return nil
}

// Close releases the client's connections.
func (s *Store) Close() {
	s.client.Close()
}

// WaitForReady blocks until PING succeeds or timeout elapses, returning the last ping error on expiry.
func (s *Store) WaitForReady(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	wait := readyPollMin
	for {
		err := s.Ping(ctx)
		if err == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("redis not ready after %v: %w", timeout, err)
		case <-time.After(wait):
		}
		wait = min(wait*2, readyPollMax)
	}
}

func (s *Store) exec(ctx context.Context, cmd rueidis.Completed) rueidis.RedisResult {
	return s.client.Do(ctx, cmd)
}

func (s *Store) builder() rueidis.Builder {
	return s.client.B()
}
