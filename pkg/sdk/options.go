package searchd

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type keywordField struct {
	name   string
	weight float64
}

type clientConfig struct {
	addrs    []string
	password string

	embedder Embedder

	indexPrefix   string
	keyPrefix     string
	keywordFields []keywordField
	vectorField   string
	hotField      string
	poolSize      int
	pathTimeout   time.Duration

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithRedis configures the client to connect to a Redis Stack instance.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithEmbedder sets the query embedding provider and enables vector recall.
func WithEmbedder(e Embedder) Option {
	return optionFunc(func(c *clientConfig) {
		c.embedder = e
	})
}

// WithIndexPrefix sets the tenant index prefix. Defaults to "products".
func WithIndexPrefix(prefix string) Option {
	return optionFunc(func(c *clientConfig) {
		c.indexPrefix = prefix
	})
}

// WithKeyPrefix sets the namespace of sort-rule keys. Defaults to "searchd:".
// Use the service's value to share rules with it.
func WithKeyPrefix(prefix string) Option {
	return optionFunc(func(c *clientConfig) {
		c.keyPrefix = prefix
	})
}

// WithKeywordField adds a full-text field to keyword recall.
// The first call replaces the default field set (title, description, content).
func WithKeywordField(name string, weight float64) Option {
	return optionFunc(func(c *clientConfig) {
		c.keywordFields = append(c.keywordFields, keywordField{name: name, weight: weight})
	})
}

// WithVectorField sets the vector field used by kNN recall. Defaults to "embedding".
func WithVectorField(field string) Option {
	return optionFunc(func(c *clientConfig) {
		c.vectorField = field
	})
}

// WithHotField sets the popularity field of hot recall. Default: "sales".
func WithHotField(field string) Option {
	return optionFunc(func(c *clientConfig) {
		c.hotField = field
	})
}

// WithRecallPool bounds the recall fan-out: pool size and per-path timeout.
// Defaults: 3 workers, 800ms.
func WithRecallPool(size int, pathTimeout time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.poolSize = size
		c.pathTimeout = pathTimeout
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
