package magicchat

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

type clientConfig struct {
	weaviateURL string
	weaviateKey string
	class       string
	openAIKey   string
	timeout     time.Duration

	cacheDriver   string // "", "memory", "redis" or "valkey"
	cacheAddrs    []string
	cachePassword string
	cacheTTL      time.Duration

	sessionIdleTTL time.Duration

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithWeaviate sets the Weaviate cluster URL and API key.
// A URL without scheme is treated as https.
func WithWeaviate(url, apiKey string) Option {
	return optionFunc(func(c *clientConfig) {
		c.weaviateURL = url
		c.weaviateKey = apiKey
	})
}

// WithClass overrides the Weaviate class name. Default: Card.
func WithClass(class string) Option {
	return optionFunc(func(c *clientConfig) {
		c.class = class
	})
}

// WithOpenAIKey sets the key forwarded to Weaviate for vectorization and generation.
func WithOpenAIKey(key string) Option {
	return optionFunc(func(c *clientConfig) {
		c.openAIKey = key
	})
}

// WithTimeout bounds every database request. Default: 30s.
func WithTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.timeout = d
	})
}

// WithMemoryCache caches search results in process for ttl.
func WithMemoryCache(ttl time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.cacheDriver = "memory"
		c.cacheTTL = ttl
	})
}

// WithRedisCache caches search results in a Redis instance for ttl.
func WithRedisCache(addr, password string, ttl time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.cacheDriver = "redis"
		c.cacheAddrs = []string{addr}
		c.cachePassword = password
		c.cacheTTL = ttl
	})
}

// WithValkeyCache caches search results in a Valkey instance for ttl.
func WithValkeyCache(addr, password string, ttl time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.cacheDriver = "valkey"
		c.cacheAddrs = []string{addr}
		c.cachePassword = password
		c.cacheTTL = ttl
	})
}

// WithSessionIdleTTL sets how long an untouched session is kept. Default: 1h.
func WithSessionIdleTTL(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.sessionIdleTTL = d
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
