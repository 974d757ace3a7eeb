// Package querycache is a caching decorator over the vector database searcher.
// Result sets are keyed by a hash of the encoded query document.
package querycache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/magicchat/internal/db"
	"github.com/kailas-cloud/magicchat/internal/domain/search/query"
	"github.com/kailas-cloud/magicchat/internal/domain/search/result"
)

const keySpace = "query_cache:"

// searcher is the decorated collaborator. Encode yields the document used as cache key.
type searcher interface {
	Search(ctx context.Context, q query.Query) (result.Set, error)
	Encode(q query.Query) (string, error)
}

// store is the consumer interface for the result cache (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Options tune the decorator.
type Options struct {
	// KeyPrefix namespaces keys in a shared store.
	KeyPrefix string
	// TTL bounds entry lifetime; zero keeps entries until evicted.
	TTL time.Duration
	// CacheTotal is a counter vec with label "result" ("hit"/"miss").
	CacheTotal *prometheus.CounterVec
}

// CachedSearcher caches decoded result sets in a key-value store.
type CachedSearcher struct {
	inner      searcher
	store      store
	prefix     string
	ttl        time.Duration
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
}

// New creates a caching decorator.
func New(inner searcher, s store, opts Options, logger *zap.Logger) *CachedSearcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedSearcher{
		inner:      inner,
		store:      s,
		prefix:     opts.KeyPrefix + keySpace,
		ttl:        opts.TTL,
		cacheTotal: opts.CacheTotal,
		logger:     logger,
	}
}

// Encode delegates to the inner searcher.
func (c *CachedSearcher) Encode(q query.Query) (string, error) {
	return c.inner.Encode(q)
}

// Search returns a cached result set or queries the inner searcher.
// Failures and sets carrying a generation error are not cached. Cached sets
// carry no card vectors.
func (c *CachedSearcher) Search(ctx context.Context, q query.Query) (result.Set, error) {
	doc, err := c.inner.Encode(q)
	if err != nil {
		return result.Set{}, fmt.Errorf("encode query: %w", err)
	}
	key := c.cacheKey(doc)

	if set, ok := c.getFromCache(ctx, key); ok {
		c.incCache("hit")
		return set, nil
	}

	c.incCache("miss")

	set, err := c.inner.Search(ctx, q)
	if err != nil {
		return result.Set{}, err
	}

	if set.GenerateError == "" {
		c.putToCache(ctx, key, set)
	}
	return set, nil
}

func (c *CachedSearcher) incCache(res string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(res).Inc()
	}
}

func (c *CachedSearcher) cacheKey(doc string) string {
	h := sha256.Sum256([]byte(doc))
	return c.prefix + hex.EncodeToString(h[:])
}

func (c *CachedSearcher) getFromCache(ctx context.Context, key string) (result.Set, bool) {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			c.logger.Warn("Failed to get cached result set", zap.String("key", key), zap.Error(err))
		}
		return result.Set{}, false
	}
	if len(data) == 0 {
		return result.Set{}, false
	}

	var set result.Set
	if err := json.Unmarshal(data, &set); err != nil {
		c.logger.Warn("Failed to parse cached result set", zap.String("key", key), zap.Error(err))
		return result.Set{}, false
	}
	return set, true
}

func (c *CachedSearcher) putToCache(ctx context.Context, key string, set result.Set) {
	data, err := json.Marshal(withoutVectors(set))
	if err != nil {
		c.logger.Warn("Failed to encode result set", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.store.SetWithTTL(ctx, key, data, c.ttl); err != nil {
		c.logger.Warn("Failed to cache result set", zap.String("key", key), zap.Error(err))
	}
}

// withoutVectors drops card embeddings, which nothing renders, so cached entries
// stay small. The caller's set is not modified.
func withoutVectors(set result.Set) result.Set {
	cards := make([]result.Card, len(set.Cards))
	for i, card := range set.Cards {
		card.Vector = nil
		cards[i] = card
	}
	set.Cards = cards
	return set
}
