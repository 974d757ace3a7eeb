// Package memory is the in-process result cache backend built on go-cache.
package memory

import (
	"context"
	"slices"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/kailas-cloud/magicchat/internal/db"
)

// Compile-time check: Store implements db.Store.
var _ db.Store = (*Store)(nil)

// Store keeps values in process memory. Entries without TTL live until Close.
type Store struct {
	cache *cache.Cache
}

// NewStore creates an in-memory store that purges expired items every cleanup interval.
func NewStore(cleanup time.Duration) *Store {
	if cleanup <= 0 {
		cleanup = 10 * time.Minute
	}
	return &Store{cache: cache.New(cache.NoExpiration, cleanup)}
}

// Ping always succeeds.
func (s *Store) Ping(context.Context) error { return nil }

// WaitForReady returns immediately.
func (s *Store) WaitForReady(context.Context, time.Duration) error { return nil }

// Close drops every entry.
func (s *Store) Close() { s.cache.Flush() }

// Get retrieves a copy of the value stored at key.
func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	v, ok := s.cache.Get(key)
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return slices.Clone(v.([]byte)), nil
}

// Set stores a value without expiration.
func (s *Store) Set(_ context.Context, key string, value []byte) error {
	s.cache.Set(key, slices.Clone(value), cache.NoExpiration)
	return nil
}

// SetWithTTL stores a value with an expiration. A non-positive ttl stores without one.
func (s *Store) SetWithTTL(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = cache.NoExpiration
	}
	s.cache.Set(key, slices.Clone(value), ttl)
	return nil
}

// Del removes a key.
func (s *Store) Del(_ context.Context, key string) error {
	s.cache.Delete(key)
	return nil
}

// Len reports the number of stored items, expired ones included until cleanup.
func (s *Store) Len() int { return s.cache.ItemCount() }
