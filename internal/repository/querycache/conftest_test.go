package querycache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/magicchat/internal/db"
	"github.com/kailas-cloud/magicchat/internal/domain/search/query"
	"github.com/kailas-cloud/magicchat/internal/domain/search/result"
)

type mockSearcher struct {
	set   result.Set
	err   error
	calls int
}

func (m *mockSearcher) Search(_ context.Context, _ query.Query) (result.Set, error) {
	m.calls++
	return m.set, m.err
}

func (m *mockSearcher) Encode(q query.Query) (string, error) {
	if query.LimitOf(q) <= 0 {
		return "", fmt.Errorf("limit must be positive")
	}
	return fmt.Sprintf("%s:%#v", q.Mode(), q), nil
}

// mockKVStore implements the consumer interface for tests.
type mockKVStore struct {
	getFn func(ctx context.Context, key string) ([]byte, error)
	setFn func(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

func (m *mockKVStore) Get(ctx context.Context, key string) ([]byte, error) {
	if m.getFn != nil {
		return m.getFn(ctx, key)
	}
	return nil, db.ErrKeyNotFound
}

func (m *mockKVStore) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if m.setFn != nil {
		return m.setFn(ctx, key, value, ttl)
	}
	return nil
}

func newTestCachedSearcher(t *testing.T, inner *mockSearcher, opts Options) (*CachedSearcher, *mockKVStore) {
	t.Helper()
	ms := &mockKVStore{}
	cs := New(inner, ms, opts, zap.NewNop())
	return cs, ms
}
