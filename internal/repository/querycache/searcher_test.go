package querycache

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/kailas-cloud/magicchat/internal/db"
	"github.com/kailas-cloud/magicchat/internal/db/memory"
	"github.com/kailas-cloud/magicchat/internal/domain"
	"github.com/kailas-cloud/magicchat/internal/domain/search/query"
	"github.com/kailas-cloud/magicchat/internal/domain/search/result"
)

var vampires = query.BM25{Query: "vampires", Limit: 6}

func TestSearch_CacheMiss(t *testing.T) {
	inner := &mockSearcher{set: result.Set{Cards: []result.Card{{Name: "Vampire Nighthawk"}}}}
	cs, ms := newTestCachedSearcher(t, inner, Options{KeyPrefix: "magicchat:", TTL: time.Hour})

	var setKey string
	var setTTL time.Duration
	ms.setFn = func(_ context.Context, key string, _ []byte, ttl time.Duration) error {
		setKey, setTTL = key, ttl
		return nil
	}

	set, err := cs.Search(context.Background(), vampires)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if set.Len() != 1 || set.Cards[0].Name != "Vampire Nighthawk" {
		t.Fatalf("unexpected set: %+v", set)
	}
	if inner.calls != 1 {
		t.Errorf("inner calls = %d, want 1", inner.calls)
	}
	if !strings.HasPrefix(setKey, "magicchat:query_cache:") {
		t.Errorf("unexpected key %q", setKey)
	}
	if setTTL != time.Hour {
		t.Errorf("ttl = %v, want 1h", setTTL)
	}
}

func TestSearch_CacheHit(t *testing.T) {
	inner := &mockSearcher{}
	cs, ms := newTestCachedSearcher(t, inner, Options{})

	cached, _ := json.Marshal(result.Set{
		Cards:     []result.Card{{Name: "Sol Ring"}},
		Generated: "Sol Ring, obviously.",
	})
	ms.getFn = func(_ context.Context, _ string) ([]byte, error) {
		return cached, nil
	}

	set, err := cs.Search(context.Background(), vampires)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inner.calls != 0 {
		t.Errorf("inner must not be called on hit, got %d calls", inner.calls)
	}
	if set.Cards[0].Name != "Sol Ring" || set.Generated != "Sol Ring, obviously." {
		t.Errorf("unexpected cached set: %+v", set)
	}
}

func TestSearch_InnerError(t *testing.T) {
	inner := &mockSearcher{err: domain.NewQueryError(500, "boom")}
	cs, ms := newTestCachedSearcher(t, inner, Options{})

	var setCalled bool
	ms.setFn = func(context.Context, string, []byte, time.Duration) error {
		setCalled = true
		return nil
	}

	_, err := cs.Search(context.Background(), vampires)
	if !errors.Is(err, domain.ErrExternalQuery) {
		t.Fatalf("expected ErrExternalQuery, got %v", err)
	}
	if setCalled {
		t.Error("failures must not be cached")
	}
}

func TestSearch_GenerateErrorNotCached(t *testing.T) {
	inner := &mockSearcher{set: result.Set{GenerateError: "rate limited"}}
	cs, ms := newTestCachedSearcher(t, inner, Options{})

	var setCalled bool
	ms.setFn = func(context.Context, string, []byte, time.Duration) error {
		setCalled = true
		return nil
	}

	if _, err := cs.Search(context.Background(), query.Generative{Concepts: []string{"x"}, Limit: 3, Task: "t"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if setCalled {
		t.Error("set with generation error must not be cached")
	}
}

func TestSearch_StoreErrorsAreSoft(t *testing.T) {
	inner := &mockSearcher{set: result.Set{Cards: []result.Card{{Name: "x"}}}}
	cs, ms := newTestCachedSearcher(t, inner, Options{})

	ms.getFn = func(context.Context, string) ([]byte, error) {
		return nil, &db.Error{Op: db.OpGet, Err: errors.New("connection reset")}
	}
	ms.setFn = func(context.Context, string, []byte, time.Duration) error {
		return &db.Error{Op: db.OpSet, Err: errors.New("connection reset")}
	}

	set, err := cs.Search(context.Background(), vampires)
	if err != nil {
		t.Fatalf("store failure must not fail the search: %v", err)
	}
	if set.Len() != 1 {
		t.Errorf("unexpected set: %+v", set)
	}
}

func TestSearch_CorruptEntryIsMiss(t *testing.T) {
	inner := &mockSearcher{set: result.Set{Cards: []result.Card{{Name: "fresh"}}}}
	cs, ms := newTestCachedSearcher(t, inner, Options{})

	ms.getFn = func(context.Context, string) ([]byte, error) {
		return []byte("{not json"), nil
	}

	set, err := cs.Search(context.Background(), vampires)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inner.calls != 1 || set.Cards[0].Name != "fresh" {
		t.Errorf("corrupt entry should fall through to inner: calls=%d set=%+v", inner.calls, set)
	}
}

func TestSearch_EncodeError(t *testing.T) {
	inner := &mockSearcher{}
	cs, _ := newTestCachedSearcher(t, inner, Options{})

	if _, err := cs.Search(context.Background(), query.BM25{Query: "x"}); err == nil {
		t.Fatal("expected encode error")
	}
	if inner.calls != 0 {
		t.Error("inner must not be called when encoding fails")
	}
}

func TestSearch_MemoryStoreRoundTrip(t *testing.T) {
	inner := &mockSearcher{set: result.Set{Cards: []result.Card{{Name: "Lightning Bolt", Distance: 0.12}}}}
	counter := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "test_query_cache_total"}, []string{"result"})
	store := memory.NewStore(time.Minute)
	cs := New(inner, store, Options{CacheTotal: counter}, nil)
	ctx := context.Background()

	for range 3 {
		set, err := cs.Search(ctx, vampires)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if set.Cards[0].Name != "Lightning Bolt" || set.Cards[0].Distance != 0.12 {
			t.Fatalf("unexpected set: %+v", set)
		}
	}
	if inner.calls != 1 {
		t.Errorf("inner calls = %d, want 1", inner.calls)
	}
	if got := testutil.ToFloat64(counter.WithLabelValues("hit")); got != 2 {
		t.Errorf("hits = %v, want 2", got)
	}
	if got := testutil.ToFloat64(counter.WithLabelValues("miss")); got != 1 {
		t.Errorf("misses = %v, want 1", got)
	}

	other := query.BM25{Query: "dragons", Limit: 6}
	if _, err := cs.Search(ctx, other); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inner.calls != 2 {
		t.Errorf("distinct query must miss, inner calls = %d", inner.calls)
	}
}

func TestSearch_VectorsNotCached(t *testing.T) {
	inner := &mockSearcher{set: result.Set{Cards: []result.Card{
		{Name: "Vampire Nighthawk", Vector: []float32{0.1, 0.2, 0.3}},
		{Name: "Bloodghast", Vector: []float32{0.4}},
	}}}
	cs, ms := newTestCachedSearcher(t, inner, Options{})

	var stored []byte
	ms.setFn = func(_ context.Context, _ string, value []byte, _ time.Duration) error {
		stored = value
		return nil
	}

	set, err := cs.Search(context.Background(), vampires)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(set.Cards[0].Vector) != 3 {
		t.Errorf("returned set lost its vectors: %+v", set.Cards[0])
	}
	if strings.Contains(string(stored), `"vector"`) {
		t.Errorf("cached entry carries vectors: %s", stored)
	}

	var cached result.Set
	if err := json.Unmarshal(stored, &cached); err != nil {
		t.Fatalf("unmarshal cached: %v", err)
	}
	if cached.Len() != 2 || cached.Cards[1].Name != "Bloodghast" {
		t.Errorf("cached set = %+v", cached)
	}
}
