package magicchat

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kailas-cloud/magicchat/internal/db"
	"github.com/kailas-cloud/magicchat/internal/db/memory"
	dbRedis "github.com/kailas-cloud/magicchat/internal/db/redis"
	"github.com/kailas-cloud/magicchat/internal/domain/chat"
	"github.com/kailas-cloud/magicchat/internal/repository/querycache"
	sessionrepo "github.com/kailas-cloud/magicchat/internal/repository/session"
	openaiTransport "github.com/kailas-cloud/magicchat/internal/transport/openai"
	"github.com/kailas-cloud/magicchat/internal/transport/weaviate"
	chatuc "github.com/kailas-cloud/magicchat/internal/usecase/chat"
	healthuc "github.com/kailas-cloud/magicchat/internal/usecase/health"
)

const (
	defaultReadinessTimeout = 10 * time.Second
	defaultQueryTimeout     = 30 * time.Second
	cacheKeyPrefix          = "magicchat:"
)

// Внутренние интерфейсы для подмены в тестах.
type sessionStore interface {
	Create() *chat.Session
	Get(id string) (*chat.Session, error)
	Delete(id string) error
	Count() int
}

type chatUseCase interface {
	Ask(ctx context.Context, sess *chat.Session, in chatuc.Input, onChunk func(string)) (chatuc.Reply, error)
}

// Client is the magicchat SDK entry point.
type Client struct {
	cache     db.Store
	sessions  sessionStore
	chatSvc   chatUseCase
	healthSvc healthUseCase
	obs       *observer
}

// New creates a Client. When a Redis or Valkey cache is configured, ctx bounds
// the initial readiness check.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{timeout: defaultQueryTimeout}
	for _, o := range opts {
		o.apply(cfg)
	}

	if cfg.weaviateURL == "" {
		return nil, errors.New("magicchat: weaviate URL required (use WithWeaviate)")
	}

	wv, err := weaviate.NewClient(weaviate.Config{
		URL:       cfg.weaviateURL,
		APIKey:    cfg.weaviateKey,
		OpenAIKey: cfg.openAIKey,
		Class:     cfg.class,
		Timeout:   cfg.timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("magicchat: %w", err)
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	store, err := createStore(cfg)
	if err != nil {
		return nil, err
	}
	if store != nil {
		if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
			store.Close()
			return nil, fmt.Errorf("magicchat: cache not ready: %w", err)
		}
	}

	return wireClient(wv, store, cfg, obs), nil
}

// createStore returns nil when no cache is configured.
func createStore(cfg *clientConfig) (db.Store, error) {
	switch cfg.cacheDriver {
	case "":
		return nil, nil
	case "memory":
		return memory.NewStore(time.Minute), nil
	case "redis", "valkey":
		s, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.cacheAddrs,
			Password: cfg.cachePassword,
		})
		if err != nil {
			return nil, fmt.Errorf("magicchat: create %s store: %w", cfg.cacheDriver, err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("magicchat: unknown cache driver %q", cfg.cacheDriver)
	}
}

func wireClient(wv *weaviate.Client, store db.Store, cfg *clientConfig, obs *observer) *Client {
	var searcher chatuc.Searcher = wv
	// Pass nil interface (not typed nil pointer!) when the cache is off.
	var cachePinger healthuc.CachePinger
	if store != nil {
		searcher = querycache.New(wv, store, querycache.Options{
			KeyPrefix: cacheKeyPrefix,
			TTL:       cfg.cacheTTL,
		}, nil)
		cachePinger = store
	}

	var keyChecker healthuc.KeyChecker
	if cfg.openAIKey != "" {
		keyChecker = openaiTransport.NewChecker(&openaiTransport.Config{APIKey: cfg.openAIKey})
	}

	return &Client{
		cache:     store,
		sessions:  sessionrepo.New(sessionrepo.Config{IdleTTL: cfg.sessionIdleTTL}, nil),
		chatSvc:   chatuc.New(searcher, nil),
		healthSvc: healthuc.New(wv, keyChecker, cachePinger),
		obs:       obs,
	}
}

// Close releases all resources.
func (c *Client) Close() {
	if c.cache != nil {
		c.cache.Close()
	}
}

// NewSession starts a chat session and returns its ID. The history opens with
// the assistant's greeting.
func (c *Client) NewSession() string {
	start := time.Now()
	sess := c.sessions.Create()
	c.obs.observe("new_session", start, nil, "session_id", sess.ID())
	return sess.ID()
}

// EndSession discards a session and its history.
func (c *Client) EndSession(id string) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("end_session", start, err, "session_id", id) }()

	if err = c.sessions.Delete(id); err != nil {
		return fmt.Errorf("end session: %w", err)
	}
	return nil
}

// Sessions returns the number of live sessions.
func (c *Client) Sessions() int {
	return c.sessions.Count()
}

// History returns the session's turns in chronological order.
func (c *Client) History(id string) (turns []Turn, err error) {
	start := time.Now()
	defer func() { c.obs.observe("history", start, err, "session_id", id) }()

	sess, err := c.sessions.Get(id)
	if err != nil {
		return nil, fmt.Errorf("history: %w", err)
	}
	turns = make([]Turn, 0, sess.Len())
	for t := range sess.Replay() {
		turns = append(turns, fromInternalTurn(t))
	}
	return turns, nil
}

// Ask runs one chat turn in the session. onChunk, when non-nil, receives the
// assistant reply piece by piece before Ask returns; the caller owns pacing.
// A failed turn keeps the user's utterance in the history.
func (c *Client) Ask(ctx context.Context, sessionID string, in Input, onChunk func(string)) (reply Reply, err error) {
	start := time.Now()
	defer func() { c.obs.observe("ask", start, err, "session_id", sessionID, "mode", in.Mode) }()

	sess, err := c.sessions.Get(sessionID)
	if err != nil {
		return Reply{}, fmt.Errorf("ask: %w", err)
	}
	if onChunk == nil {
		onChunk = func(string) {}
	}

	r, err := c.chatSvc.Ask(ctx, sess, chatuc.Input{
		Text:   in.Text,
		Preset: in.Preset,
		Mode:   in.Mode,
		Limit:  in.Limit,
	}, onChunk)
	if err != nil {
		return Reply{}, fmt.Errorf("ask: %w", err)
	}
	return fromInternalReply(r), nil
}
