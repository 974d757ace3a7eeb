// Package session is the in-memory registry of live chat sessions.
package session

import (
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"github.com/kailas-cloud/magicchat/internal/domain"
	"github.com/kailas-cloud/magicchat/internal/domain/chat"
	"github.com/kailas-cloud/magicchat/internal/domain/search/catalog"
)

// Config controls session expiry.
type Config struct {
	// IdleTTL evicts a session not accessed for this long.
	IdleTTL time.Duration
	// CleanupEvery is the purge interval for expired sessions.
	CleanupEvery time.Duration
}

// Repo keeps sessions in process memory. Evicting a session destroys its history.
type Repo struct {
	cache  *cache.Cache
	now    func() time.Time
	logger *zap.Logger
}

// New creates a session registry.
func New(cfg Config, logger *zap.Logger) *Repo {
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = time.Hour
	}
	if cfg.CleanupEvery <= 0 {
		cfg.CleanupEvery = 10 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Repo{
		cache:  cache.New(cfg.IdleTTL, cfg.CleanupEvery),
		now:    time.Now,
		logger: logger,
	}
	r.cache.OnEvicted(func(id string, _ any) {
		r.logger.Debug("Session ended", zap.String("session_id", id))
	})
	return r
}

// Create starts a session whose history opens with the greeting turn.
func (r *Repo) Create() *chat.Session {
	now := r.now()
	s := chat.NewSession(uuid.NewString(), now)
	s.Append(chat.Turn{
		Role:      chat.RoleAssistant,
		Content:   catalog.Greeting,
		CreatedAt: now,
	})
	r.cache.Set(s.ID(), s, cache.DefaultExpiration)
	r.logger.Debug("Session started", zap.String("session_id", s.ID()))
	return s
}

// Get returns a live session and extends its idle deadline.
func (r *Repo) Get(id string) (*chat.Session, error) {
	x, found := r.cache.Get(id)
	if !found {
		return nil, domain.ErrSessionNotFound
	}
	s := x.(*chat.Session)
	// Replace fails when a concurrent Delete or expiry removed the entry.
	if err := r.cache.Replace(id, s, cache.DefaultExpiration); err != nil {
		return nil, domain.ErrSessionNotFound
	}
	return s, nil
}

// Delete ends a session.
func (r *Repo) Delete(id string) error {
	if _, found := r.cache.Get(id); !found {
		return domain.ErrSessionNotFound
	}
	r.cache.Delete(id)
	return nil
}

// Count returns the number of live sessions, expired ones included until cleanup.
func (r *Repo) Count() int {
	return r.cache.ItemCount()
}
