package chat

import (
	"fmt"
	"iter"
	"slices"
	"sync"
	"time"

	"github.com/kailas-cloud/magicchat/internal/domain"
)

// State is the turn-processing state of a session.
type State int

// Session states. A turn walks Idle -> AwaitingQuery -> Submitted -> Streaming -> Idle.
const (
	Idle State = iota
	AwaitingQuery
	Submitted
	Streaming
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case AwaitingQuery:
		return "awaiting_query"
	case Submitted:
		return "submitted"
	case Streaming:
		return "streaming"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Session owns one chat history and the state of its in-flight turn.
type Session struct {
	id        string
	createdAt time.Time

	mu      sync.Mutex
	state   State
	history History
}

// NewSession creates an idle session with an empty history.
func NewSession(id string, createdAt time.Time) *Session {
	return &Session{id: id, createdAt: createdAt}
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// CreatedAt returns the session creation time.
func (s *Session) CreatedAt() time.Time { return s.createdAt }

// State returns the current turn state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Begin starts a turn. Only an idle session accepts input.
func (s *Session) Begin() error {
	return s.transition(Idle, AwaitingQuery)
}

// Submit marks the query as sent to the database.
func (s *Session) Submit() error {
	return s.transition(AwaitingQuery, Submitted)
}

// Stream marks the reply as being revealed.
func (s *Session) Stream() error {
	return s.transition(Submitted, Streaming)
}

// Finish returns the session to Idle from any state.
func (s *Session) Finish() {
	s.mu.Lock()
	s.state = Idle
	s.mu.Unlock()
}

func (s *Session) transition(from, to State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != from {
		if from == Idle {
			return fmt.Errorf("%w: %s", domain.ErrSessionBusy, s.state)
		}
		return fmt.Errorf("invalid transition %s -> %s (current %s)", from, to, s.state)
	}
	s.state = to
	return nil
}

// Append adds a turn to the history.
func (s *Session) Append(t Turn) {
	s.mu.Lock()
	s.history.Append(t)
	s.mu.Unlock()
}

// Replay yields a snapshot of the history in insertion order.
func (s *Session) Replay() iter.Seq[Turn] {
	s.mu.Lock()
	snapshot := slices.Collect(s.history.Replay())
	s.mu.Unlock()
	return slices.Values(snapshot)
}

// Len returns the number of turns in the history.
func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.Len()
}
