// Package chi is the HTTP transport: JSON API, event-stream turns and the
// server-rendered chat page, routed with go-chi.
package chi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	gochi "github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/magicchat/internal/domain"
	"github.com/kailas-cloud/magicchat/internal/domain/chat"
	sessionrepo "github.com/kailas-cloud/magicchat/internal/repository/session"
	chatuc "github.com/kailas-cloud/magicchat/internal/usecase/chat"
	healthuc "github.com/kailas-cloud/magicchat/internal/usecase/health"
)

const maxBodyBytes = 64 << 10

// Options tune the HTTP server.
type Options struct {
	// RevealDelay is the pause after each streamed reply token.
	RevealDelay time.Duration
}

// Server serves the chat API and page.
type Server struct {
	sessions      *sessionrepo.Repo
	chat          *chatuc.Service
	health        *healthuc.Service
	revealDelay   time.Duration
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP server.
func NewServer(
	sessions *sessionrepo.Repo,
	chat *chatuc.Service,
	health *healthuc.Service,
	opts Options,
	logger *zap.Logger,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		sessions:      sessions,
		chat:          chat,
		health:        health,
		revealDelay:   opts.RevealDelay,
		logger:        logger,
		errorHandlers: defaultErrorHandlers(),
	}
}

// Routes registers every endpoint on r.
func (s *Server) Routes(r gochi.Router) {
	r.Get("/", s.Index)
	r.Get("/chat/{session}", s.ChatPage)
	r.Post("/chat/{session}", s.ChatSubmit)
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)

	r.Route("/api", func(r gochi.Router) {
		r.Get("/modes", s.ListModes)
		r.Get("/prompts", s.ListPrompts)
		r.Post("/sessions", s.CreateSession)
		r.Get("/sessions/{session}", s.GetSession)
		r.Delete("/sessions/{session}", s.DeleteSession)
		r.Post("/sessions/{session}/turns", s.PostTurn)
	})
}

// ListModes handles GET /api/modes.
func (s *Server) ListModes(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, modesToResponse())
}

// ListPrompts handles GET /api/prompts.
func (s *Server) ListPrompts(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, promptsToResponse())
}

// CreateSession handles POST /api/sessions.
func (s *Server) CreateSession(w http.ResponseWriter, _ *http.Request) {
	sess := s.sessions.Create()
	w.Header().Set("Location", "/api/sessions/"+sess.ID())
	writeJSON(w, http.StatusCreated, sessionToResponse(sess))
}

// GetSession handles GET /api/sessions/{session}.
func (s *Server) GetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Get(gochi.URLParam(r, "session"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionToResponse(sess))
}

// DeleteSession handles DELETE /api/sessions/{session}.
func (s *Server) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Delete(gochi.URLParam(r, "session")); err != nil {
		s.handleDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// PostTurn handles POST /api/sessions/{session}/turns. With Accept: text/event-stream
// the reply is streamed as "chunk" events followed by one "turn" event.
func (s *Server) PostTurn(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Get(gochi.URLParam(r, "session"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	var req TurnRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if wantsEventStream(r) {
		s.streamTurn(w, r, sess, req.input())
		return
	}

	reply, err := s.chat.Ask(r.Context(), sess, req.input(), nil)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, replyToResponse(reply))
}

func (s *Server) streamTurn(w http.ResponseWriter, r *http.Request, sess *chat.Session, in chatuc.Input) {
	sw := newSSEWriter(w)
	onChunk := func(c string) {
		if err := sw.send("chunk", chunkEvent{Text: c}); err != nil {
			s.logger.Debug("chunk not delivered", zap.Error(err))
		}
		if s.revealDelay > 0 {
			time.Sleep(s.revealDelay)
		}
	}

	reply, err := s.chat.Ask(r.Context(), sess, in, onChunk)
	if err != nil {
		if !sw.started {
			s.handleDomainError(w, err)
			return
		}
		s.logger.Warn("domain error", zap.Error(err))
		_ = sw.send("error", ErrorResponse{Code: CodeInternalError, Message: safeDomainMessage(err)})
		return
	}
	if err := sw.send("turn", replyToResponse(reply)); err != nil {
		s.logger.Debug("turn event not delivered", zap.Error(err))
	}
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		httpStatus = http.StatusServiceUnavailable
	}
	writeJSON(w, httpStatus, report)
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// Index handles GET / by starting a session and redirecting to its page.
func (s *Server) Index(w http.ResponseWriter, r *http.Request) {
	sess := s.sessions.Create()
	http.Redirect(w, r, "/chat/"+sess.ID(), http.StatusSeeOther)
}

// ChatPage handles GET /chat/{session}.
func (s *Server) ChatPage(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Get(gochi.URLParam(r, "session"))
	if errors.Is(err, domain.ErrSessionNotFound) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	q := r.URL.Query()
	s.renderPage(w, http.StatusOK, newPageData(sess, q.Get("mode"), atoi(q.Get("limit")), ""))
}

// ChatSubmit handles POST /chat/{session} from the page form.
func (s *Server) ChatSubmit(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Get(gochi.URLParam(r, "session"))
	if errors.Is(err, domain.ErrSessionNotFound) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid form: "+err.Error())
		return
	}
	in := formInput(r)

	if _, err := s.chat.Ask(r.Context(), sess, in, nil); err != nil {
		s.logger.Warn("domain error", zap.Error(err))
		s.renderPage(w, s.statusOf(err), newPageData(sess, in.Mode, in.Limit, pageError(err)))
		return
	}
	http.Redirect(w, r, pageURL(sess.ID(), in.Mode, in.Limit), http.StatusSeeOther)
}
