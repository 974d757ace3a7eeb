package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/kailas-cloud/magicchat/internal/domain"
)

// ErrorCode is the machine-readable error class in API error bodies.
type ErrorCode string

// API error codes.
const (
	CodeBadRequest       ErrorCode = "bad_request"
	CodeUnauthorized     ErrorCode = "unauthorized"
	CodeValidationFailed ErrorCode = "validation_failed"
	CodeUnknownMode      ErrorCode = "unknown_mode"
	CodeSessionNotFound  ErrorCode = "session_not_found"
	CodeSessionBusy      ErrorCode = "session_busy"
	CodeExternalQuery    ErrorCode = "external_query_failed"
	CodeInternalError    ErrorCode = "internal_error"
)

// ErrorResponse is the JSON error body.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

func defaultErrorHandlers() []errorHandler {
	return []errorHandler{
		sentinelHandler(domain.ErrSessionNotFound, http.StatusNotFound, CodeSessionNotFound),
		sentinelHandler(domain.ErrSessionBusy, http.StatusConflict, CodeSessionBusy),
		sentinelHandler(domain.ErrUnknownMode, http.StatusBadRequest, CodeUnknownMode),
		sentinelHandler(domain.ErrEmptyUtterance, http.StatusBadRequest, CodeValidationFailed),
		sentinelHandler(domain.ErrInvalidPreset, http.StatusBadRequest, CodeValidationFailed),
		externalQueryHandler,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrSessionNotFound,
		domain.ErrSessionBusy,
		domain.ErrUnknownMode,
		domain.ErrEmptyUtterance,
		domain.ErrInvalidPreset,
		domain.ErrExternalQuery,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

// externalQueryHandler maps database failures to 502 and exposes the upstream status.
func externalQueryHandler(w http.ResponseWriter, err error, msg string) bool {
	if !errors.Is(err, domain.ErrExternalQuery) {
		return false
	}
	var qe *domain.QueryError
	if errors.As(err, &qe) && qe.Status != 0 {
		writeJSON(w, http.StatusBadGateway, map[string]any{
			"code":            CodeExternalQuery,
			"message":         msg,
			"upstream_status": qe.Status,
		})
		return true
	}
	writeError(w, http.StatusBadGateway, CodeExternalQuery, msg)
	return true
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, CodeInternalError, "internal error")
}

// statusOf returns the HTTP status handleDomainError would use for err.
func (s *Server) statusOf(err error) int {
	rec := &statusRecorder{header: http.Header{}}
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(rec, err, msg) {
			return rec.status
		}
	}
	return http.StatusInternalServerError
}

// statusRecorder captures the status an errorHandler writes.
type statusRecorder struct {
	header http.Header
	status int
}

func (r *statusRecorder) Header() http.Header         { return r.header }
func (r *statusRecorder) Write(b []byte) (int, error) { return len(b), nil }
func (r *statusRecorder) WriteHeader(status int)      { r.status = status }
