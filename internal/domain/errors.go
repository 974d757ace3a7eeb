package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrSessionNotFound signals a missing or expired chat session.
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionBusy signals that a session is still processing a turn.
	ErrSessionBusy = errors.New("session busy")
	// ErrUnknownMode signals an unsupported search mode name.
	ErrUnknownMode = errors.New("unknown search mode")
	// ErrEmptyUtterance signals an empty user input.
	ErrEmptyUtterance = errors.New("empty utterance")
	// ErrInvalidPreset signals an out-of-range preset prompt index.
	ErrInvalidPreset = errors.New("invalid preset prompt")

	// ErrExternalQuery signals a failed or malformed response from the vector database.
	ErrExternalQuery = errors.New("external query failed")
	// ErrCacheMiss signals that a cached result set is absent.
	ErrCacheMiss = errors.New("cache miss")
)

// QueryError wraps ErrExternalQuery with the upstream HTTP status (0 for transport errors).
type QueryError struct {
	Status  int
	Message string
}

func (e *QueryError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("%s: %s", ErrExternalQuery.Error(), e.Message)
	}
	return fmt.Sprintf("%s: status %d: %s", ErrExternalQuery.Error(), e.Status, e.Message)
}

func (e *QueryError) Unwrap() error { return ErrExternalQuery }

// NewQueryError creates an external query error.
func NewQueryError(status int, message string) error {
	return &QueryError{Status: status, Message: message}
}
