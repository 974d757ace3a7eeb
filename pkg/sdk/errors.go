package magicchat

import "github.com/kailas-cloud/magicchat/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrSessionNotFound = domain.ErrSessionNotFound
	ErrSessionBusy     = domain.ErrSessionBusy
	ErrUnknownMode     = domain.ErrUnknownMode
	ErrEmptyUtterance  = domain.ErrEmptyUtterance
	ErrInvalidPreset   = domain.ErrInvalidPreset
	ErrExternalQuery   = domain.ErrExternalQuery
)

// QueryError carries the upstream HTTP status of a failed database query.
// Use errors.As() to extract it.
type QueryError = domain.QueryError
