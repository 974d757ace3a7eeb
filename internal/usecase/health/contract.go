package health

import "context"

// DatabaseChecker checks vector database readiness.
type DatabaseChecker interface {
	HealthCheck(ctx context.Context) error
}

// KeyChecker checks that the AI service accepts the configured key.
type KeyChecker interface {
	HealthCheck(ctx context.Context) error
}

// CachePinger checks result cache availability.
type CachePinger interface {
	Ping(ctx context.Context) error
}
