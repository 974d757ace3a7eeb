package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates an optional component failed; queries still work.
	Degraded Status = "degraded"
	// Unhealthy indicates the vector database is unreachable.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Check names.
const (
	CheckDatabase = "weaviate"
	CheckOpenAI   = "openai"
	CheckCache    = "cache"
)

// Report aggregates health check results.
type Report struct {
	Status Status                 `json:"status"`
	Checks map[string]CheckResult `json:"checks"`
}

// Service coordinates health checks.
type Service struct {
	db     DatabaseChecker
	openai KeyChecker
	cache  CachePinger
}

// New creates a Service. openai and cache can be nil.
func New(db DatabaseChecker, openai KeyChecker, cache CachePinger) *Service {
	return &Service{db: db, openai: openai, cache: cache}
}

// Check runs health checks against all components.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)

	checks[CheckDatabase] = result(s.db.HealthCheck(ctx))
	if s.openai != nil {
		checks[CheckOpenAI] = result(s.openai.HealthCheck(ctx))
	}
	if s.cache != nil {
		checks[CheckCache] = result(s.cache.Ping(ctx))
	}

	status := Healthy
	for _, v := range checks {
		if v == CheckError {
			status = Degraded
			break
		}
	}
	if checks[CheckDatabase] == CheckError {
		status = Unhealthy
	}

	return Report{Status: status, Checks: checks}
}

func result(err error) CheckResult {
	if err != nil {
		return CheckError
	}
	return CheckOK
}
