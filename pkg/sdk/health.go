package magicchat

import (
	"context"
	"time"

	healthuc "github.com/kailas-cloud/magicchat/internal/usecase/health"
)

// HealthStatus represents the aggregated system health.
type HealthStatus struct {
	Status string            // "ok", "degraded", "error"
	Checks map[string]string // weaviate, openai, cache → "ok"/"error"
}

// Healthy reports whether search is available. A degraded client can still answer.
func (h HealthStatus) Healthy() bool {
	return h.Status != string(healthuc.Unhealthy)
}

// Health checks the card database, the OpenAI key and the cache.
func (c *Client) Health(ctx context.Context) HealthStatus {
	start := time.Now()
	report := c.healthSvc.Check(ctx)
	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}
	c.obs.observe("health", start, nil, "status", string(report.Status))
	return HealthStatus{
		Status: string(report.Status),
		Checks: checks,
	}
}

// healthUseCase is the internal interface for health checks.
type healthUseCase interface {
	Check(ctx context.Context) healthuc.Report
}
