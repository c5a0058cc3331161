package bookrec

import (
	"context"

	healthuc "github.com/kailas-cloud/bookrec/internal/usecase/health"
)

// HealthStatus represents the client health.
type HealthStatus struct {
	Status      string            `json:"status"` // "ok", "error"
	Checks      map[string]string `json:"checks"` // component → "ok"/"error"
	Books       int               `json:"books"`
	Fingerprint string            `json:"fingerprint,omitempty"`
}

// Health reports whether the catalog can serve queries.
func (c *Client) Health(ctx context.Context) HealthStatus {
	report := c.healthSvc.Check(ctx)
	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}
	return HealthStatus{
		Status:      string(report.Status),
		Checks:      checks,
		Books:       report.Books,
		Fingerprint: report.Fingerprint,
	}
}

// healthUseCase is the internal interface for health checks.
type healthUseCase interface {
	Check(ctx context.Context) healthuc.Report
}
