package health

import (
	"context"
	"time"
)

// cachePingTimeout bounds the cache probe.
const cachePingTimeout = 2 * time.Second

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates the catalog serves but an optional component fails.
	Degraded Status = "degraded"
	// Unhealthy indicates the catalog cannot serve.
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

// Report aggregates health check results.
type Report struct {
	Status      Status
	Checks      map[string]CheckResult
	Books       int
	Fingerprint string
}

// Service coordinates health checks.
type Service struct {
	catalog CatalogInfo
	cache   CachePinger
}

// New creates a Service. cache can be nil.
func New(catalog CatalogInfo, cache CachePinger) *Service {
	return &Service{catalog: catalog, cache: cache}
}

// Check reports catalog and cache state. Only an unusable catalog is Unhealthy;
// a failing cache degrades the service.
func (s *Service) Check(ctx context.Context) Report {
	r := Report{Checks: make(map[string]CheckResult, 2), Status: Healthy}

	if s.catalog == nil || s.catalog.Len() == 0 {
		r.Checks["catalog"] = CheckError
		r.Status = Unhealthy
	} else {
		r.Checks["catalog"] = CheckOK
		r.Books = s.catalog.Len()
		r.Fingerprint = s.catalog.Fingerprint()
	}

	if s.cache == nil {
		return r
	}
	r.Checks["cache"] = s.pingCache(ctx)
	if r.Checks["cache"] == CheckError && r.Status == Healthy {
		r.Status = Degraded
	}
	return r
}

func (s *Service) pingCache(ctx context.Context) CheckResult {
	ctx, cancel := context.WithTimeout(ctx, cachePingTimeout)
	defer cancel()
	if err := s.cache.Ping(ctx); err != nil {
		return CheckError
	}
	return CheckOK
}
