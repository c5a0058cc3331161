package health

import (
	"context"
	"errors"
	"testing"
)

// --- Mocks ---

type mockCatalog struct {
	books int
}

func (m *mockCatalog) Len() int            { return m.books }
func (m *mockCatalog) Fingerprint() string { return "abc" }

type mockCachePinger struct {
	err error
}

func (m *mockCachePinger) Ping(_ context.Context) error { return m.err }

// --- Tests ---

func TestCheck_AllHealthy(t *testing.T) {
	svc := New(&mockCatalog{books: 3}, &mockCachePinger{})
	r := svc.Check(context.Background())

	if r.Status != Healthy {
		t.Errorf("expected %q, got %q", Healthy, r.Status)
	}
	if r.Checks["catalog"] != CheckOK {
		t.Errorf("expected catalog %q, got %q", CheckOK, r.Checks["catalog"])
	}
	if r.Checks["cache"] != CheckOK {
		t.Errorf("expected cache %q, got %q", CheckOK, r.Checks["cache"])
	}
	if r.Books != 3 || r.Fingerprint != "abc" {
		t.Errorf("unexpected catalog info: %d %q", r.Books, r.Fingerprint)
	}
}

func TestCheck_CacheError(t *testing.T) {
	svc := New(&mockCatalog{books: 3}, &mockCachePinger{err: errors.New("conn refused")})
	r := svc.Check(context.Background())

	if r.Status != Degraded {
		t.Errorf("expected %q, got %q", Degraded, r.Status)
	}
	if r.Checks["cache"] != CheckError {
		t.Errorf("expected cache %q, got %q", CheckError, r.Checks["cache"])
	}
}

func TestCheck_EmptyCatalog(t *testing.T) {
	svc := New(&mockCatalog{}, &mockCachePinger{err: errors.New("down")})
	r := svc.Check(context.Background())

	if r.Status != Unhealthy {
		t.Errorf("expected %q, got %q", Unhealthy, r.Status)
	}
	if r.Checks["catalog"] != CheckError {
		t.Error("expected catalog error")
	}
}

func TestCheck_NoCache(t *testing.T) {
	svc := New(&mockCatalog{books: 1}, nil)
	r := svc.Check(context.Background())

	if r.Status != Healthy {
		t.Errorf("expected %q, got %q", Healthy, r.Status)
	}
	if _, ok := r.Checks["cache"]; ok {
		t.Error("cache check should be absent when cache is nil")
	}
}

type deadlineCachePinger struct {
	hadDeadline bool
}

func (d *deadlineCachePinger) Ping(ctx context.Context) error {
	_, d.hadDeadline = ctx.Deadline()
	return nil
}

func TestCheck_CachePingIsBounded(t *testing.T) {
	pinger := &deadlineCachePinger{}
	New(&mockCatalog{books: 1}, pinger).Check(context.Background())

	if !pinger.hadDeadline {
		t.Error("expected the cache ping to run under a deadline")
	}
}

func TestCheck_EmptyCatalogOutranksCache(t *testing.T) {
	r := New(&mockCatalog{}, &mockCachePinger{err: errors.New("down")}).Check(context.Background())

	if r.Status != Unhealthy {
		t.Errorf("expected %q, got %q", Unhealthy, r.Status)
	}
}
