package neighborcache

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"

	"github.com/kailas-cloud/bookrec/internal/db"
	"github.com/kailas-cloud/bookrec/internal/domain"
	"github.com/kailas-cloud/bookrec/internal/domain/neighbor"
)

func TestNearest_CacheMiss(t *testing.T) {
	c := newCatalog(t, "0123456789abcdef0123", "Dune", "Cosmos")
	inner := &mockFinder{result: []neighbor.Neighbor{neighbor.New(c.books["Cosmos"], 0.25)}}
	cached, ms := newTestCached(t, inner, c)

	var (
		setKey  string
		setData []byte
		setTTL  time.Duration
	)
	ms.setFn = func(_ context.Context, key string, value []byte, ttl time.Duration) error {
		setKey, setData, setTTL = key, value, ttl
		return nil
	}

	ns, err := cached.Nearest(context.Background(), "Dune", 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ns) != 1 || ns[0].Distance() != 0.25 {
		t.Fatalf("unexpected neighbors: %v", ns)
	}
	if inner.calls != 1 {
		t.Fatalf("expected 1 inner call, got %d", inner.calls)
	}
	if !strings.HasPrefix(setKey, "bookrec:nn:0123456789abcdef:") || !strings.HasSuffix(setKey, ":3") {
		t.Fatalf("unexpected key layout: %q", setKey)
	}
	if string(setData) != `[{"t":"Cosmos","d":0.25}]` {
		t.Fatalf("unexpected cached payload: %s", setData)
	}
	if setTTL != time.Hour {
		t.Fatalf("expected 1h ttl, got %v", setTTL)
	}
}

func TestNearest_CacheHit(t *testing.T) {
	c := newCatalog(t, "fp", "Dune", "Cosmos", "Sapiens")
	inner := &mockFinder{}
	cached, ms := newTestCached(t, inner, c)

	ms.getFn = func(_ context.Context, _ string) ([]byte, error) {
		return []byte(`[{"t":"Sapiens","d":0.1},{"t":"Cosmos","d":0.4}]`), nil
	}

	ns, err := cached.Nearest(context.Background(), "Dune", 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inner.calls != 0 {
		t.Fatalf("expected no inner calls on hit, got %d", inner.calls)
	}
	if len(ns) != 2 {
		t.Fatalf("expected 2 neighbors, got %d", len(ns))
	}
	first := ns[0].Book()
	if first.Title() != "Sapiens" || first.Author() != "author of Sapiens" {
		t.Fatalf("expected rehydrated Sapiens, got %q by %q", first.Title(), first.Author())
	}
	if ns[1].Distance() != 0.4 {
		t.Fatalf("expected distance 0.4, got %v", ns[1].Distance())
	}
}

func TestNearest_KeyIsCaseInsensitiveAndPerK(t *testing.T) {
	c := newCatalog(t, "fp", "Dune")
	cached, _ := newTestCached(t, &mockFinder{}, c)

	if cached.cacheKey("Dune", 2) != cached.cacheKey("DUNE", 2) {
		t.Fatal("keys must not depend on title case")
	}
	if cached.cacheKey("Dune", 2) == cached.cacheKey("Dune", 3) {
		t.Fatal("keys must depend on k")
	}

	other := New(&mockFinder{}, &mockKVStore{}, newCatalog(t, "other", "Dune"), Config{KeyPrefix: "x:"}, nil, zap.NewNop())
	if cached.cacheKey("Dune", 2) == other.cacheKey("Dune", 2) {
		t.Fatal("keys must depend on the snapshot fingerprint")
	}
	if !strings.HasPrefix(other.cacheKey("Dune", 2), "x:nn:other:") {
		t.Fatalf("custom prefix ignored: %q", other.cacheKey("Dune", 2))
	}
}

func TestNearest_StaleEntryFallsBackToInner(t *testing.T) {
	c := newCatalog(t, "fp", "Dune", "Cosmos")
	inner := &mockFinder{result: []neighbor.Neighbor{neighbor.New(c.books["Cosmos"], 0.3)}}
	cached, ms := newTestCached(t, inner, c)

	ms.getFn = func(_ context.Context, _ string) ([]byte, error) {
		return []byte(`[{"t":"Removed Book","d":0.1}]`), nil
	}

	ns, err := cached.Nearest(context.Background(), "Dune", 1)
	if err != nil {
		t.Fatal(err)
	}
	if inner.calls != 1 || len(ns) != 1 {
		t.Fatalf("expected fallback to inner, calls=%d len=%d", inner.calls, len(ns))
	}
}

func TestNearest_CorruptEntry(t *testing.T) {
	c := newCatalog(t, "fp", "Dune", "Cosmos")
	inner := &mockFinder{result: []neighbor.Neighbor{neighbor.New(c.books["Cosmos"], 0.3)}}
	cached, ms := newTestCached(t, inner, c)

	ms.getFn = func(_ context.Context, _ string) ([]byte, error) {
		return []byte(`not json`), nil
	}

	if _, err := cached.Nearest(context.Background(), "Dune", 1); err != nil {
		t.Fatal(err)
	}
	if inner.calls != 1 {
		t.Fatalf("expected fallback to inner, got %d calls", inner.calls)
	}
}

func TestNearest_StoreErrorsDegradeToMiss(t *testing.T) {
	c := newCatalog(t, "fp", "Dune", "Cosmos")
	inner := &mockFinder{result: []neighbor.Neighbor{neighbor.New(c.books["Cosmos"], 0.3)}}
	cached, ms := newTestCached(t, inner, c)

	ms.getFn = func(_ context.Context, _ string) ([]byte, error) {
		return nil, &db.Error{Op: db.OpGet, Err: errors.New("connection refused")}
	}
	ms.setFn = func(_ context.Context, _ string, _ []byte, _ time.Duration) error {
		return errors.New("connection refused")
	}

	ns, err := cached.Nearest(context.Background(), "Dune", 1)
	if err != nil {
		t.Fatalf("cache outage must not fail the request: %v", err)
	}
	if len(ns) != 1 {
		t.Fatalf("expected 1 neighbor, got %d", len(ns))
	}
}

func TestNearest_InnerErrorNotCached(t *testing.T) {
	c := newCatalog(t, "fp", "Dune")
	inner := &mockFinder{err: domain.NewDegenerateVector("Dune")}
	cached, ms := newTestCached(t, inner, c)

	var setCalled bool
	ms.setFn = func(_ context.Context, _ string, _ []byte, _ time.Duration) error {
		setCalled = true
		return nil
	}

	_, err := cached.Nearest(context.Background(), "Dune", 1)
	if !errors.Is(err, domain.ErrDegenerateVector) {
		t.Fatalf("expected wrapped inner error, got %v", err)
	}
	if setCalled {
		t.Fatal("errors must not be cached")
	}
}

func TestNearest_Counter(t *testing.T) {
	c := newCatalog(t, "fp", "Dune", "Cosmos")
	inner := &mockFinder{result: []neighbor.Neighbor{neighbor.New(c.books["Cosmos"], 0.3)}}
	counter := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "test_neighbor_cache_total"}, []string{"result"})

	var stored []byte
	ms := &mockKVStore{
		getFn: func(_ context.Context, _ string) ([]byte, error) {
			if stored == nil {
				return nil, db.ErrKeyNotFound
			}
			return stored, nil
		},
		setFn: func(_ context.Context, _ string, value []byte, _ time.Duration) error {
			stored = value
			return nil
		},
	}
	cached := New(inner, ms, c, Config{}, counter, zap.NewNop())

	for range 3 {
		if _, err := cached.Nearest(context.Background(), "Dune", 1); err != nil {
			t.Fatal(err)
		}
	}
	if v := testutil.ToFloat64(counter.WithLabelValues("miss")); v != 1 {
		t.Fatalf("expected 1 miss, got %v", v)
	}
	if v := testutil.ToFloat64(counter.WithLabelValues("hit")); v != 2 {
		t.Fatalf("expected 2 hits, got %v", v)
	}
	if inner.calls != 1 {
		t.Fatalf("expected 1 inner call, got %d", inner.calls)
	}
}
