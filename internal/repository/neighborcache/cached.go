// Package neighborcache caches nearest-neighbor results in a key-value store.
package neighborcache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/bookrec/internal/db"
	"github.com/kailas-cloud/bookrec/internal/domain/book"
	"github.com/kailas-cloud/bookrec/internal/domain/neighbor"
)

// DefaultKeyPrefix namespaces cache keys.
const DefaultKeyPrefix = "bookrec:"

// store is the consumer interface for the neighbor cache (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// finder is the decorated nearest-neighbor search.
type finder interface {
	Nearest(ctx context.Context, title string, k int) ([]neighbor.Neighbor, error)
}

// catalog rehydrates cached titles into books.
type catalog interface {
	Lookup(title string) (book.Book, bool)
	Fingerprint() string
}

// Config tunes key layout and expiry.
type Config struct {
	KeyPrefix string
	TTL       time.Duration
}

// Cached stores neighbor lists keyed by snapshot fingerprint, title and k.
// A new snapshot changes the fingerprint, so stale entries are never read.
type Cached struct {
	inner      finder
	store      store
	catalog    catalog
	prefix     string
	ttl        time.Duration
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
}

// New creates a caching decorator.
// cacheTotal is a counter vec with label "result" ("hit"/"miss"), passed explicitly.
func New(
	inner finder,
	s store,
	c catalog,
	cfg Config,
	cacheTotal *prometheus.CounterVec,
	logger *zap.Logger,
) *Cached {
	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &Cached{
		inner:      inner,
		store:      s,
		catalog:    c,
		prefix:     prefix + "nn:" + shortFingerprint(c.Fingerprint()) + ":",
		ttl:        cfg.TTL,
		cacheTotal: cacheTotal,
		logger:     logger,
	}
}

// entry is the cached form of one neighbor.
type entry struct {
	Title    string  `json:"t"`
	Distance float64 `json:"d"`
}

// Nearest returns cached neighbors or calls the inner finder.
// Errors are never cached; cache failures degrade to a miss.
func (c *Cached) Nearest(ctx context.Context, title string, k int) ([]neighbor.Neighbor, error) {
	key := c.cacheKey(title, k)

	if ns, ok := c.getFromCache(ctx, key); ok {
		c.incCache("hit")
		return ns, nil
	}

	c.incCache("miss")

	ns, err := c.inner.Nearest(ctx, title, k)
	if err != nil {
		return nil, fmt.Errorf("find neighbors: %w", err)
	}

	c.putToCache(ctx, key, ns)
	return ns, nil
}

func (c *Cached) incCache(result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(result).Inc()
	}
}

func (c *Cached) cacheKey(title string, k int) string {
	h := sha256.Sum256([]byte(book.Key(title)))
	return c.prefix + hex.EncodeToString(h[:]) + ":" + strconv.Itoa(k)
}

func (c *Cached) getFromCache(ctx context.Context, key string) ([]neighbor.Neighbor, bool) {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			c.logger.Warn("Failed to get cached neighbors", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	if len(data) == 0 {
		return nil, false
	}

	var entries []entry
	if err := json.Unmarshal(data, &entries); err != nil {
		c.logger.Warn("Failed to parse cached neighbors", zap.String("key", key), zap.Error(err))
		return nil, false
	}

	ns := make([]neighbor.Neighbor, 0, len(entries))
	for _, e := range entries {
		b, ok := c.catalog.Lookup(e.Title)
		if !ok {
			c.logger.Warn("Cached neighbor not in catalog", zap.String("key", key), zap.String("title", e.Title))
			return nil, false
		}
		ns = append(ns, neighbor.New(b, e.Distance))
	}
	return ns, true
}

func (c *Cached) putToCache(ctx context.Context, key string, ns []neighbor.Neighbor) {
	entries := make([]entry, len(ns))
	for i := range ns {
		b := ns[i].Book()
		entries[i] = entry{Title: b.Title(), Distance: ns[i].Distance()}
	}
	data, err := json.Marshal(entries)
	if err != nil {
		c.logger.Warn("Failed to encode neighbors", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.store.SetWithTTL(ctx, key, data, c.ttl); err != nil {
		c.logger.Warn("Failed to cache neighbors", zap.String("key", key), zap.Error(err))
	}
}

func shortFingerprint(fp string) string {
	if len(fp) > 16 {
		return fp[:16]
	}
	return fp
}
