package neighborcache

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/bookrec/internal/db"
	"github.com/kailas-cloud/bookrec/internal/domain/book"
	"github.com/kailas-cloud/bookrec/internal/domain/neighbor"
)

type mockFinder struct {
	result []neighbor.Neighbor
	err    error
	calls  int
}

func (m *mockFinder) Nearest(_ context.Context, _ string, _ int) ([]neighbor.Neighbor, error) {
	m.calls++
	return m.result, m.err
}

// mockKVStore implements the consumer interface for tests.
type mockKVStore struct {
	getFn func(ctx context.Context, key string) ([]byte, error)
	setFn func(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

func (m *mockKVStore) Get(ctx context.Context, key string) ([]byte, error) {
	if m.getFn != nil {
		return m.getFn(ctx, key)
	}
	return nil, db.ErrKeyNotFound
}

func (m *mockKVStore) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if m.setFn != nil {
		return m.setFn(ctx, key, value, ttl)
	}
	return nil
}

type mockCatalog struct {
	books map[string]book.Book
	fp    string
}

func (m *mockCatalog) Lookup(title string) (book.Book, bool) {
	b, ok := m.books[title]
	return b, ok
}

func (m *mockCatalog) Fingerprint() string { return m.fp }

func newCatalog(t *testing.T, fp string, titles ...string) *mockCatalog {
	t.Helper()
	c := &mockCatalog{books: map[string]book.Book{}, fp: fp}
	for _, title := range titles {
		b, err := book.New(title, 4, "science", "", book.Attrs{Author: "author of " + title})
		if err != nil {
			t.Fatal(err)
		}
		c.books[title] = b
	}
	return c
}

func newTestCached(t *testing.T, inner *mockFinder, c *mockCatalog) (*Cached, *mockKVStore) {
	t.Helper()
	ms := &mockKVStore{}
	return New(inner, ms, c, Config{TTL: time.Hour}, nil, zap.NewNop()), ms
}
