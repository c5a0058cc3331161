// Package catalog holds the immutable in-memory book catalog and its embedding index.
//
// A Store is built once from a snapshot and never mutated afterwards, so it is
// safe for concurrent readers without locking.
package catalog

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
	"sort"

	"github.com/kailas-cloud/bookrec/internal/domain"
	"github.com/kailas-cloud/bookrec/internal/domain/book"
	"github.com/kailas-cloud/bookrec/internal/domain/vector"
	"github.com/kailas-cloud/bookrec/internal/snapshot"
)

// Store is the catalog of books in snapshot order.
type Store struct {
	books       []book.Book
	byTitle     map[string]int
	index       *Index
	topics      []book.TopicCount
	source      string
	fingerprint string
}

type options struct {
	format      snapshot.Format
	topics      book.TopicSet
	source      string
	fingerprint string
}

// Option configures Load and New.
type Option func(*options)

// WithFormat forces the snapshot format instead of detecting it from the path.
func WithFormat(f snapshot.Format) Option {
	return func(o *options) { o.format = f }
}

// WithAllowedTopics restricts topic labels. No labels means any topic is accepted.
func WithAllowedTopics(labels ...string) Option {
	return func(o *options) { o.topics = book.NewTopicSet(labels...) }
}

// WithFingerprint overrides the content fingerprint.
func WithFingerprint(fp string) Option {
	return func(o *options) { o.fingerprint = fp }
}

// Load reads and validates the snapshot at path.
// Every failure is a *domain.LoadError.
func Load(path string, opts ...Option) (*Store, error) {
	var o options
	for _, fn := range opts {
		fn(&o)
	}

	snap, err := snapshot.Read(path, o.format)
	if err != nil {
		return nil, err //nolint:wrapcheck // already a LoadError with path context
	}

	opts = append(opts, WithFingerprint(snap.Fingerprint), withSource(snap.Source))
	return New(snap.Books, snap.Embeddings, opts...)
}

func withSource(src string) Option {
	return func(o *options) { o.source = src }
}

// New validates rows already in memory and builds a Store.
// Checks: non-empty catalog, valid books, unique titles (case-insensitive),
// allowed topics, one finite embedding of a common dimension per book and
// no embedding without a book.
func New(rows []snapshot.BookRow, embeddings []snapshot.EmbeddingRow, opts ...Option) (*Store, error) {
	var o options
	for _, fn := range opts {
		fn(&o)
	}
	src := o.source

	if len(rows) == 0 {
		return nil, domain.NewLoadError(src, "catalog is empty", nil)
	}

	books := make([]book.Book, 0, len(rows))
	byTitle := make(map[string]int, len(rows))
	byKey := make(map[string]int, len(rows))
	for i := range rows {
		b, err := rowToBook(&rows[i])
		if err != nil {
			return nil, domain.NewLoadError(src, fmt.Sprintf("book %d", i), err)
		}
		if prev, dup := byKey[b.Key()]; dup {
			return nil, domain.NewLoadError(src,
				fmt.Sprintf("duplicate title %q (rows %d and %d)", b.Title(), prev, i), nil)
		}
		if !o.topics.Allows(b.Topic()) {
			return nil, domain.NewLoadError(src, fmt.Sprintf("book %q has unknown topic %q", b.Title(), b.Topic()), nil)
		}
		byKey[b.Key()] = i
		byTitle[b.Title()] = i
		books = append(books, b)
	}

	vectors := make([][]float32, len(books))
	dims := -1
	for _, e := range embeddings {
		pos, ok := byKey[book.Key(e.Title)]
		if !ok {
			return nil, domain.NewLoadError(src, fmt.Sprintf("embedding %q has no catalog book", e.Title), nil)
		}
		if vectors[pos] != nil {
			return nil, domain.NewLoadError(src, fmt.Sprintf("duplicate embedding for %q", e.Title), nil)
		}
		if dims < 0 {
			dims = len(e.Vector)
			if dims == 0 {
				return nil, domain.NewLoadError(src, fmt.Sprintf("embedding %q is empty", e.Title), nil)
			}
		}
		if len(e.Vector) != dims {
			return nil, domain.NewLoadError(src,
				fmt.Sprintf("embedding %q has dimension %d, expected %d", e.Title, len(e.Vector), dims), nil)
		}
		if !vector.IsFinite(e.Vector) {
			return nil, domain.NewLoadError(src, fmt.Sprintf("embedding %q has non-finite values", e.Title), nil)
		}
		vectors[pos] = e.Vector
	}
	for i := range books {
		if vectors[i] == nil {
			return nil, domain.NewLoadError(src, fmt.Sprintf("book %q has no embedding", books[i].Title()), nil)
		}
	}

	fp := o.fingerprint
	if fp == "" {
		fp = contentFingerprint(books, vectors)
	}

	return &Store{
		books:       books,
		byTitle:     byTitle,
		index:       newIndex(books, vectors),
		topics:      countTopics(books),
		source:      src,
		fingerprint: fp,
	}, nil
}

// Lookup returns the book stored under title. The match is case-sensitive.
func (s *Store) Lookup(title string) (book.Book, bool) {
	i, ok := s.byTitle[title]
	if !ok {
		return book.Book{}, false
	}
	return s.books[i], true
}

// Filter returns books of topic rated at least minRating, in catalog order.
func (s *Store) Filter(topic string, minRating float64) []book.Book {
	var out []book.Book
	for i := range s.books {
		if s.books[i].Topic() == topic && s.books[i].Rating() >= minRating {
			out = append(out, s.books[i])
		}
	}
	return out
}

// All returns every book in catalog order. The slice is shared; callers must not modify it.
func (s *Store) All() []book.Book { return s.books }

// Len returns the number of books.
func (s *Store) Len() int { return len(s.books) }

// Topics returns per-topic counts, most frequent first, ties by name.
func (s *Store) Topics() []book.TopicCount {
	out := make([]book.TopicCount, len(s.topics))
	copy(out, s.topics)
	return out
}

// Embeddings returns the embedding index.
func (s *Store) Embeddings() *Index { return s.index }

// Fingerprint identifies the snapshot content.
func (s *Store) Fingerprint() string { return s.fingerprint }

// Source returns the snapshot path the store was loaded from (empty for in-memory rows).
func (s *Store) Source() string { return s.source }

func countTopics(books []book.Book) []book.TopicCount {
	counts := make(map[string]int)
	for i := range books {
		counts[books[i].Topic()]++
	}
	out := make([]book.TopicCount, 0, len(counts))
	for t, c := range counts {
		out = append(out, book.TopicCount{Topic: t, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Topic < out[j].Topic
	})
	return out
}

func contentFingerprint(books []book.Book, vectors [][]float32) string {
	h := sha256.New()
	for i := range books {
		fmt.Fprintf(h, "%s\x00%s\x00%g\x00", books[i].Title(), books[i].Topic(), books[i].Rating())
		for _, f := range vectors[i] {
			fmt.Fprintf(h, "%08x", math.Float32bits(f))
		}
		h.Write([]byte{'\n'})
	}
	return hex.EncodeToString(h.Sum(nil))
}
