package explore

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"testing"

	"github.com/kailas-cloud/bookrec/internal/domain"
	"github.com/kailas-cloud/bookrec/internal/domain/book"
	"github.com/kailas-cloud/bookrec/internal/domain/sample"
)

type stubCatalog struct {
	books []book.Book
}

func (s *stubCatalog) All() []book.Book { return s.books }

func (s *stubCatalog) Filter(topic string, minRating float64) []book.Book {
	var out []book.Book
	for _, b := range s.books {
		if b.Topic() == topic && b.Rating() >= minRating {
			out = append(out, b)
		}
	}
	return out
}

func (s *stubCatalog) add(t *testing.T, title, topic string, rating float64) {
	t.Helper()
	b, err := book.New(title, rating, topic, "", book.Attrs{})
	if err != nil {
		t.Fatal(err)
	}
	s.books = append(s.books, b)
}

func abcCatalog(t *testing.T) *stubCatalog {
	t.Helper()
	c := &stubCatalog{}
	c.add(t, "A", "science", 4.5)
	c.add(t, "B", "science", 3.0)
	c.add(t, "C", "art", 4.8)
	return c
}

func bigCatalog(t *testing.T, n int) *stubCatalog {
	t.Helper()
	c := &stubCatalog{}
	for i := range n {
		c.add(t, fmt.Sprintf("Book %02d", i), "science", 4.0)
	}
	return c
}

func titles(books []book.Book) []string {
	out := make([]string, len(books))
	for i := range books {
		out[i] = books[i].Title()
	}
	return out
}

func TestSample_PartialMatch(t *testing.T) {
	svc := New(abcCatalog(t))

	res, err := svc.Sample("science", 4.0, 2, NewRand(1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Mode() != sample.PartialMatch {
		t.Fatalf("expected partial_match, got %s", res.Mode())
	}
	books := res.Books()
	if len(books) != 1 || books[0].Title() != "A" {
		t.Fatalf("expected [A], got %v", titles(books))
	}
	if res.Requested() != 2 || res.Matched() != 1 {
		t.Fatalf("expected requested=2 matched=1, got %d %d", res.Requested(), res.Matched())
	}
}

func TestSample_PartialMatchReturnsAll(t *testing.T) {
	c := bigCatalog(t, 5)
	svc := New(c)

	res, err := svc.Sample("science", 0, 9, NewRand(3))
	if err != nil {
		t.Fatal(err)
	}
	if res.Mode() != sample.PartialMatch || len(res.Books()) != 5 {
		t.Fatalf("expected all 5 books as partial_match, got %s %d", res.Mode(), len(res.Books()))
	}
	got := titles(res.Books())
	slices.Sort(got)
	if !slices.Equal(got, titles(c.books)) {
		t.Fatalf("expected every filtered book once, got %v", got)
	}
}

func TestSample_FullRandom(t *testing.T) {
	svc := New(abcCatalog(t))

	for seed := range uint64(20) {
		res, err := svc.Sample("science", 5.1, 3, NewRand(seed))
		if err != nil {
			t.Fatal(err)
		}
		if res.Mode() != sample.FullRandom {
			t.Fatalf("expected full_random, got %s", res.Mode())
		}
		if len(res.Books()) != 1 {
			t.Fatalf("expected exactly 1 book, got %d", len(res.Books()))
		}
		if res.Matched() != 0 {
			t.Fatalf("expected matched=0, got %d", res.Matched())
		}
	}
}

func TestSample_UnknownTopicIsFullRandom(t *testing.T) {
	svc := New(abcCatalog(t))

	res, err := svc.Sample("cooking", 0, 1, NewRand(9))
	if err != nil {
		t.Fatal(err)
	}
	if res.Mode() != sample.FullRandom {
		t.Fatalf("expected full_random, got %s", res.Mode())
	}
}

func TestSample_FullMatchDeterministic(t *testing.T) {
	svc := New(bigCatalog(t, 30))

	first, err := svc.Sample("science", 3.5, 6, NewRand(42))
	if err != nil {
		t.Fatal(err)
	}
	if first.Mode() != sample.FullMatch || len(first.Books()) != 6 {
		t.Fatalf("expected 6 books full_match, got %s %d", first.Mode(), len(first.Books()))
	}
	for range 5 {
		again, err := svc.Sample("science", 3.5, 6, NewRand(42))
		if err != nil {
			t.Fatal(err)
		}
		if !slices.Equal(titles(first.Books()), titles(again.Books())) {
			t.Fatalf("same seed gave %v and %v", titles(first.Books()), titles(again.Books()))
		}
	}
}

func TestSample_NoDuplicates(t *testing.T) {
	svc := New(bigCatalog(t, 12))

	for seed := range uint64(50) {
		res, err := svc.Sample("science", 0, 12, NewRand(seed))
		if err != nil {
			t.Fatal(err)
		}
		seen := map[string]bool{}
		for _, title := range titles(res.Books()) {
			if seen[title] {
				t.Fatalf("seed %d: %q drawn twice", seed, title)
			}
			seen[title] = true
		}
		if len(seen) != 12 {
			t.Fatalf("expected 12 distinct books, got %d", len(seen))
		}
	}
}

func TestSample_Uniform(t *testing.T) {
	const (
		n     = 10
		draws = 20000
	)
	svc := New(bigCatalog(t, n))
	rng := NewRand(2024)

	counts := map[string]int{}
	for range draws {
		res, err := svc.Sample("science", 0, 2, rng)
		if err != nil {
			t.Fatal(err)
		}
		for _, title := range titles(res.Books()) {
			counts[title]++
		}
	}

	expected := float64(draws*2) / n
	for title, c := range counts {
		if math.Abs(float64(c)-expected) > expected*0.1 {
			t.Errorf("%s drawn %d times, expected about %.0f", title, c, expected)
		}
	}
	if len(counts) != n {
		t.Fatalf("expected every book to be drawn, got %d", len(counts))
	}
}

func TestSample_DoesNotReorderCatalog(t *testing.T) {
	c := bigCatalog(t, 8)
	before := titles(c.books)
	svc := New(c)

	if _, err := svc.Sample("science", 0, 4, NewRand(5)); err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(before, titles(c.books)) {
		t.Fatal("sampling must not mutate the catalog")
	}
}

func TestSample_InvalidArguments(t *testing.T) {
	svc := New(abcCatalog(t))

	tests := []struct {
		name      string
		minRating float64
		k         int
		nilRand   bool
	}{
		{"zero k", 4, 0, false},
		{"negative k", 4, -1, false},
		{"nan rating", math.NaN(), 1, false},
		{"nil rng", 4, 1, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rng := NewRand(1)
			if tt.nilRand {
				rng = nil
			}
			_, err := svc.Sample("science", tt.minRating, tt.k, rng)
			if !errors.Is(err, domain.ErrInvalidArgument) {
				t.Fatalf("expected ErrInvalidArgument, got %v", err)
			}
		})
	}
}

func TestSample_EmptyCatalog(t *testing.T) {
	svc := New(&stubCatalog{})

	_, err := svc.Sample("science", 0, 1, NewRand(1))
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSeededRand(t *testing.T) {
	if SeededRand() == nil {
		t.Fatal("expected a source")
	}
}
