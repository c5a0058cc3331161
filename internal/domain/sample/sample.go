package sample

import "github.com/kailas-cloud/bookrec/internal/domain/book"

// Mode is the fallback tier a constrained sample was served from.
type Mode string

// Fallback mode constants.
const (
	// FullMatch means k books were sampled from the filtered set.
	FullMatch Mode = "full_match"
	// PartialMatch means fewer than k books matched and all were returned.
	PartialMatch Mode = "partial_match"
	// FullRandom means nothing matched and one book was drawn from the whole catalog.
	FullRandom Mode = "full_random"
)

// IsValid checks if the mode is one of the supported values.
func (m Mode) IsValid() bool {
	return m == FullMatch || m == PartialMatch || m == FullRandom
}

// Result is a constrained sample with its fallback tier.
type Result struct {
	books     []book.Book
	mode      Mode
	requested int
	matched   int
}

// New creates a sample result. matched is the size of the filtered set.
func New(books []book.Book, mode Mode, requested, matched int) Result {
	return Result{books: books, mode: mode, requested: requested, matched: matched}
}

// Books returns the sampled books.
func (r *Result) Books() []book.Book { return r.books }

// Mode returns the fallback tier.
func (r *Result) Mode() Mode { return r.mode }

// Requested returns the k asked for.
func (r *Result) Requested() int { return r.requested }

// Matched returns the number of books passing the filter.
func (r *Result) Matched() int { return r.matched }
