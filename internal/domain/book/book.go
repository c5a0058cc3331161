package book

import (
	"fmt"
	"math"
	"strings"
)

// Rating bounds on the Goodreads scale.
const (
	MinRating = 0.0
	MaxRating = 5.0
)

// Book is the catalog record aggregate (immutable value object).
type Book struct {
	title      string
	author     string
	rating     float64
	numRatings int
	numReviews int
	pages      int
	year       int
	publisher  string
	summary    string
	topic      string
}

// Attrs holds the optional bibliographic fields of a book.
type Attrs struct {
	Author     string
	NumRatings int
	NumReviews int
	Pages      int
	Year       int
	Publisher  string
}

// New validates and creates a Book.
// Title: non-blank. Rating: finite, within [0, 5]. Topic: non-blank.
// Topic membership in the enumerated set is checked by the catalog loader.
func New(title string, rating float64, topic, summary string, attrs Attrs) (Book, error) {
	if strings.TrimSpace(title) == "" {
		return Book{}, fmt.Errorf("title is required")
	}
	if math.IsNaN(rating) || math.IsInf(rating, 0) {
		return Book{}, fmt.Errorf("rating of %q must be a finite number", title)
	}
	if rating < MinRating || rating > MaxRating {
		return Book{}, fmt.Errorf("rating of %q out of range [%.1f, %.1f]: %v", title, MinRating, MaxRating, rating)
	}
	if strings.TrimSpace(topic) == "" {
		return Book{}, fmt.Errorf("topic of %q is required", title)
	}
	if attrs.NumRatings < 0 || attrs.NumReviews < 0 || attrs.Pages < 0 {
		return Book{}, fmt.Errorf("counts of %q must not be negative", title)
	}

	return Book{
		title:      title,
		author:     attrs.Author,
		rating:     rating,
		numRatings: attrs.NumRatings,
		numReviews: attrs.NumReviews,
		pages:      attrs.Pages,
		year:       attrs.Year,
		publisher:  attrs.Publisher,
		summary:    summary,
		topic:      topic,
	}, nil
}

// Title returns the stored (case-preserving) title.
func (b *Book) Title() string { return b.title }

// Key returns the lowercase join key shared with the embedding index.
func (b *Book) Key() string { return Key(b.title) }

// Author returns the author.
func (b *Book) Author() string { return b.author }

// Rating returns the average rating on the 0-5 scale.
func (b *Book) Rating() float64 { return b.rating }

// NumRatings returns the number of ratings.
func (b *Book) NumRatings() int { return b.numRatings }

// NumReviews returns the number of reviews.
func (b *Book) NumReviews() int { return b.numReviews }

// Pages returns the page count.
func (b *Book) Pages() int { return b.pages }

// Year returns the publication year.
func (b *Book) Year() int { return b.year }

// Publisher returns the publisher.
func (b *Book) Publisher() string { return b.publisher }

// Summary returns the book summary.
func (b *Book) Summary() string { return b.summary }

// Topic returns the topic label.
func (b *Book) Topic() string { return b.topic }

// Key normalizes a title into the embedding index join key.
func Key(title string) string {
	return strings.ToLower(title)
}
