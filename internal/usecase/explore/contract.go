package explore

import "github.com/kailas-cloud/bookrec/internal/domain/book"

// Catalog filters and lists books in catalog order.
type Catalog interface {
	All() []book.Book
	Filter(topic string, minRating float64) []book.Book
}
