package resolve

import "github.com/kailas-cloud/bookrec/internal/domain/book"

// Catalog lists books in catalog order.
type Catalog interface {
	All() []book.Book
}
