package similar

import (
	"context"

	"github.com/kailas-cloud/bookrec/internal/domain/book"
	"github.com/kailas-cloud/bookrec/internal/domain/neighbor"
)

// Catalog lists books in catalog order.
type Catalog interface {
	All() []book.Book
}

// VectorIndex exposes embeddings aligned with Catalog.All positions.
type VectorIndex interface {
	Len() int
	Position(title string) (int, bool)
	Vector(i int) []float32
	Norm(i int) float64
}

// Finder returns the nearest neighbors of a title. Implemented by Engine and its decorators.
type Finder interface {
	Nearest(ctx context.Context, title string, k int) ([]neighbor.Neighbor, error)
}
