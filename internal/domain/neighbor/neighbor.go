package neighbor

import "github.com/kailas-cloud/bookrec/internal/domain/book"

// Neighbor is a single nearest-neighbor hit.
type Neighbor struct {
	book     book.Book
	distance float64
}

// New creates a neighbor.
func New(b book.Book, distance float64) Neighbor {
	return Neighbor{book: b, distance: distance}
}

// Book returns the neighboring catalog record.
func (n *Neighbor) Book() book.Book { return n.book }

// Distance returns the cosine distance to the query item.
func (n *Neighbor) Distance() float64 { return n.distance }

// Similarity returns 1 - distance.
func (n *Neighbor) Similarity() float64 { return 1 - n.distance }
