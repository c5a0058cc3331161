package catalog

import (
	"github.com/kailas-cloud/bookrec/internal/domain/book"
	"github.com/kailas-cloud/bookrec/internal/domain/vector"
)

// Index is the embedding index keyed by lowercase title.
// Positions are aligned with Store.All(): vector i belongs to book i.
type Index struct {
	positions  map[string]int
	vectors    [][]float32
	norms      []float64
	dims       int
	degenerate []string
}

func newIndex(books []book.Book, vectors [][]float32) *Index {
	idx := &Index{
		positions: make(map[string]int, len(books)),
		vectors:   vectors,
		norms:     make([]float64, len(vectors)),
	}
	if len(vectors) > 0 {
		idx.dims = len(vectors[0])
	}
	for i := range books {
		idx.positions[books[i].Key()] = i
		idx.norms[i] = vector.Norm(vectors[i])
		if idx.norms[i] == 0 {
			idx.degenerate = append(idx.degenerate, books[i].Title())
		}
	}
	return idx
}

// Len returns the number of indexed vectors.
func (x *Index) Len() int { return len(x.vectors) }

// Dimensions returns the embedding dimensionality D.
func (x *Index) Dimensions() int { return x.dims }

// Position returns the catalog position of title. Lookup is case-insensitive.
func (x *Index) Position(title string) (int, bool) {
	i, ok := x.positions[book.Key(title)]
	return i, ok
}

// Vector returns the embedding at position i. Callers must not modify it.
func (x *Index) Vector(i int) []float32 { return x.vectors[i] }

// Norm returns the precomputed Euclidean norm of vector i.
func (x *Index) Norm(i int) float64 { return x.norms[i] }

// DegenerateTitles lists titles whose embedding has zero norm, in catalog order.
func (x *Index) DegenerateTitles() []string {
	out := make([]string, len(x.degenerate))
	copy(out, x.degenerate)
	return out
}
