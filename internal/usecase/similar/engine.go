// Package similar implements nearest-neighbor search over book embeddings by cosine distance.
package similar

import (
	"context"
	"fmt"
	"sort"

	"github.com/kailas-cloud/bookrec/internal/domain"
	"github.com/kailas-cloud/bookrec/internal/domain/neighbor"
	"github.com/kailas-cloud/bookrec/internal/domain/vector"
)

// Engine scans the whole index for every query. The index is immutable,
// so an Engine is safe for concurrent use.
type Engine struct {
	catalog  Catalog
	index    VectorIndex
	excluded []bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithExcluded drops titles from the search space: they never appear as
// neighbors and querying them yields ErrTitleNotFound. Unknown titles are ignored.
func WithExcluded(titles ...string) Option {
	return func(e *Engine) {
		for _, t := range titles {
			if i, ok := e.index.Position(t); ok {
				e.excluded[i] = true
			}
		}
	}
}

// New creates an engine. index positions must match c.All().
func New(c Catalog, index VectorIndex, opts ...Option) *Engine {
	e := &Engine{
		catalog:  c,
		index:    index,
		excluded: make([]bool, index.Len()),
	}
	for _, fn := range opts {
		fn(e)
	}
	return e
}

type scored struct {
	pos      int
	distance float64
}

// Nearest returns up to k books closest to title, nearest first.
// The query book itself is never returned. Ties keep catalog order.
// k above the number of other books returns all of them.
func (e *Engine) Nearest(_ context.Context, title string, k int) ([]neighbor.Neighbor, error) {
	if k < 1 {
		return nil, fmt.Errorf("%w: k must be at least 1, got %d", domain.ErrInvalidArgument, k)
	}

	q, ok := e.index.Position(title)
	if !ok || e.excluded[q] {
		return nil, domain.NewTitleNotFound(title)
	}

	books := e.catalog.All()
	qvec, qnorm := e.index.Vector(q), e.index.Norm(q)
	if qnorm == 0 {
		return nil, domain.NewDegenerateVector(books[q].Title())
	}

	candidates := make([]scored, 0, e.index.Len()-1)
	for i := 0; i < e.index.Len(); i++ {
		if i == q || e.excluded[i] {
			continue
		}
		n := e.index.Norm(i)
		if n == 0 {
			return nil, domain.NewDegenerateVector(books[i].Title())
		}
		candidates = append(candidates, scored{
			pos:      i,
			distance: vector.CosineDistance(qvec, e.index.Vector(i), qnorm, n),
		})
	}

	sort.SliceStable(candidates, func(a, b int) bool {
		return candidates[a].distance < candidates[b].distance
	})

	if k > len(candidates) {
		k = len(candidates)
	}
	out := make([]neighbor.Neighbor, k)
	for i := range out {
		out[i] = neighbor.New(books[candidates[i].pos], candidates[i].distance)
	}
	return out, nil
}
