package recommend

import (
	"context"
	"math/rand/v2"

	"github.com/kailas-cloud/bookrec/internal/domain/book"
	"github.com/kailas-cloud/bookrec/internal/domain/match"
	"github.com/kailas-cloud/bookrec/internal/domain/neighbor"
	"github.com/kailas-cloud/bookrec/internal/domain/sample"
)

// Resolver maps free text to catalog titles.
type Resolver interface {
	Resolve(query string) match.Result
}

// Finder returns nearest neighbors of a catalog title.
type Finder interface {
	Nearest(ctx context.Context, title string, k int) ([]neighbor.Neighbor, error)
}

// Sampler draws constrained samples.
type Sampler interface {
	Sample(topic string, minRating float64, k int, rng *rand.Rand) (sample.Result, error)
}

// Catalog lists books in catalog order.
type Catalog interface {
	All() []book.Book
}
