// Package explore samples books by topic and minimum rating with fallback tiers.
package explore

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/kailas-cloud/bookrec/internal/domain"
	"github.com/kailas-cloud/bookrec/internal/domain/book"
	"github.com/kailas-cloud/bookrec/internal/domain/sample"
)

// Service draws constrained samples from the catalog. It holds no random
// state: every call gets its own source.
type Service struct {
	catalog Catalog
}

// New creates an explore service.
func New(c Catalog) *Service {
	return &Service{catalog: c}
}

// NewRand returns a deterministic source for seed.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)) //nolint:gosec // sampling, not crypto
}

// SeededRand returns a fresh source seeded from the runtime generator.
func SeededRand() *rand.Rand {
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())) //nolint:gosec // sampling, not crypto
}

// Sample filters books by topic and rating >= minRating and draws k of them
// without replacement.
//
//   - no match: one book drawn from the whole catalog (FullRandom)
//   - fewer than k matches: all of them, shuffled (PartialMatch)
//   - otherwise: k sampled uniformly (FullMatch)
func (s *Service) Sample(topic string, minRating float64, k int, rng *rand.Rand) (sample.Result, error) {
	if k < 1 {
		return sample.Result{}, fmt.Errorf("%w: k must be at least 1, got %d", domain.ErrInvalidArgument, k)
	}
	if math.IsNaN(minRating) {
		return sample.Result{}, fmt.Errorf("%w: min rating must be a number", domain.ErrInvalidArgument)
	}
	if rng == nil {
		return sample.Result{}, fmt.Errorf("%w: random source is required", domain.ErrInvalidArgument)
	}

	filtered := s.catalog.Filter(topic, minRating)
	m := len(filtered)

	switch {
	case m == 0:
		all := s.catalog.All()
		if len(all) == 0 {
			return sample.Result{}, fmt.Errorf("%w: catalog is empty", domain.ErrNotFound)
		}
		picked := []book.Book{all[rng.IntN(len(all))]}
		return sample.New(picked, sample.FullRandom, k, 0), nil
	case m < k:
		return sample.New(draw(filtered, m, rng), sample.PartialMatch, k, m), nil
	default:
		return sample.New(draw(filtered, k, rng), sample.FullMatch, k, m), nil
	}
}

// draw returns n books picked without replacement by a partial Fisher-Yates shuffle.
// src is not modified.
func draw(src []book.Book, n int, rng *rand.Rand) []book.Book {
	pool := make([]book.Book, len(src))
	copy(pool, src)
	for i := 0; i < n; i++ {
		j := i + rng.IntN(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
	}
	return pool[:n:n]
}
