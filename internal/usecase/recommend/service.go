// Package recommend orchestrates title resolution, similarity search and exploration.
package recommend

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/bookrec/internal/domain"
	"github.com/kailas-cloud/bookrec/internal/domain/match"
	"github.com/kailas-cloud/bookrec/internal/domain/neighbor"
	"github.com/kailas-cloud/bookrec/internal/domain/sample"
	"github.com/kailas-cloud/bookrec/internal/logger"
)

// DefaultMaxK is the largest k accepted per request.
const DefaultMaxK = 6

// Outcome is the result of a title-driven recommendation.
type Outcome struct {
	// Match is how the query resolved.
	Match match.Result
	// Seed is the title neighbors were computed for. Empty when nothing was recommended.
	Seed string
	// Neighbors are nearest first.
	Neighbors []neighbor.Neighbor
	// RandomFallback is set when the query matched nothing and Seed was drawn at random.
	RandomFallback bool
}

// Recommended reports whether neighbors were computed.
func (o *Outcome) Recommended() bool { return o.Seed != "" }

// Metrics are optional counters with labels "kind" and "mode".
type Metrics struct {
	Resolve *prometheus.CounterVec
	Explore *prometheus.CounterVec
}

// Service ties the resolver, the similarity engine and the sampler together.
type Service struct {
	resolver Resolver
	finder   Finder
	sampler  Sampler
	catalog  Catalog
	maxK     int
	metrics  Metrics
}

// New creates a recommendation service. maxK <= 0 falls back to DefaultMaxK.
func New(r Resolver, f Finder, s Sampler, c Catalog, maxK int, m Metrics) *Service {
	if maxK <= 0 {
		maxK = DefaultMaxK
	}
	return &Service{resolver: r, finder: f, sampler: s, catalog: c, maxK: maxK, metrics: m}
}

// MaxK returns the largest accepted k.
func (s *Service) MaxK() int { return s.maxK }

// Resolve classifies a query without recommending.
func (s *Service) Resolve(query string) match.Result {
	res := s.resolver.Resolve(query)
	if s.metrics.Resolve != nil {
		s.metrics.Resolve.WithLabelValues(string(res.Kind())).Inc()
	}
	return res
}

// Similar resolves query and, when it names a title, returns its k nearest neighbors.
// A query matching nothing falls back to one neighbor of a random title.
// Empty, Ambiguous and TooMany queries return the match only.
func (s *Service) Similar(ctx context.Context, query string, k int, rng *rand.Rand) (Outcome, error) {
	if err := s.checkK(k); err != nil {
		return Outcome{}, err
	}

	res := s.Resolve(query)
	out := Outcome{Match: res}
	ctx = logger.With(ctx, zap.String("query", res.Query()), zap.String("match", string(res.Kind())))

	switch res.Kind() {
	case match.Exact:
		out.Seed = res.Title()
	case match.NoMatch:
		if rng == nil {
			return Outcome{}, fmt.Errorf("%w: random source is required", domain.ErrInvalidArgument)
		}
		books := s.catalog.All()
		if len(books) == 0 {
			return Outcome{}, fmt.Errorf("%w: catalog is empty", domain.ErrNotFound)
		}
		out.Seed = books[rng.IntN(len(books))].Title()
		out.RandomFallback = true
		k = 1
	default:
		return out, nil
	}

	ns, err := s.finder.Nearest(ctx, out.Seed, k)
	if err != nil {
		return Outcome{}, fmt.Errorf("recommend for %q: %w", out.Seed, err)
	}
	out.Neighbors = ns

	logger.FromContext(ctx).Debug("Similar books recommended",
		zap.String("seed", out.Seed),
		zap.Bool("random_fallback", out.RandomFallback),
		zap.Int("returned", len(ns)),
	)
	return out, nil
}

// Nearest returns the k nearest neighbors of a canonical title.
func (s *Service) Nearest(ctx context.Context, title string, k int) ([]neighbor.Neighbor, error) {
	if err := s.checkK(k); err != nil {
		return nil, err
	}
	ns, err := s.finder.Nearest(ctx, title, k)
	if err != nil {
		return nil, fmt.Errorf("nearest %q: %w", title, err)
	}
	return ns, nil
}

// Explore samples k books of topic rated at least minRating.
func (s *Service) Explore(
	ctx context.Context, topic string, minRating float64, k int, rng *rand.Rand,
) (sample.Result, error) {
	if err := s.checkK(k); err != nil {
		return sample.Result{}, err
	}

	res, err := s.sampler.Sample(topic, minRating, k, rng)
	if err != nil {
		return sample.Result{}, fmt.Errorf("explore: %w", err)
	}
	if s.metrics.Explore != nil {
		s.metrics.Explore.WithLabelValues(string(res.Mode())).Inc()
	}

	logger.FromContext(ctx).Debug("Books explored",
		zap.String("topic", topic),
		zap.Float64("min_rating", minRating),
		zap.Int("k", k),
		zap.String("mode", string(res.Mode())),
		zap.Int("matched", res.Matched()),
		zap.Int("returned", len(res.Books())),
	)
	return res, nil
}

func (s *Service) checkK(k int) error {
	if k < 1 || k > s.maxK {
		return fmt.Errorf("%w: k must be between 1 and %d, got %d", domain.ErrInvalidArgument, s.maxK, k)
	}
	return nil
}
