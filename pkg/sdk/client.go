package bookrec

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/kailas-cloud/bookrec/internal/domain/match"
	"github.com/kailas-cloud/bookrec/internal/domain/neighbor"
	"github.com/kailas-cloud/bookrec/internal/domain/sample"
	"github.com/kailas-cloud/bookrec/internal/repository/catalog"
	"github.com/kailas-cloud/bookrec/internal/snapshot"
	exploreuc "github.com/kailas-cloud/bookrec/internal/usecase/explore"
	healthuc "github.com/kailas-cloud/bookrec/internal/usecase/health"
	recommenduc "github.com/kailas-cloud/bookrec/internal/usecase/recommend"
	resolveuc "github.com/kailas-cloud/bookrec/internal/usecase/resolve"
	similaruc "github.com/kailas-cloud/bookrec/internal/usecase/similar"
)

// recommender is the internal use case, swappable in tests.
type recommender interface {
	MaxK() int
	Resolve(query string) match.Result
	Similar(ctx context.Context, query string, k int, rng *rand.Rand) (recommenduc.Outcome, error)
	Nearest(ctx context.Context, title string, k int) ([]neighbor.Neighbor, error)
	Explore(ctx context.Context, topic string, minRating float64, k int, rng *rand.Rand) (sample.Result, error)
}

// Client is the bookrec SDK entry point.
type Client struct {
	catalog   *catalog.Store
	rec       recommender
	healthSvc healthUseCase
	obs       *observer
	seed      *uint64
}

// Open loads the snapshot at path: a .json file, a .db/.sqlite file or a
// directory holding books.parquet and embeddings.parquet.
// Load failures match ErrLoad and carry a *LoadError.
func Open(ctx context.Context, path string, opts ...Option) (c *Client, err error) {
	cfg := newConfig(opts)
	if !snapshot.Format(cfg.format).IsValid() {
		return nil, fmt.Errorf("bookrec: unknown snapshot format %q: %w", cfg.format, ErrInvalidArgument)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("bookrec: open: %w", err)
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	done := obs.begin("open")
	defer func() { done(err) }()

	copts := append(catalogOptions(cfg), catalog.WithFormat(snapshot.Format(cfg.format)))
	store, err := catalog.Load(path, copts...)
	if err != nil {
		return nil, fmt.Errorf("bookrec: open %s: %w", path, err)
	}
	return wireClient(store, cfg, obs), nil
}

// NewFromRecords builds a client from books already in memory.
// Every record needs an embedding of a common dimension.
func NewFromRecords(records []Record, opts ...Option) (*Client, error) {
	cfg := newConfig(opts)

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	rows, embeddings := recordsToRows(records)
	store, err := catalog.New(rows, embeddings, catalogOptions(cfg)...)
	if err != nil {
		return nil, fmt.Errorf("bookrec: build catalog: %w", err)
	}
	return wireClient(store, cfg, obs), nil
}

func newConfig(opts []Option) *clientConfig {
	cfg := &clientConfig{
		maxCandidates: resolveuc.DefaultMaxCandidates,
		maxK:          recommenduc.DefaultMaxK,
	}
	for _, o := range opts {
		o.apply(cfg)
	}
	return cfg
}

func catalogOptions(cfg *clientConfig) []catalog.Option {
	var opts []catalog.Option
	if len(cfg.allowedTopics) > 0 {
		opts = append(opts, catalog.WithAllowedTopics(cfg.allowedTopics...))
	}
	return opts
}

func wireClient(store *catalog.Store, cfg *clientConfig, obs *observer) *Client {
	var engineOpts []similaruc.Option
	if degenerate := store.Embeddings().DegenerateTitles(); len(degenerate) > 0 {
		if cfg.excludeDegenerate {
			engineOpts = append(engineOpts, similaruc.WithExcluded(degenerate...))
		}
		if cfg.logger != nil {
			cfg.logger.Warn("catalog has zero-norm embeddings",
				"titles", degenerate,
				"excluded", cfg.excludeDegenerate,
			)
		}
	}

	rec := recommenduc.New(
		resolveuc.New(store, cfg.maxCandidates),
		similaruc.New(store, store.Embeddings(), engineOpts...),
		exploreuc.New(store),
		store,
		cfg.maxK,
		recommenduc.Metrics{},
	)

	if cfg.logger != nil {
		cfg.logger.Info("catalog loaded",
			"books", store.Len(),
			"dimensions", store.Embeddings().Dimensions(),
			"source", store.Source(),
		)
	}

	return &Client{
		catalog:   store,
		rec:       rec,
		healthSvc: healthuc.New(store, nil),
		obs:       obs,
		seed:      cfg.seed,
	}
}

// Resolve classifies query against catalog titles without recommending.
func (c *Client) Resolve(query string) Match {
	done := c.obs.begin("resolve")
	res := c.rec.Resolve(query)
	m := matchFromDomain(&res)
	c.obs.matched(m.Kind)
	done(nil)
	return m
}

// Similar resolves query and returns up to k nearest neighbors of the title it names.
// A query matching nothing falls back to one neighbor of a random title.
// Blank, ambiguous and overly broad queries return the match only.
func (c *Client) Similar(ctx context.Context, query string, k int) (rec Recommendation, err error) {
	done := c.obs.begin("similar")
	defer func() { done(err) }()

	out, err := c.rec.Similar(ctx, query, k, c.rng())
	if err != nil {
		return Recommendation{}, fmt.Errorf("bookrec: similar: %w", err)
	}
	if out.RandomFallback {
		c.obs.fallback("similar", string(match.NoMatch))
	}
	return outcomeFromDomain(&out), nil
}

// Nearest returns the k nearest neighbors of a canonical catalog title, nearest first.
func (c *Client) Nearest(ctx context.Context, title string, k int) (ns []Neighbor, err error) {
	done := c.obs.begin("nearest")
	defer func() { done(err) }()

	res, err := c.rec.Nearest(ctx, title, k)
	if err != nil {
		return nil, fmt.Errorf("bookrec: nearest: %w", err)
	}
	return neighborsFromDomain(res), nil
}

// Explore samples k books of topic rated at least minRating.
// With fewer matches it returns all of them, with none a single random book.
func (c *Client) Explore(ctx context.Context, topic string, minRating float64, k int) (ex Exploration, err error) {
	done := c.obs.begin("explore")
	defer func() { done(err) }()

	res, err := c.rec.Explore(ctx, topic, minRating, k, c.rng())
	if err != nil {
		return Exploration{}, fmt.Errorf("bookrec: explore: %w", err)
	}
	if res.Mode() != sample.FullMatch {
		c.obs.fallback("explore", string(res.Mode()))
	}
	return explorationFromDomain(&res), nil
}

// Lookup returns the book stored under title. The match is case-sensitive.
func (c *Client) Lookup(title string) (Book, bool) {
	b, ok := c.catalog.Lookup(title)
	if !ok {
		return Book{}, false
	}
	return bookFromDomain(&b), true
}

// Topics returns per-topic book counts, most frequent first.
func (c *Client) Topics() []TopicCount {
	topics := c.catalog.Topics()
	out := make([]TopicCount, len(topics))
	for i, t := range topics {
		out[i] = TopicCount{Topic: t.Topic, Count: t.Count}
	}
	return out
}

// Len returns the number of books.
func (c *Client) Len() int { return c.catalog.Len() }

// Fingerprint identifies the loaded snapshot content.
func (c *Client) Fingerprint() string { return c.catalog.Fingerprint() }

// MaxK returns the largest accepted k.
func (c *Client) MaxK() int { return c.rec.MaxK() }

// DegenerateTitles lists books whose embedding has zero norm.
func (c *Client) DegenerateTitles() []string {
	return c.catalog.Embeddings().DegenerateTitles()
}

func (c *Client) rng() *rand.Rand {
	if c.seed != nil {
		return exploreuc.NewRand(*c.seed)
	}
	return exploreuc.SeededRand()
}
