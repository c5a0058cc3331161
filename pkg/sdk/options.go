package bookrec

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	format            string
	allowedTopics     []string
	maxCandidates     int
	maxK              int
	excludeDegenerate bool
	seed              *uint64

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithFormat forces the snapshot format (json, parquet, sqlite).
// By default it is detected from the path.
func WithFormat(format string) Option {
	return optionFunc(func(c *clientConfig) {
		c.format = format
	})
}

// WithAllowedTopics rejects snapshots containing other topic labels.
// Without it any topic is accepted.
func WithAllowedTopics(topics ...string) Option {
	return optionFunc(func(c *clientConfig) {
		c.allowedTopics = topics
	})
}

// WithMaxCandidates sets how many titles an ambiguous match lists. Default: 6.
func WithMaxCandidates(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.maxCandidates = n
	})
}

// WithMaxK sets the largest k accepted by Similar, Nearest and Explore. Default: 6.
func WithMaxK(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.maxK = n
	})
}

// WithExcludeDegenerate hides books with zero-norm embeddings from similarity
// queries instead of failing on them.
func WithExcludeDegenerate() Option {
	return optionFunc(func(c *clientConfig) {
		c.excludeDegenerate = true
	})
}

// WithSeed makes every random draw reproducible: each call starts from seed.
func WithSeed(seed uint64) Option {
	return optionFunc(func(c *clientConfig) {
		c.seed = &seed
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithMetrics registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithMetrics(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
