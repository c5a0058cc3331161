package redis

import (
	"time"

	"github.com/redis/rueidis"
)

// NewStoreForTest wraps an existing rueidis client, typically a mock.
// clientCacheTTL > 0 routes Get through DoCache.
func NewStoreForTest(c rueidis.Client, clientCacheTTL time.Duration) *Store {
	return &Store{client: c, cacheTTL: clientCacheTTL}
}
