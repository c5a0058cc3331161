package health

import "context"

// CatalogInfo describes the loaded catalog.
type CatalogInfo interface {
	Len() int
	Fingerprint() string
}

// CachePinger checks availability of the neighbor cache.
type CachePinger interface {
	Ping(ctx context.Context) error
}
