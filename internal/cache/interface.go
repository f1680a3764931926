package cache

import (
	"context"
	"time"
)

// Cache is the read-through lookup cache used for client registry reads and
// metrics gauges. Implementations are selected by CACHE_MODE at boot.
type Cache[T any] interface {
	// Get returns the cached value for key, or ErrCacheMiss when the key is
	// absent or past its TTL.
	Get(ctx context.Context, key string) (T, error)

	// Set stores value under key for the given TTL.
	Set(ctx context.Context, key string, value T, ttl time.Duration) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases the backend connection.
	Close() error

	// Health reports whether the backend is reachable.
	Health(ctx context.Context) error
}

// CacheWithFetch adds the cache-aside read both built-in backends provide.
type CacheWithFetch[T any] interface {
	Cache[T]

	// GetWithFetch returns the cached value for key, calling fetchFunc and
	// storing its result on a miss. A failed Set after a successful fetch is
	// not an error; the caller still gets the fetched value.
	GetWithFetch(
		ctx context.Context,
		key string,
		ttl time.Duration,
		fetchFunc func(ctx context.Context, key string) (T, error),
	) (T, error)
}
