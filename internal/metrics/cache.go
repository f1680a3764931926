package metrics

import (
	"context"
	"time"

	"github.com/masasa123jp/docshub/internal/cache"
	"github.com/masasa123jp/docshub/internal/store"
)

// metricsStore defines the interface for database operations needed by CacheWrapper.
// This interface allows for easier testing without requiring a full store.Store.
type metricsStore interface {
	CountActiveSessions() (int64, error)
	CountActiveClients() (int64, error)
}

// CacheWrapper provides a read-through cache for gauge metrics data.
// It queries the database on cache miss and updates the cache for subsequent
// requests, so the periodic gauge updater does not hammer the database.
type CacheWrapper struct {
	store metricsStore
	cache cache.CacheWithFetch[int64]
}

// NewCacheWrapper creates a new cache wrapper for metrics.
func NewCacheWrapper(store *store.Store, cache cache.CacheWithFetch[int64]) *CacheWrapper {
	return &CacheWrapper{
		store: store,
		cache: cache,
	}
}

// getCountWithCache retrieves a count using the cache-aside pattern.
func (m *CacheWrapper) getCountWithCache(
	ctx context.Context,
	key string,
	ttl time.Duration,
	fetchFunc func() (int64, error),
) (int64, error) {
	return m.cache.GetWithFetch(
		ctx,
		key,
		ttl,
		func(ctx context.Context, key string) (int64, error) {
			return fetchFunc()
		},
	)
}

// GetActiveSessionsCount retrieves the count of non-expired login sessions.
func (m *CacheWrapper) GetActiveSessionsCount(
	ctx context.Context,
	ttl time.Duration,
) (int64, error) {
	return m.getCountWithCache(ctx, "sessions:active", ttl, m.store.CountActiveSessions)
}

// GetActiveClientsCount retrieves the count of active registered clients.
func (m *CacheWrapper) GetActiveClientsCount(
	ctx context.Context,
	ttl time.Duration,
) (int64, error) {
	return m.getCountWithCache(ctx, "clients:active", ttl, m.store.CountActiveClients)
}

// UpdateGauges refreshes the session and client gauges from the (cached)
// database counts. Called periodically from the background updater.
func (m *CacheWrapper) UpdateGauges(ctx context.Context, recorder Recorder, ttl time.Duration) {
	if count, err := m.GetActiveSessionsCount(ctx, ttl); err == nil {
		recorder.SetActiveSessionsCount(int(count))
	} else {
		recorder.RecordDatabaseQueryError("count_sessions")
	}

	if count, err := m.GetActiveClientsCount(ctx, ttl); err == nil {
		recorder.SetActiveClientsCount(int(count))
	} else {
		recorder.RecordDatabaseQueryError("count_clients")
	}
}
