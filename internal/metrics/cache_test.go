package metrics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/masasa123jp/docshub/internal/cache"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMetricsStore struct {
	sessions      int64
	clients       int64
	sessionCalls  int
	clientCalls   int
	sessionsError error
}

func (f *fakeMetricsStore) CountActiveSessions() (int64, error) {
	f.sessionCalls++
	if f.sessionsError != nil {
		return 0, f.sessionsError
	}
	return f.sessions, nil
}

func (f *fakeMetricsStore) CountActiveClients() (int64, error) {
	f.clientCalls++
	return f.clients, nil
}

func newTestWrapper(store metricsStore) *CacheWrapper {
	return &CacheWrapper{
		store: store,
		cache: cache.NewMemoryCache[int64](),
	}
}

func TestCacheWrapper_GetActiveSessionsCount(t *testing.T) {
	ctx := context.Background()

	t.Run("Fetches from store on miss", func(t *testing.T) {
		fake := &fakeMetricsStore{sessions: 7}
		wrapper := newTestWrapper(fake)

		count, err := wrapper.GetActiveSessionsCount(ctx, time.Minute)
		require.NoError(t, err)
		assert.Equal(t, int64(7), count)
		assert.Equal(t, 1, fake.sessionCalls)
	})

	t.Run("Serves from cache on second call", func(t *testing.T) {
		fake := &fakeMetricsStore{sessions: 7}
		wrapper := newTestWrapper(fake)

		_, err := wrapper.GetActiveSessionsCount(ctx, time.Minute)
		require.NoError(t, err)
		_, err = wrapper.GetActiveSessionsCount(ctx, time.Minute)
		require.NoError(t, err)

		assert.Equal(t, 1, fake.sessionCalls, "second call should hit the cache")
	})

	t.Run("Propagates store errors", func(t *testing.T) {
		fake := &fakeMetricsStore{sessionsError: errors.New("db down")}
		wrapper := newTestWrapper(fake)

		_, err := wrapper.GetActiveSessionsCount(ctx, time.Minute)
		assert.Error(t, err)
	})
}

func TestCacheWrapper_UpdateGauges(t *testing.T) {
	ctx := context.Background()

	t.Run("Noop recorder does not panic", func(t *testing.T) {
		fake := &fakeMetricsStore{sessions: 3, clients: 2}
		wrapper := newTestWrapper(fake)

		wrapper.UpdateGauges(ctx, NewNoopMetrics(), time.Minute)
		assert.Equal(t, 1, fake.sessionCalls)
		assert.Equal(t, 1, fake.clientCalls)
	})

	t.Run("Store failure records query error and continues", func(t *testing.T) {
		fake := &fakeMetricsStore{sessionsError: errors.New("db down"), clients: 2}
		wrapper := newTestWrapper(fake)

		wrapper.UpdateGauges(ctx, NewNoopMetrics(), time.Minute)
		assert.Equal(t, 1, fake.clientCalls, "client gauge still updated after session failure")
	})
}
