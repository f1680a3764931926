package cache

import (
	"context"
	"sync"
	"time"
)

var _ CacheWithFetch[struct{}] = (*MemoryCache[struct{}])(nil)

type memoryEntry[T any] struct {
	value    T
	deadline time.Time
}

func (e memoryEntry[T]) live(now time.Time) bool {
	return now.Before(e.deadline)
}

// MemoryCache is the in-process backend for single-instance deployments.
// Entries expire lazily; a Get past the deadline behaves like a miss and the
// row is reclaimed on the next Set or Delete of the same key.
type MemoryCache[T any] struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry[T]
}

func NewMemoryCache[T any]() *MemoryCache[T] {
	return &MemoryCache[T]{
		entries: make(map[string]memoryEntry[T]),
	}
}

func (m *MemoryCache[T]) Get(ctx context.Context, key string) (T, error) {
	m.mu.RLock()
	entry, ok := m.entries[key]
	m.mu.RUnlock()

	if !ok || !entry.live(time.Now()) {
		var zero T
		return zero, ErrCacheMiss
	}
	return entry.value, nil
}

func (m *MemoryCache[T]) Set(ctx context.Context, key string, value T, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[key] = memoryEntry[T]{
		value:    value,
		deadline: time.Now().Add(ttl),
	}
	return nil
}

func (m *MemoryCache[T]) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.entries, key)
	return nil
}

// Close drops every entry. The cache stays usable afterwards, which keeps
// shutdown ordering forgiving.
func (m *MemoryCache[T]) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries = make(map[string]memoryEntry[T])
	return nil
}

func (m *MemoryCache[T]) Health(ctx context.Context) error {
	return nil
}

// GetWithFetch is plain cache-aside without stampede protection; concurrent
// misses may each call fetchFunc. Acceptable for the short-TTL lookups this
// backend serves.
func (m *MemoryCache[T]) GetWithFetch(
	ctx context.Context,
	key string,
	ttl time.Duration,
	fetchFunc func(ctx context.Context, key string) (T, error),
) (T, error) {
	if value, err := m.Get(ctx, key); err == nil {
		return value, nil
	}

	value, err := fetchFunc(ctx, key)
	if err != nil {
		var zero T
		return zero, err
	}

	_ = m.Set(ctx, key, value, ttl)
	return value, nil
}
