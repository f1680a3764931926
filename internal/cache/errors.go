package cache

import "errors"

var (
	// ErrCacheMiss means the key is absent or expired. Callers fall through
	// to the authoritative store.
	ErrCacheMiss = errors.New("cache: key not found")

	// ErrCacheUnavailable wraps backend connectivity failures
	ErrCacheUnavailable = errors.New("cache: backend unavailable")

	// ErrInvalidValue wraps values that fail to decode
	ErrInvalidValue = errors.New("cache: invalid value")
)
