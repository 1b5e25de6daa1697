package cache

import "errors"

// Sentinel errors for cache construction.
var (
	// ErrUnknownBackend is returned by [Open] for an unrecognized backend name.
	ErrUnknownBackend = errors.New("unknown cache backend")

	// ErrInvalidConfig is returned when a backend is missing required settings.
	ErrInvalidConfig = errors.New("invalid cache configuration")
)

// ErrCacheMiss is returned by helpers that require an entry to be present.
var ErrCacheMiss = errors.New("cache miss")
