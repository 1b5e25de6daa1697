// Package cache stores laid-out graphs and rendered artifacts between runs.
//
// # Backends
//
//   - [FileCache]: one file per entry under a directory, for the CLI
//   - [MemoryCache]: in-process, backed by github.com/patrickmn/go-cache, for the API server
//   - [RedisCache]: shared between server replicas, backed by github.com/redis/go-redis/v9
//   - [NullCache]: stores nothing
//
// [Open] selects a backend by name. Values are opaque bytes; callers choose
// the encoding. Keys come from a [Keyer], which hashes every input that
// affects the cached value.
package cache

import (
	"context"
	"fmt"
	"time"
)

// Cache is a byte store with per-entry expiry.
//
// Get reports a miss with ok == false and a nil error. A ttl of zero or less
// stores the entry without expiry.
type Cache interface {
	Get(ctx context.Context, key string) (data []byte, ok bool, err error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Clearer is implemented by caches that can drop every entry they own.
type Clearer interface {
	Clear(ctx context.Context) error
}

// DefaultTTL is the expiry applied to cached layouts and artifacts.
const DefaultTTL = 24 * time.Hour

// Backend names accepted by [Open].
const (
	BackendFile   = "file"
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendNone   = "none"
)

// Config selects and configures a backend.
type Config struct {
	Backend  string
	Dir      string // FileCache directory
	RedisURL string // redis://[:password@]host:port/db
	Prefix   string // Key prefix for Redis, so Clear only touches our keys
}

// Open returns the backend named by cfg.Backend. An empty name selects the
// file cache when Dir is set and the memory cache otherwise.
func Open(ctx context.Context, cfg Config) (Cache, error) {
	backend := cfg.Backend
	if backend == "" {
		backend = BackendMemory
		if cfg.Dir != "" {
			backend = BackendFile
		}
	}

	switch backend {
	case BackendFile:
		if cfg.Dir == "" {
			return nil, fmt.Errorf("%w: file cache needs a directory", ErrInvalidConfig)
		}
		return NewFileCache(cfg.Dir)
	case BackendMemory:
		return NewMemoryCache(), nil
	case BackendRedis:
		return NewRedisCache(ctx, cfg.RedisURL, cfg.Prefix)
	case BackendNone:
		return NewNullCache(), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, backend)
}
