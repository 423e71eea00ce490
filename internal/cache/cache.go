// Package cache stores upstream responses so repeated views of the same
// collection do not refetch. Backends are in-process memory and Redis.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Cache is a byte-oriented key/value store with per-entry expiry.
type Cache interface {
	// Get returns the value for key or a *MissError.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key. A zero ttl uses the backend default and
	// a negative ttl never expires.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes key.
	Delete(ctx context.Context, key string) error

	// Clear removes every key under the configured prefix.
	Clear(ctx context.Context) error

	Close() error
}

// CacheConfig holds settings common to every backend.
type CacheConfig struct {
	// DefaultTTL applies when Set is called with a zero ttl.
	DefaultTTL time.Duration
	// Prefix namespaces keys so several explorers can share one Redis.
	Prefix string
}

// DefaultCacheConfig returns a one minute TTL under the "explorer:" prefix.
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		DefaultTTL: time.Minute,
		Prefix:     "explorer:",
	}
}

// MissError reports a key that is absent or expired.
type MissError struct {
	Key string
}

func (e *MissError) Error() string {
	return "cache miss: " + e.Key
}

// IsMiss reports whether err is, or wraps, a *MissError.
func IsMiss(err error) bool {
	var miss *MissError
	return errors.As(err, &miss)
}

// Backend names accepted by New.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendNone   = "none"
)

// Options selects and configures a backend.
type Options struct {
	Backend string
	CacheConfig
	Redis RedisConfig
}

// New builds the backend named by opts.Backend. BackendNone returns a
// nil Cache and no error.
func New(opts Options) (Cache, error) {
	switch opts.Backend {
	case "", BackendMemory:
		return NewMemoryCacheWithConfig(opts.CacheConfig), nil
	case BackendRedis:
		cfg := opts.Redis
		cfg.CacheConfig = opts.CacheConfig
		rc, err := NewRedisCacheWithConfig(cfg)
		if err != nil {
			return nil, err
		}
		return rc, nil
	case BackendNone:
		return nil, nil
	}
	return nil, fmt.Errorf("cache: unknown backend %q", opts.Backend)
}
