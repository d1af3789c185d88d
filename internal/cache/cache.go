package cache

import (
	"context"
	"errors"
	"time"
)

// Cache is the key-value store behind panel sessions and the menu tree cache.
type Cache interface {
	// Get retrieves a value from the cache
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value in the cache with optional TTL (0 = default TTL)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a value from the cache
	Delete(ctx context.Context, key string) error

	// DeleteMulti removes multiple values from the cache
	DeleteMulti(ctx context.Context, keys []string) error

	// Exists checks if a key exists in the cache
	Exists(ctx context.Context, key string) (bool, error)

	// Expire sets a new TTL for an existing key
	Expire(ctx context.Context, key string, ttl time.Duration) error

	// Ping checks if the cache is accessible
	Ping(ctx context.Context) error

	// Close closes the cache connection
	Close() error
}

// Config holds common cache configuration
type Config struct {
	// Default TTL for cache entries (negative = no expiration)
	DefaultTTL time.Duration

	// Key prefix for all cache keys
	Prefix string

	// Enable/disable cache (useful for testing)
	Enabled bool
}

// DefaultConfig returns a default cache configuration
func DefaultConfig() *Config {
	return &Config{
		DefaultTTL: 30 * time.Minute,
		Prefix:     "zupos:",
		Enabled:    true,
	}
}

// CacheError represents a cache operation error
type CacheError struct {
	Op  string // Operation that failed
	Key string // Cache key involved
	Err error  // Underlying error
}

func (e *CacheError) Error() string {
	if e.Key != "" {
		return "cache " + e.Op + " " + e.Key + ": " + e.Err.Error()
	}
	return "cache " + e.Op + ": " + e.Err.Error()
}

func (e *CacheError) Unwrap() error {
	return e.Err
}

var (
	ErrKeyNotFound = errors.New("key not found")
	ErrDisabled    = errors.New("cache disabled")
)

// Common cache errors
var (
	ErrCacheNotFound = &CacheError{Op: "get", Err: ErrKeyNotFound}
	ErrCacheDisabled = &CacheError{Op: "operation", Err: ErrDisabled}
)

// IsNotFound reports whether err is a cache miss.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrKeyNotFound)
}

func effectiveTTL(cfg *Config, ttl time.Duration) time.Duration {
	if ttl == 0 {
		return cfg.DefaultTTL
	}
	return ttl
}
