package cache

import (
	"context"
	"log/slog"
	"time"
)

// FallbackCache implements a cache with Redis primary and memory fallback
type FallbackCache struct {
	primary  Cache
	fallback Cache
	logger   *slog.Logger
}

// FallbackConfig holds fallback cache configuration
type FallbackConfig struct {
	// Redis configuration; nil or empty Addr means memory only
	Redis *RedisConfig

	// Memory cache configuration
	Memory *Config

	Logger *slog.Logger
}

// NewFallbackCache creates a new fallback cache. A Redis connection failure
// is logged and the cache continues on memory only.
func NewFallbackCache(config *FallbackConfig) *FallbackCache {
	if config == nil {
		config = &FallbackConfig{}
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var primary Cache
	if config.Redis != nil && config.Redis.Addr != "" {
		if config.Redis.Logger == nil {
			config.Redis.Logger = logger
		}
		redisCache, err := NewRedisCache(config.Redis)
		if err != nil {
			logger.Warn("redis cache unavailable, using memory cache only", "error", err)
		} else {
			primary = redisCache
			logger.Info("fallback cache initialized with redis primary")
		}
	}

	return NewFallbackCacheWith(primary, NewMemoryCache(config.Memory), logger)
}

// NewFallbackCacheWith composes two existing caches; primary may be nil
func NewFallbackCacheWith(primary, fallback Cache, logger *slog.Logger) *FallbackCache {
	if logger == nil {
		logger = slog.Default()
	}
	return &FallbackCache{primary: primary, fallback: fallback, logger: logger}
}

// Primary returns the primary cache, or nil when running on memory only
func (fc *FallbackCache) Primary() Cache {
	return fc.primary
}

// Get retrieves a value from cache (primary first, then fallback)
func (fc *FallbackCache) Get(ctx context.Context, key string) ([]byte, error) {
	if fc.primary != nil {
		value, err := fc.primary.Get(ctx, key)
		if err == nil {
			return value, nil
		}
		if IsNotFound(err) {
			return nil, err
		}
		fc.logger.Warn("primary cache get failed, trying fallback", "error", err, "key", key)
	}

	return fc.fallback.Get(ctx, key)
}

// Set stores a value in both caches
func (fc *FallbackCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	var primaryErr error

	if fc.primary != nil {
		primaryErr = fc.primary.Set(ctx, key, value, ttl)
		if primaryErr != nil {
			fc.logger.Warn("primary cache set failed", "error", primaryErr, "key", key)
		}
	}

	if err := fc.fallback.Set(ctx, key, value, ttl); err != nil {
		fc.logger.Error("fallback cache set failed", "error", err, "key", key)
		return err
	}

	return primaryErr
}

// Delete removes a value from both caches
func (fc *FallbackCache) Delete(ctx context.Context, key string) error {
	return fc.DeleteMulti(ctx, []string{key})
}

// DeleteMulti removes values from both caches
func (fc *FallbackCache) DeleteMulti(ctx context.Context, keys []string) error {
	if fc.primary != nil {
		if err := fc.primary.DeleteMulti(ctx, keys); err != nil {
			fc.logger.Warn("primary cache delete failed", "error", err, "keys", len(keys))
		}
	}
	return fc.fallback.DeleteMulti(ctx, keys)
}

// Exists checks if a key exists in either cache
func (fc *FallbackCache) Exists(ctx context.Context, key string) (bool, error) {
	if fc.primary != nil {
		exists, err := fc.primary.Exists(ctx, key)
		if err == nil {
			return exists, nil
		}
		fc.logger.Warn("primary cache exists check failed, trying fallback", "error", err, "key", key)
	}
	return fc.fallback.Exists(ctx, key)
}

// Expire refreshes the TTL in both caches
func (fc *FallbackCache) Expire(ctx context.Context, key string, ttl time.Duration) error {
	if fc.primary != nil {
		err := fc.primary.Expire(ctx, key, ttl)
		if err == nil || IsNotFound(err) {
			_ = fc.fallback.Expire(ctx, key, ttl)
			return err
		}
		fc.logger.Warn("primary cache expire failed, trying fallback", "error", err, "key", key)
	}
	return fc.fallback.Expire(ctx, key, ttl)
}

// Ping reports the primary's health; memory-only caches are always reachable
func (fc *FallbackCache) Ping(ctx context.Context) error {
	if fc.primary != nil {
		return fc.primary.Ping(ctx)
	}
	return fc.fallback.Ping(ctx)
}

// Close closes both caches
func (fc *FallbackCache) Close() error {
	var err error
	if fc.primary != nil {
		err = fc.primary.Close()
	}
	if ferr := fc.fallback.Close(); ferr != nil && err == nil {
		err = ferr
	}
	return err
}
