package cache

import (
	"context"
	"sync"
	"time"
)

// MemoryCache implements an in-memory cache with TTL support
type MemoryCache struct {
	config   *Config
	items    map[string]*memoryCacheItem
	mu       sync.RWMutex
	stopCh   chan struct{}
	stopOnce sync.Once
}

type memoryCacheItem struct {
	value      []byte
	expiration time.Time
	hasExpiry  bool
}

func (i *memoryCacheItem) expired(now time.Time) bool {
	return i.hasExpiry && now.After(i.expiration)
}

// NewMemoryCache creates a new in-memory cache
func NewMemoryCache(config *Config) *MemoryCache {
	if config == nil {
		config = DefaultConfig()
	}

	mc := &MemoryCache{
		config: config,
		items:  make(map[string]*memoryCacheItem),
		stopCh: make(chan struct{}),
	}

	go mc.cleanupExpired()

	return mc
}

// Get retrieves a value from the cache
func (mc *MemoryCache) Get(ctx context.Context, key string) ([]byte, error) {
	if !mc.config.Enabled {
		return nil, ErrCacheDisabled
	}

	key = mc.prefixKey(key)

	mc.mu.RLock()
	item, exists := mc.items[key]
	mc.mu.RUnlock()

	if !exists || item.expired(time.Now()) {
		return nil, ErrCacheNotFound
	}

	out := make([]byte, len(item.value))
	copy(out, item.value)
	return out, nil
}

// Set stores a value in the cache with optional TTL
func (mc *MemoryCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if !mc.config.Enabled {
		return ErrCacheDisabled
	}

	ttl = effectiveTTL(mc.config, ttl)

	stored := make([]byte, len(value))
	copy(stored, value)

	item := &memoryCacheItem{
		value:     stored,
		hasExpiry: ttl > 0,
	}
	if item.hasExpiry {
		item.expiration = time.Now().Add(ttl)
	}

	mc.mu.Lock()
	mc.items[mc.prefixKey(key)] = item
	mc.mu.Unlock()

	return nil
}

// Delete removes a value from the cache
func (mc *MemoryCache) Delete(ctx context.Context, key string) error {
	if !mc.config.Enabled {
		return ErrCacheDisabled
	}

	mc.mu.Lock()
	delete(mc.items, mc.prefixKey(key))
	mc.mu.Unlock()

	return nil
}

// DeleteMulti removes multiple values from the cache
func (mc *MemoryCache) DeleteMulti(ctx context.Context, keys []string) error {
	if !mc.config.Enabled {
		return ErrCacheDisabled
	}

	mc.mu.Lock()
	defer mc.mu.Unlock()
	for _, key := range keys {
		delete(mc.items, mc.prefixKey(key))
	}
	return nil
}

// Exists checks if a key exists in the cache
func (mc *MemoryCache) Exists(ctx context.Context, key string) (bool, error) {
	if !mc.config.Enabled {
		return false, ErrCacheDisabled
	}

	mc.mu.RLock()
	item, exists := mc.items[mc.prefixKey(key)]
	mc.mu.RUnlock()

	return exists && !item.expired(time.Now()), nil
}

// Expire sets a new TTL for an existing key
func (mc *MemoryCache) Expire(ctx context.Context, key string, ttl time.Duration) error {
	if !mc.config.Enabled {
		return ErrCacheDisabled
	}

	mc.mu.Lock()
	defer mc.mu.Unlock()

	item, exists := mc.items[mc.prefixKey(key)]
	if !exists || item.expired(time.Now()) {
		return ErrCacheNotFound
	}

	if ttl > 0 {
		item.hasExpiry = true
		item.expiration = time.Now().Add(ttl)
	} else {
		item.hasExpiry = false
	}

	return nil
}

// Ping checks if the cache is accessible
func (mc *MemoryCache) Ping(ctx context.Context) error {
	if !mc.config.Enabled {
		return ErrCacheDisabled
	}
	return nil
}

// Close stops the cleanup goroutine
func (mc *MemoryCache) Close() error {
	mc.stopOnce.Do(func() { close(mc.stopCh) })
	return nil
}

// cleanupExpired periodically removes expired items
func (mc *MemoryCache) cleanupExpired() {
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			mc.removeExpiredItems()
		case <-mc.stopCh:
			return
		}
	}
}

func (mc *MemoryCache) removeExpiredItems() {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	now := time.Now()
	for key, item := range mc.items {
		if item.expired(now) {
			delete(mc.items, key)
		}
	}
}

func (mc *MemoryCache) prefixKey(key string) string {
	return mc.config.Prefix + key
}
