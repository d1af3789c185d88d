package cache

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestMemoryCacheSetGet(t *testing.T) {
	mc := NewMemoryCache(DefaultConfig())
	defer mc.Close()
	ctx := context.Background()

	require.NoError(t, mc.Set(ctx, "a", []byte("1"), 0))
	got, err := mc.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, []byte("1"), got)

	ok, err := mc.Exists(ctx, "a")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMemoryCacheMiss(t *testing.T) {
	mc := NewMemoryCache(nil)
	defer mc.Close()

	_, err := mc.Get(context.Background(), "missing")
	assert.True(t, IsNotFound(err))
}

func TestMemoryCacheExpiry(t *testing.T) {
	mc := NewMemoryCache(DefaultConfig())
	defer mc.Close()
	ctx := context.Background()

	require.NoError(t, mc.Set(ctx, "short", []byte("x"), 10*time.Millisecond))
	time.Sleep(30 * time.Millisecond)

	_, err := mc.Get(ctx, "short")
	assert.True(t, IsNotFound(err))
	assert.ErrorIs(t, mc.Expire(ctx, "short", time.Minute), ErrKeyNotFound)
}

func TestMemoryCacheDeleteMulti(t *testing.T) {
	mc := NewMemoryCache(DefaultConfig())
	defer mc.Close()
	ctx := context.Background()

	require.NoError(t, mc.Set(ctx, "a", []byte("1"), 0))
	require.NoError(t, mc.Set(ctx, "b", []byte("2"), 0))
	require.NoError(t, mc.DeleteMulti(ctx, []string{"a", "b"}))

	for _, k := range []string{"a", "b"} {
		ok, err := mc.Exists(ctx, k)
		require.NoError(t, err)
		assert.False(t, ok)
	}
}

func TestMemoryCacheDisabled(t *testing.T) {
	mc := NewMemoryCache(&Config{Enabled: false})
	defer mc.Close()

	err := mc.Set(context.Background(), "a", []byte("1"), 0)
	assert.ErrorIs(t, err, ErrDisabled)
}

func TestMemoryCacheCloseTwice(t *testing.T) {
	mc := NewMemoryCache(nil)
	assert.NoError(t, mc.Close())
	assert.NoError(t, mc.Close())
}

type brokenCache struct{ Cache }

func (brokenCache) Get(context.Context, string) ([]byte, error) {
	return nil, &CacheError{Op: "get", Err: errors.New("connection refused")}
}

func (brokenCache) Set(context.Context, string, []byte, time.Duration) error {
	return &CacheError{Op: "set", Err: errors.New("connection refused")}
}

func TestFallbackCacheReadsFallbackWhenPrimaryBroken(t *testing.T) {
	memory := NewMemoryCache(DefaultConfig())
	defer memory.Close()
	fc := NewFallbackCacheWith(brokenCache{}, memory, testLogger())
	ctx := context.Background()

	err := fc.Set(ctx, "k", []byte("v"), 0)
	var cacheErr *CacheError
	assert.ErrorAs(t, err, &cacheErr)

	got, err := fc.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got)
}

func TestFallbackCachePrimaryMissIsMiss(t *testing.T) {
	primary := NewMemoryCache(DefaultConfig())
	fallback := NewMemoryCache(DefaultConfig())
	fc := NewFallbackCacheWith(primary, fallback, testLogger())
	defer fc.Close()
	ctx := context.Background()

	require.NoError(t, fallback.Set(ctx, "only-fallback", []byte("v"), 0))
	_, err := fc.Get(ctx, "only-fallback")
	assert.True(t, IsNotFound(err))
}

func TestNewFallbackCacheWithoutRedis(t *testing.T) {
	fc := NewFallbackCache(&FallbackConfig{Logger: testLogger()})
	defer fc.Close()

	assert.Nil(t, fc.Primary())
	assert.NoError(t, fc.Ping(context.Background()))
}
