package menu

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zupos_panel/internal/cache"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// gatedSource blocks Fetch until release is closed.
type gatedSource struct {
	entries []Entry
	err     error
	release chan struct{}
	calls   atomic.Int32
}

func newGatedSource(entries []Entry, err error) *gatedSource {
	return &gatedSource{entries: entries, err: err, release: make(chan struct{})}
}

func (s *gatedSource) Fetch(ctx context.Context) ([]Entry, error) {
	s.calls.Add(1)
	select {
	case <-s.release:
		return s.entries, s.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func waitReady(t *testing.T, r *Resolver) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, r.Wait(ctx))
}

func TestResolverLoadsAndFiltersOnce(t *testing.T) {
	src := newGatedSource(sampleEntries(t), nil)
	r := NewResolver(src, discardLogger())
	r.Start(context.Background())
	r.Start(context.Background())

	assert.True(t, r.Snapshot().Loading())
	close(src.release)
	waitReady(t, r)

	v := r.Snapshot()
	assert.Equal(t, PhaseReady, v.Phase)
	assert.Len(t, v.Entries, 3)
	assert.EqualValues(t, 1, src.calls.Load())
}

func TestResolverAppliesPathRecordedWhileLoading(t *testing.T) {
	src := newGatedSource(sampleEntries(t), nil)
	r := NewResolver(src, discardLogger())
	r.Start(context.Background())

	r.Navigate("/dashboard/stok-tanimlari/depo-tanimlama")
	assert.Empty(t, r.Snapshot().Expansion)

	close(src.release)
	waitReady(t, r)

	v := r.Snapshot()
	assert.Equal(t, Expansion{10: true}, v.Expansion)
	assert.True(t, v.HasActive)
	assert.Equal(t, 11, v.ActiveSub)
}

func TestResolverNavigation(t *testing.T) {
	src := newGatedSource(sampleEntries(t), nil)
	close(src.release)
	r := NewResolver(src, discardLogger())
	r.Start(context.Background())
	waitReady(t, r)

	r.Navigate("/dashboard/stok-tanimlari/depo-tanimlama")
	assert.Equal(t, Expansion{10: true}, r.Snapshot().Expansion)

	r.Toggle(30)
	assert.Equal(t, Expansion{10: true, 30: true}, r.Snapshot().Expansion)

	r.Navigate("/dashboard/nowhere/index")
	assert.Equal(t, Expansion{10: true, 30: true}, r.Snapshot().Expansion)

	r.Navigate("/dashboard/report/sales")
	assert.Equal(t, Expansion{30: true}, r.Snapshot().Expansion)
}

func TestResolverKeepsTogglesOnSamePath(t *testing.T) {
	src := newGatedSource(sampleEntries(t), nil)
	close(src.release)
	r := NewResolver(src, discardLogger())
	r.Start(context.Background())
	waitReady(t, r)

	r.Navigate("/dashboard/stok-tanimlari/depo-tanimlama")
	r.Toggle(30)
	r.Navigate("/dashboard/stok-tanimlari/depo-tanimlama")
	assert.Equal(t, Expansion{10: true, 30: true}, r.Snapshot().Expansion)

	r.Toggle(10)
	r.Navigate("/dashboard/stok-tanimlari/depo-tanimlama")
	assert.Equal(t, Expansion{10: false, 30: true}, r.Snapshot().Expansion)

	r.Navigate("/dashboard/report/sales")
	assert.Equal(t, Expansion{30: true}, r.Snapshot().Expansion)
}

func TestResolverFetchFailureIsEmptyReady(t *testing.T) {
	src := newGatedSource(nil, errors.New("boom"))
	close(src.release)
	r := NewResolver(src, discardLogger())
	r.Start(context.Background())
	waitReady(t, r)

	v := r.Snapshot()
	assert.Equal(t, PhaseReady, v.Phase)
	assert.Empty(t, v.Entries)
	assert.Empty(t, v.Groups())
}

func TestResolverDiscardsResultAfterClose(t *testing.T) {
	src := newGatedSource(sampleEntries(t), nil)
	r := NewResolver(src, discardLogger())
	r.Start(context.Background())

	r.Close()
	close(src.release)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.ErrorIs(t, r.Wait(ctx), ErrResolverClosed)

	r.Navigate("/dashboard/stok-tanimlari/depo-tanimlama")
	r.Toggle(10)
	v := r.Snapshot()
	assert.Equal(t, PhaseLoading, v.Phase)
	assert.Empty(t, v.Entries)
	assert.Empty(t, v.Expansion)
}

func TestResolverWaitHonoursContext(t *testing.T) {
	src := newGatedSource(nil, nil)
	r := NewResolver(src, discardLogger())
	r.Start(context.Background())
	defer r.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, r.Wait(ctx), context.DeadlineExceeded)
}

func TestRegistryMountsOncePerSession(t *testing.T) {
	g := NewRegistry(discardLogger())
	src := newGatedSource(sampleEntries(t), nil)
	close(src.release)

	a := g.Get("s1", src)
	b := g.Get("s1", src)
	assert.Same(t, a, b)
	assert.Equal(t, 1, g.Len())

	waitReady(t, a)
	assert.EqualValues(t, 1, src.calls.Load())

	assert.True(t, g.Drop("s1"))
	assert.False(t, g.Drop("s1"))
	assert.Equal(t, 0, g.Len())
	assert.False(t, mounted(g, "s1"))
}

func TestRegistrySweep(t *testing.T) {
	g := NewRegistry(discardLogger())
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	g.now = func() time.Time { return now }

	src := newGatedSource(nil, nil)
	close(src.release)
	g.Get("old", src)
	now = now.Add(2 * time.Hour)
	g.Get("fresh", src)

	assert.Equal(t, 1, g.Sweep(time.Hour))
	assert.False(t, mounted(g, "old"))
	assert.True(t, mounted(g, "fresh"))

	require.NoError(t, g.Close(context.Background()))
	assert.Equal(t, 0, g.Len())
}

func mounted(g *Registry, sessionID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.resolvers[sessionID]
	return ok
}

type countingObserver struct {
	results []string
}

func (o *countingObserver) ObserveMenuFetch(result string, _ time.Duration) {
	o.results = append(o.results, result)
}

func TestPanelSourceCachesPayload(t *testing.T) {
	store := cache.NewMemoryCache(cache.DefaultConfig())
	defer store.Close()

	var calls int
	obs := &countingObserver{}
	src := &PanelSource{
		Payload: func(context.Context) ([]byte, error) {
			calls++
			return []byte(samplePayload), nil
		},
		Cache:    store,
		CacheKey: CacheKey("s1"),
		TTL:      time.Minute,
		Logger:   discardLogger(),
		Observer: obs,
	}

	first, err := src.Fetch(context.Background())
	require.NoError(t, err)
	second, err := src.Fetch(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, calls)
	assert.Equal(t, []string{FetchOK, FetchCached}, obs.results)
}

func TestPanelSourceErrors(t *testing.T) {
	obs := &countingObserver{}
	src := &PanelSource{
		Payload:  func(context.Context) ([]byte, error) { return []byte(`{"a":1}`), nil },
		Logger:   discardLogger(),
		Observer: obs,
	}
	_, err := src.Fetch(context.Background())
	assert.ErrorIs(t, err, ErrMalformedPayload)

	src.Payload = func(context.Context) ([]byte, error) { return nil, errors.New("down") }
	_, err = src.Fetch(context.Background())
	assert.Error(t, err)
	assert.Equal(t, []string{FetchMalformed, FetchError}, obs.results)
}
