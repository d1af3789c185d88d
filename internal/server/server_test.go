package server

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zupos_panel/internal/cache"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type recorder struct {
	mu    sync.Mutex
	order []string
}

func (r *recorder) resource(name string, err error) Resource {
	return NewCustomResource(name, func(context.Context) error {
		r.mu.Lock()
		r.order = append(r.order, name)
		r.mu.Unlock()
		return err
	})
}

func TestShutdownManagerClosesInReverseOrder(t *testing.T) {
	rec := &recorder{}
	sm := NewShutdownManager(&ShutdownConfig{Logger: quietLogger(), Timeout: time.Second})
	sm.Register(rec.resource("cache", nil))
	sm.Register(rec.resource("menu-registry", errors.New("stuck")))
	sm.Register(rec.resource("http-server", nil))

	err := sm.Shutdown(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "menu-registry: stuck")
	assert.Equal(t, []string{"http-server", "menu-registry", "cache"}, rec.order)

	// Resources are released after the first shutdown.
	require.NoError(t, sm.Shutdown(context.Background()))
}

func TestCacheResource(t *testing.T) {
	mc := cache.NewMemoryCache(nil)
	r := NewCacheResource("session-cache", mc)
	assert.Equal(t, "session-cache", r.Name())
	assert.NoError(t, r.Close(context.Background()))
}

func TestRunServesUntilCancelled(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	cfg := DefaultConfig(ln.Addr().String())
	cfg.Logger = quietLogger()
	cfg.ShutdownTimeout = 2 * time.Second
	srv := New(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "ok")
	}), cfg)

	rec := &recorder{}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Run(ctx, srv, ln, cfg, rec.resource("menu-registry", nil)) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, "ok", string(body))

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	assert.Equal(t, []string{"menu-registry"}, rec.order)
}

func TestForEnvironment(t *testing.T) {
	assert.Equal(t, 10*time.Second, ForEnvironment("development", ":1").ShutdownTimeout)
	assert.Equal(t, 30*time.Second, ForEnvironment("production", ":1").ShutdownTimeout)
}
