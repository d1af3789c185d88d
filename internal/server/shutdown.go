package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"zupos_panel/internal/cache"
)

// ShutdownConfig holds configuration for graceful shutdown
type ShutdownConfig struct {
	Logger *slog.Logger

	// Timeout for graceful shutdown
	Timeout time.Duration
}

// DefaultShutdownConfig returns a default shutdown configuration
func DefaultShutdownConfig() *ShutdownConfig {
	return &ShutdownConfig{Timeout: 30 * time.Second}
}

// Resource represents a resource that needs cleanup during shutdown
type Resource interface {
	Name() string
	Close(ctx context.Context) error
}

// ShutdownManager closes registered resources in reverse registration order,
// so the HTTP server stops before the state its handlers use.
type ShutdownManager struct {
	config    *ShutdownConfig
	logger    *slog.Logger
	resources []Resource
	mu        sync.Mutex
}

// NewShutdownManager creates a new shutdown manager
func NewShutdownManager(config *ShutdownConfig) *ShutdownManager {
	if config == nil {
		config = DefaultShutdownConfig()
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &ShutdownManager{config: config, logger: logger}
}

// Register adds a resource to be cleaned up during shutdown
func (sm *ShutdownManager) Register(resource Resource) {
	if resource == nil {
		return
	}
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.resources = append(sm.resources, resource)
	sm.logger.Debug("resource registered for shutdown", "resource", resource.Name())
}

// Shutdown closes every resource. A failing resource does not stop the
// others; all errors are returned joined.
func (sm *ShutdownManager) Shutdown(ctx context.Context) error {
	sm.mu.Lock()
	resources := make([]Resource, len(sm.resources))
	copy(resources, sm.resources)
	sm.resources = nil
	sm.mu.Unlock()

	sm.logger.Info("initiating graceful shutdown", "resources", len(resources))

	var errs []error
	for i := len(resources) - 1; i >= 0; i-- {
		r := resources[i]
		start := time.Now()
		if err := r.Close(ctx); err != nil {
			sm.logger.Error("failed to close resource",
				"resource", r.Name(),
				"error", err,
				"duration", time.Since(start).String(),
			)
			errs = append(errs, fmt.Errorf("%s: %w", r.Name(), err))
			continue
		}
		sm.logger.Info("resource closed", "resource", r.Name(), "duration", time.Since(start).String())
	}
	return errors.Join(errs...)
}

// HTTPServerResource wraps an HTTP server for graceful shutdown
type HTTPServerResource struct {
	server *http.Server
	name   string
}

func NewHTTPServerResource(name string, server *http.Server) *HTTPServerResource {
	return &HTTPServerResource{server: server, name: name}
}

func (h *HTTPServerResource) Name() string { return h.name }

func (h *HTTPServerResource) Close(ctx context.Context) error {
	return h.server.Shutdown(ctx)
}

// DatabaseResource wraps the warehouse database pool
type DatabaseResource struct {
	pool *pgxpool.Pool
	name string
}

func NewDatabaseResource(name string, pool *pgxpool.Pool) *DatabaseResource {
	return &DatabaseResource{pool: pool, name: name}
}

func (d *DatabaseResource) Name() string { return d.name }

// pgxpool.Close blocks until connections are returned, so it runs aside
// and ctx bounds the wait.
func (d *DatabaseResource) Close(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		d.pool.Close()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// CacheResource wraps the session cache, whichever backend it uses.
type CacheResource struct {
	cache cache.Cache
	name  string
}

func NewCacheResource(name string, c cache.Cache) *CacheResource {
	return &CacheResource{cache: c, name: name}
}

func (c *CacheResource) Name() string { return c.name }

func (c *CacheResource) Close(context.Context) error {
	return c.cache.Close()
}

// CustomResource wraps a custom cleanup function
type CustomResource struct {
	name      string
	closeFunc func(ctx context.Context) error
}

func NewCustomResource(name string, closeFunc func(ctx context.Context) error) *CustomResource {
	return &CustomResource{name: name, closeFunc: closeFunc}
}

func (c *CustomResource) Name() string { return c.name }

func (c *CustomResource) Close(ctx context.Context) error {
	return c.closeFunc(ctx)
}
