// Package server runs the panel's HTTP server and shuts it down together
// with the resources its handlers depend on.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"
)

// Config holds HTTP server configuration
type Config struct {
	Addr   string
	Logger *slog.Logger

	ReadTimeout       time.Duration
	ReadHeaderTimeout time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	MaxHeaderBytes    int

	// TLS is used when both files are set
	TLSCertFile string
	TLSKeyFile  string

	ShutdownTimeout time.Duration
}

// DefaultConfig returns a default server configuration
func DefaultConfig(addr string) *Config {
	return &Config{
		Addr:              addr,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1 MB
		ShutdownTimeout:   30 * time.Second,
	}
}

// DevelopmentConfig returns a development-friendly server configuration
func DevelopmentConfig(addr string) *Config {
	cfg := DefaultConfig(addr)
	cfg.ReadTimeout = 30 * time.Second
	cfg.WriteTimeout = 60 * time.Second
	cfg.IdleTimeout = 300 * time.Second
	cfg.ShutdownTimeout = 10 * time.Second
	return cfg
}

// ForEnvironment picks the configuration for env.
func ForEnvironment(env, addr string) *Config {
	if env == "development" {
		return DevelopmentConfig(addr)
	}
	return DefaultConfig(addr)
}

// New creates a new HTTP server with the given configuration
func New(handler http.Handler, config *Config) *http.Server {
	if config == nil {
		config = DefaultConfig(":8080")
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	srv := &http.Server{
		Addr:              config.Addr,
		Handler:           handler,
		ReadTimeout:       config.ReadTimeout,
		ReadHeaderTimeout: config.ReadHeaderTimeout,
		WriteTimeout:      config.WriteTimeout,
		IdleTimeout:       config.IdleTimeout,
		MaxHeaderBytes:    config.MaxHeaderBytes,
		ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	logger.Info("http server configured",
		"addr", config.Addr,
		"read_timeout", config.ReadTimeout.String(),
		"write_timeout", config.WriteTimeout.String(),
		"idle_timeout", config.IdleTimeout.String(),
	)
	return srv
}

// Run serves on ln until ctx is done or serving fails, then shuts down the
// server and the given resources. Pass a ctx from signal.NotifyContext to
// stop on SIGINT/SIGTERM.
func Run(ctx context.Context, srv *http.Server, ln net.Listener, config *Config, resources ...Resource) error {
	if config == nil {
		config = DefaultConfig(srv.Addr)
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	sm := NewShutdownManager(&ShutdownConfig{Logger: logger, Timeout: config.ShutdownTimeout})
	for _, r := range resources {
		sm.Register(r)
	}
	sm.Register(NewHTTPServerResource("http-server", srv))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if config.TLSCertFile != "" && config.TLSKeyFile != "" {
			logger.Info("starting https server", "addr", ln.Addr().String())
			err = srv.ServeTLS(ln, config.TLSCertFile, config.TLSKeyFile)
		} else {
			logger.Info("starting http server", "addr", ln.Addr().String())
			err = srv.Serve(ln)
		}
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutdown initiated, stopping server gracefully")
		sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), config.ShutdownTimeout)
		defer cancel()
		err := sm.Shutdown(sctx)
		logger.Info("shutdown complete")
		return err
	})
	return g.Wait()
}

// ListenAndRun opens config.Addr and calls Run.
func ListenAndRun(ctx context.Context, srv *http.Server, config *Config, resources ...Resource) error {
	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		return err
	}
	return Run(ctx, srv, ln, config, resources...)
}
