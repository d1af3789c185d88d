package main

import (
	"context"
	"io/fs"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"zupos_panel/internal/auth"
	"zupos_panel/internal/cache"
	"zupos_panel/internal/config"
	"zupos_panel/internal/menu"
	"zupos_panel/internal/middlewares"
	"zupos_panel/internal/observability"
	"zupos_panel/internal/panel"
	"zupos_panel/internal/router"
	"zupos_panel/internal/server"
	"zupos_panel/internal/session"
	"zupos_panel/internal/views"
	"zupos_panel/internal/warehouses"
	"zupos_panel/internal/webpanel"
	"zupos_panel/web"
)

// sweepInterval is how often idle menu resolvers are evicted.
const sweepInterval = 5 * time.Minute

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	cfg, err := config.LoadConfig(logger)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if cfg.IsDevelopment() {
		logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Sessions, menu payloads and rate limit buckets share one cache.
	redisCfg := cache.DefaultRedisConfig()
	redisCfg.Addr = cfg.Redis.Addr
	redisCfg.Password = cfg.Redis.Password
	redisCfg.DB = cfg.Redis.DB
	store := cache.NewFallbackCache(&cache.FallbackConfig{Redis: redisCfg, Logger: logger})

	client, err := webpanel.NewClient(webpanel.Config{
		WebPanelURL:     cfg.Backend.WebPanelURL,
		APIBaseURL:      cfg.Backend.APIBaseURL,
		SignInTimeout:   cfg.Backend.SignInTimeout,
		ValidateTimeout: cfg.Backend.ValidateTimeout,
		MenuTimeout:     cfg.Backend.MenuTimeout,
		Logger:          logger,
	})
	if err != nil {
		log.Fatalf("Failed to create web panel client: %v", err)
	}

	metrics := observability.NewMetrics(&observability.MetricsConfig{
		Logger:    logger,
		Namespace: "zupos",
		Subsystem: "http",
		Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		SkipPaths: []string{"/metrics", "/health", "/static/"},
	})

	menus := menu.NewRegistry(logger)
	metrics.RegisterGaugeFunc("menu", "active_resolvers", "Menu resolvers mounted for live sessions.", func() float64 {
		return float64(menus.Len())
	})
	go menus.Run(ctx, sweepInterval, cfg.Session.ResolverIdleTTL)

	sessions := session.NewManager(store, cfg.Session.TTL, logger)
	authService := auth.NewService(client, sessions, menus, logger)

	checks := map[string]observability.HealthCheck{
		"cache":     observability.PingHealthCheck("cache", store.Ping, true),
		"web_panel": observability.PingHealthCheck("web panel", client.Ping, true),
	}
	resources := []server.Resource{server.NewCacheResource("cache", store)}

	var repo warehouses.Repository
	if cfg.Database.URL != "" {
		pool, err := config.NewPool(ctx, config.DBConfigFrom(cfg.Database, logger))
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		repo = warehouses.NewPostgresRepository(pool)
		checks["database"] = observability.DatabaseHealthCheck(pool)
		resources = append(resources, server.NewDatabaseResource("database", pool))
	} else {
		repo = warehouses.NewMemoryRepository(warehouses.Seed())
	}
	resources = append(resources, menus)

	renderer, err := views.New(web.FS, logger)
	if err != nil {
		log.Fatalf("Failed to parse templates: %v", err)
	}

	var static fs.FS
	if cfg.Rendering.StaticDir != "" {
		static = os.DirFS(cfg.Rendering.StaticDir)
	} else if static, err = fs.Sub(web.FS, "static"); err != nil {
		log.Fatalf("Failed to open embedded static files: %v", err)
	}

	loggerCfg := middlewares.DefaultLoggerConfig()
	loggerCfg.Logger = logger

	mode := "prod"
	if cfg.IsDevelopment() {
		mode = "dev"
	}
	r := router.New(&router.Config{Mode: mode}, logger,
		middlewares.Recovery(&middlewares.RecoveryConfig{Logger: logger, Development: cfg.IsDevelopment()}),
		observability.RequestID(&observability.RequestIDConfig{Logger: logger, Header: "X-Request-ID"}),
		middlewares.Logger(loggerCfg),
		middlewares.Security(middlewares.DefaultSecurityConfig()),
		metrics.Middleware(),
	)

	panel.SetupRoutes(r, panel.Deps{
		Logger: logger,
		Views:  renderer,
		Sessions: &middlewares.SessionConfig{
			Manager:      sessions,
			CookieName:   cfg.Session.CookieName,
			CookieSecure: cfg.Session.CookieSecure,
			TTL:          cfg.Session.TTL,
			Logger:       logger,
		},
		Menus:       menus,
		Source:      panel.MenuSource(client, store, cfg.Backend.MenuLanguageID, cfg.Session.MenuCacheTTL, logger, metrics),
		MenuWait:    cfg.Session.MenuWait,
		Auth:        authService,
		Warehouses:  repo,
		RowsPerPage: cfg.Table.RowsPerPage,
		Cache:       store,
		LoginBurst:  cfg.Session.LoginBurst,
		LoginRefill: cfg.Session.LoginRefill,
		Static:      static,
		Health: observability.HealthHandler(&observability.HealthConfig{
			Logger:            logger,
			Checks:            checks,
			CheckTimeout:      5 * time.Second,
			IncludeSystemInfo: true,
			Version:           cfg.App.Version,
		}),
		Metrics: observability.Handler(nil),
	})

	srvCfg := server.ForEnvironment(cfg.App.Environment, cfg.Addr())
	srvCfg.Logger = logger
	if cfg.TLS.Enabled {
		srvCfg.TLSCertFile = cfg.TLS.CertFile
		srvCfg.TLSKeyFile = cfg.TLS.KeyFile
	}
	srv := server.New(r, srvCfg)

	logger.Info("Starting server", "address", cfg.GetServerAddress(), "web_panel", cfg.Backend.WebPanelURL)
	if err := server.ListenAndRun(ctx, srv, srvCfg, resources...); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
