// Package panel assembles the panel's handlers into routes.
package panel

import (
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"zupos_panel/internal/auth"
	"zupos_panel/internal/cache"
	"zupos_panel/internal/handlers"
	authhandler "zupos_panel/internal/handlers/auth"
	"zupos_panel/internal/handlers/dashboard"
	menuhandler "zupos_panel/internal/handlers/menu"
	warehousehandler "zupos_panel/internal/handlers/warehouses"
	"zupos_panel/internal/menu"
	"zupos_panel/internal/middlewares"
	"zupos_panel/internal/router"
	"zupos_panel/internal/routes"
	"zupos_panel/internal/views"
	"zupos_panel/internal/warehouses"
)

// Deps is everything the routes need. Health and Metrics are optional.
type Deps struct {
	Logger   *slog.Logger
	Views    *views.Renderer
	Sessions *middlewares.SessionConfig
	Menus    *menu.Registry
	Source   handlers.MenuSourceFunc
	MenuWait time.Duration

	Auth        *auth.Service
	Warehouses  warehouses.Repository
	RowsPerPage int

	// Cache holds the login rate limiter buckets.
	Cache       cache.Cache
	LoginBurst  int
	LoginRefill time.Duration

	Static  fs.FS
	Health  http.HandlerFunc
	Metrics http.Handler
}

// SetupRoutes registers every panel route on r.
func SetupRoutes(r *router.Router, d Deps) {
	h := handlers.NewHandler(d.Logger, d.Views, d.Sessions, d.Menus, d.Source, d.MenuWait)

	ah := authhandler.NewAuthHandler(h, d.Auth)
	mh := menuhandler.NewMenuHandler(h)
	dh := dashboard.NewDashboardHandler(h, d.Warehouses)
	wh := warehousehandler.NewWarehouseHandler(h, d.Warehouses, d.RowsPerPage)

	limiter := middlewares.LoginRateLimit(d.Cache, d.LoginBurst, d.LoginRefill, d.Logger)
	limiter.Denied = ah.TooManyAttempts
	throttle := middlewares.RateLimit(limiter)

	r.RegisterGroup(&router.RouteGroup{
		Category: "auth",
		Routes: []*router.Route{
			{Method: http.MethodGet, Path: "/login", HandlerFunc: ah.LoginPage},
			{Method: http.MethodPost, Path: "/login", HandlerFunc: ah.Login, Middlewares: []router.Middleware{throttle}},
			{Method: http.MethodPost, Path: "/logout", HandlerFunc: ah.Logout},
		},
	})

	r.Register(&router.Route{
		Category: "pages",
		Path:     "/",
		HandlerFunc: func(w http.ResponseWriter, req *http.Request) {
			http.Redirect(w, req, routes.DashboardRoot, http.StatusSeeOther)
		},
	})

	guard := []router.Middleware{middlewares.RequireSession(d.Sessions)}
	depo := warehousehandler.Path()

	r.RegisterGroup(&router.RouteGroup{
		Category:    "pages",
		Middlewares: guard,
		Routes: []*router.Route{
			{Method: http.MethodGet, Path: routes.DashboardRoot, HandlerFunc: dh.Home},
			{Method: http.MethodGet, Path: routes.DashboardRoot + "/*", HandlerFunc: dh.Placeholder},
			{Method: http.MethodGet, Path: depo, HandlerFunc: wh.List},
			{Method: http.MethodPost, Path: depo, HandlerFunc: wh.Create},
			{Method: http.MethodPost, Path: depo + "/{id}/delete", HandlerFunc: wh.Delete},
			{Method: http.MethodGet, Path: depo + "/export.xlsx", HandlerFunc: wh.Export},
		},
	})

	r.RegisterGroup(&router.RouteGroup{
		Category:    "menu",
		Middlewares: guard,
		Routes: []*router.Route{
			{Method: http.MethodGet, Path: "/menu", HandlerFunc: mh.Sidebar},
			{Method: http.MethodPost, Path: "/menu/toggle/{seq}", HandlerFunc: mh.Toggle},
			{Method: http.MethodGet, Path: "/api/menu", HandlerFunc: mh.Snapshot, RouterType: router.RouterTypeAPI},
			{Method: http.MethodGet, Path: "/api/routes", HandlerFunc: r.DocsHandler(), RouterType: router.RouterTypeAPI},
		},
	})

	if d.Health != nil {
		r.Register(&router.Route{Category: "system", Path: "/health", HandlerFunc: d.Health, RouterType: router.RouterTypeAPI})
	}
	if d.Metrics != nil {
		r.Mount("/metrics", d.Metrics)
	}
	if d.Static != nil {
		r.Mount("/static", http.StripPrefix("/static", http.FileServerFS(d.Static)))
	}
}
