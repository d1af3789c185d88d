// Package router registers the panel's pages and API endpoints on a chi mux
// and keeps a compiled list of them for conflict detection and listing.
package router

import (
	"fmt"
	"log/slog"
	"net/http"
	"path"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"zupos_panel/internal/config"
)

// RouterType separates HTML pages from JSON endpoints in listings.
type RouterType string

const (
	RouterTypeAPI  RouterType = "api"
	RouterTypePage RouterType = "page"
)

// Middleware is the standard net/http middleware signature.
type Middleware func(http.Handler) http.Handler

// Route is a single endpoint.
type Route struct {
	Category    string
	Method      string
	Path        string
	HandlerFunc http.HandlerFunc
	Middlewares []Middleware
	RouterType  RouterType
}

// RouteGroup shares a prefix, middlewares and category between routes.
type RouteGroup struct {
	Prefix      string
	Middlewares []Middleware
	Routes      []*Route
	Category    string
}

// CompiledRoute is the registered form of a Route, kept for introspection.
type CompiledRoute struct {
	Method       string     `json:"method"`
	Path         string     `json:"path"`
	Category     string     `json:"category,omitempty"`
	RouterType   RouterType `json:"type"`
	RegisteredAt time.Time  `json:"registered_at"`
}

// RouteConflictError represents a route registration conflict
type RouteConflictError struct {
	NewRoute      string
	ExistingRoute string
	Message       string
}

func (e *RouteConflictError) Error() string {
	return fmt.Sprintf("route conflict: %s conflicts with existing route %s - %s",
		e.NewRoute, e.ExistingRoute, e.Message)
}

// Config controls router behaviour.
type Config struct {
	// Mode "dev" panics on route conflicts; other modes log and overwrite.
	Mode string
}

// Router wraps a chi.Mux.
type Router struct {
	config   *Config
	mux      *chi.Mux
	logger   *slog.Logger
	mu       sync.RWMutex
	compiled map[string]*CompiledRoute
}

// New creates a router. Global middlewares run for every request, including
// unmatched ones.
func New(cfg *Config, logger *slog.Logger, global ...Middleware) *Router {
	if cfg == nil {
		cfg = &Config{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	mux := chi.NewRouter()
	for _, m := range global {
		mux.Use(m)
	}
	return &Router{
		config:   cfg,
		mux:      mux,
		logger:   logger.With("component", "router"),
		compiled: make(map[string]*CompiledRoute),
	}
}

// sanitizePath cleans a route path. chi parameters such as {seq} and the
// trailing "/*" wildcard survive cleaning.
func sanitizePath(p string) string {
	if p == "" || p == "/" {
		return "/"
	}
	wildcard := strings.HasSuffix(p, "/*")
	cleaned := path.Clean("/" + strings.TrimSuffix(p, "/*"))
	if wildcard {
		if cleaned == "/" {
			return "/*"
		}
		return cleaned + "/*"
	}
	return cleaned
}

// Register adds one route.
func (r *Router) Register(route *Route) {
	if route == nil || route.HandlerFunc == nil {
		r.logger.Error("refusing to register route without handler")
		return
	}
	method := strings.ToUpper(route.Method)
	if method == "" {
		method = http.MethodGet
	}
	p := sanitizePath(route.Path)
	pattern := method + " " + p

	r.mu.Lock()
	if existing, ok := r.compiled[pattern]; ok {
		err := &RouteConflictError{
			NewRoute:      pattern,
			ExistingRoute: existing.Method + " " + existing.Path,
			Message:       fmt.Sprintf("registered at %s", existing.RegisteredAt.Format(time.RFC3339)),
		}
		if r.config.Mode == "dev" {
			r.mu.Unlock()
			panic(err)
		}
		r.logger.Warn("route conflict detected, overwriting", "error", err)
	}
	kind := route.RouterType
	if kind == "" {
		kind = RouterTypePage
	}
	r.compiled[pattern] = &CompiledRoute{
		Method:       method,
		Path:         p,
		Category:     route.Category,
		RouterType:   kind,
		RegisteredAt: time.Now(),
	}
	r.mu.Unlock()

	var h http.Handler = route.HandlerFunc
	for i := len(route.Middlewares) - 1; i >= 0; i-- {
		h = route.Middlewares[i](h)
	}
	r.mux.Method(method, p, h)

	r.logger.Debug("route registered", "method", method, "path", p, "type", kind)
}

// RegisterGroup registers a group of routes with shared configuration
func (r *Router) RegisterGroup(group *RouteGroup) {
	if group == nil {
		return
	}
	prefix := strings.TrimSuffix(group.Prefix, "/")
	for _, route := range group.Routes {
		rt := *route
		if rt.Category == "" {
			rt.Category = group.Category
		}
		if prefix != "" {
			rt.Path = prefix + "/" + strings.TrimPrefix(rt.Path, "/")
		}
		if len(group.Middlewares) > 0 {
			rt.Middlewares = append(append([]Middleware{}, group.Middlewares...), rt.Middlewares...)
		}
		r.Register(&rt)
	}
	r.logger.Debug("route group registered", "prefix", group.Prefix, "routes", len(group.Routes))
}

// Mount attaches a whole handler below pattern, used for static assets and
// probes that are not listed.
func (r *Router) Mount(pattern string, h http.Handler) {
	r.mux.Mount(pattern, h)
}

// NotFound sets the handler for unmatched paths.
func (r *Router) NotFound(h http.HandlerFunc) {
	r.mux.NotFound(h)
}

// Routes lists the registered routes ordered by path, then method.
func (r *Router) Routes() []CompiledRoute {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]CompiledRoute, 0, len(r.compiled))
	for _, c := range r.compiled {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Path != out[j].Path {
			return out[i].Path < out[j].Path
		}
		return out[i].Method < out[j].Method
	})
	return out
}

// DocsHandler serves the route listing as JSON.
func (r *Router) DocsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		routes := r.Routes()
		if err := config.RespondJSON(w, http.StatusOK, map[string]any{
			"routes":       routes,
			"total_routes": len(routes),
		}); err != nil {
			r.logger.Error("failed to encode route listing", "error", err)
		}
	}
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}
