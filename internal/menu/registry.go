package menu

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Registry keeps one Resolver per panel session. A resolver is mounted by
// the first Get for a session and unmounted by Drop or by idle eviction.
type Registry struct {
	logger *slog.Logger
	now    func() time.Time

	mu        sync.Mutex
	resolvers map[string]*Resolver
}

func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		logger:    logger,
		now:       time.Now,
		resolvers: make(map[string]*Resolver),
	}
}

// Get returns the session's resolver, creating and starting it when the
// session has none. source is only used on creation.
func (g *Registry) Get(sessionID string, source Source) *Resolver {
	g.mu.Lock()
	defer g.mu.Unlock()

	if r, ok := g.resolvers[sessionID]; ok {
		r.touch()
		return r
	}

	r := NewResolver(source, g.logger.With("session_id", sessionID))
	r.now = g.now
	r.lastUsed = g.now()
	g.resolvers[sessionID] = r
	// The fetch outlives the request that mounted the resolver.
	r.Start(context.Background())
	g.logger.Debug("menu resolver mounted", "session_id", sessionID)
	return r
}

// Drop closes and forgets the session's resolver.
func (g *Registry) Drop(sessionID string) bool {
	g.mu.Lock()
	r, ok := g.resolvers[sessionID]
	delete(g.resolvers, sessionID)
	g.mu.Unlock()

	if ok {
		r.Close()
		g.logger.Debug("menu resolver unmounted", "session_id", sessionID)
	}
	return ok
}

// Sweep drops resolvers unused for longer than idle and returns how many
// were dropped.
func (g *Registry) Sweep(idle time.Duration) int {
	cutoff := g.now().Add(-idle)

	g.mu.Lock()
	var stale []*Resolver
	for id, r := range g.resolvers {
		if r.LastUsed().Before(cutoff) {
			stale = append(stale, r)
			delete(g.resolvers, id)
		}
	}
	g.mu.Unlock()

	for _, r := range stale {
		r.Close()
	}
	if len(stale) > 0 {
		g.logger.Info("evicted idle menu resolvers", "count", len(stale))
	}
	return len(stale)
}

// Run sweeps every interval until ctx is done.
func (g *Registry) Run(ctx context.Context, interval, idle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			g.Sweep(idle)
		}
	}
}

// Len is the number of mounted resolvers.
func (g *Registry) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.resolvers)
}

func (g *Registry) Name() string {
	return "menu-registry"
}

// Close unmounts every resolver.
func (g *Registry) Close(ctx context.Context) error {
	g.mu.Lock()
	all := g.resolvers
	g.resolvers = make(map[string]*Resolver)
	g.mu.Unlock()

	for _, r := range all {
		r.Close()
	}
	return ctx.Err()
}
