package menu

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"zupos_panel/internal/routes"
)

// Phase is the lifecycle stage of a Resolver.
type Phase int

const (
	PhaseLoading Phase = iota
	PhaseReady
)

func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhaseReady:
		return "ready"
	default:
		return "unknown"
	}
}

// ErrResolverClosed is returned by Wait once the resolver is closed.
var ErrResolverClosed = errors.New("menu resolver closed")

// Resolver holds the navigation state of one panel session: the filtered
// menu tree, which groups are open and the page being viewed.
//
// The tree is fetched once per resolver. A failed fetch leaves the resolver
// ready with an empty tree; there is no retry.
type Resolver struct {
	source Source
	logger *slog.Logger
	now    func() time.Time

	mu        sync.Mutex
	phase     Phase
	entries   []Entry
	expansion Expansion
	path      string
	started   bool
	closed    bool
	cancel    context.CancelFunc
	lastUsed  time.Time

	ready     chan struct{}
	readyOnce sync.Once
}

// NewResolver creates a resolver in PhaseLoading. Nothing is fetched until
// Start is called.
func NewResolver(source Source, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		source:    source,
		logger:    logger,
		now:       time.Now,
		phase:     PhaseLoading,
		expansion: Expansion{},
		lastUsed:  time.Now(),
		ready:     make(chan struct{}),
	}
}

// Start issues the single fetch of the menu tree in the background.
// Calls after the first, or after Close, do nothing.
func (r *Resolver) Start(ctx context.Context) {
	r.mu.Lock()
	if r.started || r.closed {
		r.mu.Unlock()
		return
	}
	r.started = true
	ctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.mu.Unlock()

	go func() {
		defer cancel()
		entries, err := r.source.Fetch(ctx)
		r.finish(entries, err)
	}()
}

func (r *Resolver) finish(entries []Entry, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		r.logger.Debug("discarding menu fetched after close")
		return
	}
	if err != nil {
		r.logger.Error("menu fetch failed", "error", err)
		entries = nil
	}

	r.entries = FilterPanel(entries)
	r.phase = PhaseReady
	if r.path != "" && len(r.entries) > 0 {
		r.expansion = ComputeExpansion(r.entries, r.path, r.expansion)
	}
	r.logger.Debug("menu ready", "entries", len(r.entries))
	r.readyOnce.Do(func() { close(r.ready) })
}

// Close cancels an in-flight fetch. State changes after Close are ignored.
func (r *Resolver) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	r.closed = true
	if r.cancel != nil {
		r.cancel()
	}
	r.readyOnce.Do(func() { close(r.ready) })
}

// Navigate records the page being viewed. When the path changes and the
// tree is loaded, the group holding the matching sub-item becomes the only
// open group; an unknown path leaves expansion as it is. Revisiting the same
// path keeps manual toggles.
func (r *Resolver) Navigate(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	r.lastUsed = r.now()
	if path == r.path {
		return
	}
	r.path = path
	if r.phase == PhaseReady && len(r.entries) > 0 {
		r.expansion = ComputeExpansion(r.entries, path, r.expansion)
	}
}

// Toggle flips one group open or closed.
func (r *Resolver) Toggle(seq int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	r.expansion = Toggle(r.expansion, seq)
	r.lastUsed = r.now()
}

// Wait blocks until the tree is loaded, the resolver is closed or ctx ends.
func (r *Resolver) Wait(ctx context.Context) error {
	select {
	case <-r.ready:
		r.mu.Lock()
		closed := r.closed && r.phase != PhaseReady
		r.mu.Unlock()
		if closed {
			return ErrResolverClosed
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Snapshot returns a copy of the current state.
func (r *Resolver) Snapshot() View {
	r.mu.Lock()
	defer r.mu.Unlock()

	v := View{
		Phase:       r.phase,
		Entries:     r.entries,
		Expansion:   r.expansion.Clone(),
		CurrentPath: r.path,
	}
	if parent, sub, ok := ActiveSub(r.entries, r.path); ok {
		v.ActiveParent, v.ActiveSub, v.HasActive = parent, sub, true
	}
	return v
}

// LastUsed reports when the session last navigated or toggled.
func (r *Resolver) LastUsed() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastUsed
}

// SubItemPath is where selecting sub navigates to. Selection itself does
// not touch expansion; the following Navigate does.
func SubItemPath(sub SubItem) string {
	return routes.Resolve(sub.Controller, sub.Action)
}

func (r *Resolver) touch() {
	r.mu.Lock()
	r.lastUsed = r.now()
	r.mu.Unlock()
}
