package session

import "context"

type contextKey struct{}

// WithState attaches an authenticated session to ctx.
func WithState(ctx context.Context, st *State) context.Context {
	return context.WithValue(ctx, contextKey{}, st)
}

// FromContext returns the session attached by WithState.
func FromContext(ctx context.Context) (*State, bool) {
	st, ok := ctx.Value(contextKey{}).(*State)
	return st, ok && st != nil
}
