package observability

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
)

type contextKey string

const (
	// RequestIDKey is the context key for request ID
	RequestIDKey contextKey = "request_id"
)

// RequestIDConfig holds configuration for request ID middleware
type RequestIDConfig struct {
	// Logger for structured logging (optional, uses slog.Default if nil)
	Logger *slog.Logger

	// Header name for request ID
	// Default: X-Request-ID
	Header string

	// Generator creates request IDs
	// Default: random UUID
	Generator func() string
}

// DefaultRequestIDConfig returns a default request ID configuration
func DefaultRequestIDConfig() *RequestIDConfig {
	return &RequestIDConfig{
		Header:    "X-Request-ID",
		Generator: uuid.NewString,
	}
}

// RequestID returns a middleware that adds request ID to context and response headers.
// An incoming ID is kept so traces from a proxy line up.
func RequestID(config *RequestIDConfig) func(next http.Handler) http.Handler {
	if config == nil {
		config = DefaultRequestIDConfig()
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if config.Header == "" {
		config.Header = "X-Request-ID"
	}
	if config.Generator == nil {
		config.Generator = uuid.NewString
	}

	logger.Debug("request ID middleware initialized", "header", config.Header)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get(config.Header)
			if requestID == "" || len(requestID) > 128 {
				requestID = config.Generator()
			}

			w.Header().Set(config.Header, requestID)
			next.ServeHTTP(w, r.WithContext(WithRequestID(r.Context(), requestID)))
		})
	}
}

// GetRequestID retrieves the request ID from context
func GetRequestID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if requestID, ok := ctx.Value(RequestIDKey).(string); ok {
		return requestID
	}
	return ""
}

// WithRequestID returns a context with the given request ID
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}
