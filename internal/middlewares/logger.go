package middlewares

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"zupos_panel/internal/observability"
	"zupos_panel/internal/session"
)

// responseWriter wraps http.ResponseWriter to capture response details for logging
type responseWriter struct {
	http.ResponseWriter
	statusCode   int
	bytesWritten int64
	wroteHeader  bool
}

// WriteHeader captures the status code for logging
func (rw *responseWriter) WriteHeader(code int) {
	if !rw.wroteHeader {
		rw.statusCode = code
		rw.wroteHeader = true
	}
	rw.ResponseWriter.WriteHeader(code)
}

// Write counts response bytes for logging
func (rw *responseWriter) Write(data []byte) (int, error) {
	rw.wroteHeader = true
	n, err := rw.ResponseWriter.Write(data)
	rw.bytesWritten += int64(n)
	return n, err
}

// Flush lets the sidebar fragment stream through the wrapper.
func (rw *responseWriter) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// LoggerConfig holds configuration options for the HTTP request logger middleware
type LoggerConfig struct {
	Logger             *slog.Logger
	SkipPrefixes       []string // Path prefixes that are never logged (health checks, assets)
	IncludeUserAgent   bool
	IncludeQueryParams bool
}

// DefaultLoggerConfig returns the request logging used by the panel server
func DefaultLoggerConfig() *LoggerConfig {
	return &LoggerConfig{
		Logger:             slog.Default(),
		SkipPrefixes:       []string{"/health", "/metrics", "/static/", "/favicon.ico"},
		IncludeUserAgent:   true,
		IncludeQueryParams: true,
	}
}

// Logger logs one line per request. The line carries the request id and,
// once RequireSession has run, the signed-in user.
func Logger(config *LoggerConfig) func(http.Handler) http.Handler {
	if config == nil {
		config = DefaultLoggerConfig()
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if shouldSkipPath(r.URL.Path, config.SkipPrefixes) {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			// Handlers further down attach the session state to this holder.
			holder := &userHolder{}
			next.ServeHTTP(wrapped, r.WithContext(withUserHolder(r.Context(), holder)))

			fields := buildLogFields(r, wrapped, time.Since(start), config)
			if holder.user != "" {
				fields = append(fields, "user", holder.user)
			}
			logRequest(config.Logger, wrapped.statusCode, fields)
		})
	}
}

func shouldSkipPath(path string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

func buildLogFields(r *http.Request, rw *responseWriter, duration time.Duration, config *LoggerConfig) []any {
	fields := []any{
		"method", r.Method,
		"path", r.URL.Path,
		"status", rw.statusCode,
		"latency_ms", duration.Milliseconds(),
		"client_ip", clientIP(r),
		"response_size", rw.bytesWritten,
	}
	if id := observability.GetRequestID(r.Context()); id != "" {
		fields = append(fields, "request_id", id)
	}
	if config.IncludeQueryParams && r.URL.RawQuery != "" {
		fields = append(fields, "query", r.URL.RawQuery)
	}
	if config.IncludeUserAgent {
		if ua := r.Header.Get("User-Agent"); ua != "" {
			fields = append(fields, "user_agent", ua)
		}
	}
	return fields
}

// logRequest logs the request with appropriate level based on status code
func logRequest(logger *slog.Logger, statusCode int, fields []any) {
	switch {
	case statusCode >= 500:
		logger.Error("server error", fields...)
	case statusCode >= 400:
		logger.Warn("client error", fields...)
	default:
		logger.Info("request handled", fields...)
	}
}

// clientIP prefers the first X-Forwarded-For hop, then X-Real-IP.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	host := r.RemoteAddr
	if i := strings.LastIndex(host, ":"); i > 0 {
		host = host[:i]
	}
	return strings.Trim(host, "[]")
}

// userHolder lets the logger see the user that an inner middleware resolved.
type userHolder struct {
	user string
}

type userHolderKey struct{}

func withUserHolder(ctx context.Context, h *userHolder) context.Context {
	return context.WithValue(ctx, userHolderKey{}, h)
}

func noteUser(r *http.Request, st *session.State) {
	if h, ok := r.Context().Value(userHolderKey{}).(*userHolder); ok && st != nil {
		h.user = st.User.Username
	}
}
