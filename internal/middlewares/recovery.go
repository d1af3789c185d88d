package middlewares

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"zupos_panel/internal/config"
	"zupos_panel/internal/observability"
)

// RecoveryConfig holds configuration for recovery middleware
type RecoveryConfig struct {
	Logger *slog.Logger

	// DisableStackTrace leaves the stack out of the panic log line
	DisableStackTrace bool

	// Development adds the panic value to JSON error bodies
	Development bool
}

// Recovery turns a panic into a 500. API callers get a JSON body and
// browsers a plain error page.
func Recovery(cfg *RecoveryConfig) func(next http.Handler) http.Handler {
	if cfg == nil {
		cfg = &RecoveryConfig{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				attrs := []any{
					"method", r.Method,
					"path", r.URL.Path,
					"client_ip", clientIP(r),
					"error", fmt.Sprintf("%v", rec),
				}
				if id := observability.GetRequestID(r.Context()); id != "" {
					attrs = append(attrs, "request_id", id)
				}
				if !cfg.DisableStackTrace {
					attrs = append(attrs, "stack", string(debug.Stack()))
				}
				logger.Error("panic recovered", attrs...)

				if isAPIRequest(r) {
					details := ""
					if cfg.Development {
						details = fmt.Sprintf("panic: %v", rec)
					}
					_ = config.RespondJSON(w, http.StatusInternalServerError, config.ErrorResponse{
						Error:   "internal_server_error",
						Message: "Beklenmeyen bir hata oluştu",
						Details: details,
					})
					return
				}
				http.Error(w, "Beklenmeyen bir hata oluştu", http.StatusInternalServerError)
			}()

			next.ServeHTTP(w, r)
		})
	}
}
