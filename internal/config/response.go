package config

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// ErrorResponse is the body of every JSON error the panel returns.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
	// RetryAfter is set on throttled requests, in seconds.
	RetryAfter int `json:"retry_after_seconds,omitempty"`
}

// RespondJSON writes data as JSON with the given status.
func RespondJSON(w http.ResponseWriter, statusCode int, data any) error {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(data)
}

// RespondError writes an ErrorResponse. The error code is derived from the
// status text, so 404 becomes "not_found".
func RespondError(w http.ResponseWriter, statusCode int, message string, logger *slog.Logger) {
	if logger != nil && statusCode >= http.StatusInternalServerError {
		logger.Error("responding with error", "status_code", statusCode, "message", message)
	}
	_ = RespondJSON(w, statusCode, ErrorResponse{Error: errorCode(statusCode), Message: message})
}

// RespondUnauthorized answers API calls made without a live session.
func RespondUnauthorized(w http.ResponseWriter, message string) {
	_ = RespondJSON(w, http.StatusUnauthorized, ErrorResponse{Error: errorCode(http.StatusUnauthorized), Message: message})
}

func errorCode(statusCode int) string {
	text := http.StatusText(statusCode)
	if text == "" {
		return "error"
	}
	b := make([]byte, 0, len(text))
	for i := 0; i < len(text); i++ {
		c := text[i]
		switch {
		case c >= 'A' && c <= 'Z':
			b = append(b, c+'a'-'A')
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9':
			b = append(b, c)
		case len(b) > 0 && b[len(b)-1] != '_':
			b = append(b, '_')
		}
	}
	return string(b)
}
