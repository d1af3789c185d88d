package middlewares

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"zupos_panel/internal/config"
	"zupos_panel/internal/session"
)

// SessionConfig holds everything RequireSession and the cookie helpers need.
type SessionConfig struct {
	Manager      *session.Manager
	CookieName   string
	CookieSecure bool
	TTL          time.Duration

	// LoginPath is where browsers without a session are sent. Default: /login
	LoginPath string

	Logger *slog.Logger
}

func (c *SessionConfig) cookieName() string {
	if c.CookieName == "" {
		return "zupos_session"
	}
	return c.CookieName
}

func (c *SessionConfig) loginPath() string {
	if c.LoginPath == "" {
		return "/login"
	}
	return c.LoginPath
}

// SessionID returns the id in the session cookie, or "".
func (c *SessionConfig) SessionID(r *http.Request) string {
	ck, err := r.Cookie(c.cookieName())
	if err != nil {
		return ""
	}
	return ck.Value
}

// SetSessionCookie issues the session cookie for id.
func (c *SessionConfig) SetSessionCookie(w http.ResponseWriter, id string) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.cookieName(),
		Value:    id,
		Path:     "/",
		MaxAge:   int(c.TTL.Seconds()),
		HttpOnly: true,
		Secure:   c.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

// DeleteSessionCookie expires the session cookie.
func (c *SessionConfig) DeleteSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.cookieName(),
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

// LoginRedirect is the login URL that returns to the current page afterwards.
func (c *SessionConfig) LoginRedirect(r *http.Request) string {
	target := r.URL.RequestURI()
	if target == "" || target == "/" {
		return c.loginPath()
	}
	return c.loginPath() + "?redirect=" + url.QueryEscape(target)
}

// RequireSession loads the session named by the cookie and puts it in the
// request context. Requests without one get a 401 JSON body when they are
// API calls and a redirect to the login page otherwise.
func RequireSession(cfg *SessionConfig) func(next http.Handler) http.Handler {
	if cfg == nil || cfg.Manager == nil {
		panic("middlewares: RequireSession needs a session manager")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := cfg.SessionID(r)
			st, err := cfg.Manager.Load(r.Context(), id)
			if err != nil {
				if !errors.Is(err, session.ErrNotAuthenticated) {
					logger.Error("session load failed", "path", r.URL.Path, "error", err)
				}
				if id != "" {
					cfg.DeleteSessionCookie(w)
				}
				if isAPIRequest(r) {
					config.RespondUnauthorized(w, "Authentication required")
					return
				}
				http.Redirect(w, r, cfg.LoginRedirect(r), http.StatusSeeOther)
				return
			}

			cfg.Manager.Touch(r.Context(), st.ID)
			noteUser(r, st)
			next.ServeHTTP(w, r.WithContext(session.WithState(r.Context(), st)))
		})
	}
}

// isAPIRequest tells JSON callers apart from browser navigation.
func isAPIRequest(r *http.Request) bool {
	if strings.HasPrefix(r.URL.Path, "/api/") {
		return true
	}
	accept := r.Header.Get("Accept")
	if strings.Contains(accept, "application/json") && !strings.Contains(accept, "text/html") {
		return true
	}
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		return true
	}
	return r.Header.Get("X-Requested-With") == "XMLHttpRequest"
}

// SafeRedirect keeps post-login redirects on this site.
func SafeRedirect(target, fallback string) string {
	if target == "" || !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") || strings.HasPrefix(target, "/\\") {
		return fallback
	}
	return target
}
