package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"zupos_panel/internal/menu"
	"zupos_panel/internal/middlewares"
	"zupos_panel/internal/session"
	"zupos_panel/internal/views"
)

// MenuSourceFunc builds the menu source of a signed-in session.
type MenuSourceFunc func(st *session.State) menu.Source

// Handler carries what every panel handler shares.
type Handler struct {
	Logger   *slog.Logger
	Views    *views.Renderer
	Sessions *middlewares.SessionConfig
	Menus    *menu.Registry
	Source   MenuSourceFunc

	// MenuWait bounds how long a page waits for the first menu fetch
	// before it is rendered with the sidebar spinner.
	MenuWait time.Duration
}

func NewHandler(l *slog.Logger, v *views.Renderer, s *middlewares.SessionConfig, m *menu.Registry, src MenuSourceFunc, wait time.Duration) *Handler {
	if l == nil {
		l = slog.Default()
	}
	return &Handler{
		Logger:   l,
		Views:    v,
		Sessions: s,
		Menus:    m,
		Source:   src,
		MenuWait: wait,
	}
}

// State returns the session loaded by RequireSession. Handlers behind the
// guard can rely on it; the bool is false only when wiring is wrong.
func (h *Handler) State(r *http.Request) (*session.State, bool) {
	return session.FromContext(r.Context())
}

// Resolver mounts or returns the menu resolver of st.
func (h *Handler) Resolver(st *session.State) *menu.Resolver {
	return h.Menus.Get(st.ID, h.Source(st))
}

// Menu records r's path on the session's resolver and waits up to MenuWait
// for the tree. A page rendered before the tree arrives shows the spinner.
func (h *Handler) Menu(r *http.Request, st *session.State) menu.View {
	res := h.Resolver(st)
	res.Navigate(r.URL.Path)
	if h.MenuWait > 0 {
		ctx, cancel := context.WithTimeout(r.Context(), h.MenuWait)
		defer cancel()
		if err := res.Wait(ctx); err != nil {
			h.Logger.Debug("rendering before menu arrived", "session_id", st.ID, "path", r.URL.Path)
		}
	}
	return res.Snapshot()
}

// Shell builds the page chrome for r.
func (h *Handler) Shell(r *http.Request, st *session.State, title string) views.Shell {
	return views.NewShell(title, st.User, h.Menu(r, st))
}

// Unauthorized sends a request that reached a guarded handler without a
// session back to the login page.
func (h *Handler) Unauthorized(w http.ResponseWriter, r *http.Request) {
	h.Logger.Error("guarded handler reached without session", "path", r.URL.Path)
	http.Redirect(w, r, h.Sessions.LoginRedirect(r), http.StatusSeeOther)
}

// IsXHR reports whether r came from the panel script.
func IsXHR(r *http.Request) bool {
	return r.Header.Get("X-Requested-With") == "XMLHttpRequest"
}
