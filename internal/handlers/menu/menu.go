package menu

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"zupos_panel/internal/config"
	"zupos_panel/internal/handlers"
	nav "zupos_panel/internal/menu"
	"zupos_panel/internal/middlewares"
	"zupos_panel/internal/routes"
	"zupos_panel/internal/views"
)

type MenuHandler struct {
	h *handlers.Handler
}

func NewMenuHandler(h *handlers.Handler) *MenuHandler {
	return &MenuHandler{h: h}
}

// snapshotResponse is the JSON form of a resolver snapshot.
type snapshotResponse struct {
	Phase string `json:"phase"`
	nav.View
}

// Sidebar renders the sidebar fragment. The panel script polls it while
// the spinner is shown; path, when given, is recorded as the current page.
func (mh *MenuHandler) Sidebar(w http.ResponseWriter, r *http.Request) {
	st, ok := mh.h.State(r)
	if !ok {
		mh.h.Unauthorized(w, r)
		return
	}

	res := mh.h.Resolver(st)
	if p := r.URL.Query().Get("path"); p != "" {
		if target := middlewares.SafeRedirect(p, ""); target != "" {
			res.Navigate(target)
		}
	}
	mh.h.Views.Fragment(w, http.StatusOK, "sidebar", views.NewSidebar(res.Snapshot()))
}

// Snapshot returns the resolver state as JSON. With wait=1 it blocks up to
// the configured menu wait for the tree.
func (mh *MenuHandler) Snapshot(w http.ResponseWriter, r *http.Request) {
	st, ok := mh.h.State(r)
	if !ok {
		config.RespondUnauthorized(w, "Authentication required")
		return
	}

	res := mh.h.Resolver(st)
	if r.URL.Query().Get("wait") == "1" && mh.h.MenuWait > 0 {
		ctx, cancel := context.WithTimeout(r.Context(), mh.h.MenuWait)
		defer cancel()
		_ = res.Wait(ctx)
	}
	v := res.Snapshot()
	if v.Entries == nil {
		v.Entries = []nav.Entry{}
	}
	_ = config.RespondJSON(w, http.StatusOK, snapshotResponse{Phase: v.Phase.String(), View: v})
}

// Toggle opens or closes one group. The panel script gets the new sidebar
// back; a plain form post is redirected to the page it came from.
func (mh *MenuHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	st, ok := mh.h.State(r)
	if !ok {
		mh.h.Unauthorized(w, r)
		return
	}

	seq, err := strconv.Atoi(chi.URLParam(r, "seq"))
	if err != nil {
		if handlers.IsXHR(r) {
			config.RespondError(w, http.StatusBadRequest, "Geçersiz menü numarası", mh.h.Logger)
			return
		}
		http.Error(w, "Geçersiz menü numarası", http.StatusBadRequest)
		return
	}

	res := mh.h.Resolver(st)
	res.Toggle(seq)

	if handlers.IsXHR(r) {
		mh.h.Views.Fragment(w, http.StatusOK, "sidebar", views.NewSidebar(res.Snapshot()))
		return
	}
	http.Redirect(w, r, middlewares.SafeRedirect(r.PostFormValue("redirect"), routes.DashboardRoot), http.StatusSeeOther)
}
