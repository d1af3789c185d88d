package dashboard

import (
	"net/http"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"zupos_panel/internal/handlers"
	"zupos_panel/internal/menu"
	"zupos_panel/internal/routes"
	"zupos_panel/internal/views"
	"zupos_panel/internal/warehouses"
)

type DashboardHandler struct {
	h          *handlers.Handler
	warehouses warehouses.Repository
}

func NewDashboardHandler(h *handlers.Handler, repo warehouses.Repository) *DashboardHandler {
	return &DashboardHandler{h: h, warehouses: repo}
}

// Home is the landing page after sign-in.
func (dh *DashboardHandler) Home(w http.ResponseWriter, r *http.Request) {
	st, ok := dh.h.State(r)
	if !ok {
		dh.h.Unauthorized(w, r)
		return
	}

	page := views.DashboardPage{Shell: dh.h.Shell(r, st, "Ana Sayfa")}
	if stats, err := dh.warehouses.Stats(r.Context()); err != nil {
		dh.h.Logger.Error("failed to load warehouse stats", "error", err)
	} else {
		page.Cards = stats.StatCards()
	}
	dh.h.Views.Render(w, http.StatusOK, "dashboard", page)
}

// Placeholder renders any other panel path inside the shell, so every
// path the menu links to can be opened.
func (dh *DashboardHandler) Placeholder(w http.ResponseWriter, r *http.Request) {
	st, ok := dh.h.State(r)
	if !ok {
		dh.h.Unauthorized(w, r)
		return
	}

	shell := dh.h.Shell(r, st, "")
	heading := headingFor(shell.Crumbs, r.URL.Path)
	shell.Title = heading
	page := views.PlaceholderPage{
		Shell:   shell,
		Heading: heading,
		Path:    r.URL.Path,
	}
	if key, ok := routes.Lookup(r.URL.Path); ok {
		page.Target = key.Controller + "/" + key.Action
	}
	dh.h.Views.Render(w, http.StatusOK, "placeholder", page)
}

// headingFor names the page after the active menu item, or after the
// last path segment when the menu has no match.
func headingFor(crumbs []menu.Crumb, path string) string {
	if len(crumbs) > 1 {
		return crumbs[len(crumbs)-1].Label
	}
	rest := strings.Trim(strings.TrimPrefix(path, routes.DashboardRoot), "/")
	if rest == "" {
		return menu.HomeLabel
	}
	segments := strings.Split(rest, "/")
	last := strings.ReplaceAll(segments[len(segments)-1], "-", " ")
	return cases.Title(language.Turkish).String(last)
}
