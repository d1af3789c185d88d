// Package views parses the panel's HTML templates once at startup and
// renders pages and fragments from them.
package views

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"path"
	"strings"
)

// Renderer holds one template set per page. Every set shares the layouts
// and partials, so a page only defines its "content" block.
type Renderer struct {
	base   *template.Template
	pages  map[string]*template.Template
	logger *slog.Logger
}

// FuncMap is available in every template.
func FuncMap() template.FuncMap {
	return template.FuncMap{
		"add": func(a, b int) int { return a + b },
		"sub": func(a, b int) int { return a - b },
	}
}

// New parses templates/layouts/*.html and templates/partials/*.html as the
// shared base and each templates/pages/*.html on top of a clone of it.
func New(fsys fs.FS, logger *slog.Logger) (*Renderer, error) {
	if logger == nil {
		logger = slog.Default()
	}
	base, err := template.New("").Funcs(FuncMap()).ParseFS(fsys, "templates/layouts/*.html", "templates/partials/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse layouts: %w", err)
	}

	files, err := fs.Glob(fsys, "templates/pages/*.html")
	if err != nil {
		return nil, fmt.Errorf("list pages: %w", err)
	}
	pages := make(map[string]*template.Template, len(files))
	for _, f := range files {
		clone, err := base.Clone()
		if err != nil {
			return nil, fmt.Errorf("clone base for %s: %w", f, err)
		}
		if _, err := clone.ParseFS(fsys, f); err != nil {
			return nil, fmt.Errorf("parse page %s: %w", f, err)
		}
		pages[strings.TrimSuffix(path.Base(f), ".html")] = clone
	}

	logger.Info("templates loaded", "pages", len(pages))
	return &Renderer{base: base, pages: pages, logger: logger}, nil
}

// Render writes page with status. The page is rendered into a buffer first
// so a template error still produces a clean 500.
func (r *Renderer) Render(w http.ResponseWriter, status int, page string, data any) {
	t, ok := r.pages[page]
	if !ok {
		r.logger.Error("unknown page template", "page", page)
		http.Error(w, "Template not found", http.StatusInternalServerError)
		return
	}
	r.write(w, status, t, page+".html", data)
}

// Fragment writes a single partial, such as the sidebar, without a layout.
func (r *Renderer) Fragment(w http.ResponseWriter, status int, name string, data any) {
	r.write(w, status, r.base, name, data)
}

func (r *Renderer) write(w http.ResponseWriter, status int, t *template.Template, name string, data any) {
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, name, data); err != nil {
		r.logger.Error("template render error", "template", name, "error", err)
		http.Error(w, "Template render error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		r.logger.Debug("response write failed", "template", name, "error", err)
	}
}

// Has reports whether a page template exists.
func (r *Renderer) Has(page string) bool {
	_, ok := r.pages[page]
	return ok
}
