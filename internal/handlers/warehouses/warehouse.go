package warehouses

import (
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"zupos_panel/internal/handlers"
	"zupos_panel/internal/routes"
	"zupos_panel/internal/table"
	"zupos_panel/internal/views"
	depots "zupos_panel/internal/warehouses"
)

const (
	pageTitle  = "Depo Tanımlama"
	exportName = "depolar.xlsx"
	sheetName  = "Depolar"
)

// flashes maps the ?flash= codes set after a redirect to their message.
var flashes = map[string]string{
	"created": "Depo başarıyla eklendi.",
	"deleted": "Depo silindi.",
	"missing": "Depo bulunamadı.",
}

type WarehouseHandler struct {
	h    *handlers.Handler
	repo depots.Repository
	rows int
}

func NewWarehouseHandler(h *handlers.Handler, repo depots.Repository, rowsPerPage int) *WarehouseHandler {
	return &WarehouseHandler{h: h, repo: repo, rows: rowsPerPage}
}

// Path is where the depot screen lives; it is the route the menu resolves
// Store/Index to.
func Path() string {
	return routes.Resolve("Store", "Index")
}

func columns(withActions bool) []table.Column {
	cols := []table.Column{
		{Key: "ad", Label: "Depo Adı", MinWidth: 180, Render: func(v any, _ table.Row) template.HTML {
			return template.HTML("<strong>" + template.HTMLEscapeString(table.CellText(v)) + "</strong>")
		}},
		{Key: "kod", Label: "Depo Kodu", MinWidth: 120, Render: func(v any, _ table.Row) template.HTML {
			return template.HTML(`<span class="code-chip">` + template.HTMLEscapeString(table.CellText(v)) + "</span>")
		}},
		{Key: "devirTipi", Label: "Devir Tipi", MinWidth: 140, HideOn: table.HideSm},
		{Key: "durum", Label: "Durum", Align: table.AlignCenter, MinWidth: 90, Render: statusChip},
	}
	if withActions {
		cols = append(cols, table.Column{Key: "actions", Label: "İşlemler", Align: table.AlignCenter, MinWidth: 90, Render: deleteAction})
	}
	return cols
}

func statusChip(v any, _ table.Row) template.HTML {
	status := table.CellText(v)
	class := "status-pasif"
	if status == depots.StatusActive {
		class = "status-aktif"
	}
	return template.HTML(fmt.Sprintf(`<span class="status-chip %s">%s</span>`, class, template.HTMLEscapeString(status)))
}

func deleteAction(_ any, row table.Row) template.HTML {
	action := fmt.Sprintf("%s/%s/delete", Path(), table.CellText(row["id"]))
	name := template.HTMLEscapeString(table.CellText(row["ad"]))
	return template.HTML(fmt.Sprintf(
		`<div class="row-actions"><form method="post" action="%s" data-confirm="%s deposu silinsin mi?">`+
			`<button type="submit" class="btn btn-danger" title="Sil"><span class="material-symbols-outlined">delete</span></button>`+
			`</form></div>`,
		template.HTMLEscapeString(action), name))
}

func tableOptions(rows int) table.Options {
	opts := table.DefaultOptions()
	opts.Title = "Depo Listesi"
	opts.Subtitle = "Tanımlı depolar"
	if rows > 0 {
		opts.RowsPerPage = rows
	}
	return opts
}

// List renders the depot screen. The list and the stat cards are loaded
// concurrently.
func (wh *WarehouseHandler) List(w http.ResponseWriter, r *http.Request) {
	form := views.WarehouseForm{}
	wh.render(w, r, http.StatusOK, r.URL.Query().Get("modal") == "new", form)
}

// Create adds a depot from the modal form. Invalid or duplicate input
// re-renders the page with the modal open.
func (wh *WarehouseHandler) Create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Geçersiz form", http.StatusBadRequest)
		return
	}

	form := views.WarehouseForm{
		Name:         strings.TrimSpace(r.PostForm.Get("ad")),
		Code:         strings.TrimSpace(r.PostForm.Get("kod")),
		TransferType: strings.TrimSpace(r.PostForm.Get("devirTipi")),
	}

	created, err := wh.repo.Create(r.Context(), depots.Warehouse{
		Name:         form.Name,
		Code:         form.Code,
		TransferType: form.TransferType,
	})
	if err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, depots.ErrInvalid):
			status, form.Error = http.StatusUnprocessableEntity, "Depo adı ve kodu zorunludur."
		case errors.Is(err, depots.ErrDuplicateCode):
			status, form.Error = http.StatusConflict, "Bu depo kodu zaten kullanılıyor."
		case errors.Is(err, depots.ErrDuplicateName):
			status, form.Error = http.StatusConflict, "Bu depo adı zaten kullanılıyor."
		default:
			wh.h.Logger.Error("failed to create warehouse", "code", form.Code, "error", err)
			form.Error = "Depo eklenirken bir hata oluştu."
		}
		wh.render(w, r, status, true, form)
		return
	}

	wh.h.Logger.Info("warehouse created", "id", created.ID, "code", created.Code)
	http.Redirect(w, r, Path()+"?flash=created", http.StatusSeeOther)
}

// Delete removes one depot.
func (wh *WarehouseHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		http.Error(w, "Geçersiz depo numarası", http.StatusBadRequest)
		return
	}

	flash := "deleted"
	if err := wh.repo.Delete(r.Context(), id); err != nil {
		if !errors.Is(err, depots.ErrNotFound) {
			wh.h.Logger.Error("failed to delete warehouse", "id", id, "error", err)
			http.Error(w, "Depo silinemedi", http.StatusInternalServerError)
			return
		}
		flash = "missing"
	} else {
		wh.h.Logger.Info("warehouse deleted", "id", id)
	}
	http.Redirect(w, r, Path()+"?flash="+flash, http.StatusSeeOther)
}

// Export downloads the depots matching the current search as a workbook.
func (wh *WarehouseHandler) Export(w http.ResponseWriter, r *http.Request) {
	list, err := wh.repo.List(r.Context())
	if err != nil {
		wh.h.Logger.Error("failed to list warehouses for export", "error", err)
		http.Error(w, "Depolar okunamadı", http.StatusInternalServerError)
		return
	}

	state := table.StateFromQuery(r.URL.Query())
	rows := table.Filter(depots.Rows(list), state.SearchTerm, true)

	w.Header().Set("Content-Type", table.XLSXContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, exportName))
	if err := table.ExportXLSX(w, sheetName, columns(false), rows); err != nil {
		wh.h.Logger.Error("failed to write warehouse export", "error", err)
	}
}

func (wh *WarehouseHandler) render(w http.ResponseWriter, r *http.Request, status int, modal bool, form views.WarehouseForm) {
	st, ok := wh.h.State(r)
	if !ok {
		wh.h.Unauthorized(w, r)
		return
	}

	var (
		list  []depots.Warehouse
		stats depots.Stats
	)
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		var err error
		list, err = wh.repo.List(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		stats, err = wh.repo.Stats(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		wh.h.Logger.Error("failed to load warehouses", "error", err)
		http.Error(w, "Depolar okunamadı", http.StatusInternalServerError)
		return
	}

	shell := wh.h.Shell(r, st, pageTitle)
	shell.Flash = flashes[r.URL.Query().Get("flash")]

	state := table.StateFromQuery(r.URL.Query())
	wh.h.Views.Render(w, status, "warehouses", views.WarehousePage{
		Shell:      shell,
		Cards:      stats.StatCards(),
		Table:      table.Build(columns(true), depots.Rows(list), tableOptions(wh.rows), state),
		ModalOpen:  modal,
		Form:       form,
		ActionPath: Path(),
	})
}
