package views

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zupos_panel/internal/auth"
	"zupos_panel/internal/menu"
	"zupos_panel/internal/session"
	"zupos_panel/internal/table"
	"zupos_panel/internal/warehouses"
	"zupos_panel/web"
)

func newRenderer(t *testing.T) *Renderer {
	t.Helper()
	r, err := New(web.FS, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	return r
}

func stockMenu() []menu.Entry {
	return []menu.Entry{{
		Main: menu.MainItem{SequenceID: 10, Name: "Stok Tanımları", MenuTypeID: menu.MenuTypePanel},
		Subs: []menu.SubItem{
			{SequenceID: 11, Name: "Depo Tanımlama", Controller: "Store", Action: "Index"},
			{SequenceID: 12, Name: "Fatura Listesi", Controller: "Invoice", Action: "List"},
		},
	}}
}

func readyView(path string) menu.View {
	entries := stockMenu()
	v := menu.View{Phase: menu.PhaseReady, Entries: entries, CurrentPath: path}
	v.Expansion = menu.ComputeExpansion(entries, path, menu.Expansion{})
	if p, s, ok := menu.ActiveSub(entries, path); ok {
		v.ActiveParent, v.ActiveSub, v.HasActive = p, s, true
	}
	return v
}

func TestAllPagesParse(t *testing.T) {
	r := newRenderer(t)
	for _, p := range []string{"login", "dashboard", "warehouses", "placeholder"} {
		assert.True(t, r.Has(p), p)
	}
}

func TestLoginPageShowsFieldErrors(t *testing.T) {
	r := newRenderer(t)
	rec := httptest.NewRecorder()
	r.Render(rec, http.StatusUnprocessableEntity, "login", LoginPage{
		AppName:  AppName,
		Username: "al<i>",
		Errors:   auth.ValidateForm(auth.Form{Username: "al", Password: "123", BranchNo: "001"}),
	})

	body := rec.Body.String()
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, body, "Kullanıcı adı en az 3 karakter olmalıdır.")
	assert.Contains(t, body, "Şifre en az 6 karakter olmalıdır.")
	assert.NotContains(t, body, "Şube numarası en az")
	assert.Contains(t, body, `value="al&lt;i&gt;"`)
}

func TestSidebarFragment(t *testing.T) {
	r := newRenderer(t)

	rec := httptest.NewRecorder()
	r.Fragment(rec, http.StatusOK, "sidebar", NewSidebar(menu.View{Phase: menu.PhaseLoading}))
	assert.Contains(t, rec.Body.String(), `class="spinner"`)
	assert.Contains(t, rec.Body.String(), `data-loading="true"`)

	rec = httptest.NewRecorder()
	r.Fragment(rec, http.StatusOK, "sidebar", NewSidebar(readyView("/dashboard/stok-tanimlari/depo-tanimlama")))
	body := rec.Body.String()
	assert.NotContains(t, body, "spinner")
	assert.Contains(t, body, "inventory")
	assert.Contains(t, body, `href="/dashboard/stok-tanimlari/depo-tanimlama"`)
	assert.Contains(t, body, `href="/dashboard/invoice/list"`)
	assert.Contains(t, body, "expand_less")
}

func TestWarehousePage(t *testing.T) {
	r := newRenderer(t)
	path := "/dashboard/stok-tanimlari/depo-tanimlama"
	user := session.User{Username: "ali", BranchName: "Şube 001"}
	list := warehouses.Seed()

	opts := table.DefaultOptions()
	opts.Title = "Depo Listesi"
	tv := table.Build([]table.Column{{Key: "ad", Label: "Adı"}, {Key: "kod", Label: "Kodu"}}, warehouses.Rows(list), opts, table.State{Page: 2})

	rec := httptest.NewRecorder()
	r.Render(rec, http.StatusOK, "warehouses", WarehousePage{
		Shell:      NewShell("Depo Tanımlama", user, readyView(path)),
		Cards:      warehouses.Compute(list).StatCards(),
		Table:      tv,
		ModalOpen:  true,
		ActionPath: path,
	})

	body := rec.Body.String()
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, body, "Depo Tanımlamaları")
	assert.Contains(t, body, "Toplam Depo")
	assert.Contains(t, body, "THGSRT")
	assert.NotContains(t, body, "AEVERV")
	assert.Contains(t, body, "6-6 / 6")
	assert.Contains(t, body, `<dialog id="warehouse-modal" class="modal" open>`)
	assert.Contains(t, body, "Ana Sayfa")
	assert.Contains(t, body, "Stok Tanımları")
}

func TestEmptyTable(t *testing.T) {
	r := newRenderer(t)
	tv := table.Build([]table.Column{{Key: "ad", Label: "Adı"}}, nil, table.DefaultOptions(), table.State{SearchTerm: "yok", Page: 1})

	rec := httptest.NewRecorder()
	r.Render(rec, http.StatusOK, "warehouses", WarehousePage{
		Shell: NewShell("Depo Tanımlama", session.User{}, menu.View{Phase: menu.PhaseReady}),
		Table: tv,
	})
	assert.Contains(t, rec.Body.String(), "Kayıt bulunamadı")
	assert.Contains(t, rec.Body.String(), "export.xlsx?q=yok")
}

func TestUnknownPage(t *testing.T) {
	r := newRenderer(t)
	rec := httptest.NewRecorder()
	r.Render(rec, http.StatusOK, "missing", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
