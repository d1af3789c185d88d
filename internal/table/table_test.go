package table

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

var columns = []Column{
	{Key: "ad", Label: "Adı"},
	{Key: "kod", Label: "Kodu"},
	{Key: "durum", Label: "Durumu", Align: AlignCenter, Render: func(v any, _ Row) template.HTML {
		return template.HTML("<span class=\"chip\">" + template.HTMLEscapeString(CellText(v)) + "</span>")
	}},
}

func sixRows() []Row {
	rows := make([]Row, 0, 6)
	for i := 0; i < 6; i++ {
		rows = append(rows, Row{"ad": fmt.Sprintf("Depo %d", i), "kod": fmt.Sprintf("K%d", i), "durum": "Aktif"})
	}
	rows[5]["durum"] = "Pasif"
	return rows
}

func TestFilterIdentityWhenEmpty(t *testing.T) {
	data := sixRows()
	got := Filter(data, "", true)
	assert.Equal(t, data, got)
	assert.Same(t, &data[0], &got[0])

	got = Filter(data, "Pasif", false)
	assert.Len(t, got, 6)
}

func TestFilterAnyFieldCaseInsensitive(t *testing.T) {
	data := sixRows()
	assert.Len(t, Filter(data, "pasİf", true), 1)
	assert.Len(t, Filter(data, "k3", true), 1)
	assert.Len(t, Filter(data, "DEPO", true), 6)
	assert.Empty(t, Filter(data, "yok", true))
}

func TestFilterMatchesFieldsOutsideColumns(t *testing.T) {
	data := []Row{{"ad": "A", "gizli": "İSTANBUL"}, {"ad": "B", "gizli": nil}}
	got := Filter(data, "istanbul", true)
	require.Len(t, got, 1)
	assert.Equal(t, "A", got[0]["ad"])
}

func TestFilterFoldsDottedAndDotlessI(t *testing.T) {
	data := []Row{{"ad": "WIFI DEPO"}, {"ad": "wifi depo"}, {"ad": "Işık Deposu"}}

	assert.Len(t, Filter(data, "wifi", true), 2)
	assert.Len(t, Filter(data, "WIFI", true), 2)
	assert.Len(t, Filter(data, "İ", true), 3)
	assert.Len(t, Filter(data, "isik", true), 1)
	assert.Len(t, Filter(data, "IŞIK", true), 1)
}

func TestFilterIdempotent(t *testing.T) {
	data := sixRows()
	once := Filter(data, "aktif", true)
	twice := Filter(once, "aktif", true)
	assert.Equal(t, once, twice)
}

func TestPaginationBoundary(t *testing.T) {
	data := sixRows()
	assert.Equal(t, 2, TotalPages(len(data), 5))

	first := Paginate(data, 1, 5)
	assert.Equal(t, data[0:5], first)
	second := Paginate(data, 2, 5)
	assert.Equal(t, data[5:6], second)
	assert.Empty(t, Paginate(data, 3, 5))
}

func TestTotalPages(t *testing.T) {
	assert.Equal(t, 0, TotalPages(0, 5))
	assert.Equal(t, 1, TotalPages(5, 5))
	assert.Equal(t, 1, TotalPages(7, 0))
}

func TestCellText(t *testing.T) {
	assert.Equal(t, "", CellText(nil))
	assert.Equal(t, "42", CellText(42))
	assert.Equal(t, "x", CellText("x"))
}

func TestBuildSecondPage(t *testing.T) {
	opts := DefaultOptions()
	v := Build(columns, sixRows(), opts, State{Page: 2})

	assert.Equal(t, 2, v.Page)
	assert.Equal(t, 2, v.TotalPages)
	assert.True(t, v.ShowPager)
	require.Len(t, v.Rows, 1)
	assert.Equal(t, template.HTML("Depo 5"), v.Rows[0].Cells[0].Content)
	assert.Equal(t, template.HTML(`<span class="chip">Pasif</span>`), v.Rows[0].Cells[2].Content)
	assert.Equal(t, 6, v.From)
	assert.Equal(t, 6, v.To)
	assert.Equal(t, "page=1", v.PrevQuery)
	assert.Empty(t, v.NextQuery)
	require.Len(t, v.PageLinks, 2)
	assert.True(t, v.PageLinks[1].Current)
}

func TestBuildClampsPageAfterSearch(t *testing.T) {
	v := Build(columns, sixRows(), DefaultOptions(), State{SearchTerm: "pasif", Page: 3})

	assert.Equal(t, 1, v.Page)
	assert.Equal(t, 1, v.Matched)
	assert.Len(t, v.Rows, 1)
	assert.False(t, v.ShowPager)
}

func TestBuildWithoutPagination(t *testing.T) {
	opts := DefaultOptions()
	opts.ShowPagination = false
	v := Build(columns, sixRows(), opts, State{Page: 2})

	assert.Len(t, v.Rows, 6)
	assert.False(t, v.ShowPager)
	assert.Equal(t, 1, v.From)
	assert.Equal(t, 6, v.To)
}

func TestBuildEmptyAndEscaping(t *testing.T) {
	v := Build(columns, nil, DefaultOptions(), State{})
	assert.True(t, v.Empty())
	assert.Equal(t, 1, v.Page)
	assert.Len(t, v.Header, 3)

	v = Build(columns, []Row{{"ad": "<b>", "kod": nil}}, DefaultOptions(), State{})
	assert.Equal(t, template.HTML("&lt;b&gt;"), v.Rows[0].Cells[0].Content)
	assert.Equal(t, template.HTML(""), v.Rows[0].Cells[1].Content)
}

func TestBuildRowHref(t *testing.T) {
	opts := DefaultOptions()
	opts.RowHref = func(r Row) string { return "/depo/" + CellText(r["kod"]) }
	v := Build(columns, sixRows(), opts, State{})
	assert.Equal(t, "/depo/K0", v.Rows[0].Href)
}

func TestStateFromQuery(t *testing.T) {
	s := StateFromQuery(url.Values{"q": {"depo"}, "page": {"3"}})
	assert.Equal(t, State{SearchTerm: "depo", Page: 3}, s)

	assert.Equal(t, State{Page: 1}, StateFromQuery(url.Values{"page": {"x"}}))
	assert.Equal(t, State{Page: 1}, StateFromQuery(url.Values{"page": {"-2"}}))

	assert.Equal(t, "page=3&q=depo", s.Values().Encode())
}

func TestExportXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, ExportXLSX(&buf, "Depolar", columns, sixRows()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Depolar")
	require.NoError(t, err)
	require.Len(t, rows, 7)
	assert.Equal(t, []string{"Adı", "Kodu", "Durumu"}, rows[0])
	assert.Equal(t, []string{"Depo 5", "K5", "Pasif"}, rows[6])
}

func TestExportXLSXReportsColumnWidthErrors(t *testing.T) {
	wide := []Column{{Key: "ad", Label: "Adı", MinWidth: 7 * 300}}
	err := ExportXLSX(io.Discard, "Depolar", wide, sixRows())
	assert.ErrorContains(t, err, "width of column A")
}
