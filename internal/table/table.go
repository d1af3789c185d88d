// Package table turns a column schema and a slice of rows into a searched,
// paginated view that the list templates render. It knows nothing about the
// entities behind the rows.
package table

import (
	"fmt"
	"html/template"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Align is the horizontal alignment of a column.
type Align string

const (
	AlignLeft   Align = "left"
	AlignCenter Align = "center"
	AlignRight  Align = "right"
)

// Breakpoint names the screen size below which a column is hidden.
type Breakpoint string

const (
	HideNever Breakpoint = ""
	HideSm    Breakpoint = "sm"
	HideMd    Breakpoint = "md"
	HideLg    Breakpoint = "lg"
)

// Row maps column keys to arbitrary values.
type Row map[string]any

// RenderFunc renders a cell from its value and the whole row.
type RenderFunc func(value any, row Row) template.HTML

// Column describes one column. Key should be unique within a column list.
type Column struct {
	Key      string
	Label    string
	Align    Align
	HideOn   Breakpoint
	MinWidth int
	Render   RenderFunc
}

// Options configures a table instance.
type Options struct {
	Title             string
	Subtitle          string
	Searchable        bool
	SearchPlaceholder string
	RowsPerPage       int
	ShowPagination    bool
	// RowHref makes rows clickable; the table only passes the row through.
	RowHref func(Row) string
}

// DefaultOptions mirrors the list screens' usual setup.
func DefaultOptions() Options {
	return Options{
		Searchable:        true,
		SearchPlaceholder: "Ara...",
		RowsPerPage:       5,
		ShowPagination:    true,
	}
}

// State is the per-request view state of a table.
type State struct {
	SearchTerm string
	Page       int
}

// CellText is the plain text of a value; nil renders as "".
func CellText(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// Filter keeps the rows where any field contains term, ignoring case.
// When searching is off or term is empty, data is returned as is.
func Filter(data []Row, term string, searchable bool) []Row {
	if !searchable || term == "" {
		return data
	}

	lower := cases.Lower(language.Turkish)
	needle := fold(lower, term)

	out := make([]Row, 0, len(data))
	for _, row := range data {
		for _, v := range row {
			if strings.Contains(fold(lower, CellText(v)), needle) {
				out = append(out, row)
				break
			}
		}
	}
	return out
}

// fold lower-cases s the Turkish way and then merges dotless ı into i, so
// I, İ, ı and i all compare equal.
func fold(lower cases.Caser, s string) string {
	return strings.ReplaceAll(lower.String(s), "ı", "i")
}

// TotalPages is ceil(n/perPage). A non-positive perPage means one page.
func TotalPages(n, perPage int) int {
	if n <= 0 {
		return 0
	}
	if perPage <= 0 {
		return 1
	}
	return (n + perPage - 1) / perPage
}

// Paginate returns rows [(page-1)*perPage, page*perPage) clipped to rows.
func Paginate(rows []Row, page, perPage int) []Row {
	if perPage <= 0 {
		return rows
	}
	if page < 1 {
		page = 1
	}
	start := (page - 1) * perPage
	if start >= len(rows) {
		return []Row{}
	}
	end := start + perPage
	if end > len(rows) {
		end = len(rows)
	}
	return rows[start:end]
}

// ClampPage keeps page within [1, max(totalPages, 1)].
func ClampPage(page, totalPages int) int {
	if page < 1 {
		return 1
	}
	if totalPages < 1 {
		totalPages = 1
	}
	if page > totalPages {
		return totalPages
	}
	return page
}
