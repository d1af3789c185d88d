package table

import (
	"html/template"
	"net/url"
	"strconv"
)

// HeaderCell is one rendered column header.
type HeaderCell struct {
	Label    string
	Align    Align
	HideOn   Breakpoint
	MinWidth int
}

// Cell is one rendered body cell.
type Cell struct {
	Content template.HTML
	Align   Align
	HideOn  Breakpoint
}

// ViewRow is one rendered body row.
type ViewRow struct {
	Href  string
	Cells []Cell
}

// PageLink is one entry of the pager.
type PageLink struct {
	Number  int
	Current bool
	Query   string
}

// View is everything a list template needs.
type View struct {
	Title             string
	Subtitle          string
	Searchable        bool
	SearchPlaceholder string
	SearchTerm        string

	Header []HeaderCell
	Rows   []ViewRow

	// Matched is the row count after filtering.
	Matched    int
	Page       int
	TotalPages int
	From, To   int
	ShowPager  bool
	PrevQuery  string
	NextQuery  string
	PageLinks  []PageLink
}

// Empty reports whether the filtered set has no rows.
func (v View) Empty() bool {
	return v.Matched == 0
}

// Build runs filter, clamp, paginate and render for one request.
func Build(columns []Column, data []Row, opts Options, state State) View {
	filtered := Filter(data, state.SearchTerm, opts.Searchable)

	v := View{
		Title:             opts.Title,
		Subtitle:          opts.Subtitle,
		Searchable:        opts.Searchable,
		SearchPlaceholder: opts.SearchPlaceholder,
		SearchTerm:        state.SearchTerm,
		Header:            make([]HeaderCell, 0, len(columns)),
		Matched:           len(filtered),
	}
	for _, c := range columns {
		v.Header = append(v.Header, HeaderCell{Label: c.Label, Align: c.Align, HideOn: c.HideOn, MinWidth: c.MinWidth})
	}

	visible := filtered
	v.Page = 1
	v.TotalPages = 1
	if opts.ShowPagination {
		v.TotalPages = TotalPages(len(filtered), opts.RowsPerPage)
		v.Page = ClampPage(state.Page, v.TotalPages)
		visible = Paginate(filtered, v.Page, opts.RowsPerPage)
	}

	if len(visible) > 0 {
		v.From = 1
		if opts.ShowPagination && opts.RowsPerPage > 0 {
			v.From = (v.Page-1)*opts.RowsPerPage + 1
		}
		v.To = v.From + len(visible) - 1
	}

	v.Rows = make([]ViewRow, 0, len(visible))
	for _, row := range visible {
		vr := ViewRow{Cells: make([]Cell, 0, len(columns))}
		if opts.RowHref != nil {
			vr.Href = opts.RowHref(row)
		}
		for _, c := range columns {
			vr.Cells = append(vr.Cells, Cell{Content: renderCell(c, row), Align: c.Align, HideOn: c.HideOn})
		}
		v.Rows = append(v.Rows, vr)
	}

	v.ShowPager = opts.ShowPagination && v.TotalPages > 1
	if v.ShowPager {
		for n := 1; n <= v.TotalPages; n++ {
			v.PageLinks = append(v.PageLinks, PageLink{Number: n, Current: n == v.Page, Query: state.withPage(n).Encode()})
		}
		if v.Page > 1 {
			v.PrevQuery = state.withPage(v.Page - 1).Encode()
		}
		if v.Page < v.TotalPages {
			v.NextQuery = state.withPage(v.Page + 1).Encode()
		}
	}
	return v
}

func renderCell(c Column, row Row) template.HTML {
	value := row[c.Key]
	if c.Render != nil {
		return c.Render(value, row)
	}
	return template.HTML(template.HTMLEscapeString(CellText(value)))
}

// Query parameter names carrying table state.
const (
	QuerySearch = "q"
	QueryPage   = "page"
)

// StateFromQuery reads the table state from a request query. Missing or
// invalid pages become 1.
func StateFromQuery(q url.Values) State {
	s := State{SearchTerm: q.Get(QuerySearch), Page: 1}
	if p, err := strconv.Atoi(q.Get(QueryPage)); err == nil && p > 0 {
		s.Page = p
	}
	return s
}

// Values encodes the state back into query parameters.
func (s State) Values() url.Values {
	q := url.Values{}
	if s.SearchTerm != "" {
		q.Set(QuerySearch, s.SearchTerm)
	}
	if s.Page > 1 {
		q.Set(QueryPage, strconv.Itoa(s.Page))
	}
	return q
}

func (s State) withPage(n int) url.Values {
	s.Page = n
	q := s.Values()
	if n == 1 {
		q.Set(QueryPage, "1")
	}
	return q
}
