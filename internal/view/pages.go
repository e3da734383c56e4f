package view

import (
	"strconv"

	"github.com/rohanthewiz/element"

	"estatedesk.app/internal/estate"
	"estatedesk.app/internal/pages"
)

func Dashboard(shell *Shell, stats []pages.Stat, bn *Banner) string {
	return document("Dashboard", shell, func(b *element.Builder) any {
		return b.Div().R(
			b.H1().T("Dashboard"),
			banner(b, bn),
			b.Div("class", "stats").R(
				func() any {
					for _, s := range stats {
						b.A("class", "stat", "href", s.Resource.Path()).R(
							b.Div("class", "stat-value").T(strconv.Itoa(s.Value)),
							b.Div("class", "stat-label").T(esc(s.Label)),
						)
					}
					return nil
				}(),
			),
		)
	})
}

// List renders a list page in whatever state it reached.
func List(shell *Shell, l *pages.List, bn *Banner) string {
	r := l.Resource
	return document(r.Title(), shell, func(b *element.Builder) any {
		return b.Div().R(
			b.Div("class", "page-head").R(
				b.H1().T(r.Title()),
				b.A("class", "btn", "href", r.Path()+"/new").T("Add New "+r.Singular()),
			),
			banner(b, bn),
			func() any {
				switch l.Status {
				case pages.Loading:
					return b.P("class", "muted").T("Loading…")
				case pages.Error:
					return nil
				}
				if len(l.Rows) == 0 {
					return b.P("class", "muted").T("No " + r.Title() + " found.")
				}
				return table(b, r, l.Columns, l.Rows)
			}(),
		)
	})
}

func table(b *element.Builder, r estate.Resource, columns []string, rows []pages.Row) any {
	return b.Table().R(
		b.Tr().R(
			func() any {
				for _, c := range columns {
					b.Th().T(esc(c))
				}
				return b.Th().T("Actions")
			}(),
		),
		func() any {
			for _, row := range rows {
				base := r.Path() + "/" + strconv.FormatInt(row.ID, 10)
				b.Tr().R(
					func() any {
						for _, cell := range row.Cells {
							b.Td().T(esc(cell))
						}
						return nil
					}(),
					b.Td("class", "actions").R(
						b.A("href", base+"/edit").T("Edit"),
						b.A("href", base+"/delete", "class", "danger").T("Delete"),
					),
				)
			}
			return nil
		}(),
	)
}

func NotFound(shell *Shell) string {
	return document("Not Found", shell, func(b *element.Builder) any {
		return b.Div("class", "card").R(
			b.H1().T("Page not found"),
			b.P().T("The page you are looking for does not exist."),
			b.A("class", "btn", "href", "/").T("Go home"),
		)
	})
}

// ErrorPage is used when a page cannot render at all, for example when the
// reference data a form needs failed to load.
func ErrorPage(shell *Shell, title string, bn *Banner) string {
	return document(title, shell, func(b *element.Builder) any {
		return b.Div().R(
			b.H1().T(esc(title)),
			banner(b, bn),
		)
	})
}
