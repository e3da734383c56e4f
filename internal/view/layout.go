// Package view renders every page of the front end as HTML.
//
// Pages are written with an element builder. Any text that came from a user
// or from the backend goes through esc before it reaches the builder.
package view

import (
	_ "embed"
	"html"

	"github.com/rohanthewiz/element"

	"estatedesk.app/internal/estate"
)

const (
	brand         = "EstateDesk"
	StylesheetURL = "/static/app.css"
)

// Stylesheet is served at StylesheetURL.
//
//go:embed app.css
var Stylesheet []byte

// Shell is the chrome around an authenticated page: header, navigation and
// greeting. A nil Shell renders the bare layout used by the entry page.
type Shell struct {
	UserName string
	Active   estate.Resource
	Flash    string
}

// Banner is a page-level error with an optional retry target.
type Banner struct {
	Message   string
	RetryPath string
}

func esc(s string) string { return html.EscapeString(s) }

func document(title string, shell *Shell, body func(b *element.Builder) any) string {
	b := element.NewBuilder()
	b.Html("lang", "en").R(
		b.Head().R(
			b.Meta("charset", "UTF-8"),
			b.Meta("name", "viewport", "content", "width=device-width, initial-scale=1.0"),
			b.Title().T(esc(title)+" - "+brand),
			b.Link("rel", "stylesheet", "href", StylesheetURL),
		),
		b.Body().R(
			header(b, shell),
			b.Div("class", "content").R(
				flash(b, shell),
				body(b),
			),
		),
	)
	return "<!DOCTYPE html>" + b.String()
}

func header(b *element.Builder, shell *Shell) any {
	if shell == nil {
		return nil
	}
	name := shell.UserName
	if name == "" {
		name = "User"
	}
	return b.Div("class", "header").R(
		b.A("class", "brand", "href", "/dashboard").T(brand),
		b.Div("class", "nav").R(
			navLink(b, "/dashboard", "Dashboard", shell.Active == ""),
			func() any {
				for _, r := range estate.Resources {
					navLink(b, r.Path(), r.Title(), shell.Active == r)
				}
				return nil
			}(),
		),
		b.Div("class", "user").R(
			b.Span("class", "greeting").T("Hello, "+esc(name)),
			b.Form("method", "post", "action", "/logout", "class", "inline").R(
				b.Button("type", "submit", "class", "btn btn-link").T("Logout"),
			),
		),
	)
}

func navLink(b *element.Builder, href, label string, active bool) any {
	class := "nav-link"
	if active {
		class += " active"
	}
	return b.A("class", class, "href", href).T(label)
}

func flash(b *element.Builder, shell *Shell) any {
	if shell == nil || shell.Flash == "" {
		return nil
	}
	return b.Div("class", "alert alert-info").T(esc(shell.Flash))
}

func banner(b *element.Builder, bn *Banner) any {
	if bn == nil || bn.Message == "" {
		return nil
	}
	return b.Div("class", "alert alert-error", "role", "alert").R(
		b.Span().T(esc(bn.Message)),
		func() any {
			if bn.RetryPath == "" {
				return nil
			}
			return b.A("class", "btn btn-small", "href", esc(bn.RetryPath)).T("Retry")
		}(),
	)
}
