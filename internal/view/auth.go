package view

import (
	"github.com/rohanthewiz/element"
)

// LoginPage is the entry page. It is the only page rendered without the shell.
type LoginPage struct {
	Username string
	Error    string
	Flash    string
	// Warnings are operator-facing configuration problems.
	Warnings []string
	// OIDC offers the delegated sign-in button.
	OIDC bool
}

func (p LoginPage) Render() string {
	return document("Sign in", nil, func(b *element.Builder) any {
		return b.Div("class", "card auth-card").R(
			b.H1().T(brand),
			b.H2().T("Sign in to your account"),
			func() any {
				for _, w := range p.Warnings {
					b.Div("class", "alert alert-warning").T(esc(w))
				}
				if p.Flash != "" {
					b.Div("class", "alert alert-info").T(esc(p.Flash))
				}
				if p.Error != "" {
					b.Div("class", "alert alert-error", "role", "alert").T(esc(p.Error))
				}
				return nil
			}(),
			func() any {
				if !p.OIDC {
					return nil
				}
				b.A("class", "btn", "href", "/login/oidc").T("Sign in with SSO")
				return b.Div("class", "divider").T("or")
			}(),
			b.Form("method", "post", "action", "/login").R(
				b.Div("class", "form-group").R(
					b.Label("for", "username").T("Username"),
					b.Input("type", "text", "id", "username", "name", "username",
						"autocomplete", "username", "value", esc(p.Username)),
				),
				b.Div("class", "form-group").R(
					b.Label("for", "password").T("Password"),
					b.Input("type", "password", "id", "password", "name", "password",
						"autocomplete", "current-password"),
				),
				b.Button("type", "submit", "class", "btn").T("Sign In"),
			),
			b.Form("method", "post", "action", "/login/demo").R(
				b.Button("type", "submit", "class", "btn btn-secondary").T("Use demo account"),
			),
			b.P("class", "muted").T("Demo credentials: admin / admin123"),
		)
	})
}

// WaitPage is shown once while a delegated sign-in settles. It reloads the
// requested page after a moment.
func WaitPage(next string) string {
	return document("Signing in", nil, func(b *element.Builder) any {
		return b.Div("class", "card auth-card").R(
			b.Meta("http-equiv", "refresh", "content", "1;url="+esc(next)),
			b.H2().T("Processing authentication…"),
			b.P("class", "muted").R(
				b.Span().T("If nothing happens, "),
				b.A("href", esc(next)).T("continue"),
				b.Span().T("."),
			),
		)
	})
}
