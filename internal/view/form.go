package view

import (
	"strconv"
	"strings"

	"github.com/rohanthewiz/element"

	"estatedesk.app/internal/estate"
	"estatedesk.app/internal/forms"
)

// FormPage renders f with its field errors. The form posts to the
// collection path on create and to the record path on update.
func FormPage(shell *Shell, f forms.Form, errs forms.Errors, bn *Banner) string {
	r := f.Resource()
	action := r.Path()
	if id := f.RecordID(); id > 0 {
		action += "/" + strconv.FormatInt(id, 10)
	}
	return document(f.Title(), shell, func(b *element.Builder) any {
		return b.Div("class", "card").R(
			b.H1().T(esc(f.Title())),
			banner(b, bn),
			b.Form("method", "post", "action", action, "novalidate", "novalidate").R(
				func() any {
					for _, fd := range f.Fields() {
						field(b, fd, errs[fd.Name])
					}
					return nil
				}(),
				b.Div("class", "form-actions").R(
					b.A("class", "btn btn-secondary", "href", r.Path()).T("Cancel"),
					b.Button("type", "submit", "class", "btn").T("Save"),
				),
			),
		)
	})
}

func field(b *element.Builder, fd forms.Field, msg string) any {
	class := "form-group"
	if msg != "" {
		class += " has-error"
	}
	return b.Div("class", class).R(
		b.Label("for", fd.Name).R(
			b.Span().T(esc(fd.Label)),
			func() any {
				if !fd.Required {
					return nil
				}
				return b.Span("class", "required").T(" *")
			}(),
		),
		control(b, fd),
		func() any {
			if msg == "" {
				return nil
			}
			return b.Div("class", "field-error").T(esc(msg))
		}(),
	)
}

func control(b *element.Builder, fd forms.Field) any {
	switch fd.Type {
	case "select":
		return b.Select("id", fd.Name, "name", fd.Name).R(
			func() any {
				if fd.Placeholder != "" {
					b.Option("value", "").T(esc(fd.Placeholder))
				}
				for _, o := range fd.Options {
					attrs := []string{"value", esc(o.Value)}
					if o.Value == fd.Value {
						attrs = append(attrs, "selected", "selected")
					}
					b.Option(attrs...).T(esc(o.Label))
				}
				return nil
			}(),
		)
	case "textarea":
		return b.TextArea("id", fd.Name, "name", fd.Name, "rows", "3").T(esc(fd.Value))
	}
	attrs := []string{"type", fd.Type, "id", fd.Name, "name", fd.Name, "value", esc(fd.Value)}
	if fd.Step != "" {
		attrs = append(attrs, "step", fd.Step)
	}
	if fd.Placeholder != "" {
		attrs = append(attrs, "placeholder", esc(fd.Placeholder))
	}
	return b.Input(attrs...)
}

// ConfirmDelete asks before a record is removed. Only an explicit yes posts
// confirm=yes.
func ConfirmDelete(shell *Shell, r estate.Resource, recordID int64, bn *Banner) string {
	id := strconv.FormatInt(recordID, 10)
	return document("Delete "+r.Singular(), shell, func(b *element.Builder) any {
		return b.Div("class", "card").R(
			b.H1().T("Delete "+r.Singular()),
			banner(b, bn),
			b.P().T("Are you sure you want to delete this "+strings.ToLower(r.Singular())+"? This cannot be undone."),
			b.Form("method", "post", "action", r.Path()+"/"+id+"/delete").R(
				b.Button("type", "submit", "name", "confirm", "value", "yes", "class", "btn btn-danger").T("Delete"),
				b.Button("type", "submit", "name", "confirm", "value", "no", "class", "btn btn-secondary").T("Cancel"),
			),
		)
	})
}
