package forms

import (
	"context"
	"net/url"

	"estatedesk.app/internal/estate"
)

// person is the field set owners and tenants share.
type person struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
}

func parsePerson(v url.Values) person {
	return person{
		FirstName: val(v, "firstName"),
		LastName:  val(v, "lastName"),
		Email:     val(v, "email"),
		Phone:     val(v, "phone"),
	}
}

func (p person) validate() Errors {
	errs := Errors{}
	if blank(p.FirstName) {
		errs.add("firstName", "First name is required")
	}
	if blank(p.LastName) {
		errs.add("lastName", "Last name is required")
	}
	switch {
	case blank(p.Email):
		errs.add("email", "Email is required")
	case !emailPattern.MatchString(p.Email):
		errs.add("email", "Email is invalid")
	}
	return errs
}

func (p person) fields() []Field {
	return []Field{
		{Name: "firstName", Label: "First Name", Type: "text", Value: p.FirstName, Required: true},
		{Name: "lastName", Label: "Last Name", Type: "text", Value: p.LastName, Required: true},
		{Name: "email", Label: "Email", Type: "email", Value: p.Email, Required: true},
		{Name: "phone", Label: "Phone", Type: "tel", Value: p.Phone},
	}
}

type OwnerForm struct {
	ID int64
	person
}

func NewOwnerForm() *OwnerForm { return &OwnerForm{} }

func OwnerFormFrom(o estate.Owner) *OwnerForm {
	return &OwnerForm{ID: o.OwnerID, person: person{o.FirstName, o.LastName, o.Email, o.Phone}}
}

func ParseOwnerForm(id int64, v url.Values) *OwnerForm {
	return &OwnerForm{ID: id, person: parsePerson(v)}
}

func (f *OwnerForm) Resource() estate.Resource { return estate.Owners }
func (f *OwnerForm) RecordID() int64           { return f.ID }
func (f *OwnerForm) Title() string             { return title(estate.Owners, f.ID) }
func (f *OwnerForm) Validate() Errors          { return f.person.validate() }
func (f *OwnerForm) Fields() []Field           { return f.person.fields() }

func (f *OwnerForm) Payload() (estate.Owner, error) {
	if len(f.Validate()) > 0 {
		return estate.Owner{}, ErrHasErrors
	}
	return estate.Owner{OwnerID: f.ID, FirstName: f.FirstName, LastName: f.LastName, Email: f.Email, Phone: f.Phone}, nil
}

func (f *OwnerForm) Submit(ctx context.Context, save func(context.Context, estate.Owner) error) (Errors, error) {
	return submit(ctx, f, f.Payload, save)
}

type TenantForm struct {
	ID int64
	person
}

func NewTenantForm() *TenantForm { return &TenantForm{} }

func TenantFormFrom(t estate.Tenant) *TenantForm {
	return &TenantForm{ID: t.TenantID, person: person{t.FirstName, t.LastName, t.Email, t.Phone}}
}

func ParseTenantForm(id int64, v url.Values) *TenantForm {
	return &TenantForm{ID: id, person: parsePerson(v)}
}

func (f *TenantForm) Resource() estate.Resource { return estate.Tenants }
func (f *TenantForm) RecordID() int64           { return f.ID }
func (f *TenantForm) Title() string             { return title(estate.Tenants, f.ID) }
func (f *TenantForm) Validate() Errors          { return f.person.validate() }
func (f *TenantForm) Fields() []Field           { return f.person.fields() }

func (f *TenantForm) Payload() (estate.Tenant, error) {
	if len(f.Validate()) > 0 {
		return estate.Tenant{}, ErrHasErrors
	}
	return estate.Tenant{TenantID: f.ID, FirstName: f.FirstName, LastName: f.LastName, Email: f.Email, Phone: f.Phone}, nil
}

func (f *TenantForm) Submit(ctx context.Context, save func(context.Context, estate.Tenant) error) (Errors, error) {
	return submit(ctx, f, f.Payload, save)
}
