// Package forms holds the six resource forms: raw field values, validation
// rules with per-field messages, and normalization into estate records.
package forms

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"estatedesk.app/internal/estate"
)

var emailPattern = regexp.MustCompile(`^\S+@\S+\.\S+$`)

// ErrHasErrors is returned by Payload when validation has not passed.
var ErrHasErrors = errors.New("form has validation errors")

// Errors maps a field name to its message.
type Errors map[string]string

func (e Errors) add(field, msg string) {
	if _, ok := e[field]; !ok {
		e[field] = msg
	}
}

// Fields returns the failing field names in a stable order.
func (e Errors) Fields() []string {
	out := make([]string, 0, len(e))
	for k := range e {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func (e Errors) Error() string {
	parts := make([]string, 0, len(e))
	for _, f := range e.Fields() {
		parts = append(parts, f+": "+e[f])
	}
	return strings.Join(parts, "; ")
}

// Option is one choice of a select field.
type Option struct {
	Value string
	Label string
}

// Field describes one input for rendering.
type Field struct {
	Name        string
	Label       string
	Type        string // text, email, tel, number, date, select, textarea
	Value       string
	Required    bool
	Step        string
	Placeholder string
	Options     []Option
}

// Refs carries the reference collections forms offer as select options.
type Refs struct {
	Owners     []estate.Owner
	Properties []estate.Property
	Tenants    []estate.Tenant
	Leases     []estate.Lease
}

// Form is the rendering and validation surface shared by every resource form.
type Form interface {
	Resource() estate.Resource
	RecordID() int64
	Title() string
	Fields() []Field
	Validate() Errors
}

// New returns an empty form for r with defaults applied.
func New(r estate.Resource, refs Refs) (Form, error) {
	switch r {
	case estate.Properties:
		return NewPropertyForm(refs), nil
	case estate.Owners:
		return NewOwnerForm(), nil
	case estate.Tenants:
		return NewTenantForm(), nil
	case estate.Leases:
		return NewLeaseForm(refs), nil
	case estate.Payments:
		return NewPaymentForm(refs), nil
	case estate.Maintenance:
		return NewMaintenanceForm(refs), nil
	}
	return nil, fmt.Errorf("forms: unknown resource %q", r)
}

// Parse builds the form for r from submitted values. id is zero on create.
func Parse(r estate.Resource, id int64, v url.Values, refs Refs) (Form, error) {
	switch r {
	case estate.Properties:
		return ParsePropertyForm(id, v, refs), nil
	case estate.Owners:
		return ParseOwnerForm(id, v), nil
	case estate.Tenants:
		return ParseTenantForm(id, v), nil
	case estate.Leases:
		return ParseLeaseForm(id, v, refs), nil
	case estate.Payments:
		return ParsePaymentForm(id, v, refs), nil
	case estate.Maintenance:
		return ParseMaintenanceForm(id, v, refs), nil
	}
	return nil, fmt.Errorf("forms: unknown resource %q", r)
}

func submit[T any](ctx context.Context, f interface{ Validate() Errors }, payload func() (T, error), save func(context.Context, T) error) (Errors, error) {
	if errs := f.Validate(); len(errs) > 0 {
		return errs, nil
	}
	rec, err := payload()
	if err != nil {
		return nil, err
	}
	return nil, save(ctx, rec)
}

func title(r estate.Resource, id int64) string {
	if id > 0 {
		return "Edit " + r.Singular()
	}
	return "Add New " + r.Singular()
}

func val(v url.Values, key string) string { return strings.TrimSpace(v.Get(key)) }

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

func blank(s string) bool { return strings.TrimSpace(s) == "" }

func parseFloat(s string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

func parseInt(s string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	return n, err == nil
}

func parseID(s string) (int64, bool) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

func positive(s string) bool {
	f, ok := parseFloat(s)
	return ok && f > 0
}

// nonNegativeOrBlank passes blank input; optional fields only need to parse.
func nonNegativeOrBlank(s string) bool {
	if blank(s) {
		return true
	}
	f, ok := parseFloat(s)
	return ok && f >= 0
}

func nonNegativeIntOrBlank(s string) bool {
	if blank(s) {
		return true
	}
	n, ok := parseInt(s)
	return ok && n >= 0
}

func optionalFloat(s string) *float64 {
	if f, ok := parseFloat(s); ok && !blank(s) {
		return &f
	}
	return nil
}

func optionalInt(s string) *int {
	if n, ok := parseInt(s); ok && !blank(s) {
		return &n
	}
	return nil
}

func optionalID(s string) *int64 {
	if id, ok := parseID(s); ok {
		return &id
	}
	return nil
}

func optionalString(s string) *string {
	if blank(s) {
		return nil
	}
	return &s
}

func formatFloat(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }

func formatID(id int64) string {
	if id <= 0 {
		return ""
	}
	return strconv.FormatInt(id, 10)
}

func floatPtr(f *float64) string {
	if f == nil {
		return ""
	}
	return formatFloat(*f)
}

func intPtr(n *int) string {
	if n == nil {
		return ""
	}
	return strconv.Itoa(*n)
}

func idPtr(id *int64) string {
	if id == nil {
		return ""
	}
	return formatID(*id)
}

func stringOptions(values []string) []Option {
	out := make([]Option, 0, len(values))
	for _, v := range values {
		out = append(out, Option{Value: v, Label: v})
	}
	return out
}

func ownerOptions(owners []estate.Owner) []Option {
	out := make([]Option, 0, len(owners))
	for _, o := range owners {
		out = append(out, Option{Value: formatID(o.OwnerID), Label: o.FullName()})
	}
	return out
}

func propertyOptions(props []estate.Property) []Option {
	out := make([]Option, 0, len(props))
	for _, p := range props {
		out = append(out, Option{Value: formatID(p.PropertyID), Label: p.AddressLine1 + ", " + p.City})
	}
	return out
}

func tenantOptions(tenants []estate.Tenant) []Option {
	out := make([]Option, 0, len(tenants))
	for _, t := range tenants {
		out = append(out, Option{Value: formatID(t.TenantID), Label: t.FullName()})
	}
	return out
}

// leaseOptions labels each lease "address - tenant name".
func leaseOptions(refs Refs) []Option {
	props := make(map[int64]estate.Property, len(refs.Properties))
	for _, p := range refs.Properties {
		props[p.PropertyID] = p
	}
	tenants := make(map[int64]estate.Tenant, len(refs.Tenants))
	for _, t := range refs.Tenants {
		tenants[t.TenantID] = t
	}
	out := make([]Option, 0, len(refs.Leases))
	for _, l := range refs.Leases {
		addr := "Property N/A"
		if p, ok := props[l.PropertyID]; ok && p.AddressLine1 != "" {
			addr = p.AddressLine1
		}
		out = append(out, Option{Value: formatID(l.LeaseID), Label: addr + " - " + tenants[l.TenantID].FullName()})
	}
	return out
}
