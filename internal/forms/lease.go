package forms

import (
	"context"
	"net/url"

	"estatedesk.app/internal/estate"
)

type LeaseForm struct {
	ID              int64
	PropertyID      string
	TenantID        string
	StartDate       string
	EndDate         string
	MonthlyRent     string
	SecurityDeposit string
	Status          string

	Refs Refs
}

func NewLeaseForm(refs Refs) *LeaseForm {
	return &LeaseForm{Status: estate.DefaultLeaseStatus, Refs: refs}
}

func LeaseFormFrom(l estate.Lease, refs Refs) *LeaseForm {
	return &LeaseForm{
		ID:              l.LeaseID,
		PropertyID:      formatID(l.PropertyID),
		TenantID:        formatID(l.TenantID),
		StartDate:       l.StartDate.DateString(),
		EndDate:         l.EndDate.DateString(),
		MonthlyRent:     formatFloat(l.MonthlyRent),
		SecurityDeposit: floatPtr(l.SecurityDeposit),
		Status:          orDefault(l.Status, estate.DefaultLeaseStatus),
		Refs:            refs,
	}
}

func ParseLeaseForm(id int64, v url.Values, refs Refs) *LeaseForm {
	return &LeaseForm{
		ID:              id,
		PropertyID:      val(v, "propertyId"),
		TenantID:        val(v, "tenantId"),
		StartDate:       val(v, "startDate"),
		EndDate:         val(v, "endDate"),
		MonthlyRent:     val(v, "monthlyRent"),
		SecurityDeposit: val(v, "securityDeposit"),
		Status:          orDefault(val(v, "status"), estate.DefaultLeaseStatus),
		Refs:            refs,
	}
}

func (f *LeaseForm) Resource() estate.Resource { return estate.Leases }
func (f *LeaseForm) RecordID() int64           { return f.ID }
func (f *LeaseForm) Title() string             { return title(estate.Leases, f.ID) }

// Validate applies the lease rules. An end date on or before the start date
// always fails, whatever the other fields hold.
func (f *LeaseForm) Validate() Errors {
	errs := Errors{}
	if _, ok := parseID(f.PropertyID); !ok {
		errs.add("propertyId", "Property is required")
	}
	if _, ok := parseID(f.TenantID); !ok {
		errs.add("tenantId", "Tenant is required")
	}
	start, startErr := estate.ParseTimestamp(f.StartDate)
	end, endErr := estate.ParseTimestamp(f.EndDate)
	switch {
	case blank(f.StartDate):
		errs.add("startDate", "Start date is required")
	case startErr != nil:
		errs.add("startDate", "Start date is invalid")
	}
	switch {
	case blank(f.EndDate):
		errs.add("endDate", "End date is required")
	case endErr != nil:
		errs.add("endDate", "End date is invalid")
	}
	if startErr == nil && endErr == nil && !end.After(start.Time) {
		errs.add("endDate", "End date must be after start date")
	}
	if !positive(f.MonthlyRent) {
		errs.add("monthlyRent", "Valid monthly rent is required")
	}
	if !nonNegativeOrBlank(f.SecurityDeposit) {
		errs.add("securityDeposit", "Valid security deposit is required")
	}
	return errs
}

func (f *LeaseForm) Payload() (estate.Lease, error) {
	if len(f.Validate()) > 0 {
		return estate.Lease{}, ErrHasErrors
	}
	propertyID, _ := parseID(f.PropertyID)
	tenantID, _ := parseID(f.TenantID)
	start, _ := estate.ParseTimestamp(f.StartDate)
	end, _ := estate.ParseTimestamp(f.EndDate)
	rent, _ := parseFloat(f.MonthlyRent)
	return estate.Lease{
		LeaseID:         f.ID,
		PropertyID:      propertyID,
		TenantID:        tenantID,
		StartDate:       start,
		EndDate:         end,
		MonthlyRent:     rent,
		SecurityDeposit: optionalFloat(f.SecurityDeposit),
		Status:          f.Status,
	}, nil
}

func (f *LeaseForm) Submit(ctx context.Context, save func(context.Context, estate.Lease) error) (Errors, error) {
	return submit(ctx, f, f.Payload, save)
}

func (f *LeaseForm) Fields() []Field {
	return []Field{
		{Name: "propertyId", Label: "Property", Type: "select", Value: f.PropertyID, Required: true, Placeholder: "Select Property", Options: propertyOptions(f.Refs.Properties)},
		{Name: "tenantId", Label: "Tenant", Type: "select", Value: f.TenantID, Required: true, Placeholder: "Select Tenant", Options: tenantOptions(f.Refs.Tenants)},
		{Name: "startDate", Label: "Start Date", Type: "date", Value: f.StartDate, Required: true},
		{Name: "endDate", Label: "End Date", Type: "date", Value: f.EndDate, Required: true},
		{Name: "monthlyRent", Label: "Monthly Rent (" + estate.Currency + ")", Type: "number", Step: "0.01", Value: f.MonthlyRent, Required: true},
		{Name: "securityDeposit", Label: "Security Deposit (" + estate.Currency + ")", Type: "number", Step: "0.01", Value: f.SecurityDeposit},
		{Name: "status", Label: "Status", Type: "select", Value: f.Status, Options: stringOptions(estate.LeaseStatuses)},
	}
}
