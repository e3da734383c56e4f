package estate

import (
	"errors"
	"fmt"
)

// ErrInvalid marks a record that violates a data model invariant.
var ErrInvalid = errors.New("invalid record")

// Property is a rentable unit, optionally owned by an Owner.
type Property struct {
	PropertyID    int64    `json:"propertyId"`
	AddressLine1  string   `json:"addressLine1"`
	City          string   `json:"city"`
	StateProvince string   `json:"stateProvince"`
	ZipCode       string   `json:"zipCode"`
	Country       string   `json:"country"`
	PropertyType  string   `json:"propertyType"`
	SizeSqFt      *float64 `json:"sizeSqFt"`
	Bedrooms      *int     `json:"bedrooms"`
	Bathrooms     *int     `json:"bathrooms"`
	RentAmount    float64  `json:"rentAmount"`
	OwnerID       *int64   `json:"ownerId"`
	Status        string   `json:"status,omitempty"`
}

// Owner owns zero or more properties.
type Owner struct {
	OwnerID   int64  `json:"ownerId"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

// Tenant is referenced by leases.
type Tenant struct {
	TenantID  int64  `json:"tenantId"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

// Lease binds one tenant to one property for a period.
type Lease struct {
	LeaseID         int64     `json:"leaseId"`
	PropertyID      int64     `json:"propertyId"`
	TenantID        int64     `json:"tenantId"`
	StartDate       Timestamp `json:"startDate"`
	EndDate         Timestamp `json:"endDate"`
	MonthlyRent     float64   `json:"monthlyRent"`
	SecurityDeposit *float64  `json:"securityDeposit"`
	Status          string    `json:"status"`
}

// Payment is money received against a lease.
type Payment struct {
	PaymentID     int64     `json:"paymentId"`
	LeaseID       int64     `json:"leaseId"`
	Amount        float64   `json:"amount"`
	PaymentDate   Timestamp `json:"paymentDate"`
	PaymentMethod string    `json:"paymentMethod"`
	Status        string    `json:"status"`
	Notes         string    `json:"notes"`
}

// MaintenanceRequest is a work item raised against a property.
type MaintenanceRequest struct {
	RequestID       int64   `json:"requestId"`
	PropertyID      int64   `json:"propertyId"`
	Title           string  `json:"title"`
	Description     string  `json:"description"`
	Status          string  `json:"status"`
	Priority        string  `json:"priority"`
	ResolutionNotes *string `json:"resolutionNotes"`
}

// FullName joins first and last name.
func (o Owner) FullName() string { return joinName(o.FirstName, o.LastName) }

// FullName joins first and last name.
func (t Tenant) FullName() string { return joinName(t.FirstName, t.LastName) }

func joinName(first, last string) string {
	switch {
	case first == "":
		return last
	case last == "":
		return first
	}
	return first + " " + last
}

// Validate checks the numeric invariants of a property.
func (p Property) Validate() error {
	if p.PropertyID < 0 {
		return invalid("propertyId", "must not be negative")
	}
	if p.RentAmount < 0 {
		return invalid("rentAmount", "must not be negative")
	}
	if p.SizeSqFt != nil && *p.SizeSqFt < 0 {
		return invalid("sizeSqFt", "must not be negative")
	}
	if p.Bedrooms != nil && *p.Bedrooms < 0 {
		return invalid("bedrooms", "must not be negative")
	}
	if p.Bathrooms != nil && *p.Bathrooms < 0 {
		return invalid("bathrooms", "must not be negative")
	}
	if p.OwnerID != nil && *p.OwnerID < 0 {
		return invalid("ownerId", "must not be negative")
	}
	return nil
}

func (o Owner) Validate() error {
	if o.OwnerID < 0 {
		return invalid("ownerId", "must not be negative")
	}
	return nil
}

func (t Tenant) Validate() error {
	if t.TenantID < 0 {
		return invalid("tenantId", "must not be negative")
	}
	return nil
}

// Validate checks money fields and that the lease ends strictly after it starts.
func (l Lease) Validate() error {
	if l.LeaseID < 0 || l.PropertyID < 0 || l.TenantID < 0 {
		return invalid("leaseId", "identifiers must not be negative")
	}
	if l.MonthlyRent < 0 {
		return invalid("monthlyRent", "must not be negative")
	}
	if l.SecurityDeposit != nil && *l.SecurityDeposit < 0 {
		return invalid("securityDeposit", "must not be negative")
	}
	if !l.StartDate.IsZero() && !l.EndDate.IsZero() && !l.EndDate.After(l.StartDate.Time) {
		return invalid("endDate", "must be after start date")
	}
	return nil
}

func (p Payment) Validate() error {
	if p.PaymentID < 0 || p.LeaseID < 0 {
		return invalid("paymentId", "identifiers must not be negative")
	}
	if p.Amount < 0 {
		return invalid("amount", "must not be negative")
	}
	return nil
}

func (m MaintenanceRequest) Validate() error {
	if m.RequestID < 0 || m.PropertyID < 0 {
		return invalid("requestId", "identifiers must not be negative")
	}
	return nil
}

func invalid(field, msg string) error {
	return fmt.Errorf("%w: %s %s", ErrInvalid, field, msg)
}
