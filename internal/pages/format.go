package pages

import (
	"strconv"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"estatedesk.app/internal/estate"
	"estatedesk.app/internal/forms"
)

const (
	displayDate = "Jan 2, 2006"
	unknown     = "Unknown"
	none        = "-"
)

var printer = message.NewPrinter(language.English)

// Money renders an amount as "LKR 150,000.00".
func Money(amount float64) string {
	return printer.Sprintf("%s %.2f", estate.Currency, amount)
}

// Date renders a timestamp as "Jan 2, 2006"; zero renders as "-".
func Date(ts estate.Timestamp) string {
	if ts.IsZero() {
		return none
	}
	return ts.UTC().Format(displayDate)
}

func optInt(n *int) string {
	if n == nil {
		return none
	}
	return strconv.Itoa(*n)
}

func optArea(f *float64) string {
	if f == nil {
		return none
	}
	return printer.Sprintf("%.0f sq ft", *f)
}

func orNone(s string) string {
	if s == "" {
		return none
	}
	return s
}

func address(p estate.Property) string {
	if p.City == "" {
		return p.AddressLine1
	}
	return p.AddressLine1 + ", " + p.City
}

// index builds id lookups for reference collections.
type index struct {
	owners     map[int64]estate.Owner
	properties map[int64]estate.Property
	tenants    map[int64]estate.Tenant
	leases     map[int64]estate.Lease

	owned       map[int64]int          // properties per owner
	latestLease map[int64]estate.Lease // most recent lease per tenant
}

func newIndex(refs forms.Refs) index {
	ix := index{
		owners:      make(map[int64]estate.Owner, len(refs.Owners)),
		properties:  make(map[int64]estate.Property, len(refs.Properties)),
		tenants:     make(map[int64]estate.Tenant, len(refs.Tenants)),
		leases:      make(map[int64]estate.Lease, len(refs.Leases)),
		owned:       make(map[int64]int),
		latestLease: make(map[int64]estate.Lease),
	}
	for _, o := range refs.Owners {
		ix.owners[o.OwnerID] = o
	}
	for _, p := range refs.Properties {
		ix.properties[p.PropertyID] = p
		if p.OwnerID != nil {
			ix.owned[*p.OwnerID]++
		}
	}
	for _, t := range refs.Tenants {
		ix.tenants[t.TenantID] = t
	}
	for _, l := range refs.Leases {
		ix.leases[l.LeaseID] = l
		if cur, ok := ix.latestLease[l.TenantID]; !ok || l.StartDate.After(cur.StartDate.Time) {
			ix.latestLease[l.TenantID] = l
		}
	}
	return ix
}

func (ix index) ownerName(id *int64) string {
	if id == nil {
		return none
	}
	if o, ok := ix.owners[*id]; ok {
		return o.FullName()
	}
	return unknown
}

func (ix index) propertyAddress(id int64) string {
	if p, ok := ix.properties[id]; ok {
		return address(p)
	}
	return unknown
}

func (ix index) tenantName(id int64) string {
	if t, ok := ix.tenants[id]; ok {
		return t.FullName()
	}
	return unknown
}
