package estate

// Option lists and defaults offered by the forms.
var (
	PropertyTypes    = []string{"Apartment", "House", "Condo", "Townhouse", "Office", "Retail"}
	PropertyStatuses = []string{"Available", "Rented", "Maintenance"}
	LeaseStatuses    = []string{"Active", "Expired", "Terminated"}
	PaymentMethods   = []string{"Bank Transfer", "Cash", "Check", "Credit Card", "Online Payment"}
	PaymentStatuses  = []string{"Pending", "Completed", "Failed", "Refunded"}
	RequestStatuses  = []string{"Submitted", "In Progress", "Completed", "Cancelled"}
	RequestPriority  = []string{"Low", "Medium", "High", "Urgent"}
)

const (
	DefaultCountry         = "Sri Lanka"
	DefaultPropertyType    = "Apartment"
	DefaultPropertyStatus  = "Available"
	DefaultLeaseStatus     = "Active"
	DefaultPaymentMethod   = "Bank Transfer"
	DefaultPaymentStatus   = "Completed"
	DefaultRequestStatus   = "Submitted"
	DefaultRequestPriority = "Medium"

	// Currency is the display currency for every money amount.
	Currency = "LKR"
)

// Resource identifies one of the six managed collections.
type Resource string

const (
	Properties  Resource = "properties"
	Owners      Resource = "owners"
	Tenants     Resource = "tenants"
	Leases      Resource = "leases"
	Payments    Resource = "payments"
	Maintenance Resource = "maintenance"
)

// Resources in navigation order.
var Resources = []Resource{Properties, Tenants, Owners, Leases, Payments, Maintenance}

// Title is the plural heading shown in navigation and list pages.
func (r Resource) Title() string {
	switch r {
	case Properties:
		return "Properties"
	case Owners:
		return "Owners"
	case Tenants:
		return "Tenants"
	case Leases:
		return "Leases"
	case Payments:
		return "Payments"
	case Maintenance:
		return "Maintenance"
	}
	return string(r)
}

// Singular is used in form headings and confirmations ("Add New Lease").
func (r Resource) Singular() string {
	switch r {
	case Properties:
		return "Property"
	case Owners:
		return "Owner"
	case Tenants:
		return "Tenant"
	case Leases:
		return "Lease"
	case Payments:
		return "Payment"
	case Maintenance:
		return "Maintenance Request"
	}
	return string(r)
}

// Path is the front-end route of the list page.
func (r Resource) Path() string { return "/" + string(r) }

// ParseResource maps a route segment to a Resource.
func ParseResource(s string) (Resource, bool) {
	for _, r := range Resources {
		if string(r) == s {
			return r, true
		}
	}
	return "", false
}

// Contains reports whether v is one of opts.
func Contains(opts []string, v string) bool {
	for _, o := range opts {
		if o == v {
			return true
		}
	}
	return false
}
