package pages

import (
	"context"
	"net/url"
	"strconv"

	"golang.org/x/sync/errgroup"

	"estatedesk.app/internal/estate"
	"estatedesk.app/internal/forms"
)

// Row is one table line. Cells line up with the screen's Columns.
type Row struct {
	ID    int64
	Cells []string
}

type refNeed uint8

const (
	needOwners refNeed = 1 << iota
	needProperties
	needTenants
	needLeases
)

// Screen describes one resource page: what it loads, how rows look and
// which form it pairs with.
type Screen interface {
	Resource() estate.Resource
	Columns() []string

	fetch(ctx context.Context, b Backend) ([]Row, forms.Refs, error)
	refs(ctx context.Context, b Backend) (forms.Refs, error)
	blankForm(refs forms.Refs) forms.Form
	editForm(ctx context.Context, b Backend, id int64, refs forms.Refs) (forms.Form, error)
	save(ctx context.Context, b Backend, id int64, v url.Values, refs forms.Refs) (forms.Form, forms.Errors, error)
	remove(ctx context.Context, b Backend, id int64) error
}

type submitter[T any] interface {
	forms.Form
	Submit(ctx context.Context, save func(context.Context, T) error) (forms.Errors, error)
}

type screen[T any] struct {
	resource estate.Resource
	columns  []string
	needs    refNeed
	coll     func(Backend) Collection[T]
	id       func(T) int64
	cells    func(T, index) []string
	blank    func(forms.Refs) forms.Form
	from     func(T, forms.Refs) forms.Form
	parse    func(int64, url.Values, forms.Refs) submitter[T]
}

func (s *screen[T]) Resource() estate.Resource { return s.resource }
func (s *screen[T]) Columns() []string         { return s.columns }

// fetch loads the primary collection and the reference collections
// concurrently and waits for all of them.
func (s *screen[T]) fetch(ctx context.Context, b Backend) ([]Row, forms.Refs, error) {
	g, gctx := errgroup.WithContext(ctx)
	var items []T
	var refs forms.Refs
	g.Go(func() error {
		var err error
		items, err = s.coll(b).List(gctx)
		return err
	})
	loadRefs(gctx, g, b, s.needs, &refs)
	if err := g.Wait(); err != nil {
		return nil, forms.Refs{}, err
	}

	ix := newIndex(refs)
	rows := make([]Row, 0, len(items))
	for _, it := range items {
		rows = append(rows, Row{ID: s.id(it), Cells: s.cells(it, ix)})
	}
	return rows, refs, nil
}

func (s *screen[T]) refs(ctx context.Context, b Backend) (forms.Refs, error) {
	g, gctx := errgroup.WithContext(ctx)
	var refs forms.Refs
	loadRefs(gctx, g, b, s.needs, &refs)
	if err := g.Wait(); err != nil {
		return forms.Refs{}, err
	}
	return refs, nil
}

func (s *screen[T]) blankForm(refs forms.Refs) forms.Form { return s.blank(refs) }

func (s *screen[T]) editForm(ctx context.Context, b Backend, id int64, refs forms.Refs) (forms.Form, error) {
	rec, err := s.coll(b).Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.from(rec, refs), nil
}

// save creates when id is zero and updates otherwise. The form itself does
// not know which.
func (s *screen[T]) save(ctx context.Context, b Backend, id int64, v url.Values, refs forms.Refs) (forms.Form, forms.Errors, error) {
	f := s.parse(id, v, refs)
	coll := s.coll(b)
	errs, err := f.Submit(ctx, func(ctx context.Context, rec T) error {
		if id > 0 {
			_, err := coll.Update(ctx, id, rec)
			return err
		}
		_, err := coll.Create(ctx, rec)
		return err
	})
	return f, errs, err
}

func (s *screen[T]) remove(ctx context.Context, b Backend, id int64) error {
	return s.coll(b).Delete(ctx, id)
}

func loadRefs(ctx context.Context, g *errgroup.Group, b Backend, needs refNeed, refs *forms.Refs) {
	if needs&needOwners != 0 {
		g.Go(func() (err error) { refs.Owners, err = b.Owners.List(ctx); return })
	}
	if needs&needProperties != 0 {
		g.Go(func() (err error) { refs.Properties, err = b.Properties.List(ctx); return })
	}
	if needs&needTenants != 0 {
		g.Go(func() (err error) { refs.Tenants, err = b.Tenants.List(ctx); return })
	}
	if needs&needLeases != 0 {
		g.Go(func() (err error) { refs.Leases, err = b.Leases.List(ctx); return })
	}
}

// Screens returns the six resource screens keyed by resource.
func Screens() map[estate.Resource]Screen {
	return map[estate.Resource]Screen{
		estate.Properties: &screen[estate.Property]{
			resource: estate.Properties,
			columns:  []string{"Address", "Type", "Bedrooms", "Bathrooms", "Size", "Rent", "Owner", "Status"},
			needs:    needOwners,
			coll:     func(b Backend) Collection[estate.Property] { return b.Properties },
			id:       func(p estate.Property) int64 { return p.PropertyID },
			cells: func(p estate.Property, ix index) []string {
				return []string{address(p), orNone(p.PropertyType), optInt(p.Bedrooms), optInt(p.Bathrooms),
					optArea(p.SizeSqFt), Money(p.RentAmount), ix.ownerName(p.OwnerID), orNone(p.Status)}
			},
			blank: func(r forms.Refs) forms.Form { return forms.NewPropertyForm(r) },
			from:  func(p estate.Property, r forms.Refs) forms.Form { return forms.PropertyFormFrom(p, r) },
			parse: func(id int64, v url.Values, r forms.Refs) submitter[estate.Property] {
				return forms.ParsePropertyForm(id, v, r)
			},
		},
		estate.Owners: &screen[estate.Owner]{
			resource: estate.Owners,
			columns:  []string{"Name", "Email", "Phone", "Properties Owned"},
			needs:    needProperties,
			coll:     func(b Backend) Collection[estate.Owner] { return b.Owners },
			id:       func(o estate.Owner) int64 { return o.OwnerID },
			cells: func(o estate.Owner, ix index) []string {
				return []string{o.FullName(), o.Email, orNone(o.Phone), strconv.Itoa(ix.owned[o.OwnerID])}
			},
			blank: func(forms.Refs) forms.Form { return forms.NewOwnerForm() },
			from:  func(o estate.Owner, _ forms.Refs) forms.Form { return forms.OwnerFormFrom(o) },
			parse: func(id int64, v url.Values, _ forms.Refs) submitter[estate.Owner] {
				return forms.ParseOwnerForm(id, v)
			},
		},
		estate.Tenants: &screen[estate.Tenant]{
			resource: estate.Tenants,
			columns:  []string{"Name", "Email", "Phone", "Property", "Lease Period"},
			needs:    needLeases | needProperties,
			coll:     func(b Backend) Collection[estate.Tenant] { return b.Tenants },
			id:       func(t estate.Tenant) int64 { return t.TenantID },
			cells: func(t estate.Tenant, ix index) []string {
				property, period := none, none
				if l, ok := ix.latestLease[t.TenantID]; ok {
					property = ix.propertyAddress(l.PropertyID)
					period = Date(l.StartDate) + " to " + Date(l.EndDate)
				}
				return []string{t.FullName(), t.Email, orNone(t.Phone), property, period}
			},
			blank: func(forms.Refs) forms.Form { return forms.NewTenantForm() },
			from:  func(t estate.Tenant, _ forms.Refs) forms.Form { return forms.TenantFormFrom(t) },
			parse: func(id int64, v url.Values, _ forms.Refs) submitter[estate.Tenant] {
				return forms.ParseTenantForm(id, v)
			},
		},
		estate.Leases: &screen[estate.Lease]{
			resource: estate.Leases,
			columns:  []string{"Property", "Tenant", "Start Date", "End Date", "Monthly Rent", "Status"},
			needs:    needProperties | needTenants,
			coll:     func(b Backend) Collection[estate.Lease] { return b.Leases },
			id:       func(l estate.Lease) int64 { return l.LeaseID },
			cells: func(l estate.Lease, ix index) []string {
				return []string{ix.propertyAddress(l.PropertyID), ix.tenantName(l.TenantID),
					Date(l.StartDate), Date(l.EndDate), Money(l.MonthlyRent), orNone(l.Status)}
			},
			blank: func(r forms.Refs) forms.Form { return forms.NewLeaseForm(r) },
			from:  func(l estate.Lease, r forms.Refs) forms.Form { return forms.LeaseFormFrom(l, r) },
			parse: func(id int64, v url.Values, r forms.Refs) submitter[estate.Lease] {
				return forms.ParseLeaseForm(id, v, r)
			},
		},
		estate.Payments: &screen[estate.Payment]{
			resource: estate.Payments,
			columns:  []string{"Property", "Tenant", "Date", "Amount", "Method", "Status"},
			needs:    needLeases | needProperties | needTenants,
			coll:     func(b Backend) Collection[estate.Payment] { return b.Payments },
			id:       func(p estate.Payment) int64 { return p.PaymentID },
			cells: func(p estate.Payment, ix index) []string {
				property, tenant := unknown, unknown
				if l, ok := ix.leases[p.LeaseID]; ok {
					property = ix.propertyAddress(l.PropertyID)
					tenant = ix.tenantName(l.TenantID)
				}
				return []string{property, tenant, Date(p.PaymentDate), Money(p.Amount), orNone(p.PaymentMethod), orNone(p.Status)}
			},
			blank: func(r forms.Refs) forms.Form { return forms.NewPaymentForm(r) },
			from:  func(p estate.Payment, r forms.Refs) forms.Form { return forms.PaymentFormFrom(p, r) },
			parse: func(id int64, v url.Values, r forms.Refs) submitter[estate.Payment] {
				return forms.ParsePaymentForm(id, v, r)
			},
		},
		estate.Maintenance: &screen[estate.MaintenanceRequest]{
			resource: estate.Maintenance,
			columns:  []string{"Property", "Title", "Priority", "Status"},
			needs:    needProperties,
			coll:     func(b Backend) Collection[estate.MaintenanceRequest] { return b.Maintenance },
			id:       func(m estate.MaintenanceRequest) int64 { return m.RequestID },
			cells: func(m estate.MaintenanceRequest, ix index) []string {
				return []string{ix.propertyAddress(m.PropertyID), m.Title, orNone(m.Priority), orNone(m.Status)}
			},
			blank: func(r forms.Refs) forms.Form { return forms.NewMaintenanceForm(r) },
			from:  func(m estate.MaintenanceRequest, r forms.Refs) forms.Form { return forms.MaintenanceFormFrom(m, r) },
			parse: func(id int64, v url.Values, r forms.Refs) submitter[estate.MaintenanceRequest] {
				return forms.ParseMaintenanceForm(id, v, r)
			},
		},
	}
}
