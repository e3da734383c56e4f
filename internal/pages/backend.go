// Package pages drives the six resource screens and the dashboard: loading
// collections, shaping rows for display and running the create/update/delete
// actions against the backend.
package pages

import (
	"context"

	"estatedesk.app/internal/estate"
	"estatedesk.app/internal/gateway"
)

// Collection is the CRUD surface of one backend resource.
type Collection[T any] interface {
	List(ctx context.Context) ([]T, error)
	Get(ctx context.Context, id int64) (T, error)
	Create(ctx context.Context, rec T) (T, error)
	Update(ctx context.Context, id int64, rec T) (T, error)
	Delete(ctx context.Context, id int64) error
}

// Backend bundles the six collections.
type Backend struct {
	Properties  Collection[estate.Property]
	Owners      Collection[estate.Owner]
	Tenants     Collection[estate.Tenant]
	Leases      Collection[estate.Lease]
	Payments    Collection[estate.Payment]
	Maintenance Collection[estate.MaintenanceRequest]
}

// FromGateway wires every collection to the REST client.
func FromGateway(c *gateway.Client) Backend {
	return Backend{
		Properties:  c.Properties(),
		Owners:      c.Owners(),
		Tenants:     c.Tenants(),
		Leases:      c.Leases(),
		Payments:    c.Payments(),
		Maintenance: c.MaintenanceRequests(),
	}
}
