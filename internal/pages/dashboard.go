package pages

import (
	"context"

	"golang.org/x/sync/errgroup"

	"estatedesk.app/internal/estate"
)

// Stat is one dashboard tile.
type Stat struct {
	Label    string
	Value    int
	Resource estate.Resource
}

// Dashboard loads the summary counts shown after sign-in.
func (c *Controller) Dashboard(ctx context.Context) ([]Stat, error) {
	var (
		properties []estate.Property
		tenants    []estate.Tenant
		leases     []estate.Lease
		requests   []estate.MaintenanceRequest
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { properties, err = c.backend.Properties.List(gctx); return })
	g.Go(func() (err error) { tenants, err = c.backend.Tenants.List(gctx); return })
	g.Go(func() (err error) { leases, err = c.backend.Leases.List(gctx); return })
	g.Go(func() (err error) { requests, err = c.backend.Maintenance.List(gctx); return })
	if err := g.Wait(); err != nil {
		return nil, err
	}

	active := 0
	for _, l := range leases {
		if l.Status == "Active" {
			active++
		}
	}
	pending := 0
	for _, m := range requests {
		if m.Status != "Completed" && m.Status != "Cancelled" {
			pending++
		}
	}
	return []Stat{
		{Label: "Total Properties", Value: len(properties), Resource: estate.Properties},
		{Label: "Total Tenants", Value: len(tenants), Resource: estate.Tenants},
		{Label: "Active Leases", Value: active, Resource: estate.Leases},
		{Label: "Pending Maintenance", Value: pending, Resource: estate.Maintenance},
	}, nil
}
