package pages

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"estatedesk.app/internal/estate"
	"estatedesk.app/internal/forms"
	"estatedesk.app/internal/obs"
)

// ErrUnknownResource is returned for a route segment that names no screen.
var ErrUnknownResource = errors.New("unknown resource")

// Controller runs list loads and the create, update and delete actions.
type Controller struct {
	backend Backend
	screens map[estate.Resource]Screen
}

func NewController(b Backend) *Controller {
	return &Controller{backend: b, screens: Screens()}
}

func (c *Controller) screen(r estate.Resource) (Screen, error) {
	s, ok := c.screens[r]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownResource, r)
	}
	return s, nil
}

// Columns returns the table headings for r.
func (c *Controller) Columns(r estate.Resource) []string {
	if s, ok := c.screens[r]; ok {
		return s.Columns()
	}
	return nil
}

// Load builds and loads the list page for r. The returned List is never nil
// for a known resource, even when loading failed.
func (c *Controller) Load(ctx context.Context, r estate.Resource) (*List, error) {
	s, err := c.screen(r)
	if err != nil {
		return nil, err
	}
	l := &List{Resource: r, Columns: s.Columns(), screen: s, backend: c.backend}
	return l, l.Load(ctx)
}

// NewForm returns an empty form with its reference options loaded.
func (c *Controller) NewForm(ctx context.Context, r estate.Resource) (forms.Form, error) {
	s, err := c.screen(r)
	if err != nil {
		return nil, err
	}
	refs, err := s.refs(ctx, c.backend)
	if err != nil {
		return nil, err
	}
	return s.blankForm(refs), nil
}

// Edit loads record id and returns the form pre-filled with it.
func (c *Controller) Edit(ctx context.Context, r estate.Resource, id int64) (forms.Form, error) {
	s, err := c.screen(r)
	if err != nil {
		return nil, err
	}
	refs, err := s.refs(ctx, c.backend)
	if err != nil {
		return nil, err
	}
	return s.editForm(ctx, c.backend, id, refs)
}

// Save validates the submitted values and issues exactly one create (id 0)
// or update. Field errors come back with a nil error and no backend call.
// The returned form always reflects what was submitted.
func (c *Controller) Save(ctx context.Context, r estate.Resource, id int64, v url.Values) (forms.Form, forms.Errors, error) {
	s, err := c.screen(r)
	if err != nil {
		return nil, nil, err
	}
	refs, err := s.refs(ctx, c.backend)
	if err != nil {
		return nil, nil, err
	}
	f, errs, err := s.save(ctx, c.backend, id, v, refs)
	if err != nil {
		obs.Logger().Warn().Err(err).Str("resource", string(r)).Int64("id", id).Msg("save_failed")
	}
	return f, errs, err
}

// Delete removes record id only when confirmed. Declining makes no backend
// call.
func (c *Controller) Delete(ctx context.Context, r estate.Resource, id int64, confirmed bool) error {
	s, err := c.screen(r)
	if err != nil {
		return err
	}
	if !confirmed {
		return nil
	}
	if err := s.remove(ctx, c.backend, id); err != nil {
		obs.Logger().Warn().Err(err).Str("resource", string(r)).Int64("id", id).Msg("delete_failed")
		return err
	}
	return nil
}
