package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"estatedesk.app/internal/estate"
	"estatedesk.app/internal/obs"
)

// Record is any entity the backend stores.
type Record interface {
	Validate() error
}

// Collection is the CRUD surface of one backend resource.
type Collection[T Record] struct {
	c        *Client
	resource estate.Resource
	path     string
	setID    func(*T, int64)
}

// Resource names the collection.
func (col *Collection[T]) Resource() estate.Resource { return col.resource }

// List fetches every record. A null body is an empty collection. Records
// that fail validation are dropped and logged so one bad row cannot blank
// the whole page.
func (col *Collection[T]) List(ctx context.Context) ([]T, error) {
	var raw []T
	if err := col.c.do(ctx, col.resource, "list", http.MethodGet, col.path, nil, &raw); err != nil {
		return nil, err
	}
	out := make([]T, 0, len(raw))
	for i := range raw {
		if err := raw[i].Validate(); err != nil {
			obs.Logger().Warn().Err(err).
				Str("resource", string(col.resource)).
				Int("index", i).
				Msg("gateway_record_skipped")
			continue
		}
		out = append(out, raw[i])
	}
	return out, nil
}

func (col *Collection[T]) Get(ctx context.Context, id int64) (T, error) {
	var out T
	if err := col.c.do(ctx, col.resource, "get", http.MethodGet, col.itemPath(id), nil, &out); err != nil {
		var zero T
		return zero, err
	}
	if err := out.Validate(); err != nil {
		var zero T
		return zero, malformed("%s %d: %v", col.resource, id, err)
	}
	return out, nil
}

// Create posts rec and returns the stored record. When the backend answers
// without a body the submitted record is returned.
func (col *Collection[T]) Create(ctx context.Context, rec T) (T, error) {
	return col.write(ctx, "create", http.MethodPost, col.path, rec)
}

// Update replaces the record at id. The record's own identifier is set to id
// before sending.
func (col *Collection[T]) Update(ctx context.Context, id int64, rec T) (T, error) {
	if col.setID != nil {
		col.setID(&rec, id)
	}
	return col.write(ctx, "update", http.MethodPut, col.itemPath(id), rec)
}

func (col *Collection[T]) Delete(ctx context.Context, id int64) error {
	return col.c.do(ctx, col.resource, "delete", http.MethodDelete, col.itemPath(id), nil, nil)
}

func (col *Collection[T]) write(ctx context.Context, verb, method, path string, rec T) (T, error) {
	var raw json.RawMessage
	if err := col.c.do(ctx, col.resource, verb, method, path, rec, &raw); err != nil {
		var zero T
		return zero, err
	}
	if len(raw) == 0 {
		return rec, nil
	}
	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		var zero T
		return zero, malformed("decode %s %s: %v", col.resource, verb, err)
	}
	if err := out.Validate(); err != nil {
		var zero T
		return zero, malformed("%s %s: %v", col.resource, verb, err)
	}
	return out, nil
}

func (col *Collection[T]) itemPath(id int64) string {
	return col.path + "/" + strconv.FormatInt(id, 10)
}
