package pages

import (
	"context"
	"fmt"

	"estatedesk.app/internal/estate"
	"estatedesk.app/internal/forms"
)

// Status is the load state of a list page.
type Status int

const (
	Loading Status = iota
	Ready
	Error
)

func (s Status) String() string {
	switch s {
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case Error:
		return "error"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// List is one list page. Load moves it from Loading to Ready or Error.
type List struct {
	Resource estate.Resource
	Status   Status
	Columns  []string
	Rows     []Row
	Err      error
	Refs     forms.Refs

	screen  Screen
	backend Backend
}

// Load fetches everything the page shows. A canceled context leaves the
// page in Loading and discards whatever arrived.
func (l *List) Load(ctx context.Context) error {
	l.Status, l.Rows, l.Err = Loading, nil, nil
	rows, refs, err := l.screen.fetch(ctx, l.backend)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if err != nil {
		l.Status, l.Err = Error, err
		return err
	}
	l.Status, l.Rows, l.Refs = Ready, rows, refs
	return nil
}

// RetryPath is where the Retry action in the error banner leads.
func (l *List) RetryPath() string { return l.Resource.Path() }
