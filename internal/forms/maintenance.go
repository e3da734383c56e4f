package forms

import (
	"context"
	"net/url"

	"estatedesk.app/internal/estate"
)

type MaintenanceForm struct {
	ID              int64
	PropertyID      string
	RequestTitle    string
	Description     string
	Status          string
	Priority        string
	ResolutionNotes string

	Refs Refs
}

func NewMaintenanceForm(refs Refs) *MaintenanceForm {
	return &MaintenanceForm{
		Status:   estate.DefaultRequestStatus,
		Priority: estate.DefaultRequestPriority,
		Refs:     refs,
	}
}

func MaintenanceFormFrom(m estate.MaintenanceRequest, refs Refs) *MaintenanceForm {
	notes := ""
	if m.ResolutionNotes != nil {
		notes = *m.ResolutionNotes
	}
	return &MaintenanceForm{
		ID:              m.RequestID,
		PropertyID:      formatID(m.PropertyID),
		RequestTitle:    m.Title,
		Description:     m.Description,
		Status:          orDefault(m.Status, estate.DefaultRequestStatus),
		Priority:        orDefault(m.Priority, estate.DefaultRequestPriority),
		ResolutionNotes: notes,
		Refs:            refs,
	}
}

func ParseMaintenanceForm(id int64, v url.Values, refs Refs) *MaintenanceForm {
	return &MaintenanceForm{
		ID:              id,
		PropertyID:      val(v, "propertyId"),
		RequestTitle:    val(v, "title"),
		Description:     val(v, "description"),
		Status:          orDefault(val(v, "status"), estate.DefaultRequestStatus),
		Priority:        orDefault(val(v, "priority"), estate.DefaultRequestPriority),
		ResolutionNotes: val(v, "resolutionNotes"),
		Refs:            refs,
	}
}

func (f *MaintenanceForm) Resource() estate.Resource { return estate.Maintenance }
func (f *MaintenanceForm) RecordID() int64           { return f.ID }
func (f *MaintenanceForm) Title() string             { return title(estate.Maintenance, f.ID) }

func (f *MaintenanceForm) Validate() Errors {
	errs := Errors{}
	if _, ok := parseID(f.PropertyID); !ok {
		errs.add("propertyId", "Property is required")
	}
	if blank(f.RequestTitle) {
		errs.add("title", "Title is required")
	}
	if blank(f.Description) {
		errs.add("description", "Description is required")
	}
	return errs
}

func (f *MaintenanceForm) Payload() (estate.MaintenanceRequest, error) {
	if len(f.Validate()) > 0 {
		return estate.MaintenanceRequest{}, ErrHasErrors
	}
	propertyID, _ := parseID(f.PropertyID)
	return estate.MaintenanceRequest{
		RequestID:       f.ID,
		PropertyID:      propertyID,
		Title:           f.RequestTitle,
		Description:     f.Description,
		Status:          f.Status,
		Priority:        f.Priority,
		ResolutionNotes: optionalString(f.ResolutionNotes),
	}, nil
}

func (f *MaintenanceForm) Submit(ctx context.Context, save func(context.Context, estate.MaintenanceRequest) error) (Errors, error) {
	return submit(ctx, f, f.Payload, save)
}

func (f *MaintenanceForm) Fields() []Field {
	return []Field{
		{Name: "propertyId", Label: "Property", Type: "select", Value: f.PropertyID, Required: true, Placeholder: "Select Property", Options: propertyOptions(f.Refs.Properties)},
		{Name: "title", Label: "Title", Type: "text", Value: f.RequestTitle, Required: true},
		{Name: "description", Label: "Description", Type: "textarea", Value: f.Description, Required: true},
		{Name: "status", Label: "Status", Type: "select", Value: f.Status, Options: stringOptions(estate.RequestStatuses)},
		{Name: "priority", Label: "Priority", Type: "select", Value: f.Priority, Options: stringOptions(estate.RequestPriority)},
		{Name: "resolutionNotes", Label: "Resolution Notes", Type: "textarea", Value: f.ResolutionNotes},
	}
}
