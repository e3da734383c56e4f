package forms

import (
	"context"
	"net/url"

	"estatedesk.app/internal/estate"
)

type PaymentForm struct {
	ID            int64
	LeaseID       string
	Amount        string
	PaymentDate   string
	PaymentMethod string
	Status        string
	Notes         string

	Refs Refs
}

func NewPaymentForm(refs Refs) *PaymentForm {
	return &PaymentForm{
		PaymentMethod: estate.DefaultPaymentMethod,
		Status:        estate.DefaultPaymentStatus,
		Refs:          refs,
	}
}

func PaymentFormFrom(p estate.Payment, refs Refs) *PaymentForm {
	return &PaymentForm{
		ID:            p.PaymentID,
		LeaseID:       formatID(p.LeaseID),
		Amount:        formatFloat(p.Amount),
		PaymentDate:   p.PaymentDate.DateString(),
		PaymentMethod: orDefault(p.PaymentMethod, estate.DefaultPaymentMethod),
		Status:        orDefault(p.Status, estate.DefaultPaymentStatus),
		Notes:         p.Notes,
		Refs:          refs,
	}
}

func ParsePaymentForm(id int64, v url.Values, refs Refs) *PaymentForm {
	return &PaymentForm{
		ID:            id,
		LeaseID:       val(v, "leaseId"),
		Amount:        val(v, "amount"),
		PaymentDate:   val(v, "paymentDate"),
		PaymentMethod: val(v, "paymentMethod"),
		Status:        orDefault(val(v, "status"), estate.DefaultPaymentStatus),
		Notes:         val(v, "notes"),
		Refs:          refs,
	}
}

func (f *PaymentForm) Resource() estate.Resource { return estate.Payments }
func (f *PaymentForm) RecordID() int64           { return f.ID }
func (f *PaymentForm) Title() string             { return title(estate.Payments, f.ID) }

func (f *PaymentForm) Validate() Errors {
	errs := Errors{}
	if _, ok := parseID(f.LeaseID); !ok {
		errs.add("leaseId", "Lease is required")
	}
	if !positive(f.Amount) {
		errs.add("amount", "Valid amount is required")
	}
	if blank(f.PaymentDate) {
		errs.add("paymentDate", "Payment date is required")
	} else if _, err := estate.ParseTimestamp(f.PaymentDate); err != nil {
		errs.add("paymentDate", "Payment date is invalid")
	}
	if blank(f.PaymentMethod) {
		errs.add("paymentMethod", "Payment method is required")
	}
	return errs
}

func (f *PaymentForm) Payload() (estate.Payment, error) {
	if len(f.Validate()) > 0 {
		return estate.Payment{}, ErrHasErrors
	}
	leaseID, _ := parseID(f.LeaseID)
	amount, _ := parseFloat(f.Amount)
	date, _ := estate.ParseTimestamp(f.PaymentDate)
	return estate.Payment{
		PaymentID:     f.ID,
		LeaseID:       leaseID,
		Amount:        amount,
		PaymentDate:   date,
		PaymentMethod: f.PaymentMethod,
		Status:        f.Status,
		Notes:         f.Notes,
	}, nil
}

func (f *PaymentForm) Submit(ctx context.Context, save func(context.Context, estate.Payment) error) (Errors, error) {
	return submit(ctx, f, f.Payload, save)
}

func (f *PaymentForm) Fields() []Field {
	return []Field{
		{Name: "leaseId", Label: "Lease", Type: "select", Value: f.LeaseID, Required: true, Placeholder: "Select Lease", Options: leaseOptions(f.Refs)},
		{Name: "amount", Label: "Amount (" + estate.Currency + ")", Type: "number", Step: "0.01", Value: f.Amount, Required: true},
		{Name: "paymentDate", Label: "Payment Date", Type: "date", Value: f.PaymentDate, Required: true},
		{Name: "paymentMethod", Label: "Payment Method", Type: "select", Value: f.PaymentMethod, Required: true, Options: stringOptions(estate.PaymentMethods)},
		{Name: "status", Label: "Status", Type: "select", Value: f.Status, Options: stringOptions(estate.PaymentStatuses)},
		{Name: "notes", Label: "Notes", Type: "textarea", Value: f.Notes},
	}
}
