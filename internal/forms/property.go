package forms

import (
	"context"
	"net/url"

	"estatedesk.app/internal/estate"
)

type PropertyForm struct {
	ID            int64
	AddressLine1  string
	City          string
	StateProvince string
	ZipCode       string
	Country       string
	PropertyType  string
	SizeSqFt      string
	Bedrooms      string
	Bathrooms     string
	RentAmount    string
	OwnerID       string
	Status        string

	Refs Refs
}

func NewPropertyForm(refs Refs) *PropertyForm {
	return &PropertyForm{
		Country:      estate.DefaultCountry,
		PropertyType: estate.DefaultPropertyType,
		Status:       estate.DefaultPropertyStatus,
		Refs:         refs,
	}
}

// PropertyFormFrom pre-fills the form for editing p.
func PropertyFormFrom(p estate.Property, refs Refs) *PropertyForm {
	return &PropertyForm{
		ID:            p.PropertyID,
		AddressLine1:  p.AddressLine1,
		City:          p.City,
		StateProvince: p.StateProvince,
		ZipCode:       p.ZipCode,
		Country:       orDefault(p.Country, estate.DefaultCountry),
		PropertyType:  orDefault(p.PropertyType, estate.DefaultPropertyType),
		SizeSqFt:      floatPtr(p.SizeSqFt),
		Bedrooms:      intPtr(p.Bedrooms),
		Bathrooms:     intPtr(p.Bathrooms),
		RentAmount:    formatFloat(p.RentAmount),
		OwnerID:       idPtr(p.OwnerID),
		Status:        orDefault(p.Status, estate.DefaultPropertyStatus),
		Refs:          refs,
	}
}

func ParsePropertyForm(id int64, v url.Values, refs Refs) *PropertyForm {
	return &PropertyForm{
		ID:            id,
		AddressLine1:  val(v, "addressLine1"),
		City:          val(v, "city"),
		StateProvince: val(v, "stateProvince"),
		ZipCode:       val(v, "zipCode"),
		Country:       val(v, "country"),
		PropertyType:  val(v, "propertyType"),
		SizeSqFt:      val(v, "sizeSqFt"),
		Bedrooms:      val(v, "bedrooms"),
		Bathrooms:     val(v, "bathrooms"),
		RentAmount:    val(v, "rentAmount"),
		OwnerID:       val(v, "ownerId"),
		Status:        val(v, "status"),
		Refs:          refs,
	}
}

func (f *PropertyForm) Resource() estate.Resource { return estate.Properties }
func (f *PropertyForm) RecordID() int64           { return f.ID }
func (f *PropertyForm) Title() string             { return title(estate.Properties, f.ID) }

func (f *PropertyForm) Validate() Errors {
	errs := Errors{}
	if blank(f.AddressLine1) {
		errs.add("addressLine1", "Address is required")
	}
	if blank(f.City) {
		errs.add("city", "City is required")
	}
	if blank(f.ZipCode) {
		errs.add("zipCode", "Zip code is required")
	}
	if blank(f.PropertyType) {
		errs.add("propertyType", "Property type is required")
	}
	if !positive(f.RentAmount) {
		errs.add("rentAmount", "Valid rent amount is required")
	}
	if !nonNegativeIntOrBlank(f.Bedrooms) {
		errs.add("bedrooms", "Valid number of bedrooms is required")
	}
	if !nonNegativeIntOrBlank(f.Bathrooms) {
		errs.add("bathrooms", "Valid number of bathrooms is required")
	}
	if !nonNegativeOrBlank(f.SizeSqFt) {
		errs.add("sizeSqFt", "Valid size is required")
	}
	return errs
}

// Payload normalizes the raw values. It fails when Validate reports errors.
func (f *PropertyForm) Payload() (estate.Property, error) {
	if len(f.Validate()) > 0 {
		return estate.Property{}, ErrHasErrors
	}
	rent, _ := parseFloat(f.RentAmount)
	return estate.Property{
		PropertyID:    f.ID,
		AddressLine1:  f.AddressLine1,
		City:          f.City,
		StateProvince: f.StateProvince,
		ZipCode:       f.ZipCode,
		Country:       f.Country,
		PropertyType:  f.PropertyType,
		SizeSqFt:      optionalFloat(f.SizeSqFt),
		Bedrooms:      optionalInt(f.Bedrooms),
		Bathrooms:     optionalInt(f.Bathrooms),
		RentAmount:    rent,
		OwnerID:       optionalID(f.OwnerID),
		Status:        f.Status,
	}, nil
}

// Submit validates and, when every rule passes, calls save exactly once.
func (f *PropertyForm) Submit(ctx context.Context, save func(context.Context, estate.Property) error) (Errors, error) {
	return submit(ctx, f, f.Payload, save)
}

func (f *PropertyForm) Fields() []Field {
	return []Field{
		{Name: "addressLine1", Label: "Address", Type: "text", Value: f.AddressLine1, Required: true},
		{Name: "city", Label: "City", Type: "text", Value: f.City, Required: true},
		{Name: "stateProvince", Label: "State/Province", Type: "text", Value: f.StateProvince},
		{Name: "zipCode", Label: "Zip Code", Type: "text", Value: f.ZipCode, Required: true},
		{Name: "country", Label: "Country", Type: "text", Value: f.Country},
		{Name: "propertyType", Label: "Property Type", Type: "select", Value: f.PropertyType, Required: true, Options: stringOptions(estate.PropertyTypes)},
		{Name: "rentAmount", Label: "Rent Amount (" + estate.Currency + ")", Type: "number", Step: "0.01", Value: f.RentAmount, Required: true},
		{Name: "bedrooms", Label: "Bedrooms", Type: "number", Step: "1", Value: f.Bedrooms},
		{Name: "bathrooms", Label: "Bathrooms", Type: "number", Step: "1", Value: f.Bathrooms},
		{Name: "sizeSqFt", Label: "Size (sq ft)", Type: "number", Step: "0.01", Value: f.SizeSqFt},
		{Name: "status", Label: "Status", Type: "select", Value: f.Status, Options: stringOptions(estate.PropertyStatuses)},
		{Name: "ownerId", Label: "Owner", Type: "select", Value: f.OwnerID, Placeholder: "Select Owner", Options: ownerOptions(f.Refs.Owners)},
	}
}
