package dto

import "github.com/flexprice/flexprice/internal/domain/customer"

// CreateCustomerRequest is the wire shape for POST /customers.
type CreateCustomerRequest struct {
	ExternalID        string            `json:"external_id" validate:"required"`
	Name              string            `json:"name" validate:"required"`
	Email             string            `json:"email" validate:"required,email"`
	AddressLine1      string            `json:"address_line1"`
	AddressLine2      string            `json:"address_line2"`
	AddressCity       string            `json:"address_city"`
	AddressState      string            `json:"address_state"`
	AddressPostalCode string            `json:"address_postal_code"`
	AddressCountry    string            `json:"address_country"`
	Metadata          map[string]string `json:"metadata"`
}

func (r *CreateCustomerRequest) ToCustomer() *customer.Customer {
	return &customer.Customer{
		ExternalID:        r.ExternalID,
		Name:              r.Name,
		Email:             r.Email,
		AddressLine1:      r.AddressLine1,
		AddressLine2:      r.AddressLine2,
		AddressCity:       r.AddressCity,
		AddressState:      r.AddressState,
		AddressPostalCode: r.AddressPostalCode,
		AddressCountry:    r.AddressCountry,
		Metadata:          customer.JSONBMetadata(r.Metadata),
	}
}

// UpdateCustomerRequest is the wire shape for PUT /customers/{id}. Only
// fields present in the request (non-nil) overwrite the existing record; a
// present empty string overwrites too.
type UpdateCustomerRequest struct {
	Name              *string           `json:"name"`
	Email             *string           `json:"email"`
	AddressLine1      *string           `json:"address_line1"`
	AddressLine2      *string           `json:"address_line2"`
	AddressCity       *string           `json:"address_city"`
	AddressState      *string           `json:"address_state"`
	AddressPostalCode *string           `json:"address_postal_code"`
	AddressCountry    *string           `json:"address_country"`
	Metadata          map[string]string `json:"metadata"`
}

func (r *UpdateCustomerRequest) ApplyTo(c *customer.Customer) {
	if r.Name != nil {
		c.Name = *r.Name
	}
	if r.Email != nil {
		c.Email = *r.Email
	}
	if r.AddressLine1 != nil {
		c.AddressLine1 = *r.AddressLine1
	}
	if r.AddressLine2 != nil {
		c.AddressLine2 = *r.AddressLine2
	}
	if r.AddressCity != nil {
		c.AddressCity = *r.AddressCity
	}
	if r.AddressState != nil {
		c.AddressState = *r.AddressState
	}
	if r.AddressPostalCode != nil {
		c.AddressPostalCode = *r.AddressPostalCode
	}
	if r.AddressCountry != nil {
		c.AddressCountry = *r.AddressCountry
	}
	if r.Metadata != nil {
		c.Metadata = customer.JSONBMetadata(r.Metadata)
	}
}
