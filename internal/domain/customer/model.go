package customer

import (
	"database/sql/driver"
	"encoding/json"

	ierr "github.com/flexprice/flexprice/internal/errors"
	"github.com/flexprice/flexprice/internal/types"
)

// Customer represents a customer in the system
type Customer struct {
	// ID is the unique identifier for the customer
	ID string `db:"id" json:"id"`

	// ExternalID is the external identifier for the customer
	ExternalID string `db:"external_id" json:"external_id"`

	// Name is the name of the customer
	Name string `db:"name" json:"name"`

	// Email is the email of the customer
	Email string `db:"email" json:"email"`

	// AddressLine1 is the first line of the customer's address
	AddressLine1 string `db:"address_line1" json:"address_line1"`

	// AddressLine2 is the second line of the customer's address
	AddressLine2 string `db:"address_line2" json:"address_line2"`

	// AddressCity is the city of the customer's address
	AddressCity string `db:"address_city" json:"address_city"`

	// AddressState is the state of the customer's address
	AddressState string `db:"address_state" json:"address_state"`

	// AddressPostalCode is the postal code of the customer's address
	AddressPostalCode string `db:"address_postal_code" json:"address_postal_code"`

	// AddressCountry is the country of the customer's address (ISO 3166-1 alpha-2)
	AddressCountry string `db:"address_country" json:"address_country"`

	// Metadata
	Metadata JSONBMetadata `db:"metadata" json:"metadata"`

	types.BaseModel
}

// JSONBMetadata adapts a string map to database/sql via JSON encoding.
type JSONBMetadata map[string]string

func (m *JSONBMetadata) Scan(value interface{}) error {
	if value == nil {
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return ierr.NewError("invalid type for jsonb metadata").Mark(ierr.ErrValidation)
	}
	if len(bytes) == 0 {
		return nil
	}
	return json.Unmarshal(bytes, m)
}

func (m JSONBMetadata) Value() (driver.Value, error) {
	if len(m) == 0 {
		return nil, nil
	}
	return json.Marshal(m)
}

// ValidateAddressCountry validates the country code format
func ValidateAddressCountry(country string) bool {
	if country == "" {
		return true
	}
	// Check if country code is exactly 2 characters
	if len(country) != 2 {
		return false
	}
	// TODO: Add validation against ISO 3166-1 alpha-2 codes
	return true
}

// ValidateAddressPostalCode validates the postal code format
func ValidateAddressPostalCode(postalCode string, country string) bool {
	if postalCode == "" {
		return true
	}
	// TODO: Add country-specific postal code validation
	return len(postalCode) <= 20
}

// ValidateAddress validates all address fields
func ValidateAddress(c *Customer) error {
	if !ValidateAddressCountry(c.AddressCountry) {
		return ierr.NewError("invalid country code format").
			WithHint("Country must be a 2-letter ISO 3166-1 alpha-2 code").
			Mark(ierr.ErrValidation)
	}
	if !ValidateAddressPostalCode(c.AddressPostalCode, c.AddressCountry) {
		return ierr.NewError("invalid postal code format").Mark(ierr.ErrValidation)
	}
	if len(c.AddressLine1) > 255 {
		return ierr.NewError("address line 1 too long").Mark(ierr.ErrValidation)
	}
	if len(c.AddressLine2) > 255 {
		return ierr.NewError("address line 2 too long").Mark(ierr.ErrValidation)
	}
	if len(c.AddressCity) > 100 {
		return ierr.NewError("city name too long").Mark(ierr.ErrValidation)
	}
	if len(c.AddressState) > 100 {
		return ierr.NewError("state name too long").Mark(ierr.ErrValidation)
	}
	return nil
}

// Validate enforces required fields on the customer itself.
func (c *Customer) Validate() error {
	if c.ExternalID == "" {
		return ierr.NewError("external_id is required").
			WithHint("Please provide an external customer id").
			Mark(ierr.ErrValidation)
	}
	return ValidateAddress(c)
}
