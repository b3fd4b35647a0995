package plan

import (
	ierr "github.com/flexprice/flexprice/internal/errors"
	"github.com/flexprice/flexprice/internal/types"
)

// Plan is a billable product: a named, versionless bundle of price
// components on a common billing frequency. Deactivating a plan does not
// cascade to subscriptions already attached to it.
type Plan struct {
	ID               string                 `db:"id" json:"id"`
	Name             string                 `db:"name" json:"name"`
	Description      string                 `db:"description" json:"description"`
	BillingFrequency types.BillingFrequency `db:"billing_frequency" json:"billing_frequency"`
	Active           bool                   `db:"active" json:"active"`
	types.BaseModel
}

// Validate enforces plan-creation invariants. Billing frequency
// normalization happens in the service layer before Validate is called,
// so an invalid value here is a programming error, not user input.
func (p *Plan) Validate() error {
	if p.Name == "" {
		return ierr.NewError("name is required").
			WithHint("Please provide a plan name").
			Mark(ierr.ErrValidation)
	}
	return nil
}

// NewPlan constructs a plan with generated ID, defaulting to active and
// normalizing the billing frequency per the creation rule.
func NewPlan(name, tenantID, createdBy string, frequency types.BillingFrequency) *Plan {
	return &Plan{
		ID:               types.GenerateUUIDWithPrefix(types.UUIDPrefixPlan),
		Name:             name,
		BillingFrequency: frequency.Normalize(),
		Active:           true,
		BaseModel: types.BaseModel{
			TenantID:  tenantID,
			CreatedBy: createdBy,
			UpdatedBy: createdBy,
			Status:    types.StatusActive,
		},
	}
}
