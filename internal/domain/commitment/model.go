package commitment

import (
	"time"

	ierr "github.com/flexprice/flexprice/internal/errors"
	"github.com/flexprice/flexprice/internal/types"
	"github.com/shopspring/decimal"
)

// Tier is a minimum billable charge for a metric on a subscription: if the
// metric's actual usage charge (at Rate, or split at OverageRate past the
// commitment) comes in below CommittedAmount * Rate, the committed minimum
// is billed instead and the unconsumed remainder becomes a standalone
// zero-quantity invoice line item.
type Tier struct {
	ID             string          `db:"id" json:"id"`
	SubscriptionID string          `db:"subscription_id" json:"subscription_id"`
	MetricID       string          `db:"metric_id" json:"metric_id"`
	CommittedAmount decimal.Decimal `db:"committed_amount" json:"committed_amount" swaggertype:"string"`
	Rate           decimal.Decimal `db:"rate" json:"rate" swaggertype:"string"`
	OverageRate    *decimal.Decimal `db:"overage_rate" json:"overage_rate,omitempty" swaggertype:"string"`
	Start          time.Time       `db:"start" json:"start"`
	End            *time.Time      `db:"end" json:"end,omitempty"`
	types.BaseModel
}

// ActiveAt reports whether the tier applies at t.
func (t *Tier) ActiveAt(at time.Time) bool {
	if at.Before(t.Start) {
		return false
	}
	if t.End != nil && at.After(*t.End) {
		return false
	}
	return true
}

func (t *Tier) Validate() error {
	if t.SubscriptionID == "" {
		return ierr.NewError("subscription_id is required").Mark(ierr.ErrValidation)
	}
	if t.MetricID == "" {
		return ierr.NewError("metric_id is required").Mark(ierr.ErrValidation)
	}
	if t.CommittedAmount.IsNegative() {
		return ierr.NewError("committed_amount cannot be negative").Mark(ierr.ErrValidation)
	}
	if t.Rate.IsNegative() {
		return ierr.NewError("rate cannot be negative").Mark(ierr.ErrValidation)
	}
	if t.OverageRate != nil && t.OverageRate.IsNegative() {
		return ierr.NewError("overage_rate cannot be negative").Mark(ierr.ErrValidation)
	}
	if t.End != nil && !t.End.After(t.Start) {
		return ierr.NewError("end must be after start").Mark(ierr.ErrValidation)
	}
	return nil
}

// NewTier constructs a commitment tier with a generated ID.
func NewTier(subscriptionID, metricID string, committedAmount, rate decimal.Decimal, overageRate *decimal.Decimal, start time.Time, tenantID, createdBy string) *Tier {
	return &Tier{
		ID:              types.GenerateUUIDWithPrefix(types.UUIDPrefixCommitmentTier),
		SubscriptionID:  subscriptionID,
		MetricID:        metricID,
		CommittedAmount: committedAmount,
		Rate:            rate,
		OverageRate:     overageRate,
		Start:           start,
		BaseModel: types.BaseModel{
			TenantID:  tenantID,
			CreatedBy: createdBy,
			UpdatedBy: createdBy,
			Status:    types.StatusActive,
		},
	}
}
