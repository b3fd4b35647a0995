package subscription

import (
	"time"

	ierr "github.com/flexprice/flexprice/internal/errors"
	"github.com/flexprice/flexprice/internal/types"
)

// SubscriptionStatus tracks a subscription's place in its lifecycle.
type SubscriptionStatus string

const (
	SubscriptionStatusActive   SubscriptionStatus = "active"
	SubscriptionStatusPaused   SubscriptionStatus = "paused"
	SubscriptionStatusCanceled SubscriptionStatus = "canceled"
)

func (s SubscriptionStatus) Validate() bool {
	switch s {
	case SubscriptionStatusActive, SubscriptionStatusPaused, SubscriptionStatusCanceled:
		return true
	default:
		return false
	}
}

// Subscription binds a customer to a plan and anchors the recurring
// billing period schedule. StartDate fixes the period anchor for the
// lifetime of the subscription; a billing frequency change on the plan
// does not retroactively move already-generated periods.
type Subscription struct {
	ID                 string             `db:"id" json:"id"`
	CustomerID         string             `db:"customer_id" json:"customer_id"`
	PlanID             string             `db:"plan_id" json:"plan_id"`
	Currency           string             `db:"currency" json:"currency"`
	SubscriptionStatus SubscriptionStatus `db:"subscription_status" json:"subscription_status"`
	StartDate          time.Time          `db:"start_date" json:"start_date"`
	EndDate            *time.Time         `db:"end_date" json:"end_date,omitempty"`
	CancelledAt        *time.Time         `db:"cancelled_at" json:"cancelled_at,omitempty"`
	CurrentPeriodID    *string            `db:"current_period_id" json:"current_period_id,omitempty"`
	types.BaseModel
}

// SubscriptionLineItem binds one of the plan's price components to this
// subscription. A price component may have an associated CommitmentTier
// (see internal/domain/commitment) looked up by SubscriptionID+MetricID,
// kept as a standalone entity rather than nested here since a commitment
// has its own validity window independent of the line item's.
type SubscriptionLineItem struct {
	ID               string     `db:"id" json:"id"`
	SubscriptionID   string     `db:"subscription_id" json:"subscription_id"`
	PriceComponentID string     `db:"price_component_id" json:"price_component_id"`
	EndDate          *time.Time `db:"end_date" json:"end_date,omitempty"`
	types.BaseModel
}

// SubscriptionPause records a hold on a subscription from PausedAt until
// the optional ResumedAt. It is a record only: billing periods are not
// regenerated around it and usage between PausedAt and ResumedAt is not
// excluded from invoices.
type SubscriptionPause struct {
	ID             string     `db:"id" json:"id"`
	SubscriptionID string     `db:"subscription_id" json:"subscription_id"`
	PausedAt       time.Time  `db:"paused_at" json:"paused_at"`
	ResumedAt      *time.Time `db:"resumed_at" json:"resumed_at,omitempty"`
	Reason         string     `db:"reason" json:"reason,omitempty"`
	types.BaseModel
}

// Validate enforces subscription-creation invariants.
func (s *Subscription) Validate() error {
	if s.CustomerID == "" {
		return ierr.NewError("customer_id is required").Mark(ierr.ErrValidation)
	}
	if s.PlanID == "" {
		return ierr.NewError("plan_id is required").Mark(ierr.ErrValidation)
	}
	if s.Currency == "" {
		return ierr.NewError("currency is required").Mark(ierr.ErrValidation)
	}
	if !s.SubscriptionStatus.Validate() {
		return ierr.NewError("invalid subscription status").
			WithReportableDetails(map[string]interface{}{"status": s.SubscriptionStatus}).
			Mark(ierr.ErrValidation)
	}
	if s.StartDate.IsZero() {
		return ierr.NewError("start_date is required").Mark(ierr.ErrValidation)
	}
	if s.EndDate != nil && !s.EndDate.After(s.StartDate) {
		return ierr.NewError("end_date must be after start_date").Mark(ierr.ErrValidation)
	}
	return nil
}

// IsActiveAt reports whether the subscription is billable at t: started,
// not yet ended, and not currently paused.
func (s *Subscription) IsActiveAt(t time.Time) bool {
	if s.SubscriptionStatus != SubscriptionStatusActive {
		return false
	}
	if s.StartDate.After(t) {
		return false
	}
	if s.EndDate != nil && !s.EndDate.After(t) {
		return false
	}
	return true
}

// NewSubscription constructs a subscription with a generated ID, anchored
// to startDate, defaulting to active.
func NewSubscription(customerID, planID, currency, tenantID, createdBy string, startDate time.Time) *Subscription {
	return &Subscription{
		ID:                 types.GenerateUUIDWithPrefix(types.UUIDPrefixSubscription),
		CustomerID:         customerID,
		PlanID:             planID,
		Currency:           currency,
		SubscriptionStatus: SubscriptionStatusActive,
		StartDate:          startDate,
		BaseModel: types.BaseModel{
			TenantID:  tenantID,
			CreatedBy: createdBy,
			UpdatedBy: createdBy,
			Status:    types.StatusActive,
		},
	}
}
