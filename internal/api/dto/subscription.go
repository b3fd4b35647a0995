package dto

import (
	"time"

	"github.com/flexprice/flexprice/internal/domain/subscription"
)

// CreateSubscriptionRequest is the wire shape for
// POST /customers/{id}/subscriptions.
type CreateSubscriptionRequest struct {
	PlanID    string    `json:"plan_id" validate:"required"`
	Currency  string    `json:"currency" validate:"required"`
	StartDate time.Time `json:"start_date" validate:"required"`
}

func (r *CreateSubscriptionRequest) ToSubscription(customerID string) *subscription.Subscription {
	return &subscription.Subscription{
		CustomerID:         customerID,
		PlanID:             r.PlanID,
		Currency:           r.Currency,
		StartDate:          r.StartDate,
		SubscriptionStatus: subscription.SubscriptionStatusActive,
	}
}
