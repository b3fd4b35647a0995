package billingperiod

import (
	"context"
	"time"
)

// Repository persists billing periods.
type Repository interface {
	CreateBulk(ctx context.Context, periods []*BillingPeriod) error
	Get(ctx context.Context, id string) (*BillingPeriod, error)
	Update(ctx context.Context, p *BillingPeriod) error

	// FindContaining returns the billing period whose window contains t
	// for the given subscription, or nil if none matches.
	FindContaining(ctx context.Context, subscriptionID string, t time.Time) (*BillingPeriod, error)

	ListBySubscription(ctx context.Context, subscriptionID string) ([]*BillingPeriod, error)
}
