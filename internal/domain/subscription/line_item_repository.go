package subscription

import (
	"context"
	"time"
)

// LineItemRepository persists the price components a subscription has
// committed to, independent of the subscription's own record.
type LineItemRepository interface {
	Create(ctx context.Context, lineItem *SubscriptionLineItem) error
	CreateBulk(ctx context.Context, lineItems []*SubscriptionLineItem) error
	Get(ctx context.Context, id string) (*SubscriptionLineItem, error)
	Update(ctx context.Context, lineItem *SubscriptionLineItem) error

	// DeleteBulk soft-deletes line items by setting EndDate to effectiveFrom
	// rather than removing their billing history.
	DeleteBulk(ctx context.Context, ids []string, effectiveFrom time.Time) error

	ListBySubscription(ctx context.Context, subscriptionID string) ([]*SubscriptionLineItem, error)
}
