package commitment

import "context"

// Repository persists commitment tiers.
type Repository interface {
	Create(ctx context.Context, t *Tier) error
	Get(ctx context.Context, id string) (*Tier, error)
	Update(ctx context.Context, t *Tier) error
	ListBySubscription(ctx context.Context, subscriptionID string) ([]*Tier, error)
	GetForMetric(ctx context.Context, subscriptionID, metricID string) (*Tier, error)
}
