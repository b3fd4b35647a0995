package plan

import "context"

// Repository persists plans and their price components.
type Repository interface {
	Create(ctx context.Context, p *Plan) error
	Get(ctx context.Context, id string) (*Plan, error)
	Update(ctx context.Context, p *Plan) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, limit, offset int) ([]*Plan, error)

	CreateComponent(ctx context.Context, c *PriceComponent) error
	GetComponent(ctx context.Context, id string) (*PriceComponent, error)
	UpdateComponent(ctx context.Context, c *PriceComponent) error
	DeleteComponent(ctx context.Context, id string) error
	ListComponentsByPlan(ctx context.Context, planID string) ([]*PriceComponent, error)
}
