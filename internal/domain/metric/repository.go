package metric

import "context"

// Repository persists metric definitions.
type Repository interface {
	Create(ctx context.Context, m *Metric) error
	Get(ctx context.Context, id string) (*Metric, error)
	GetByName(ctx context.Context, name string) (*Metric, error)
	Update(ctx context.Context, m *Metric) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, limit, offset int) ([]*Metric, error)
	ListAll(ctx context.Context) ([]*Metric, error)
}
