package postgres

import (
	"context"

	"github.com/flexprice/flexprice/internal/domain/plan"
	ierr "github.com/flexprice/flexprice/internal/errors"
	"github.com/flexprice/flexprice/internal/logger"
	"github.com/flexprice/flexprice/internal/postgres"
)

type planRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewPlanRepository(db *postgres.DB, logger *logger.Logger) plan.Repository {
	return &planRepository{db: db, logger: logger}
}

func (r *planRepository) Create(ctx context.Context, p *plan.Plan) error {
	query := `
		INSERT INTO plans (
			id, tenant_id, name, description, billing_frequency, active,
			status, created_at, updated_at, created_by, updated_by
		) VALUES (
			:id, :tenant_id, :name, :description, :billing_frequency, :active,
			:status, :created_at, :updated_at, :created_by, :updated_by
		)`
	_, err := r.db.GetNamedQuerier(ctx).NamedExecContext(ctx, query, p)
	if err != nil {
		return ierr.NewError("failed to create plan").
			WithReportableDetails(map[string]interface{}{"error": err.Error()}).
			Mark(ierr.ErrSystemError)
	}
	return nil
}

func (r *planRepository) Get(ctx context.Context, id string) (*plan.Plan, error) {
	var p plan.Plan
	if err := r.db.GetNamedQuerier(ctx).GetContext(ctx, &p, "SELECT * FROM plans WHERE id = $1", id); err != nil {
		return nil, plan.ErrPlanNotFound
	}
	return &p, nil
}

func (r *planRepository) Update(ctx context.Context, p *plan.Plan) error {
	query := `
		UPDATE plans SET
			name = :name, description = :description, billing_frequency = :billing_frequency,
			active = :active, status = :status, updated_at = :updated_at, updated_by = :updated_by
		WHERE id = :id`
	_, err := r.db.GetNamedQuerier(ctx).NamedExecContext(ctx, query, p)
	return err
}

func (r *planRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.GetNamedQuerier(ctx).ExecContext(ctx, "UPDATE plans SET status = 'deleted' WHERE id = $1", id)
	return err
}

func (r *planRepository) List(ctx context.Context, limit, offset int) ([]*plan.Plan, error) {
	var plans []*plan.Plan
	err := r.db.GetNamedQuerier(ctx).SelectContext(ctx, &plans,
		"SELECT * FROM plans WHERE status = 'active' ORDER BY created_at DESC LIMIT $1 OFFSET $2", limit, offset)
	return plans, err
}

func (r *planRepository) CreateComponent(ctx context.Context, c *plan.PriceComponent) error {
	query := `
		INSERT INTO price_components (
			id, plan_id, metric_id, type, currency, pricing_details,
			tenant_id, status, created_at, updated_at, created_by, updated_by
		) VALUES (
			:id, :plan_id, :metric_id, :type, :currency, :pricing_details,
			:tenant_id, :status, :created_at, :updated_at, :created_by, :updated_by
		)`
	_, err := r.db.GetNamedQuerier(ctx).NamedExecContext(ctx, query, c)
	if err != nil {
		return ierr.NewError("failed to create price component").
			WithReportableDetails(map[string]interface{}{"error": err.Error()}).
			Mark(ierr.ErrSystemError)
	}
	return nil
}

func (r *planRepository) GetComponent(ctx context.Context, id string) (*plan.PriceComponent, error) {
	var c plan.PriceComponent
	if err := r.db.GetNamedQuerier(ctx).GetContext(ctx, &c, "SELECT * FROM price_components WHERE id = $1", id); err != nil {
		return nil, plan.ErrComponentNotFound
	}
	return &c, nil
}

func (r *planRepository) UpdateComponent(ctx context.Context, c *plan.PriceComponent) error {
	query := `
		UPDATE price_components SET
			type = :type, currency = :currency, pricing_details = :pricing_details,
			status = :status, updated_at = :updated_at, updated_by = :updated_by
		WHERE id = :id`
	_, err := r.db.GetNamedQuerier(ctx).NamedExecContext(ctx, query, c)
	return err
}

func (r *planRepository) DeleteComponent(ctx context.Context, id string) error {
	_, err := r.db.GetNamedQuerier(ctx).ExecContext(ctx, "UPDATE price_components SET status = 'deleted' WHERE id = $1", id)
	return err
}

func (r *planRepository) ListComponentsByPlan(ctx context.Context, planID string) ([]*plan.PriceComponent, error) {
	var components []*plan.PriceComponent
	err := r.db.GetNamedQuerier(ctx).SelectContext(ctx, &components,
		"SELECT * FROM price_components WHERE plan_id = $1 AND status = 'active' ORDER BY created_at ASC", planID)
	return components, err
}
