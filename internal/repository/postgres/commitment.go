package postgres

import (
	"context"

	"github.com/flexprice/flexprice/internal/domain/commitment"
	ierr "github.com/flexprice/flexprice/internal/errors"
	"github.com/flexprice/flexprice/internal/logger"
	"github.com/flexprice/flexprice/internal/postgres"
)

type commitmentRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewCommitmentRepository(db *postgres.DB, logger *logger.Logger) commitment.Repository {
	return &commitmentRepository{db: db, logger: logger}
}

func (r *commitmentRepository) Create(ctx context.Context, t *commitment.Tier) error {
	query := `
		INSERT INTO commitment_tiers (
			id, subscription_id, metric_id, committed_amount, rate, overage_rate, start, "end",
			tenant_id, status, created_at, updated_at, created_by, updated_by
		) VALUES (
			:id, :subscription_id, :metric_id, :committed_amount, :rate, :overage_rate, :start, :end,
			:tenant_id, :status, :created_at, :updated_at, :created_by, :updated_by
		)`
	_, err := r.db.GetNamedQuerier(ctx).NamedExecContext(ctx, query, t)
	if err != nil {
		return ierr.NewError("failed to create commitment tier").
			WithReportableDetails(map[string]interface{}{"error": err.Error()}).
			Mark(ierr.ErrSystemError)
	}
	return nil
}

func (r *commitmentRepository) Get(ctx context.Context, id string) (*commitment.Tier, error) {
	var t commitment.Tier
	if err := r.db.GetNamedQuerier(ctx).GetContext(ctx, &t, "SELECT * FROM commitment_tiers WHERE id = $1", id); err != nil {
		return nil, commitment.ErrTierNotFound
	}
	return &t, nil
}

func (r *commitmentRepository) Update(ctx context.Context, t *commitment.Tier) error {
	query := `
		UPDATE commitment_tiers SET
			committed_amount = :committed_amount, rate = :rate, overage_rate = :overage_rate, "end" = :end,
			status = :status, updated_at = :updated_at, updated_by = :updated_by
		WHERE id = :id`
	_, err := r.db.GetNamedQuerier(ctx).NamedExecContext(ctx, query, t)
	return err
}

func (r *commitmentRepository) ListBySubscription(ctx context.Context, subscriptionID string) ([]*commitment.Tier, error) {
	var tiers []*commitment.Tier
	err := r.db.GetNamedQuerier(ctx).SelectContext(ctx, &tiers,
		`SELECT * FROM commitment_tiers WHERE subscription_id = $1 AND status = 'active'`, subscriptionID)
	return tiers, err
}

func (r *commitmentRepository) GetForMetric(ctx context.Context, subscriptionID, metricID string) (*commitment.Tier, error) {
	var t commitment.Tier
	query := `
		SELECT * FROM commitment_tiers
		WHERE subscription_id = $1 AND metric_id = $2 AND status = 'active'
		ORDER BY start DESC LIMIT 1`
	if err := r.db.GetNamedQuerier(ctx).GetContext(ctx, &t, query, subscriptionID, metricID); err != nil {
		return nil, commitment.ErrTierNotFound
	}
	return &t, nil
}
