package postgres

import (
	"context"
	"time"

	"github.com/flexprice/flexprice/internal/domain/billingperiod"
	ierr "github.com/flexprice/flexprice/internal/errors"
	"github.com/flexprice/flexprice/internal/logger"
	"github.com/flexprice/flexprice/internal/postgres"
)

type billingPeriodRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewBillingPeriodRepository(db *postgres.DB, logger *logger.Logger) billingperiod.Repository {
	return &billingPeriodRepository{db: db, logger: logger}
}

func (r *billingPeriodRepository) CreateBulk(ctx context.Context, periods []*billingperiod.BillingPeriod) error {
	query := `
		INSERT INTO billing_periods (
			id, subscription_id, start, "end", invoice_id,
			tenant_id, status, created_at, updated_at, created_by, updated_by
		) VALUES (
			:id, :subscription_id, :start, :end, :invoice_id,
			:tenant_id, :status, :created_at, :updated_at, :created_by, :updated_by
		)`
	return r.db.WithTx(ctx, func(ctx context.Context) error {
		for _, p := range periods {
			if _, err := r.db.GetNamedQuerier(ctx).NamedExecContext(ctx, query, p); err != nil {
				return ierr.NewError("failed to create billing period").
					WithReportableDetails(map[string]interface{}{"error": err.Error()}).
					Mark(ierr.ErrSystemError)
			}
		}
		return nil
	})
}

func (r *billingPeriodRepository) Get(ctx context.Context, id string) (*billingperiod.BillingPeriod, error) {
	var p billingperiod.BillingPeriod
	if err := r.db.GetNamedQuerier(ctx).GetContext(ctx, &p, `SELECT * FROM billing_periods WHERE id = $1`, id); err != nil {
		return nil, billingperiod.ErrBillingPeriodNotFound
	}
	return &p, nil
}

func (r *billingPeriodRepository) Update(ctx context.Context, p *billingperiod.BillingPeriod) error {
	query := `
		UPDATE billing_periods SET
			invoice_id = :invoice_id, status = :status, updated_at = :updated_at, updated_by = :updated_by
		WHERE id = :id`
	_, err := r.db.GetNamedQuerier(ctx).NamedExecContext(ctx, query, p)
	return err
}

func (r *billingPeriodRepository) FindContaining(ctx context.Context, subscriptionID string, t time.Time) (*billingperiod.BillingPeriod, error) {
	var p billingperiod.BillingPeriod
	query := `
		SELECT * FROM billing_periods
		WHERE subscription_id = $1 AND start <= $2 AND "end" >= $2
		ORDER BY start ASC LIMIT 1`
	err := r.db.GetNamedQuerier(ctx).GetContext(ctx, &p, query, subscriptionID, t)
	if err != nil {
		return nil, nil
	}
	return &p, nil
}

func (r *billingPeriodRepository) ListBySubscription(ctx context.Context, subscriptionID string) ([]*billingperiod.BillingPeriod, error) {
	var periods []*billingperiod.BillingPeriod
	err := r.db.GetNamedQuerier(ctx).SelectContext(ctx, &periods,
		`SELECT * FROM billing_periods WHERE subscription_id = $1 ORDER BY start ASC`, subscriptionID)
	return periods, err
}
