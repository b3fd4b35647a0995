package postgres

import (
	"context"

	"github.com/flexprice/flexprice/internal/domain/metric"
	ierr "github.com/flexprice/flexprice/internal/errors"
	"github.com/flexprice/flexprice/internal/logger"
	"github.com/flexprice/flexprice/internal/postgres"
)

type metricRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewMetricRepository(db *postgres.DB, logger *logger.Logger) metric.Repository {
	return &metricRepository{db: db, logger: logger}
}

func (r *metricRepository) Create(ctx context.Context, m *metric.Metric) error {
	query := `
		INSERT INTO metrics (
			id, tenant_id, name, display_name, unit, kind, event_name,
			aggregation, formula, filters, status, created_at, updated_at, created_by, updated_by
		) VALUES (
			:id, :tenant_id, :name, :display_name, :unit, :kind, :event_name,
			:aggregation, :formula, :filters, :status, :created_at, :updated_at, :created_by, :updated_by
		)`
	_, err := r.db.GetNamedQuerier(ctx).NamedExecContext(ctx, query, m)
	if err != nil {
		return ierr.NewError("failed to create metric").
			WithReportableDetails(map[string]interface{}{"error": err.Error()}).
			Mark(ierr.ErrSystemError)
	}
	return nil
}

func (r *metricRepository) Get(ctx context.Context, id string) (*metric.Metric, error) {
	var m metric.Metric
	if err := r.db.GetNamedQuerier(ctx).GetContext(ctx, &m, "SELECT * FROM metrics WHERE id = $1", id); err != nil {
		return nil, metric.ErrMetricNotFound
	}
	return &m, nil
}

func (r *metricRepository) GetByName(ctx context.Context, name string) (*metric.Metric, error) {
	var m metric.Metric
	if err := r.db.GetNamedQuerier(ctx).GetContext(ctx, &m, "SELECT * FROM metrics WHERE name = $1", name); err != nil {
		return nil, metric.ErrMetricNotFound
	}
	return &m, nil
}

func (r *metricRepository) Update(ctx context.Context, m *metric.Metric) error {
	query := `
		UPDATE metrics SET
			display_name = :display_name, unit = :unit, kind = :kind, event_name = :event_name,
			aggregation = :aggregation, formula = :formula, filters = :filters,
			status = :status, updated_at = :updated_at, updated_by = :updated_by
		WHERE id = :id`
	_, err := r.db.GetNamedQuerier(ctx).NamedExecContext(ctx, query, m)
	return err
}

func (r *metricRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.GetNamedQuerier(ctx).ExecContext(ctx, "UPDATE metrics SET status = 'deleted' WHERE id = $1", id)
	return err
}

func (r *metricRepository) List(ctx context.Context, limit, offset int) ([]*metric.Metric, error) {
	var metrics []*metric.Metric
	err := r.db.GetNamedQuerier(ctx).SelectContext(ctx, &metrics,
		"SELECT * FROM metrics WHERE status = 'active' ORDER BY created_at DESC LIMIT $1 OFFSET $2", limit, offset)
	return metrics, err
}

func (r *metricRepository) ListAll(ctx context.Context) ([]*metric.Metric, error) {
	var metrics []*metric.Metric
	err := r.db.GetNamedQuerier(ctx).SelectContext(ctx, &metrics, "SELECT * FROM metrics WHERE status = 'active'")
	return metrics, err
}
