package postgres

import (
	"context"
	"time"

	"github.com/flexprice/flexprice/internal/domain/subscription"
	ierr "github.com/flexprice/flexprice/internal/errors"
	"github.com/flexprice/flexprice/internal/logger"
	"github.com/flexprice/flexprice/internal/postgres"
)

type subscriptionRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewSubscriptionRepository(db *postgres.DB, logger *logger.Logger) subscription.Repository {
	return &subscriptionRepository{db: db, logger: logger}
}

func (r *subscriptionRepository) Create(ctx context.Context, sub *subscription.Subscription) error {
	_, err := r.db.GetNamedQuerier(ctx).NamedExecContext(ctx, subscriptionInsertQuery, sub)
	if err != nil {
		return ierr.NewError("failed to create subscription").
			WithReportableDetails(map[string]interface{}{"error": err.Error()}).
			Mark(ierr.ErrSystemError)
	}
	return nil
}

func (r *subscriptionRepository) Get(ctx context.Context, id string) (*subscription.Subscription, error) {
	var sub subscription.Subscription
	if err := r.db.GetNamedQuerier(ctx).GetContext(ctx, &sub, "SELECT * FROM subscriptions WHERE id = $1", id); err != nil {
		return nil, subscription.ErrSubscriptionNotFound
	}
	return &sub, nil
}

func (r *subscriptionRepository) Update(ctx context.Context, sub *subscription.Subscription) error {
	query := `
		UPDATE subscriptions SET
			subscription_status = :subscription_status, end_date = :end_date, cancelled_at = :cancelled_at,
			current_period_id = :current_period_id, status = :status, updated_at = :updated_at, updated_by = :updated_by
		WHERE id = :id`
	_, err := r.db.GetNamedQuerier(ctx).NamedExecContext(ctx, query, sub)
	return err
}

func (r *subscriptionRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.GetNamedQuerier(ctx).ExecContext(ctx, "UPDATE subscriptions SET status = 'deleted' WHERE id = $1", id)
	return err
}

func (r *subscriptionRepository) List(ctx context.Context, limit, offset int) ([]*subscription.Subscription, error) {
	var subs []*subscription.Subscription
	err := r.db.GetNamedQuerier(ctx).SelectContext(ctx, &subs,
		"SELECT * FROM subscriptions WHERE status = 'active' ORDER BY created_at DESC LIMIT $1 OFFSET $2", limit, offset)
	return subs, err
}

func (r *subscriptionRepository) ListByCustomerID(ctx context.Context, customerID string) ([]*subscription.Subscription, error) {
	var subs []*subscription.Subscription
	err := r.db.GetNamedQuerier(ctx).SelectContext(ctx, &subs,
		"SELECT * FROM subscriptions WHERE customer_id = $1 AND status = 'active' ORDER BY created_at DESC", customerID)
	return subs, err
}

func (r *subscriptionRepository) ListActiveAt(ctx context.Context, asOf time.Time) ([]*subscription.Subscription, error) {
	var subs []*subscription.Subscription
	query := `
		SELECT * FROM subscriptions
		WHERE status = 'active' AND subscription_status = 'active'
		AND start_date <= $1 AND (end_date IS NULL OR end_date > $1)`
	err := r.db.GetNamedQuerier(ctx).SelectContext(ctx, &subs, query, asOf)
	return subs, err
}

func (r *subscriptionRepository) CreateWithLineItems(ctx context.Context, sub *subscription.Subscription, items []*subscription.SubscriptionLineItem) error {
	return r.db.WithTx(ctx, func(ctx context.Context) error {
		if _, err := r.db.GetNamedQuerier(ctx).NamedExecContext(ctx, subscriptionInsertQuery, sub); err != nil {
			return err
		}
		for _, item := range items {
			if _, err := r.db.GetNamedQuerier(ctx).NamedExecContext(ctx, lineItemInsertQuery, item); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *subscriptionRepository) GetWithLineItems(ctx context.Context, id string) (*subscription.Subscription, []*subscription.SubscriptionLineItem, error) {
	sub, err := r.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	var items []*subscription.SubscriptionLineItem
	err = r.db.GetNamedQuerier(ctx).SelectContext(ctx, &items,
		"SELECT * FROM subscription_line_items WHERE subscription_id = $1 AND status = 'active'", id)
	if err != nil {
		return nil, nil, err
	}
	return sub, items, nil
}

func (r *subscriptionRepository) CreatePause(ctx context.Context, pause *subscription.SubscriptionPause) error {
	query := `
		INSERT INTO subscription_pauses (
			id, subscription_id, paused_at, resumed_at, reason,
			tenant_id, status, created_at, updated_at, created_by, updated_by
		) VALUES (
			:id, :subscription_id, :paused_at, :resumed_at, :reason,
			:tenant_id, :status, :created_at, :updated_at, :created_by, :updated_by
		)`
	_, err := r.db.GetNamedQuerier(ctx).NamedExecContext(ctx, query, pause)
	return err
}

func (r *subscriptionRepository) ListPauses(ctx context.Context, subscriptionID string) ([]*subscription.SubscriptionPause, error) {
	var pauses []*subscription.SubscriptionPause
	err := r.db.GetNamedQuerier(ctx).SelectContext(ctx, &pauses,
		"SELECT * FROM subscription_pauses WHERE subscription_id = $1 ORDER BY paused_at ASC", subscriptionID)
	return pauses, err
}

const subscriptionInsertQuery = `
	INSERT INTO subscriptions (
		id, customer_id, plan_id, currency, subscription_status, start_date, end_date,
		cancelled_at, current_period_id, tenant_id, status, created_at, updated_at, created_by, updated_by
	) VALUES (
		:id, :customer_id, :plan_id, :currency, :subscription_status, :start_date, :end_date,
		:cancelled_at, :current_period_id, :tenant_id, :status, :created_at, :updated_at, :created_by, :updated_by
	)`

// lineItemRepository is the standalone subscription.LineItemRepository,
// used by callers that operate on line items independently of the
// subscription record (e.g. adding a component mid-cycle).
type lineItemRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewLineItemRepository(db *postgres.DB, logger *logger.Logger) subscription.LineItemRepository {
	return &lineItemRepository{db: db, logger: logger}
}

func (r *lineItemRepository) Create(ctx context.Context, item *subscription.SubscriptionLineItem) error {
	_, err := r.db.GetNamedQuerier(ctx).NamedExecContext(ctx, lineItemInsertQuery, item)
	return err
}

func (r *lineItemRepository) CreateBulk(ctx context.Context, items []*subscription.SubscriptionLineItem) error {
	return r.db.WithTx(ctx, func(ctx context.Context) error {
		for _, item := range items {
			if _, err := r.db.GetNamedQuerier(ctx).NamedExecContext(ctx, lineItemInsertQuery, item); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *lineItemRepository) Get(ctx context.Context, id string) (*subscription.SubscriptionLineItem, error) {
	var item subscription.SubscriptionLineItem
	if err := r.db.GetNamedQuerier(ctx).GetContext(ctx, &item, "SELECT * FROM subscription_line_items WHERE id = $1", id); err != nil {
		return nil, subscription.ErrLineItemNotFound
	}
	return &item, nil
}

func (r *lineItemRepository) Update(ctx context.Context, item *subscription.SubscriptionLineItem) error {
	query := `
		UPDATE subscription_line_items SET
			end_date = :end_date, status = :status, updated_at = :updated_at, updated_by = :updated_by
		WHERE id = :id`
	_, err := r.db.GetNamedQuerier(ctx).NamedExecContext(ctx, query, item)
	return err
}

func (r *lineItemRepository) DeleteBulk(ctx context.Context, ids []string, effectiveFrom time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	query, args, err := sqlxIn("UPDATE subscription_line_items SET end_date = ? WHERE id IN (?)", effectiveFrom, ids)
	if err != nil {
		return err
	}
	_, err = r.db.GetNamedQuerier(ctx).ExecContext(ctx, query, args...)
	return err
}

func (r *lineItemRepository) ListBySubscription(ctx context.Context, subscriptionID string) ([]*subscription.SubscriptionLineItem, error) {
	var items []*subscription.SubscriptionLineItem
	err := r.db.GetNamedQuerier(ctx).SelectContext(ctx, &items,
		"SELECT * FROM subscription_line_items WHERE subscription_id = $1 AND status = 'active'", subscriptionID)
	return items, err
}

const lineItemInsertQuery = `
	INSERT INTO subscription_line_items (
		id, subscription_id, price_component_id, end_date,
		tenant_id, status, created_at, updated_at, created_by, updated_by
	) VALUES (
		:id, :subscription_id, :price_component_id, :end_date,
		:tenant_id, :status, :created_at, :updated_at, :created_by, :updated_by
	)`
