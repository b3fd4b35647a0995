package postgres

import (
	"context"
	"time"

	"github.com/flexprice/flexprice/internal/domain/credit"
	ierr "github.com/flexprice/flexprice/internal/errors"
	"github.com/flexprice/flexprice/internal/logger"
	"github.com/flexprice/flexprice/internal/postgres"
)

type creditRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewCreditRepository(db *postgres.DB, logger *logger.Logger) credit.Repository {
	return &creditRepository{db: db, logger: logger}
}

func (r *creditRepository) CreateBalance(ctx context.Context, balance *credit.Balance) error {
	query := `
		INSERT INTO credit_balances (
			id, customer_id, type, original_amount, remaining_amount, currency, balance_status,
			expires_at, description, subscription_id,
			tenant_id, status, created_at, updated_at, created_by, updated_by
		) VALUES (
			:id, :customer_id, :type, :original_amount, :remaining_amount, :currency, :balance_status,
			:expires_at, :description, :subscription_id,
			:tenant_id, :status, :created_at, :updated_at, :created_by, :updated_by
		)`
	_, err := r.db.GetNamedQuerier(ctx).NamedExecContext(ctx, query, balance)
	if err != nil {
		return ierr.NewError("failed to create credit balance").
			WithReportableDetails(map[string]interface{}{"error": err.Error()}).
			Mark(ierr.ErrSystemError)
	}
	return nil
}

func (r *creditRepository) GetBalance(ctx context.Context, id string) (*credit.Balance, error) {
	var b credit.Balance
	if err := r.db.GetNamedQuerier(ctx).GetContext(ctx, &b, "SELECT * FROM credit_balances WHERE id = $1", id); err != nil {
		return nil, credit.ErrBalanceNotFound
	}
	return &b, nil
}

func (r *creditRepository) UpdateBalance(ctx context.Context, balance *credit.Balance) error {
	query := `
		UPDATE credit_balances SET
			remaining_amount = :remaining_amount, balance_status = :balance_status,
			status = :status, updated_at = :updated_at, updated_by = :updated_by
		WHERE id = :id`
	_, err := r.db.GetNamedQuerier(ctx).NamedExecContext(ctx, query, balance)
	return err
}

// ListUsableByCustomer orders candidate balances expires_at ASC with NULLs
// last, then created_at ASC, and row-locks them FOR UPDATE so concurrent
// invoice generations serialize their draw-downs against the same customer.
func (r *creditRepository) ListUsableByCustomer(ctx context.Context, customerID string) ([]*credit.Balance, error) {
	var balances []*credit.Balance
	query := `
		SELECT * FROM credit_balances
		WHERE customer_id = $1 AND balance_status = 'active' AND remaining_amount > 0
			AND (expires_at IS NULL OR expires_at > NOW())
		ORDER BY expires_at ASC NULLS LAST, created_at ASC
		FOR UPDATE`
	err := r.db.GetNamedQuerier(ctx).SelectContext(ctx, &balances, query, customerID)
	return balances, err
}

func (r *creditRepository) ListExpiring(ctx context.Context, asOf time.Time) ([]*credit.Balance, error) {
	var balances []*credit.Balance
	query := `
		SELECT * FROM credit_balances
		WHERE balance_status = 'active' AND expires_at IS NOT NULL AND expires_at <= $1`
	err := r.db.GetNamedQuerier(ctx).SelectContext(ctx, &balances, query, asOf)
	return balances, err
}

func (r *creditRepository) CreateTransaction(ctx context.Context, tx *credit.Transaction) error {
	query := `
		INSERT INTO credit_transactions (
			id, balance_id, customer_id, amount, invoice_id, reason,
			tenant_id, status, created_at, updated_at, created_by, updated_by
		) VALUES (
			:id, :balance_id, :customer_id, :amount, :invoice_id, :reason,
			:tenant_id, :status, :created_at, :updated_at, :created_by, :updated_by
		)`
	_, err := r.db.GetNamedQuerier(ctx).NamedExecContext(ctx, query, tx)
	return err
}

func (r *creditRepository) ListTransactionsByBalance(ctx context.Context, balanceID string) ([]*credit.Transaction, error) {
	var txs []*credit.Transaction
	err := r.db.GetNamedQuerier(ctx).SelectContext(ctx, &txs,
		"SELECT * FROM credit_transactions WHERE balance_id = $1 ORDER BY created_at ASC", balanceID)
	return txs, err
}

func (r *creditRepository) ListTransactionsByCustomer(ctx context.Context, customerID string) ([]*credit.Transaction, error) {
	var txs []*credit.Transaction
	err := r.db.GetNamedQuerier(ctx).SelectContext(ctx, &txs,
		"SELECT * FROM credit_transactions WHERE customer_id = $1 ORDER BY created_at DESC", customerID)
	return txs, err
}
