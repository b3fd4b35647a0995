package postgres

import (
	"context"
	"time"

	"github.com/flexprice/flexprice/internal/domain/invoice"
	ierr "github.com/flexprice/flexprice/internal/errors"
	"github.com/flexprice/flexprice/internal/logger"
	"github.com/flexprice/flexprice/internal/postgres"
)

type invoiceRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewInvoiceRepository(db *postgres.DB, logger *logger.Logger) invoice.Repository {
	return &invoiceRepository{db: db, logger: logger}
}

const invoiceInsertQuery = `
	INSERT INTO invoices (
		id, invoice_number, customer_id, subscription_id, invoice_status, payment_status,
		currency, amount_due, amount_paid, amount_remaining, period_start, period_end,
		issue_date, due_date, paid_at, voided_at, finalized_at, notes,
		tenant_id, status, created_at, updated_at, created_by, updated_by
	) VALUES (
		:id, :invoice_number, :customer_id, :subscription_id, :invoice_status, :payment_status,
		:currency, :amount_due, :amount_paid, :amount_remaining, :period_start, :period_end,
		:issue_date, :due_date, :paid_at, :voided_at, :finalized_at, :notes,
		:tenant_id, :status, :created_at, :updated_at, :created_by, :updated_by
	)`

const lineItemsInsertQuery = `
	INSERT INTO invoice_line_items (
		id, invoice_id, description, metric_id, subscription_id, quantity, unit_price, amount,
		tenant_id, status, created_at, updated_at, created_by, updated_by
	) VALUES (
		:id, :invoice_id, :description, :metric_id, :subscription_id, :quantity, :unit_price, :amount,
		:tenant_id, :status, :created_at, :updated_at, :created_by, :updated_by
	)`

func (r *invoiceRepository) Create(ctx context.Context, inv *invoice.Invoice) error {
	_, err := r.db.GetNamedQuerier(ctx).NamedExecContext(ctx, invoiceInsertQuery, inv)
	if err != nil {
		return ierr.NewError("failed to create invoice").
			WithReportableDetails(map[string]interface{}{"error": err.Error()}).
			Mark(ierr.ErrSystemError)
	}
	return nil
}

func (r *invoiceRepository) Get(ctx context.Context, id string) (*invoice.Invoice, error) {
	var inv invoice.Invoice
	if err := r.db.GetNamedQuerier(ctx).GetContext(ctx, &inv, "SELECT * FROM invoices WHERE id = $1", id); err != nil {
		return nil, invoice.ErrInvoiceNotFound
	}
	var items []*invoice.InvoiceLineItem
	if err := r.db.GetNamedQuerier(ctx).SelectContext(ctx, &items,
		"SELECT * FROM invoice_line_items WHERE invoice_id = $1 AND status = 'active'", id); err != nil {
		return nil, err
	}
	inv.LineItems = items
	return &inv, nil
}

func (r *invoiceRepository) Update(ctx context.Context, inv *invoice.Invoice) error {
	query := `
		UPDATE invoices SET
			invoice_status = :invoice_status, payment_status = :payment_status,
			amount_paid = :amount_paid, amount_remaining = :amount_remaining,
			paid_at = :paid_at, voided_at = :voided_at, finalized_at = :finalized_at, notes = :notes,
			status = :status, updated_at = :updated_at, updated_by = :updated_by
		WHERE id = :id`
	_, err := r.db.GetNamedQuerier(ctx).NamedExecContext(ctx, query, inv)
	return err
}

func (r *invoiceRepository) List(ctx context.Context, customerID string, limit, offset int) ([]*invoice.Invoice, error) {
	var invoices []*invoice.Invoice
	err := r.db.GetNamedQuerier(ctx).SelectContext(ctx, &invoices,
		"SELECT * FROM invoices WHERE customer_id = $1 ORDER BY issue_date DESC LIMIT $2 OFFSET $3", customerID, limit, offset)
	return invoices, err
}

func (r *invoiceRepository) AddLineItems(ctx context.Context, invoiceID string, items []*invoice.InvoiceLineItem) error {
	return r.db.WithTx(ctx, func(ctx context.Context) error {
		for _, item := range items {
			item.InvoiceID = invoiceID
			if _, err := r.db.GetNamedQuerier(ctx).NamedExecContext(ctx, lineItemsInsertQuery, item); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *invoiceRepository) RemoveLineItems(ctx context.Context, invoiceID string, itemIDs []string) error {
	if len(itemIDs) == 0 {
		return nil
	}
	query, args, err := sqlxIn("UPDATE invoice_line_items SET status = 'deleted' WHERE invoice_id = ? AND id IN (?)", invoiceID, itemIDs)
	if err != nil {
		return err
	}
	_, err = r.db.GetNamedQuerier(ctx).ExecContext(ctx, query, args...)
	return err
}

func (r *invoiceRepository) CreateWithLineItems(ctx context.Context, inv *invoice.Invoice) error {
	return r.db.WithTx(ctx, func(ctx context.Context) error {
		if _, err := r.db.GetNamedQuerier(ctx).NamedExecContext(ctx, invoiceInsertQuery, inv); err != nil {
			return err
		}
		for _, item := range inv.LineItems {
			item.InvoiceID = inv.ID
			if _, err := r.db.GetNamedQuerier(ctx).NamedExecContext(ctx, lineItemsInsertQuery, item); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *invoiceRepository) ExistsForPeriod(ctx context.Context, subscriptionID string, periodStart, periodEnd time.Time) (bool, error) {
	var count int
	query := `
		SELECT COUNT(*) FROM invoices
		WHERE subscription_id = $1 AND period_start = $2 AND period_end = $3
		AND invoice_status != 'void'`
	err := r.db.GetNamedQuerier(ctx).GetContext(ctx, &count, query, subscriptionID, periodStart, periodEnd)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
