package invoice

import (
	"context"
	"time"
)

// Repository persists invoices and their line items.
type Repository interface {
	Create(ctx context.Context, inv *Invoice) error
	Get(ctx context.Context, id string) (*Invoice, error)
	Update(ctx context.Context, inv *Invoice) error
	List(ctx context.Context, customerID string, limit, offset int) ([]*Invoice, error)

	AddLineItems(ctx context.Context, invoiceID string, items []*InvoiceLineItem) error
	RemoveLineItems(ctx context.Context, invoiceID string, itemIDs []string) error

	// CreateWithLineItems persists inv and its LineItems atomically.
	CreateWithLineItems(ctx context.Context, inv *Invoice) error

	// ExistsForPeriod reports whether a non-voided invoice already covers
	// this subscription's billing window, enforcing one invoice per period.
	ExistsForPeriod(ctx context.Context, subscriptionID string, periodStart, periodEnd time.Time) (bool, error)
}
