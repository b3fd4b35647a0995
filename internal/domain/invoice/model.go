package invoice

import (
	"time"

	ierr "github.com/flexprice/flexprice/internal/errors"
	"github.com/flexprice/flexprice/internal/types"
	"github.com/shopspring/decimal"
)

// Invoice is a customer's billable statement for one billing period (or an
// ad hoc date range). It is always constructed, committed, or rolled back
// as a whole: partially-populated invoices are never persisted.
type Invoice struct {
	ID              string              `db:"id" json:"id"`
	InvoiceNumber   string              `db:"invoice_number" json:"invoice_number"`
	CustomerID      string              `db:"customer_id" json:"customer_id"`
	SubscriptionID  *string             `db:"subscription_id" json:"subscription_id,omitempty"`
	InvoiceStatus   types.InvoiceStatus `db:"invoice_status" json:"invoice_status"`
	PaymentStatus   types.PaymentStatus `db:"payment_status" json:"payment_status"`
	Currency        string              `db:"currency" json:"currency"`
	AmountDue       decimal.Decimal     `db:"amount_due" json:"amount_due" swaggertype:"string"`
	AmountPaid      decimal.Decimal     `db:"amount_paid" json:"amount_paid" swaggertype:"string"`
	AmountRemaining decimal.Decimal     `db:"amount_remaining" json:"amount_remaining" swaggertype:"string"`
	PeriodStart     time.Time           `db:"period_start" json:"period_start"`
	PeriodEnd       time.Time           `db:"period_end" json:"period_end"`
	IssueDate       time.Time           `db:"issue_date" json:"issue_date"`
	DueDate         time.Time           `db:"due_date" json:"due_date"`
	PaidAt          *time.Time          `db:"paid_at" json:"paid_at,omitempty"`
	VoidedAt        *time.Time          `db:"voided_at" json:"voided_at,omitempty"`
	FinalizedAt     *time.Time          `db:"finalized_at" json:"finalized_at,omitempty"`
	Notes           string              `db:"notes" json:"notes,omitempty"`
	LineItems       []*InvoiceLineItem  `db:"-" json:"line_items,omitempty"`
	types.BaseModel
}

// InvoiceLineItem is one charge (or, with a negative Amount, one credit
// application) on an invoice. MetricID and Quantity are nil/zero for
// flat/subscription and credit-application items.
type InvoiceLineItem struct {
	ID             string           `db:"id" json:"id"`
	InvoiceID      string           `db:"invoice_id" json:"invoice_id"`
	Description    string           `db:"description" json:"description"`
	MetricID       *string          `db:"metric_id" json:"metric_id,omitempty"`
	SubscriptionID *string          `db:"subscription_id" json:"subscription_id,omitempty"`
	Quantity       *decimal.Decimal `db:"quantity" json:"quantity,omitempty" swaggertype:"string"`
	UnitPrice      decimal.Decimal  `db:"unit_price" json:"unit_price" swaggertype:"string"`
	Amount         decimal.Decimal  `db:"amount" json:"amount" swaggertype:"string"`
	types.BaseModel
}

// Validate enforces invariants that must hold regardless of which
// assembly step produced the invoice.
func (inv *Invoice) Validate() error {
	if inv.CustomerID == "" {
		return ierr.NewError("customer_id is required").Mark(ierr.ErrValidation)
	}
	if inv.Currency == "" {
		return ierr.NewError("currency is required").Mark(ierr.ErrValidation)
	}
	if !inv.InvoiceStatus.Validate() {
		return ierr.NewError("invalid invoice status").
			WithReportableDetails(map[string]interface{}{"status": inv.InvoiceStatus}).
			Mark(ierr.ErrValidation)
	}
	if !inv.PeriodEnd.After(inv.PeriodStart) {
		return ierr.NewError("period_end must be after period_start").Mark(ierr.ErrValidation)
	}
	if !inv.AmountRemaining.Equal(inv.AmountDue.Sub(inv.AmountPaid)) {
		return ierr.NewError("amount_remaining must equal amount_due minus amount_paid").
			Mark(ierr.ErrValidation)
	}
	return nil
}

// Recalculate sums LineItems into AmountDue and refreshes AmountRemaining.
// Credit-application items carry a negative Amount, so they net out of the
// total automatically.
func (inv *Invoice) Recalculate() {
	total := decimal.Zero
	for _, item := range inv.LineItems {
		total = total.Add(item.Amount)
	}
	if total.IsNegative() {
		total = decimal.Zero
	}
	inv.AmountDue = total
	inv.AmountRemaining = inv.AmountDue.Sub(inv.AmountPaid)
}

// InvoiceNumber formats the unique, human-legible invoice number: spec's
// "INV-<YYYYMMDDHHMMSS>-<customer_id>-<YYYYMMDD of start>" format.
func InvoiceNumber(now time.Time, customerID string, periodStart time.Time) string {
	return "INV-" + now.UTC().Format("20060102150405") + "-" + customerID + "-" + periodStart.UTC().Format("20060102")
}

// NewInvoice constructs a draft invoice pinned to a billing window.
func NewInvoice(customerID string, subscriptionID *string, currency string, periodStart, periodEnd, now time.Time, dueInDays int, tenantID, createdBy string) *Invoice {
	return &Invoice{
		ID:              types.GenerateUUIDWithPrefix(types.UUIDPrefixInvoice),
		InvoiceNumber:   InvoiceNumber(now, customerID, periodStart),
		CustomerID:      customerID,
		SubscriptionID:  subscriptionID,
		InvoiceStatus:   types.InvoiceStatusDraft,
		PaymentStatus:   types.PaymentStatusPending,
		Currency:        currency,
		AmountDue:       decimal.Zero,
		AmountPaid:      decimal.Zero,
		AmountRemaining: decimal.Zero,
		PeriodStart:     periodStart,
		PeriodEnd:       periodEnd,
		IssueDate:       now,
		DueDate:         now.AddDate(0, 0, dueInDays),
		BaseModel: types.BaseModel{
			TenantID:  tenantID,
			CreatedBy: createdBy,
			UpdatedBy: createdBy,
			Status:    types.StatusActive,
		},
	}
}
