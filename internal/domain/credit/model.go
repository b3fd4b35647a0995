package credit

import (
	"time"

	ierr "github.com/flexprice/flexprice/internal/errors"
	"github.com/flexprice/flexprice/internal/types"
	"github.com/shopspring/decimal"
)

// BalanceType classifies the source of a credit balance.
type BalanceType string

const (
	BalanceTypePrepaid     BalanceType = "prepaid"
	BalanceTypeRefund      BalanceType = "refund"
	BalanceTypePromotional BalanceType = "promotional"
	BalanceTypeAdjustment  BalanceType = "adjustment"
)

func (t BalanceType) Validate() bool {
	switch t {
	case BalanceTypePrepaid, BalanceTypeRefund, BalanceTypePromotional, BalanceTypeAdjustment:
		return true
	default:
		return false
	}
}

// BalanceStatus tracks the lifecycle of a credit balance independently of
// types.Status, which governs soft-deletion of the row itself.
type BalanceStatus string

const (
	BalanceStatusActive    BalanceStatus = "active"
	BalanceStatusExpired   BalanceStatus = "expired"
	BalanceStatusConsumed  BalanceStatus = "consumed"
	BalanceStatusCancelled BalanceStatus = "cancelled"
)

func (s BalanceStatus) Validate() bool {
	switch s {
	case BalanceStatusActive, BalanceStatusExpired, BalanceStatusConsumed, BalanceStatusCancelled:
		return true
	default:
		return false
	}
}

// Balance is a single grant of credit to a customer. RemainingAmount is
// drawn down by Transactions as invoices apply credit; it never goes
// negative and is never drawn down below zero by more than one invoice
// generation at a time because callers row-lock the balance for update.
type Balance struct {
	ID              string          `db:"id" json:"id"`
	CustomerID      string          `db:"customer_id" json:"customer_id"`
	Type            BalanceType     `db:"type" json:"type"`
	OriginalAmount  decimal.Decimal `db:"original_amount" json:"original_amount" swaggertype:"string"`
	RemainingAmount decimal.Decimal `db:"remaining_amount" json:"remaining_amount" swaggertype:"string"`
	Currency        string          `db:"currency" json:"currency"`
	BalanceStatus   BalanceStatus   `db:"balance_status" json:"balance_status"`
	ExpiresAt       *time.Time      `db:"expires_at" json:"expires_at,omitempty"`
	Description     string          `db:"description" json:"description,omitempty"`
	SubscriptionID  *string         `db:"subscription_id" json:"subscription_id,omitempty"`
	types.BaseModel
}

// Validate enforces the invariants a credit balance must satisfy before it
// can be persisted: non-negative amounts, a remaining amount that never
// exceeds the original grant, and a recognized type/status pair.
func (b *Balance) Validate() error {
	if b.CustomerID == "" {
		return ierr.NewError("customer_id is required").
			WithHint("A credit balance must belong to a customer").
			Mark(ierr.ErrValidation)
	}

	if !b.Type.Validate() {
		return ierr.NewError("invalid balance type").
			WithHint("Type must be one of prepaid, refund, promotional, adjustment").
			WithReportableDetails(map[string]interface{}{"type": b.Type}).
			Mark(ierr.ErrValidation)
	}

	if b.OriginalAmount.LessThanOrEqual(decimal.Zero) {
		return ierr.NewError("original_amount must be greater than zero").
			WithHint("Please provide a positive credit amount").
			Mark(ierr.ErrValidation)
	}

	if b.RemainingAmount.LessThan(decimal.Zero) {
		return ierr.NewError("remaining_amount cannot be negative").
			WithReportableDetails(map[string]interface{}{"remaining_amount": b.RemainingAmount}).
			Mark(ierr.ErrValidation)
	}

	if b.RemainingAmount.GreaterThan(b.OriginalAmount) {
		return ierr.NewError("remaining_amount cannot exceed original_amount").
			WithReportableDetails(map[string]interface{}{
				"remaining_amount": b.RemainingAmount,
				"original_amount":  b.OriginalAmount,
			}).
			Mark(ierr.ErrValidation)
	}

	if b.Currency == "" {
		return ierr.NewError("currency is required").
			Mark(ierr.ErrValidation)
	}

	if b.BalanceStatus != "" && !b.BalanceStatus.Validate() {
		return ierr.NewError("invalid balance status").
			WithReportableDetails(map[string]interface{}{"balance_status": b.BalanceStatus}).
			Mark(ierr.ErrValidation)
	}

	return nil
}

// IsUsable reports whether the balance can still be drawn down at asOf:
// it must be active, carry a positive remaining amount, and either have
// no expiry or an expiry strictly after asOf.
func (b *Balance) IsUsable(asOf time.Time) bool {
	if b.BalanceStatus != BalanceStatusActive {
		return false
	}
	if b.RemainingAmount.LessThanOrEqual(decimal.Zero) {
		return false
	}
	if b.ExpiresAt != nil && !b.ExpiresAt.After(asOf) {
		return false
	}
	return true
}

// Transaction is an immutable, append-only record of a draw-down or
// deposit applied to a Balance. Amount is negative for a draw-down and
// positive for a deposit/refund; the running balance is reconstructable
// by summing transactions, but RemainingAmount on Balance is kept
// denormalized for fast reads under row-lock.
type Transaction struct {
	ID         string          `db:"id" json:"id"`
	BalanceID  string          `db:"balance_id" json:"balance_id"`
	CustomerID string          `db:"customer_id" json:"customer_id"`
	Amount     decimal.Decimal `db:"amount" json:"amount" swaggertype:"string"`
	InvoiceID  *string         `db:"invoice_id" json:"invoice_id,omitempty"`
	Reason     string          `db:"reason" json:"reason,omitempty"`
	types.BaseModel
}

func (t *Transaction) Validate() error {
	if t.BalanceID == "" {
		return ierr.NewError("balance_id is required").Mark(ierr.ErrValidation)
	}
	if t.Amount.IsZero() {
		return ierr.NewError("amount cannot be zero").Mark(ierr.ErrValidation)
	}
	return nil
}
