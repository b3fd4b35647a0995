package service

import (
	"context"
	"time"

	"github.com/flexprice/flexprice/internal/domain/credit"
	ierr "github.com/flexprice/flexprice/internal/errors"
	"github.com/flexprice/flexprice/internal/logger"
	"github.com/flexprice/flexprice/internal/types"
	"github.com/shopspring/decimal"
)

// CreditApplication is one balance's draw-down against an invoice, used by
// the Invoice Assembler to materialize negative line items.
type CreditApplication struct {
	Balance *credit.Balance
	Amount  decimal.Decimal
}

// CreditEngine grants, applies, and expires customer credit balances.
// Grounded on spec.md §4.8's ordered draw-down rule: every application,
// invoice-driven or manual, walks balances in the same expires_at
// ascending (nulls last), created_at ascending order.
type CreditEngine struct {
	repo   credit.Repository
	logger *logger.Logger
}

func NewCreditEngine(repo credit.Repository, logger *logger.Logger) *CreditEngine {
	return &CreditEngine{repo: repo, logger: logger}
}

// AddCredits grants a new balance and records the corresponding deposit
// transaction.
func (e *CreditEngine) AddCredits(
	ctx context.Context,
	customerID string,
	amount decimal.Decimal,
	balanceType credit.BalanceType,
	currency, description string,
	expiresInDays *int,
	subscriptionID *string,
	tenantID, createdBy string,
) (*credit.Balance, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, ierr.NewError("amount must be greater than zero").
			WithHint("Credit grants must be positive").
			Mark(ierr.ErrValidation)
	}

	var expiresAt *time.Time
	if expiresInDays != nil {
		t := time.Now().UTC().AddDate(0, 0, *expiresInDays)
		expiresAt = &t
	}

	balance := &credit.Balance{
		ID:              types.GenerateUUIDWithPrefix(types.UUIDPrefixCreditBalance),
		CustomerID:      customerID,
		Type:            balanceType,
		OriginalAmount:  amount,
		RemainingAmount: amount,
		Currency:        currency,
		BalanceStatus:   credit.BalanceStatusActive,
		ExpiresAt:       expiresAt,
		Description:     description,
		SubscriptionID:  subscriptionID,
		BaseModel: types.BaseModel{
			TenantID:  tenantID,
			CreatedBy: createdBy,
			UpdatedBy: createdBy,
			Status:    types.StatusActive,
		},
	}

	if err := balance.Validate(); err != nil {
		return nil, err
	}

	if err := e.repo.CreateBalance(ctx, balance); err != nil {
		return nil, err
	}

	tx := &credit.Transaction{
		ID:         types.GenerateUUIDWithPrefix(types.UUIDPrefixCreditTxn),
		BalanceID:  balance.ID,
		CustomerID: customerID,
		Amount:     amount,
		Reason:     "credit granted",
		BaseModel: types.BaseModel{
			TenantID:  tenantID,
			CreatedBy: createdBy,
			UpdatedBy: createdBy,
			Status:    types.StatusActive,
		},
	}
	if err := e.repo.CreateTransaction(ctx, tx); err != nil {
		return nil, err
	}

	return balance, nil
}

// AvailableBalance sums remaining_amount over the customer's active,
// non-expired balances.
func (e *CreditEngine) AvailableBalance(ctx context.Context, customerID string) (decimal.Decimal, error) {
	balances, err := e.repo.ListUsableByCustomer(ctx, customerID)
	if err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, b := range balances {
		total = total.Add(b.RemainingAmount)
	}
	return total, nil
}

// ApplyToInvoice draws down usable balances against invoiceRemaining in
// expires_at/created_at order, writing a negative transaction per balance
// touched (linked to invoiceID) and returning the applications the Invoice
// Assembler should turn into negative line items plus whatever remains
// unpaid by credit.
func (e *CreditEngine) ApplyToInvoice(ctx context.Context, customerID, invoiceID string, invoiceRemaining decimal.Decimal, tenantID, createdBy string) ([]CreditApplication, decimal.Decimal, error) {
	return e.apply(ctx, customerID, invoiceRemaining, &invoiceID, tenantID, createdBy)
}

// ApplyManual draws down usable balances outside of invoice assembly
// (e.g. a support-issued adjustment). It fails if the customer's
// available balance is less than requested, since there is no invoice
// remainder to partially satisfy.
func (e *CreditEngine) ApplyManual(ctx context.Context, customerID string, amount decimal.Decimal, tenantID, createdBy string) ([]CreditApplication, error) {
	available, err := e.AvailableBalance(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if available.LessThan(amount) {
		return nil, ierr.NewError("insufficient credit balance").
			WithReportableDetails(map[string]interface{}{"available": available.String(), "requested": amount.String()}).
			Mark(ierr.ErrInvalidOperation)
	}

	applications, remaining, err := e.apply(ctx, customerID, amount, nil, tenantID, createdBy)
	if err != nil {
		return nil, err
	}
	if !remaining.IsZero() {
		return nil, ierr.NewError("manual credit application left a remainder").
			WithReportableDetails(map[string]interface{}{"remaining": remaining.String()}).
			Mark(ierr.ErrSystemError)
	}
	return applications, nil
}

func (e *CreditEngine) apply(ctx context.Context, customerID string, amount decimal.Decimal, invoiceID *string, tenantID, createdBy string) ([]CreditApplication, decimal.Decimal, error) {
	remaining := amount
	var applications []CreditApplication

	balances, err := e.repo.ListUsableByCustomer(ctx, customerID)
	if err != nil {
		return nil, remaining, err
	}

	for _, balance := range balances {
		if remaining.LessThanOrEqual(decimal.Zero) {
			break
		}

		draw := decimal.Min(balance.RemainingAmount, remaining)
		balance.RemainingAmount = balance.RemainingAmount.Sub(draw)
		if balance.RemainingAmount.LessThanOrEqual(decimal.Zero) {
			balance.BalanceStatus = credit.BalanceStatusConsumed
		}

		if err := e.repo.UpdateBalance(ctx, balance); err != nil {
			return nil, remaining, err
		}

		tx := &credit.Transaction{
			ID:         types.GenerateUUIDWithPrefix(types.UUIDPrefixCreditTxn),
			BalanceID:  balance.ID,
			CustomerID: customerID,
			Amount:     draw.Neg(),
			InvoiceID:  invoiceID,
			Reason:     "credit applied",
			BaseModel: types.BaseModel{
				TenantID:  tenantID,
				CreatedBy: createdBy,
				UpdatedBy: createdBy,
				Status:    types.StatusActive,
			},
		}
		if err := e.repo.CreateTransaction(ctx, tx); err != nil {
			return nil, remaining, err
		}

		applications = append(applications, CreditApplication{Balance: balance, Amount: draw})
		remaining = remaining.Sub(draw)

		e.logger.Debugw("applied credit balance",
			"customer_id", customerID,
			"balance_id", balance.ID,
			"drawn", draw.String(),
			"remaining_after", balance.RemainingAmount.String())
	}

	if remaining.LessThan(decimal.Zero) {
		remaining = decimal.Zero
	}
	return applications, remaining, nil
}

// SweepExpired transitions active balances whose expiry has passed to
// expired, writing a negative transaction equal to whatever remained.
func (e *CreditEngine) SweepExpired(ctx context.Context, asOf time.Time, tenantID, createdBy string) (int, error) {
	balances, err := e.repo.ListExpiring(ctx, asOf)
	if err != nil {
		return 0, err
	}

	swept := 0
	for _, balance := range balances {
		if balance.RemainingAmount.GreaterThan(decimal.Zero) {
			tx := &credit.Transaction{
				ID:         types.GenerateUUIDWithPrefix(types.UUIDPrefixCreditTxn),
				BalanceID:  balance.ID,
				CustomerID: balance.CustomerID,
				Amount:     balance.RemainingAmount.Neg(),
				Reason:     "credit expired",
				BaseModel: types.BaseModel{
					TenantID:  tenantID,
					CreatedBy: createdBy,
					UpdatedBy: createdBy,
					Status:    types.StatusActive,
				},
			}
			if err := e.repo.CreateTransaction(ctx, tx); err != nil {
				return swept, err
			}
			balance.RemainingAmount = decimal.Zero
		}

		balance.BalanceStatus = credit.BalanceStatusExpired
		if err := e.repo.UpdateBalance(ctx, balance); err != nil {
			return swept, err
		}
		swept++
	}

	return swept, nil
}
