package dto

import (
	"time"

	"github.com/flexprice/flexprice/internal/domain/invoice"
	"github.com/flexprice/flexprice/internal/types"
	"github.com/shopspring/decimal"
)

// CreateInvoiceRequest is the wire shape for POST /invoices: a manual,
// one-off invoice, created empty or with line items up front (spec.md §6.1).
type CreateInvoiceRequest struct {
	CustomerID     string                     `json:"customer_id" validate:"required"`
	SubscriptionID *string                    `json:"subscription_id,omitempty"`
	Currency       string                     `json:"currency" validate:"required"`
	PeriodStart    time.Time                  `json:"period_start" validate:"required"`
	PeriodEnd      time.Time                  `json:"period_end" validate:"required"`
	DueDate        *time.Time                 `json:"due_date,omitempty"`
	Notes          string                     `json:"notes,omitempty"`
	Items          []CreateInvoiceItemRequest `json:"items,omitempty"`
}

type CreateInvoiceItemRequest struct {
	Description string           `json:"description" validate:"required"`
	MetricID    *string          `json:"metric_id,omitempty"`
	Quantity    *decimal.Decimal `json:"quantity,omitempty"`
	UnitPrice   decimal.Decimal  `json:"unit_price"`
	Amount      decimal.Decimal  `json:"amount" validate:"required"`
}

func (r *CreateInvoiceRequest) ToInvoice(paymentTermDays int) *invoice.Invoice {
	dueDate := r.PeriodEnd.AddDate(0, 0, paymentTermDays)
	if r.DueDate != nil {
		dueDate = *r.DueDate
	}

	inv := &invoice.Invoice{
		CustomerID:      r.CustomerID,
		SubscriptionID:  r.SubscriptionID,
		InvoiceStatus:   types.InvoiceStatusDraft,
		PaymentStatus:   types.PaymentStatusPending,
		Currency:        r.Currency,
		AmountDue:       decimal.Zero,
		AmountPaid:      decimal.Zero,
		AmountRemaining: decimal.Zero,
		PeriodStart:     r.PeriodStart,
		PeriodEnd:       r.PeriodEnd,
		IssueDate:       time.Now().UTC(),
		DueDate:         dueDate,
		Notes:           r.Notes,
	}

	total := decimal.Zero
	for _, item := range r.Items {
		inv.LineItems = append(inv.LineItems, &invoice.InvoiceLineItem{
			Description: item.Description,
			MetricID:    item.MetricID,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Amount:      item.Amount,
		})
		total = total.Add(item.Amount)
	}
	inv.AmountDue = total
	inv.AmountRemaining = total
	return inv
}

// AddLineItemRequest is the wire shape for POST /invoices/{id}/items.
type AddLineItemRequest struct {
	Description string           `json:"description" validate:"required"`
	MetricID    *string          `json:"metric_id,omitempty"`
	Quantity    *decimal.Decimal `json:"quantity,omitempty"`
	UnitPrice   decimal.Decimal  `json:"unit_price"`
	Amount      decimal.Decimal  `json:"amount" validate:"required"`
}

func (r *AddLineItemRequest) ToLineItem(invoiceID string) *invoice.InvoiceLineItem {
	return &invoice.InvoiceLineItem{
		InvoiceID:   invoiceID,
		Description: r.Description,
		MetricID:    r.MetricID,
		Quantity:    r.Quantity,
		UnitPrice:   r.UnitPrice,
		Amount:      r.Amount,
	}
}

// UpdatePaymentStatusRequest is the wire shape for PUT /invoices/{id}/payment.
type UpdatePaymentStatusRequest struct {
	Status types.PaymentStatus `json:"status" validate:"required"`
	Amount *decimal.Decimal    `json:"amount,omitempty"`
}

// GenerateInvoicesRequest is the wire shape for POST /invoices/generate.
type GenerateInvoicesRequest struct {
	StartDate  *time.Time `json:"start_date"`
	EndDate    *time.Time `json:"end_date"`
	CustomerID *string    `json:"customer_id,omitempty"`
}
