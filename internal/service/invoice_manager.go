package service

import (
	"context"
	"time"

	"github.com/flexprice/flexprice/internal/domain/invoice"
	ierr "github.com/flexprice/flexprice/internal/errors"
	"github.com/flexprice/flexprice/internal/logger"
	"github.com/flexprice/flexprice/internal/publisher"
	"github.com/flexprice/flexprice/internal/types"
	"github.com/shopspring/decimal"
)

// InvoiceManager drives an invoice through its lifecycle once the Invoice
// Assembler has produced it: finalization, voiding, payment-status updates,
// and draft-only line item edits. Grounded on the teacher's
// invoiceService.FinalizeInvoice/VoidInvoice/UpdatePaymentStatus
// (internal/service/invoice.go), generalized to the status model this
// domain package defines.
type InvoiceManager struct {
	invoices invoice.Repository
	events   publisher.DomainEventPublisher
	logger   *logger.Logger
}

func NewInvoiceManager(invoices invoice.Repository, events publisher.DomainEventPublisher, logger *logger.Logger) *InvoiceManager {
	return &InvoiceManager{invoices: invoices, events: events, logger: logger}
}

// Finalize transitions a draft invoice to finalized and fires
// billing.invoice_finalized (InvoiceAssembler.Generate also fires it for
// each newly assembled invoice). It is idempotent-unsafe by design (finalizing an already-finalized invoice is
// an error, not a no-op), matching the teacher's FinalizeInvoice.
func (m *InvoiceManager) Finalize(ctx context.Context, invoiceID, tenantID, updatedBy string) (*invoice.Invoice, error) {
	inv, err := m.invoices.Get(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if inv.InvoiceStatus != types.InvoiceStatusDraft {
		return nil, ierr.NewError("invoice is not in draft status").
			WithReportableDetails(map[string]interface{}{"invoice_id": invoiceID, "status": inv.InvoiceStatus}).
			Mark(ierr.ErrInvalidOperation)
	}

	now := time.Now().UTC()
	inv.InvoiceStatus = types.InvoiceStatusFinalized
	inv.FinalizedAt = &now
	inv.UpdatedBy = updatedBy
	inv.UpdatedAt = now

	if err := m.invoices.Update(ctx, inv); err != nil {
		return nil, err
	}

	m.events.Publish(ctx, publisher.TopicInvoiceFinalized, tenantID, invoiceFinalizedEvent{
		InvoiceID:  inv.ID,
		CustomerID: inv.CustomerID,
		AmountDue:  inv.AmountDue,
		Currency:   inv.Currency,
	})
	return inv, nil
}

// Void transitions any non-paid invoice to voided, appending reason to
// Notes. A paid invoice cannot be voided; issue a credit
// note instead (out of scope here — see SPEC_FULL.md non-goals).
func (m *InvoiceManager) Void(ctx context.Context, invoiceID, reason, tenantID, updatedBy string) (*invoice.Invoice, error) {
	inv, err := m.invoices.Get(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if inv.PaymentStatus == types.PaymentStatusPaid {
		return nil, ierr.NewError("invoice is already paid and cannot be voided").
			WithReportableDetails(map[string]interface{}{"invoice_id": invoiceID}).
			Mark(ierr.ErrInvalidOperation)
	}
	if inv.InvoiceStatus == types.InvoiceStatusVoided {
		return nil, ierr.NewError("invoice is already voided").
			WithReportableDetails(map[string]interface{}{"invoice_id": invoiceID}).
			Mark(ierr.ErrInvalidOperation)
	}

	now := time.Now().UTC()
	inv.InvoiceStatus = types.InvoiceStatusVoided
	inv.VoidedAt = &now
	inv.UpdatedBy = updatedBy
	inv.UpdatedAt = now
	if reason != "" {
		inv.Notes = appendNote(inv.Notes, "voided: "+reason)
	}

	if err := m.invoices.Update(ctx, inv); err != nil {
		return nil, err
	}

	m.events.Publish(ctx, publisher.TopicInvoiceVoided, tenantID, invoiceFinalizedEvent{
		InvoiceID:  inv.ID,
		CustomerID: inv.CustomerID,
		AmountDue:  inv.AmountDue,
		Currency:   inv.Currency,
	})
	return inv, nil
}

// UpdatePaymentStatus records a payment status transition, keeping
// AmountPaid/AmountRemaining/PaidAt consistent with the new status. Draft
// and finalized invoices are the only ones payable; a voided invoice cannot
// accept a payment status change.
func (m *InvoiceManager) UpdatePaymentStatus(ctx context.Context, invoiceID string, status types.PaymentStatus, amount *decimal.Decimal, updatedBy string) (*invoice.Invoice, error) {
	inv, err := m.invoices.Get(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if inv.InvoiceStatus == types.InvoiceStatusVoided {
		return nil, ierr.NewError("cannot change payment status of a voided invoice").
			WithReportableDetails(map[string]interface{}{"invoice_id": invoiceID}).
			Mark(ierr.ErrInvalidOperation)
	}
	if amount != nil && amount.IsNegative() {
		return nil, ierr.NewError("amount must be non-negative").Mark(ierr.ErrValidation)
	}

	now := time.Now().UTC()
	inv.PaymentStatus = status
	switch status {
	case types.PaymentStatusPending:
		if amount != nil {
			inv.AmountPaid = *amount
			inv.AmountRemaining = inv.AmountDue.Sub(*amount)
		}
	case types.PaymentStatusPaid:
		inv.AmountPaid = inv.AmountDue
		inv.AmountRemaining = decimal.Zero
		inv.PaidAt = &now
	case types.PaymentStatusFailed:
		inv.AmountPaid = decimal.Zero
		inv.AmountRemaining = inv.AmountDue
		inv.PaidAt = nil
	}
	inv.UpdatedBy = updatedBy
	inv.UpdatedAt = now

	if err := inv.Validate(); err != nil {
		return nil, err
	}
	if err := m.invoices.Update(ctx, inv); err != nil {
		return nil, err
	}
	return inv, nil
}

// AddLineItem appends a line item to a draft invoice and recalculates the
// running total. Only draft invoices may be edited directly; once
// finalized, corrections flow through credit notes or new invoices.
func (m *InvoiceManager) AddLineItem(ctx context.Context, invoiceID string, item *invoice.InvoiceLineItem) (*invoice.Invoice, error) {
	inv, err := m.invoices.Get(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if inv.InvoiceStatus != types.InvoiceStatusDraft {
		return nil, ierr.NewError("line items can only be added to a draft invoice").
			WithReportableDetails(map[string]interface{}{"invoice_id": invoiceID, "status": inv.InvoiceStatus}).
			Mark(ierr.ErrInvalidOperation)
	}

	item.ID = types.GenerateUUIDWithPrefix(types.UUIDPrefixInvoiceItem)
	item.InvoiceID = invoiceID
	if err := m.invoices.AddLineItems(ctx, invoiceID, []*invoice.InvoiceLineItem{item}); err != nil {
		return nil, err
	}

	inv.LineItems = append(inv.LineItems, item)
	inv.Recalculate()
	if err := m.invoices.Update(ctx, inv); err != nil {
		return nil, err
	}
	return inv, nil
}

// RemoveLineItem removes a line item from a draft invoice and
// recalculates the running total.
func (m *InvoiceManager) RemoveLineItem(ctx context.Context, invoiceID, itemID string) (*invoice.Invoice, error) {
	inv, err := m.invoices.Get(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if inv.InvoiceStatus != types.InvoiceStatusDraft {
		return nil, ierr.NewError("line items can only be removed from a draft invoice").
			WithReportableDetails(map[string]interface{}{"invoice_id": invoiceID, "status": inv.InvoiceStatus}).
			Mark(ierr.ErrInvalidOperation)
	}

	if err := m.invoices.RemoveLineItems(ctx, invoiceID, []string{itemID}); err != nil {
		return nil, err
	}

	remaining := inv.LineItems[:0]
	for _, it := range inv.LineItems {
		if it.ID != itemID {
			remaining = append(remaining, it)
		}
	}
	inv.LineItems = remaining
	inv.Recalculate()
	if err := m.invoices.Update(ctx, inv); err != nil {
		return nil, err
	}
	return inv, nil
}

func appendNote(existing, addition string) string {
	if existing == "" {
		return addition
	}
	return existing + "; " + addition
}
