package service

import (
	"context"
	"testing"
	"time"

	"github.com/flexprice/flexprice/internal/domain/invoice"
	"github.com/flexprice/flexprice/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestInvoiceManager() (*InvoiceManager, *fakeInvoiceRepository, *fakeDomainEventPublisher) {
	invoices := &fakeInvoiceRepository{invoices: map[string]*invoice.Invoice{}}
	published := &fakeDomainEventPublisher{}
	return NewInvoiceManager(invoices, published, nopLogger()), invoices, published
}

func draftInvoice() *invoice.Invoice {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	return invoice.NewInvoice("cust_1", nil, "USD", now, now.AddDate(0, 1, 0), now, 30, "tenant_1", "system")
}

func TestInvoiceManager_FinalizeDraft(t *testing.T) {
	mgr, invoices, published := newTestInvoiceManager()
	inv := draftInvoice()
	invoices.invoices[inv.ID] = inv

	got, err := mgr.Finalize(context.Background(), inv.ID, "tenant_1", "alice")
	require.NoError(t, err)
	assert.Equal(t, types.InvoiceStatusFinalized, got.InvoiceStatus)
	assert.NotNil(t, got.FinalizedAt)
	assert.Equal(t, []string{"billing.invoice_finalized"}, published.published)
}

func TestInvoiceManager_FinalizeRejectsNonDraft(t *testing.T) {
	mgr, invoices, _ := newTestInvoiceManager()
	inv := draftInvoice()
	inv.InvoiceStatus = types.InvoiceStatusFinalized
	invoices.invoices[inv.ID] = inv

	_, err := mgr.Finalize(context.Background(), inv.ID, "tenant_1", "alice")
	assert.Error(t, err)
}

func TestInvoiceManager_VoidAppendsReasonAndRejectsPaid(t *testing.T) {
	mgr, invoices, published := newTestInvoiceManager()
	inv := draftInvoice()
	invoices.invoices[inv.ID] = inv

	got, err := mgr.Void(context.Background(), inv.ID, "duplicate billing run", "tenant_1", "alice")
	require.NoError(t, err)
	assert.Equal(t, types.InvoiceStatusVoided, got.InvoiceStatus)
	assert.Contains(t, got.Notes, "duplicate billing run")
	assert.Equal(t, []string{"billing.invoice_voided"}, published.published)

	paid := draftInvoice()
	paid.PaymentStatus = types.PaymentStatusPaid
	invoices.invoices[paid.ID] = paid
	_, err = mgr.Void(context.Background(), paid.ID, "oops", "tenant_1", "alice")
	assert.Error(t, err)
}

func TestInvoiceManager_UpdatePaymentStatusPaidZeroesRemaining(t *testing.T) {
	mgr, invoices, _ := newTestInvoiceManager()
	inv := draftInvoice()
	inv.AmountDue = dec("100")
	inv.AmountRemaining = dec("100")
	invoices.invoices[inv.ID] = inv

	got, err := mgr.UpdatePaymentStatus(context.Background(), inv.ID, types.PaymentStatusPaid, nil, "alice")
	require.NoError(t, err)
	assert.True(t, got.AmountPaid.Equal(dec("100")))
	assert.True(t, got.AmountRemaining.IsZero())
	assert.NotNil(t, got.PaidAt)
}

func TestInvoiceManager_AddAndRemoveLineItemOnDraftOnly(t *testing.T) {
	mgr, invoices, _ := newTestInvoiceManager()
	inv := draftInvoice()
	invoices.invoices[inv.ID] = inv

	got, err := mgr.AddLineItem(context.Background(), inv.ID, &invoice.InvoiceLineItem{
		Description: "manual adjustment",
		UnitPrice:   dec("15"),
		Amount:      dec("15"),
	})
	require.NoError(t, err)
	require.Len(t, got.LineItems, 1)
	assert.True(t, got.AmountDue.Equal(dec("15")))

	itemID := got.LineItems[0].ID
	got, err = mgr.RemoveLineItem(context.Background(), inv.ID, itemID)
	require.NoError(t, err)
	assert.Len(t, got.LineItems, 0)
	assert.True(t, got.AmountDue.IsZero())

	got.InvoiceStatus = types.InvoiceStatusFinalized
	invoices.invoices[got.ID] = got
	_, err = mgr.AddLineItem(context.Background(), got.ID, &invoice.InvoiceLineItem{Description: "too late", Amount: dec("1")})
	assert.Error(t, err)
}
