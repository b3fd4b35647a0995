package service

import (
	"context"
	"time"

	"github.com/flexprice/flexprice/internal/domain/billingperiod"
	"github.com/flexprice/flexprice/internal/domain/customer"
	"github.com/flexprice/flexprice/internal/domain/invoice"
	"github.com/flexprice/flexprice/internal/domain/plan"
	"github.com/flexprice/flexprice/internal/domain/subscription"
	ierr "github.com/flexprice/flexprice/internal/errors"
	"github.com/flexprice/flexprice/internal/logger"
	"github.com/flexprice/flexprice/internal/publisher"
	"github.com/flexprice/flexprice/internal/types"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// invoiceFinalizedEvent is the payload published on publisher.TopicInvoiceFinalized.
type invoiceFinalizedEvent struct {
	InvoiceID      string          `json:"invoice_id"`
	CustomerID     string          `json:"customer_id"`
	SubscriptionID *string         `json:"subscription_id,omitempty"`
	AmountDue      decimal.Decimal `json:"amount_due"`
	Currency       string          `json:"currency"`
}

const defaultDueInDays = 30

// transactor is the subset of *postgres.DB the assembler needs: a single
// atomic unit of work. Kept as an interface (rather than a concrete
// *postgres.DB field) so tests can exercise the assembly logic against an
// in-memory transactor with no database involved.
type transactor interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// InvoiceAssembler builds and persists invoices by combining usage (via the
// Metric Registry and Pricing Evaluator), commitment minimums (via the
// Commitment Engine) and prepaid credit (via the Credit Engine) into a
// single atomic write. Grounded on the teacher's invoiceService.CreateInvoice
// orchestration in internal/service/invoice.go, generalized to the
// multi-component, commitment-aware billing window this system bills.
type InvoiceAssembler struct {
	db          transactor
	customers   customer.Repository
	plans       plan.Repository
	subs        subscription.Repository
	periods     billingperiod.Repository
	invoices    invoice.Repository
	metrics     *MetricRegistry
	pricing     *PricingEvaluator
	commitments *CommitmentEngine
	credits     *CreditEngine
	events      publisher.DomainEventPublisher
	logger      *logger.Logger
}

func NewInvoiceAssembler(
	db transactor,
	customers customer.Repository,
	plans plan.Repository,
	subs subscription.Repository,
	periods billingperiod.Repository,
	invoices invoice.Repository,
	metrics *MetricRegistry,
	pricing *PricingEvaluator,
	commitments *CommitmentEngine,
	credits *CreditEngine,
	events publisher.DomainEventPublisher,
	logger *logger.Logger,
) *InvoiceAssembler {
	return &InvoiceAssembler{
		db: db, customers: customers, plans: plans, subs: subs,
		periods: periods, invoices: invoices, metrics: metrics, pricing: pricing,
		commitments: commitments, credits: credits, events: events, logger: logger,
	}
}

// Generate assembles and commits one invoice covering [start, end] for
// customerID. When subscriptionID is nil the invoice covers every price
// component active on any of the customer's subscriptions during the
// window and never includes flat/subscription fees (those are only ever
// billed through a subscription's own billing period, per GenerateForPeriod).
func (a *InvoiceAssembler) Generate(ctx context.Context, customerID string, start, end time.Time, subscriptionID *string, tenantID, createdBy string) (*invoice.Invoice, error) {
	if !end.After(start) {
		return nil, ierr.NewError("end must be after start").Mark(ierr.ErrValidation)
	}

	if _, err := a.customers.Get(ctx, customerID); err != nil {
		return nil, err
	}

	subs, err := a.subscriptionsForWindow(ctx, customerID, start, end, subscriptionID)
	if err != nil {
		return nil, err
	}
	if len(subs) == 0 {
		return nil, ierr.NewError("no active subscription overlaps the requested window").
			WithReportableDetails(map[string]interface{}{"customer_id": customerID}).
			Mark(ierr.ErrInvalidOperation)
	}

	now := time.Now().UTC()
	inv := invoice.NewInvoice(customerID, subscriptionID, subs[0].Currency, start, end, now, defaultDueInDays, tenantID, createdBy)

	var allItems []*invoice.InvoiceLineItem
	for _, sub := range subs {
		items, err := a.assembleSubscriptionItems(ctx, sub, start, end, subscriptionID != nil, tenantID, createdBy)
		if err != nil {
			return nil, err
		}
		allItems = append(allItems, items...)
	}

	creditApplications, remaining, err := a.applyCredits(ctx, customerID, inv.ID, allItems, tenantID, createdBy)
	if err != nil {
		return nil, err
	}
	allItems = append(allItems, creditApplications...)
	inv.LineItems = allItems
	inv.Recalculate()
	_ = remaining

	if err := inv.Validate(); err != nil {
		return nil, err
	}

	if err := a.db.WithTx(ctx, func(ctx context.Context) error {
		if subscriptionID != nil {
			exists, err := a.invoices.ExistsForPeriod(ctx, *subscriptionID, start, end)
			if err != nil {
				return err
			}
			if exists {
				return ierr.NewError("an invoice already covers this billing period").
					WithReportableDetails(map[string]interface{}{"subscription_id": *subscriptionID}).
					Mark(ierr.ErrAlreadyExists)
			}
		}
		return a.invoices.CreateWithLineItems(ctx, inv)
	}); err != nil {
		return nil, err
	}

	a.events.Publish(ctx, publisher.TopicInvoiceFinalized, tenantID, invoiceFinalizedEvent{
		InvoiceID:      inv.ID,
		CustomerID:     inv.CustomerID,
		SubscriptionID: inv.SubscriptionID,
		AmountDue:      inv.AmountDue,
		Currency:       inv.Currency,
	})

	return inv, nil
}

// GenerateForPeriod bills exactly the subscription that owns bp, including
// its flat/subscription fees, for bp's window.
func (a *InvoiceAssembler) GenerateForPeriod(ctx context.Context, bp *billingperiod.BillingPeriod, tenantID, createdBy string) (*invoice.Invoice, error) {
	if bp.InvoiceID != nil {
		return nil, ierr.NewError("billing period already invoiced").
			WithReportableDetails(map[string]interface{}{"billing_period_id": bp.ID}).
			Mark(ierr.ErrAlreadyExists)
	}

	sub, err := a.subs.Get(ctx, bp.SubscriptionID)
	if err != nil {
		return nil, err
	}
	subID := sub.ID
	inv, err := a.Generate(ctx, sub.CustomerID, bp.Start, bp.End, &subID, tenantID, createdBy)
	if err != nil {
		return nil, err
	}

	inv.Notes = "Billing period " + bp.Start.UTC().Format("2006-01-02") + " to " + bp.End.UTC().Format("2006-01-02")
	if err := a.invoices.Update(ctx, inv); err != nil {
		a.logger.With(zap.String("invoice_id", inv.ID), zap.Error(err)).
			Error("failed to set billing-period-descriptive invoice notes")
	}

	bp.InvoiceID = &inv.ID
	if err := a.periods.Update(ctx, bp); err != nil {
		a.logger.With(zap.String("billing_period_id", bp.ID), zap.Error(err)).
			Error("failed to stamp billing period with its invoice id")
	}
	return inv, nil
}

// GenerateForRange assembles one invoice covering [start, end] for every
// customer with a subscription active at start (or just customerID, if
// given). Customers are selected from subscriptions only: a customer with
// usage in the range but no subscription active at start gets no invoice,
// and subscriptions that begin after start are not used to select
// customers. This is the date-range path: no flat or
// subscription fee is ever included here, since those belong exclusively
// to a subscription's own generated billing periods.
func (a *InvoiceAssembler) GenerateForRange(ctx context.Context, start, end time.Time, customerID *string, tenantID, createdBy string) ([]*invoice.Invoice, error) {
	active, err := a.subs.ListActiveAt(ctx, start)
	if err != nil {
		return nil, err
	}

	byCustomer := map[string]bool{}
	var customers []string
	for _, sub := range active {
		if customerID != nil && sub.CustomerID != *customerID {
			continue
		}
		if !byCustomer[sub.CustomerID] {
			byCustomer[sub.CustomerID] = true
			customers = append(customers, sub.CustomerID)
		}
	}

	var out []*invoice.Invoice
	for _, custID := range customers {
		inv, err := a.Generate(ctx, custID, start, end, nil, tenantID, createdBy)
		if err != nil {
			a.logger.With(zap.String("customer_id", custID), zap.Error(err)).
				Error("failed to generate range invoice for customer")
			continue
		}
		out = append(out, inv)
	}
	return out, nil
}

func (a *InvoiceAssembler) subscriptionsForWindow(ctx context.Context, customerID string, start, end time.Time, subscriptionID *string) ([]*subscription.Subscription, error) {
	if subscriptionID != nil {
		sub, err := a.subs.Get(ctx, *subscriptionID)
		if err != nil {
			return nil, err
		}
		if sub.CustomerID != customerID {
			return nil, ierr.NewError("subscription does not belong to customer").Mark(ierr.ErrValidation)
		}
		return []*subscription.Subscription{sub}, nil
	}

	all, err := a.subs.ListByCustomerID(ctx, customerID)
	if err != nil {
		return nil, err
	}
	var overlapping []*subscription.Subscription
	for _, sub := range all {
		if sub.StartDate.Before(end) && (sub.EndDate == nil || !sub.EndDate.Before(start)) {
			overlapping = append(overlapping, sub)
		}
	}
	return overlapping, nil
}

// assembleSubscriptionItems builds every line item this subscription
// contributes to the invoice: flat/subscription fees (only when billing a
// specific subscription's own period), commitment-aware usage charges for
// every other component, and any residual (unconsumed) commitment.
func (a *InvoiceAssembler) assembleSubscriptionItems(
	ctx context.Context,
	sub *subscription.Subscription,
	start, end time.Time,
	includeFlatFees bool,
	tenantID, createdBy string,
) ([]*invoice.InvoiceLineItem, error) {
	_, lineItems, err := a.subs.GetWithLineItems(ctx, sub.ID)
	if err != nil {
		return nil, err
	}

	var components []*plan.PriceComponent
	for _, li := range lineItems {
		if li.EndDate != nil && !li.EndDate.After(start) {
			continue
		}
		comp, err := a.plans.GetComponent(ctx, li.PriceComponentID)
		if err != nil {
			return nil, err
		}
		components = append(components, comp)
	}

	usageByMetric := map[string]decimal.Decimal{}
	for _, comp := range components {
		if comp.MetricID == "" {
			continue
		}
		if _, ok := usageByMetric[comp.MetricID]; ok {
			continue
		}
		q, err := a.metrics.Resolve(ctx, comp.MetricID, sub.CustomerID, start, end)
		if err != nil {
			return nil, err
		}
		usageByMetric[comp.MetricID] = q
	}

	var commitmentCharges []*CommitmentCharge
	if includeFlatFees {
		commitmentCharges, err = a.commitments.Evaluate(ctx, sub.ID, start, end, usageByMetric)
		if err != nil {
			return nil, err
		}
	}
	consumedMetrics := map[string]*CommitmentCharge{}
	for _, cc := range commitmentCharges {
		if cc.Applies {
			consumedMetrics[cc.Tier.MetricID] = cc
		}
	}

	var items []*invoice.InvoiceLineItem
	subID := sub.ID

	for _, comp := range components {
		if comp.Type == types.PricingTypeFlat || comp.Type == types.PricingTypeSubscription {
			if !includeFlatFees {
				continue
			}
			charge, unitPrice, desc := a.pricing.Evaluate(comp.Type, plan.PricingDetails(comp.Details), decimal.NewFromInt(1), comp.Currency, nil)
			items = append(items, newLineItem(subID, desc, nil, nil, unitPrice, charge, tenantID, createdBy))
			continue
		}

		quantity := usageByMetric[comp.MetricID]
		charge, unitPrice, desc := a.pricing.Evaluate(comp.Type, plan.PricingDetails(comp.Details), quantity, comp.Currency, nil)

		if cc, ok := consumedMetrics[comp.MetricID]; ok {
			if cc.CommittedCharge.GreaterThan(charge) {
				charge = cc.CommittedCharge
				desc = "committed minimum"
			}
			cc.Consumed = true
		}

		if !charge.GreaterThan(decimal.Zero) && !quantity.GreaterThan(decimal.Zero) {
			continue
		}

		metricID := comp.MetricID
		items = append(items, newLineItem(subID, desc, &metricID, &quantity, unitPrice, charge, tenantID, createdBy))
	}

	for _, cc := range commitmentCharges {
		if cc.Applies && !cc.Consumed {
			metricID := cc.Tier.MetricID
			items = append(items, newLineItem(subID, "committed minimum (no matching usage component)", &metricID, nil, cc.Tier.Rate, cc.CommittedCharge, tenantID, createdBy))
		}
	}

	return items, nil
}

func (a *InvoiceAssembler) applyCredits(ctx context.Context, customerID, invoiceID string, items []*invoice.InvoiceLineItem, tenantID, createdBy string) ([]*invoice.InvoiceLineItem, decimal.Decimal, error) {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Amount)
	}
	if !total.IsPositive() {
		return nil, decimal.Zero, nil
	}

	applications, remaining, err := a.credits.ApplyToInvoice(ctx, customerID, invoiceID, total, tenantID, createdBy)
	if err != nil {
		return nil, decimal.Zero, err
	}

	var creditItems []*invoice.InvoiceLineItem
	for _, app := range applications {
		creditItems = append(creditItems, newLineItem(
			"", "credit applied: "+app.Balance.Description, nil, nil, decimal.Zero, app.Amount.Neg(), tenantID, createdBy,
		))
	}
	return creditItems, remaining, nil
}

func newLineItem(subscriptionID, description string, metricID *string, quantity *decimal.Decimal, unitPrice, amount decimal.Decimal, tenantID, createdBy string) *invoice.InvoiceLineItem {
	item := &invoice.InvoiceLineItem{
		ID:          types.GenerateUUIDWithPrefix(types.UUIDPrefixInvoiceItem),
		Description: description,
		MetricID:    metricID,
		Quantity:    quantity,
		UnitPrice:   unitPrice,
		Amount:      amount,
		BaseModel: types.BaseModel{
			TenantID:  tenantID,
			CreatedBy: createdBy,
			UpdatedBy: createdBy,
			Status:    types.StatusActive,
		},
	}
	if subscriptionID != "" {
		item.SubscriptionID = &subscriptionID
	}
	return item
}
