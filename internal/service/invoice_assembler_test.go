package service

import (
	"context"
	"testing"
	"time"

	"github.com/flexprice/flexprice/internal/domain/billingperiod"
	"github.com/flexprice/flexprice/internal/domain/commitment"
	"github.com/flexprice/flexprice/internal/domain/credit"
	"github.com/flexprice/flexprice/internal/domain/customer"
	"github.com/flexprice/flexprice/internal/domain/events"
	"github.com/flexprice/flexprice/internal/domain/invoice"
	"github.com/flexprice/flexprice/internal/domain/metric"
	"github.com/flexprice/flexprice/internal/domain/plan"
	"github.com/flexprice/flexprice/internal/domain/subscription"
	"github.com/flexprice/flexprice/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- fakes --------------------------------------------------------------

type fakeCustomerRepository struct {
	customers map[string]*customer.Customer
}

func (f *fakeCustomerRepository) Create(_ context.Context, c *customer.Customer) error {
	f.customers[c.ID] = c
	return nil
}
func (f *fakeCustomerRepository) Get(_ context.Context, id string) (*customer.Customer, error) {
	if c, ok := f.customers[id]; ok {
		return c, nil
	}
	return nil, ierrNotFound("customer")
}
func (f *fakeCustomerRepository) GetByExternalID(_ context.Context, externalID string) (*customer.Customer, error) {
	for _, c := range f.customers {
		if c.ExternalID == externalID {
			return c, nil
		}
	}
	return nil, ierrNotFound("customer")
}
func (f *fakeCustomerRepository) Update(_ context.Context, c *customer.Customer) error {
	f.customers[c.ID] = c
	return nil
}
func (f *fakeCustomerRepository) Delete(_ context.Context, id string) error {
	delete(f.customers, id)
	return nil
}
func (f *fakeCustomerRepository) List(_ context.Context, limit, offset int) ([]*customer.Customer, error) {
	return nil, nil
}

type fakePlanRepository struct {
	components map[string]*plan.PriceComponent
}

func (f *fakePlanRepository) Create(_ context.Context, p *plan.Plan) error        { return nil }
func (f *fakePlanRepository) Get(_ context.Context, id string) (*plan.Plan, error) { return nil, nil }
func (f *fakePlanRepository) Update(_ context.Context, p *plan.Plan) error        { return nil }
func (f *fakePlanRepository) Delete(_ context.Context, id string) error           { return nil }
func (f *fakePlanRepository) List(_ context.Context, limit, offset int) ([]*plan.Plan, error) {
	return nil, nil
}
func (f *fakePlanRepository) CreateComponent(_ context.Context, c *plan.PriceComponent) error {
	f.components[c.ID] = c
	return nil
}
func (f *fakePlanRepository) GetComponent(_ context.Context, id string) (*plan.PriceComponent, error) {
	if c, ok := f.components[id]; ok {
		return c, nil
	}
	return nil, ierrNotFound("price_component")
}
func (f *fakePlanRepository) UpdateComponent(_ context.Context, c *plan.PriceComponent) error {
	f.components[c.ID] = c
	return nil
}
func (f *fakePlanRepository) DeleteComponent(_ context.Context, id string) error { return nil }
func (f *fakePlanRepository) ListComponentsByPlan(_ context.Context, planID string) ([]*plan.PriceComponent, error) {
	var out []*plan.PriceComponent
	for _, c := range f.components {
		if c.PlanID == planID {
			out = append(out, c)
		}
	}
	return out, nil
}

type fakeSubscriptionRepository struct {
	subs      map[string]*subscription.Subscription
	lineItems map[string][]*subscription.SubscriptionLineItem
}

func (f *fakeSubscriptionRepository) Create(_ context.Context, s *subscription.Subscription) error {
	f.subs[s.ID] = s
	return nil
}
func (f *fakeSubscriptionRepository) Get(_ context.Context, id string) (*subscription.Subscription, error) {
	if s, ok := f.subs[id]; ok {
		return s, nil
	}
	return nil, ierrNotFound("subscription")
}
func (f *fakeSubscriptionRepository) Update(_ context.Context, s *subscription.Subscription) error {
	f.subs[s.ID] = s
	return nil
}
func (f *fakeSubscriptionRepository) Delete(_ context.Context, id string) error { return nil }
func (f *fakeSubscriptionRepository) List(_ context.Context, limit, offset int) ([]*subscription.Subscription, error) {
	return nil, nil
}
func (f *fakeSubscriptionRepository) ListByCustomerID(_ context.Context, customerID string) ([]*subscription.Subscription, error) {
	var out []*subscription.Subscription
	for _, s := range f.subs {
		if s.CustomerID == customerID {
			out = append(out, s)
		}
	}
	return out, nil
}
func (f *fakeSubscriptionRepository) ListActiveAt(_ context.Context, asOf time.Time) ([]*subscription.Subscription, error) {
	var out []*subscription.Subscription
	for _, s := range f.subs {
		if s.IsActiveAt(asOf) {
			out = append(out, s)
		}
	}
	return out, nil
}
func (f *fakeSubscriptionRepository) CreateWithLineItems(_ context.Context, s *subscription.Subscription, items []*subscription.SubscriptionLineItem) error {
	f.subs[s.ID] = s
	f.lineItems[s.ID] = items
	return nil
}
func (f *fakeSubscriptionRepository) GetWithLineItems(_ context.Context, id string) (*subscription.Subscription, []*subscription.SubscriptionLineItem, error) {
	s, ok := f.subs[id]
	if !ok {
		return nil, nil, ierrNotFound("subscription")
	}
	return s, f.lineItems[id], nil
}
func (f *fakeSubscriptionRepository) CreatePause(_ context.Context, p *subscription.SubscriptionPause) error {
	return nil
}
func (f *fakeSubscriptionRepository) ListPauses(_ context.Context, subscriptionID string) ([]*subscription.SubscriptionPause, error) {
	return nil, nil
}

type fakeBillingPeriodRepository struct{}

func (f *fakeBillingPeriodRepository) CreateBulk(_ context.Context, periods []*billingperiod.BillingPeriod) error {
	return nil
}
func (f *fakeBillingPeriodRepository) Get(_ context.Context, id string) (*billingperiod.BillingPeriod, error) {
	return nil, nil
}
func (f *fakeBillingPeriodRepository) Update(_ context.Context, p *billingperiod.BillingPeriod) error {
	return nil
}
func (f *fakeBillingPeriodRepository) FindContaining(_ context.Context, subscriptionID string, t time.Time) (*billingperiod.BillingPeriod, error) {
	return nil, nil
}
func (f *fakeBillingPeriodRepository) ListBySubscription(_ context.Context, subscriptionID string) ([]*billingperiod.BillingPeriod, error) {
	return nil, nil
}

type fakeInvoiceRepository struct {
	invoices map[string]*invoice.Invoice
}

func (f *fakeInvoiceRepository) Create(_ context.Context, inv *invoice.Invoice) error {
	f.invoices[inv.ID] = inv
	return nil
}
func (f *fakeInvoiceRepository) Get(_ context.Context, id string) (*invoice.Invoice, error) {
	return f.invoices[id], nil
}
func (f *fakeInvoiceRepository) Update(_ context.Context, inv *invoice.Invoice) error {
	f.invoices[inv.ID] = inv
	return nil
}
func (f *fakeInvoiceRepository) List(_ context.Context, customerID string, limit, offset int) ([]*invoice.Invoice, error) {
	return nil, nil
}
func (f *fakeInvoiceRepository) AddLineItems(_ context.Context, invoiceID string, items []*invoice.InvoiceLineItem) error {
	return nil
}
func (f *fakeInvoiceRepository) RemoveLineItems(_ context.Context, invoiceID string, itemIDs []string) error {
	return nil
}
func (f *fakeInvoiceRepository) CreateWithLineItems(_ context.Context, inv *invoice.Invoice) error {
	f.invoices[inv.ID] = inv
	return nil
}
func (f *fakeInvoiceRepository) ExistsForPeriod(_ context.Context, subscriptionID string, periodStart, periodEnd time.Time) (bool, error) {
	for _, inv := range f.invoices {
		if inv.SubscriptionID != nil && *inv.SubscriptionID == subscriptionID &&
			inv.PeriodStart.Equal(periodStart) && inv.PeriodEnd.Equal(periodEnd) &&
			inv.InvoiceStatus != types.InvoiceStatusVoided {
			return true, nil
		}
	}
	return false, nil
}

type fakeMetricRepository struct {
	byID   map[string]*metric.Metric
	byName map[string]*metric.Metric
}

func (f *fakeMetricRepository) Create(_ context.Context, m *metric.Metric) error { return nil }
func (f *fakeMetricRepository) Get(_ context.Context, id string) (*metric.Metric, error) {
	if m, ok := f.byID[id]; ok {
		return m, nil
	}
	return nil, ierrNotFound("metric")
}
func (f *fakeMetricRepository) GetByName(_ context.Context, name string) (*metric.Metric, error) {
	if m, ok := f.byName[name]; ok {
		return m, nil
	}
	return nil, ierrNotFound("metric")
}
func (f *fakeMetricRepository) Update(_ context.Context, m *metric.Metric) error { return nil }
func (f *fakeMetricRepository) Delete(_ context.Context, id string) error       { return nil }
func (f *fakeMetricRepository) List(_ context.Context, limit, offset int) ([]*metric.Metric, error) {
	return nil, nil
}
func (f *fakeMetricRepository) ListAll(_ context.Context) ([]*metric.Metric, error) { return nil, nil }

type fakeEventsRepository struct {
	usageByEventName map[string]decimal.Decimal
}

func (f *fakeEventsRepository) InsertEvent(_ context.Context, event *events.Event) error { return nil }
func (f *fakeEventsRepository) BulkInsertEvents(_ context.Context, evs []*events.Event) error {
	return nil
}
func (f *fakeEventsRepository) GetUsage(_ context.Context, params *events.UsageParams) (*events.AggregationResult, error) {
	return &events.AggregationResult{Value: f.usageByEventName[params.EventName], EventName: params.EventName}, nil
}
func (f *fakeEventsRepository) GetUsageWithFilters(_ context.Context, params *events.UsageWithFiltersParams) ([]*events.AggregationResult, error) {
	return nil, nil
}
func (f *fakeEventsRepository) GetEvents(_ context.Context, params *events.GetEventsParams) ([]*events.Event, uint64, error) {
	return nil, 0, nil
}

type fakeDomainEventPublisher struct {
	published []string
}

func (f *fakeDomainEventPublisher) Publish(_ context.Context, topic string, tenantID string, payload interface{}) {
	f.published = append(f.published, topic)
}

func ierrNotFound(entity string) error {
	return assert.AnError
}

// fakeTransactor runs the wrapped function inline, with no real transaction,
// so assembler tests can exercise Generate without a database.
type fakeTransactor struct{}

func (fakeTransactor) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// --- harness --------------------------------------------------------------

type assemblerHarness struct {
	assembler  *InvoiceAssembler
	customers  *fakeCustomerRepository
	plans      *fakePlanRepository
	subs       *fakeSubscriptionRepository
	invoices   *fakeInvoiceRepository
	metricRepo *fakeMetricRepository
	eventsRepo *fakeEventsRepository
	creditRepo *fakeCreditRepository
	commitRepo *fakeCommitmentRepository
	published  *fakeDomainEventPublisher
}

func newAssemblerHarness() *assemblerHarness {
	customers := &fakeCustomerRepository{customers: map[string]*customer.Customer{}}
	plans := &fakePlanRepository{components: map[string]*plan.PriceComponent{}}
	subs := &fakeSubscriptionRepository{subs: map[string]*subscription.Subscription{}, lineItems: map[string][]*subscription.SubscriptionLineItem{}}
	invoices := &fakeInvoiceRepository{invoices: map[string]*invoice.Invoice{}}
	metricRepo := &fakeMetricRepository{byID: map[string]*metric.Metric{}, byName: map[string]*metric.Metric{}}
	eventsRepo := &fakeEventsRepository{usageByEventName: map[string]decimal.Decimal{}}
	creditRepo := newFakeCreditRepository()
	commitRepo := &fakeCommitmentRepository{}
	published := &fakeDomainEventPublisher{}

	registry := NewMetricRegistry(metricRepo, eventsRepo, nil, nopLogger())
	pricing := NewPricingEvaluator()
	commitEngine := NewCommitmentEngine(commitRepo, nopLogger())
	creditEngine := NewCreditEngine(creditRepo, nopLogger())

	assembler := NewInvoiceAssembler(fakeTransactor{}, customers, plans, subs, &fakeBillingPeriodRepository{}, invoices,
		registry, pricing, commitEngine, creditEngine, published, nopLogger())

	return &assemblerHarness{
		assembler: assembler, customers: customers, plans: plans, subs: subs, invoices: invoices,
		metricRepo: metricRepo, eventsRepo: eventsRepo, creditRepo: creditRepo, commitRepo: commitRepo,
		published: published,
	}
}

func (h *assemblerHarness) addMetric(id, name, eventName string) *metric.Metric {
	m := &metric.Metric{ID: id, Name: name, EventName: eventName, Kind: types.MetricKindCounter,
		Aggregation: metric.Aggregation{Type: types.AggregationSum, Field: "value"}}
	h.metricRepo.byID[id] = m
	h.metricRepo.byName[name] = m
	return m
}

func (h *assemblerHarness) addComponent(planID, metricID string, pt types.PricingType, currency string, details plan.PricingDetails) *plan.PriceComponent {
	c := plan.NewPriceComponent(planID, metricID, pt, currency, details, "t1", "u1")
	h.plans.components[c.ID] = c
	return c
}

// --- tests ------------------------------------------------------------

func TestInvoiceAssembler_FlatFeePlusTieredUsage(t *testing.T) {
	h := newAssemblerHarness()
	ctx := context.Background()

	h.customers.customers["cust_1"] = &customer.Customer{ID: "cust_1", ExternalID: "ext_1"}

	m := h.addMetric("metric_1", "api_calls", "api.request")
	h.eventsRepo.usageByEventName["api.request"] = dec("1500")

	flatComp := h.addComponent("plan_1", "", types.PricingTypeFlat, "usd", plan.PricingDetails{Amount: decPtr("29")})
	tieredComp := h.addComponent("plan_1", m.ID, types.PricingTypeTiered, "usd", plan.PricingDetails{
		Tiers: []plan.Tier{
			{Start: 0, End: uptr(1000), Price: dec("0.10")},
			{Start: 1000, End: nil, Price: dec("0.05")},
		},
	})

	sub := subscription.NewSubscription("cust_1", "plan_1", "usd", "t1", "u1", time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	h.subs.subs[sub.ID] = sub
	h.subs.lineItems[sub.ID] = []*subscription.SubscriptionLineItem{
		{ID: "li_1", SubscriptionID: sub.ID, PriceComponentID: flatComp.ID},
		{ID: "li_2", SubscriptionID: sub.ID, PriceComponentID: tieredComp.ID},
	}

	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	subID := sub.ID

	inv, err := h.assembler.Generate(ctx, "cust_1", start, end, &subID, "t1", "u1")
	require.NoError(t, err)

	// flat: 29; tiered: 1000*0.10 + 500*0.05 = 100+25 = 125; total 154
	assert.True(t, inv.AmountDue.Equal(dec("154")), "got %s", inv.AmountDue)
}

func TestInvoiceAssembler_CommitmentOverridesUsage(t *testing.T) {
	h := newAssemblerHarness()
	ctx := context.Background()

	h.customers.customers["cust_1"] = &customer.Customer{ID: "cust_1", ExternalID: "ext_1"}
	m := h.addMetric("metric_1", "gb_processed", "data.processed")
	h.eventsRepo.usageByEventName["data.processed"] = dec("100")

	comp := h.addComponent("plan_1", m.ID, types.PricingTypeTiered, "usd", plan.PricingDetails{
		Tiers: []plan.Tier{{Start: 0, End: nil, Price: dec("0.10")}},
	})

	sub := subscription.NewSubscription("cust_1", "plan_1", "usd", "t1", "u1", time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	h.subs.subs[sub.ID] = sub
	h.subs.lineItems[sub.ID] = []*subscription.SubscriptionLineItem{
		{ID: "li_1", SubscriptionID: sub.ID, PriceComponentID: comp.ID},
	}

	overage := dec("0.10")
	tier := commitment.NewTier(sub.ID, m.ID, dec("1000"), dec("0.10"), &overage, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), "t1", "u1")
	h.commitRepo.tiers = append(h.commitRepo.tiers, tier)

	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	subID := sub.ID

	inv, err := h.assembler.Generate(ctx, "cust_1", start, end, &subID, "t1", "u1")
	require.NoError(t, err)

	// actual usage charge = 100*0.10 = 10; committed charge = 1000*0.10 = 100.
	// Commitment wins: invoice total is 100, not 10.
	assert.True(t, inv.AmountDue.Equal(dec("100")), "got %s", inv.AmountDue)
}

func TestInvoiceAssembler_ZeroUsageComponentOmitted(t *testing.T) {
	h := newAssemblerHarness()
	ctx := context.Background()

	h.customers.customers["cust_1"] = &customer.Customer{ID: "cust_1", ExternalID: "ext_1"}
	used := h.addMetric("metric_used", "api_calls", "api.request")
	unused := h.addMetric("metric_unused", "storage_bytes", "storage.write")
	h.eventsRepo.usageByEventName["api.request"] = dec("10")
	// no usage recorded for storage.write: GetUsage returns decimal.Zero for it.

	usedComp := h.addComponent("plan_1", used.ID, types.PricingTypeTiered, "usd", plan.PricingDetails{
		Tiers: []plan.Tier{{Start: 0, End: nil, Price: dec("1")}},
	})
	unusedComp := h.addComponent("plan_1", unused.ID, types.PricingTypeTiered, "usd", plan.PricingDetails{
		Tiers: []plan.Tier{{Start: 0, End: nil, Price: dec("1")}},
	})

	sub := subscription.NewSubscription("cust_1", "plan_1", "usd", "t1", "u1", time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	h.subs.subs[sub.ID] = sub
	h.subs.lineItems[sub.ID] = []*subscription.SubscriptionLineItem{
		{ID: "li_1", SubscriptionID: sub.ID, PriceComponentID: usedComp.ID},
		{ID: "li_2", SubscriptionID: sub.ID, PriceComponentID: unusedComp.ID},
	}

	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	subID := sub.ID

	inv, err := h.assembler.Generate(ctx, "cust_1", start, end, &subID, "t1", "u1")
	require.NoError(t, err)

	require.Len(t, inv.LineItems, 1, "zero-usage, zero-charge component must not produce a line item")
	assert.Equal(t, used.ID, *inv.LineItems[0].MetricID)
	assert.True(t, inv.LineItems[0].UnitPrice.Equal(dec("1")), "got %s", inv.LineItems[0].UnitPrice)
	assert.True(t, inv.AmountDue.Equal(dec("10")), "got %s", inv.AmountDue)
}

func TestInvoiceAssembler_CreditsApplyAgainstTotal(t *testing.T) {
	h := newAssemblerHarness()
	ctx := context.Background()

	h.customers.customers["cust_1"] = &customer.Customer{ID: "cust_1", ExternalID: "ext_1"}
	comp := h.addComponent("plan_1", "", types.PricingTypeFlat, "usd", plan.PricingDetails{Amount: decPtr("50")})

	sub := subscription.NewSubscription("cust_1", "plan_1", "usd", "t1", "u1", time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	h.subs.subs[sub.ID] = sub
	h.subs.lineItems[sub.ID] = []*subscription.SubscriptionLineItem{
		{ID: "li_1", SubscriptionID: sub.ID, PriceComponentID: comp.ID},
	}

	_, err := NewCreditEngine(h.creditRepo, nopLogger()).AddCredits(ctx, "cust_1", dec("20"), credit.BalanceTypePrepaid, "usd", "promo", nil, nil, "t1", "u1")
	require.NoError(t, err)

	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	subID := sub.ID

	inv, err := h.assembler.Generate(ctx, "cust_1", start, end, &subID, "t1", "u1")
	require.NoError(t, err)

	// 50 charged, 20 credit applied as a negative line item -> net 30.
	assert.True(t, inv.AmountDue.Equal(dec("30")), "got %s", inv.AmountDue)
	assert.Len(t, h.published.published, 1)
	assert.Equal(t, "billing.invoice_finalized", h.published.published[0])
}

func TestInvoiceAssembler_RangeGenerationExcludesFlatFees(t *testing.T) {
	h := newAssemblerHarness()
	ctx := context.Background()

	h.customers.customers["cust_1"] = &customer.Customer{ID: "cust_1", ExternalID: "ext_1"}
	m := h.addMetric("metric_1", "api_calls", "api.request")
	h.eventsRepo.usageByEventName["api.request"] = dec("200")

	flatComp := h.addComponent("plan_1", "", types.PricingTypeFlat, "usd", plan.PricingDetails{Amount: decPtr("29")})
	perUnit := h.addComponent("plan_1", m.ID, types.PricingTypeTiered, "usd", plan.PricingDetails{
		Tiers: []plan.Tier{{Start: 0, End: nil, Price: dec("0.02")}},
	})

	sub := subscription.NewSubscription("cust_1", "plan_1", "usd", "t1", "u1", time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	h.subs.subs[sub.ID] = sub
	h.subs.lineItems[sub.ID] = []*subscription.SubscriptionLineItem{
		{ID: "li_1", SubscriptionID: sub.ID, PriceComponentID: flatComp.ID},
		{ID: "li_2", SubscriptionID: sub.ID, PriceComponentID: perUnit.ID},
	}

	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	invoices, err := h.assembler.GenerateForRange(ctx, start, end, nil, "t1", "u1")
	require.NoError(t, err)
	require.Len(t, invoices, 1)

	// Only the 200*0.02 = 4 usage charge; the 29 flat fee never appears in
	// a date-range invoice.
	assert.True(t, invoices[0].AmountDue.Equal(dec("4")), "got %s", invoices[0].AmountDue)
}

func TestInvoiceAssembler_GenerateForPeriodStampsBillingPeriod(t *testing.T) {
	h := newAssemblerHarness()
	ctx := context.Background()
	periods := &stampingBillingPeriodRepository{}
	h.assembler.periods = periods

	h.customers.customers["cust_1"] = &customer.Customer{ID: "cust_1", ExternalID: "ext_1"}
	comp := h.addComponent("plan_1", "", types.PricingTypeFlat, "usd", plan.PricingDetails{Amount: decPtr("10")})

	sub := subscription.NewSubscription("cust_1", "plan_1", "usd", "t1", "u1", time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	h.subs.subs[sub.ID] = sub
	h.subs.lineItems[sub.ID] = []*subscription.SubscriptionLineItem{
		{ID: "li_1", SubscriptionID: sub.ID, PriceComponentID: comp.ID},
	}

	bp := billingperiod.NewBillingPeriod(sub.ID, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), "t1", "u1")

	inv, err := h.assembler.GenerateForPeriod(ctx, bp, "t1", "u1")
	require.NoError(t, err)
	require.NotNil(t, bp.InvoiceID)
	assert.Equal(t, inv.ID, *bp.InvoiceID)
	assert.Contains(t, inv.Notes, "2026-01-01")

	_, err = h.assembler.GenerateForPeriod(ctx, bp, "t1", "u1")
	assert.Error(t, err)
}

type stampingBillingPeriodRepository struct {
	fakeBillingPeriodRepository
	updated *billingperiod.BillingPeriod
}

func (r *stampingBillingPeriodRepository) Update(_ context.Context, p *billingperiod.BillingPeriod) error {
	r.updated = p
	return nil
}
