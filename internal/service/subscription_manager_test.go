package service

import (
	"context"
	"testing"
	"time"

	"github.com/flexprice/flexprice/internal/domain/billingperiod"
	"github.com/flexprice/flexprice/internal/domain/plan"
	"github.com/flexprice/flexprice/internal/domain/subscription"
	"github.com/flexprice/flexprice/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBillingPeriodStore is a stateful billingperiod.Repository fake;
// invoice_assembler_test.go's fakeBillingPeriodRepository is a no-op stub
// that can't support CurrentPeriod/Cancel assertions here.
type fakeBillingPeriodStore struct {
	periods map[string]*billingperiod.BillingPeriod
}

func newFakeBillingPeriodStore() *fakeBillingPeriodStore {
	return &fakeBillingPeriodStore{periods: map[string]*billingperiod.BillingPeriod{}}
}

func (f *fakeBillingPeriodStore) CreateBulk(_ context.Context, periods []*billingperiod.BillingPeriod) error {
	for _, p := range periods {
		f.periods[p.ID] = p
	}
	return nil
}
func (f *fakeBillingPeriodStore) Get(_ context.Context, id string) (*billingperiod.BillingPeriod, error) {
	if p, ok := f.periods[id]; ok {
		return p, nil
	}
	return nil, ierrNotFound("billing_period")
}
func (f *fakeBillingPeriodStore) Update(_ context.Context, p *billingperiod.BillingPeriod) error {
	f.periods[p.ID] = p
	return nil
}
func (f *fakeBillingPeriodStore) FindContaining(_ context.Context, subscriptionID string, t time.Time) (*billingperiod.BillingPeriod, error) {
	for _, p := range f.periods {
		if p.SubscriptionID == subscriptionID && p.Contains(t) {
			return p, nil
		}
	}
	return nil, nil
}
func (f *fakeBillingPeriodStore) ListBySubscription(_ context.Context, subscriptionID string) ([]*billingperiod.BillingPeriod, error) {
	var out []*billingperiod.BillingPeriod
	for _, p := range f.periods {
		if p.SubscriptionID == subscriptionID {
			out = append(out, p)
		}
	}
	return out, nil
}

func newTestSubscriptionManager() (*SubscriptionManager, *fakeSubscriptionRepository, *fakePlanStore, *fakeBillingPeriodStore) {
	subs := &fakeSubscriptionRepository{subs: map[string]*subscription.Subscription{}, lineItems: map[string][]*subscription.SubscriptionLineItem{}}
	plans := newFakePlanStore()
	periods := newFakeBillingPeriodStore()
	return NewSubscriptionManager(subs, plans, periods, nopLogger()), subs, plans, periods
}

func testPlanWithComponent(store *fakePlanStore) *plan.Plan {
	p := plan.NewPlan("Pro", "t1", "alice", types.BillingFrequencyMonthly)
	store.plans[p.ID] = p
	comp := plan.NewPriceComponent(p.ID, "", types.PricingTypeFlat, "usd", plan.PricingDetails{
		Amount: decimalPtr(decimal.NewFromInt(10)),
	}, "t1", "alice")
	store.components[comp.ID] = comp
	return p
}

func TestSubscriptionManager_CreateGeneratesLineItemsAndPeriods(t *testing.T) {
	mgr, subs, plans, periods := newTestSubscriptionManager()
	p := testPlanWithComponent(plans)

	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	sub := subscription.NewSubscription("cust_1", p.ID, "usd", "t1", "alice", start)

	got, err := mgr.Create(context.Background(), sub, "t1", "alice")
	require.NoError(t, err)
	assert.NotNil(t, got.CurrentPeriodID)

	items := subs.lineItems[got.ID]
	require.Len(t, items, 1)

	allPeriods, err := periods.ListBySubscription(context.Background(), got.ID)
	require.NoError(t, err)
	assert.Len(t, allPeriods, 12, "monthly frequency over a 1 year horizon should produce 12 periods")
}

func TestSubscriptionManager_CreateRejectsInactivePlan(t *testing.T) {
	mgr, _, plans, _ := newTestSubscriptionManager()
	p := testPlanWithComponent(plans)
	p.Active = false

	sub := subscription.NewSubscription("cust_1", p.ID, "usd", "t1", "alice", time.Now().UTC())
	_, err := mgr.Create(context.Background(), sub, "t1", "alice")
	assert.Error(t, err)
}

func TestSubscriptionManager_CancelSetsEndDateAndRejectsDouble(t *testing.T) {
	mgr, subs, plans, _ := newTestSubscriptionManager()
	p := testPlanWithComponent(plans)

	sub := subscription.NewSubscription("cust_1", p.ID, "usd", "t1", "alice", time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	_, err := mgr.Create(context.Background(), sub, "t1", "alice")
	require.NoError(t, err)

	effective := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	canceled, err := mgr.Cancel(context.Background(), sub.ID, effective, "bob")
	require.NoError(t, err)
	assert.Equal(t, subscription.SubscriptionStatusCanceled, canceled.SubscriptionStatus)
	require.NotNil(t, canceled.EndDate)
	assert.True(t, canceled.EndDate.Equal(effective))
	assert.Equal(t, subscription.SubscriptionStatusCanceled, subs.subs[sub.ID].SubscriptionStatus)

	_, err = mgr.Cancel(context.Background(), sub.ID, effective, "bob")
	assert.Error(t, err)
}

func TestSubscriptionManager_PauseRejectsDoublePause(t *testing.T) {
	mgr, _, plans, _ := newTestSubscriptionManager()
	p := testPlanWithComponent(plans)
	sub := subscription.NewSubscription("cust_1", p.ID, "usd", "t1", "alice", time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	_, err := mgr.Create(context.Background(), sub, "t1", "alice")
	require.NoError(t, err)

	require.NoError(t, mgr.Pause(context.Background(), sub.ID, "customer request", nil, "t1", "alice"))
	err = mgr.Pause(context.Background(), sub.ID, "customer request", nil, "t1", "alice")
	assert.Error(t, err)
}
