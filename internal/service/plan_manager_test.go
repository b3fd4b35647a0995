package service

import (
	"context"
	"testing"

	"github.com/flexprice/flexprice/internal/domain/plan"
	"github.com/flexprice/flexprice/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakePlanStore is a stateful plan.Repository fake for PlanManager tests;
// invoice_assembler_test.go's fakePlanRepository only tracks components, so
// this one also tracks plans for the CRUD/lifecycle paths exercised here.
type fakePlanStore struct {
	plans      map[string]*plan.Plan
	components map[string]*plan.PriceComponent
}

func newFakePlanStore() *fakePlanStore {
	return &fakePlanStore{plans: map[string]*plan.Plan{}, components: map[string]*plan.PriceComponent{}}
}

func (f *fakePlanStore) Create(_ context.Context, p *plan.Plan) error {
	f.plans[p.ID] = p
	return nil
}
func (f *fakePlanStore) Get(_ context.Context, id string) (*plan.Plan, error) {
	if p, ok := f.plans[id]; ok {
		return p, nil
	}
	return nil, ierrNotFound("plan")
}
func (f *fakePlanStore) Update(_ context.Context, p *plan.Plan) error {
	f.plans[p.ID] = p
	return nil
}
func (f *fakePlanStore) Delete(_ context.Context, id string) error {
	delete(f.plans, id)
	return nil
}
func (f *fakePlanStore) List(_ context.Context, limit, offset int) ([]*plan.Plan, error) {
	var out []*plan.Plan
	for _, p := range f.plans {
		out = append(out, p)
	}
	return out, nil
}
func (f *fakePlanStore) CreateComponent(_ context.Context, c *plan.PriceComponent) error {
	f.components[c.ID] = c
	return nil
}
func (f *fakePlanStore) GetComponent(_ context.Context, id string) (*plan.PriceComponent, error) {
	if c, ok := f.components[id]; ok {
		return c, nil
	}
	return nil, ierrNotFound("price_component")
}
func (f *fakePlanStore) UpdateComponent(_ context.Context, c *plan.PriceComponent) error {
	f.components[c.ID] = c
	return nil
}
func (f *fakePlanStore) DeleteComponent(_ context.Context, id string) error {
	delete(f.components, id)
	return nil
}
func (f *fakePlanStore) ListComponentsByPlan(_ context.Context, planID string) ([]*plan.PriceComponent, error) {
	var out []*plan.PriceComponent
	for _, c := range f.components {
		if c.PlanID == planID {
			out = append(out, c)
		}
	}
	return out, nil
}

func newTestPlanManager() (*PlanManager, *fakePlanStore) {
	store := newFakePlanStore()
	return NewPlanManager(store, nopLogger()), store
}

func TestPlanManager_CreatePlanRejectsMissingName(t *testing.T) {
	mgr, _ := newTestPlanManager()
	_, err := mgr.CreatePlan(context.Background(), &plan.Plan{})
	assert.Error(t, err)
}

func TestPlanManager_CreatePlanDefaultsActive(t *testing.T) {
	mgr, store := newTestPlanManager()
	p := plan.NewPlan("Pro", "t1", "alice", types.BillingFrequencyMonthly)
	p.Active = false

	got, err := mgr.CreatePlan(context.Background(), p)
	require.NoError(t, err)
	assert.True(t, got.Active)
	assert.True(t, store.plans[got.ID].Active)
}

func TestPlanManager_DeactivateDoesNotDeleteComponents(t *testing.T) {
	mgr, store := newTestPlanManager()
	p := plan.NewPlan("Pro", "t1", "alice", types.BillingFrequencyMonthly)
	store.plans[p.ID] = p

	comp := plan.NewPriceComponent(p.ID, "", types.PricingTypeFlat, "usd", plan.PricingDetails{
		Amount: decimalPtr(decimal.NewFromInt(10)),
	}, "t1", "alice")
	store.components[comp.ID] = comp

	got, err := mgr.Deactivate(context.Background(), p.ID, "bob")
	require.NoError(t, err)
	assert.False(t, got.Active)
	assert.Equal(t, "bob", got.UpdatedBy)

	comps, err := mgr.ListComponents(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Len(t, comps, 1)
}

func TestPlanManager_AddComponentRejectsUnknownPlan(t *testing.T) {
	mgr, _ := newTestPlanManager()
	_, err := mgr.AddComponent(context.Background(), plan.NewPriceComponent("missing_plan", "", types.PricingTypeFlat, "usd", plan.PricingDetails{
		Amount: decimalPtr(decimal.NewFromInt(5)),
	}, "t1", "alice"))
	assert.Error(t, err)
}

func TestPlanManager_AddComponentRejectsMissingMetricForUsageType(t *testing.T) {
	mgr, store := newTestPlanManager()
	p := plan.NewPlan("Pro", "t1", "alice", types.BillingFrequencyMonthly)
	store.plans[p.ID] = p

	_, err := mgr.AddComponent(context.Background(), plan.NewPriceComponent(p.ID, "", types.PricingTypeTiered, "usd", plan.PricingDetails{
		Tiers: []plan.Tier{{Start: 0, Price: decimal.NewFromInt(1)}},
	}, "t1", "alice"))
	assert.Error(t, err)
}

func TestPlanManager_AddAndRemoveComponent(t *testing.T) {
	mgr, store := newTestPlanManager()
	p := plan.NewPlan("Pro", "t1", "alice", types.BillingFrequencyMonthly)
	store.plans[p.ID] = p

	comp, err := mgr.AddComponent(context.Background(), plan.NewPriceComponent(p.ID, "", types.PricingTypeFlat, "usd", plan.PricingDetails{
		Amount: decimalPtr(decimal.NewFromInt(10)),
	}, "t1", "alice"))
	require.NoError(t, err)

	require.NoError(t, mgr.RemoveComponent(context.Background(), comp.ID))
	_, ok := store.components[comp.ID]
	assert.False(t, ok)
}

func decimalPtr(d decimal.Decimal) *decimal.Decimal { return &d }
