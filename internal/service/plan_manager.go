package service

import (
	"context"
	"time"

	"github.com/flexprice/flexprice/internal/domain/plan"
	ierr "github.com/flexprice/flexprice/internal/errors"
	"github.com/flexprice/flexprice/internal/logger"
	"github.com/flexprice/flexprice/internal/types"
)

// PlanManager is the Plan & Price Component Store: plan CRUD plus the
// component operations (add/update/remove/deactivate) a plan's pricing is
// built from. Grounded on the teacher's planService, rebuilt against the
// new domain/plan package (the teacher's planService targeted a
// price/feature/entitlement model that no longer exists here).
type PlanManager struct {
	repo   plan.Repository
	logger *logger.Logger
}

func NewPlanManager(repo plan.Repository, logger *logger.Logger) *PlanManager {
	return &PlanManager{repo: repo, logger: logger}
}

// CreatePlan validates and persists a new, active plan.
func (m *PlanManager) CreatePlan(ctx context.Context, p *plan.Plan) (*plan.Plan, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if p.ID == "" {
		p.ID = types.GenerateUUIDWithPrefix(types.UUIDPrefixPlan)
	}
	now := time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	if p.Status == "" {
		p.Status = types.StatusActive
	}
	p.Active = true
	if err := m.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (m *PlanManager) GetPlan(ctx context.Context, id string) (*plan.Plan, error) {
	if id == "" {
		return nil, ierr.NewError("plan id is required").Mark(ierr.ErrValidation)
	}
	return m.repo.Get(ctx, id)
}

func (m *PlanManager) ListPlans(ctx context.Context, limit, offset int) ([]*plan.Plan, error) {
	return m.repo.List(ctx, limit, offset)
}

// UpdatePlan persists changes to name/description/billing_frequency. It
// does not touch Active; use Deactivate for that, per the separate
// lifecycle rule (deactivating a plan does not cascade to subscriptions
// already attached to it).
func (m *PlanManager) UpdatePlan(ctx context.Context, p *plan.Plan, updatedBy string) (*plan.Plan, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	p.UpdatedBy = updatedBy
	p.UpdatedAt = time.Now().UTC()
	if err := m.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Deactivate marks a plan inactive so it can no longer be attached to new
// subscriptions. Existing subscriptions keep billing against it.
func (m *PlanManager) Deactivate(ctx context.Context, id, updatedBy string) (*plan.Plan, error) {
	p, err := m.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	p.Active = false
	p.UpdatedBy = updatedBy
	p.UpdatedAt = time.Now().UTC()
	if err := m.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (m *PlanManager) DeletePlan(ctx context.Context, id string) error {
	if id == "" {
		return ierr.NewError("plan id is required").Mark(ierr.ErrValidation)
	}
	return m.repo.Delete(ctx, id)
}

// AddComponent validates and attaches a new price component to a plan.
func (m *PlanManager) AddComponent(ctx context.Context, c *plan.PriceComponent) (*plan.PriceComponent, error) {
	if c.PlanID == "" {
		return nil, ierr.NewError("plan_id is required").Mark(ierr.ErrValidation)
	}
	if _, err := m.repo.Get(ctx, c.PlanID); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if c.ID == "" {
		c.ID = types.GenerateUUIDWithPrefix(types.UUIDPrefixPriceComponent)
	}
	now := time.Now().UTC()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = now
	if c.Status == "" {
		c.Status = types.StatusActive
	}
	if err := m.repo.CreateComponent(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (m *PlanManager) GetComponent(ctx context.Context, id string) (*plan.PriceComponent, error) {
	return m.repo.GetComponent(ctx, id)
}

func (m *PlanManager) ListComponents(ctx context.Context, planID string) ([]*plan.PriceComponent, error) {
	return m.repo.ListComponentsByPlan(ctx, planID)
}

// UpdateComponent re-validates and persists changes to an existing
// component's pricing details. Components already referenced by a
// subscription's line items keep billing against the updated details from
// the next billing period onward; in-flight invoices are unaffected.
func (m *PlanManager) UpdateComponent(ctx context.Context, c *plan.PriceComponent, updatedBy string) (*plan.PriceComponent, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	c.UpdatedBy = updatedBy
	c.UpdatedAt = time.Now().UTC()
	if err := m.repo.UpdateComponent(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// RemoveComponent deletes a price component from a plan. Subscriptions
// with a line item still referencing it are left as-is; callers should
// remove the corresponding subscription line items first if the intent is
// to stop billing existing subscribers for it.
func (m *PlanManager) RemoveComponent(ctx context.Context, id string) error {
	if id == "" {
		return ierr.NewError("component id is required").Mark(ierr.ErrValidation)
	}
	return m.repo.DeleteComponent(ctx, id)
}
