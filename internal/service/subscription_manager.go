package service

import (
	"context"
	"time"

	"github.com/flexprice/flexprice/internal/domain/billingperiod"
	"github.com/flexprice/flexprice/internal/domain/plan"
	"github.com/flexprice/flexprice/internal/domain/subscription"
	ierr "github.com/flexprice/flexprice/internal/errors"
	"github.com/flexprice/flexprice/internal/logger"
	"github.com/flexprice/flexprice/internal/types"
)

// SubscriptionManager is the Subscription Manager module: it creates a
// subscription against its plan's active components, generates its
// billing-period schedule via domain/billingperiod.Generate, and handles
// cancellation. Grounded on the teacher's subscriptionService, rebuilt
// against the new domain/subscription and domain/billingperiod packages
// (the teacher's version additionally touched wallet/entitlement/feature
// concerns that no longer exist in this tree).
type SubscriptionManager struct {
	subs     subscription.Repository
	plans    plan.Repository
	periods  billingperiod.Repository
	logger   *logger.Logger
}

func NewSubscriptionManager(subs subscription.Repository, plans plan.Repository, periods billingperiod.Repository, logger *logger.Logger) *SubscriptionManager {
	return &SubscriptionManager{subs: subs, plans: plans, periods: periods, logger: logger}
}

// Create validates the subscription, attaches a line item for every
// active component of the plan, and generates its first year of billing
// periods starting at StartDate. Grounded on the billing period generation
// rule: a subscription's schedule is produced up front for a bounded
// horizon rather than lazily, since commitment and invoice generation
// both need to look up "the period containing time T".
func (m *SubscriptionManager) Create(ctx context.Context, sub *subscription.Subscription, tenantID, createdBy string) (*subscription.Subscription, error) {
	if err := sub.Validate(); err != nil {
		return nil, err
	}

	p, err := m.plans.Get(ctx, sub.PlanID)
	if err != nil {
		return nil, err
	}
	if !p.Active {
		return nil, ierr.NewError("plan is not active").
			WithReportableDetails(map[string]interface{}{"plan_id": p.ID}).
			Mark(ierr.ErrInvalidOperation)
	}

	components, err := m.plans.ListComponentsByPlan(ctx, p.ID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	sub.BaseModel = types.BaseModel{
		TenantID:  tenantID,
		Status:    types.StatusActive,
		CreatedAt: now,
		UpdatedAt: now,
		CreatedBy: createdBy,
		UpdatedBy: createdBy,
	}

	items := make([]*subscription.SubscriptionLineItem, 0, len(components))
	for _, c := range components {
		items = append(items, &subscription.SubscriptionLineItem{
			ID:               types.GenerateUUIDWithPrefix(types.UUIDPrefixSubscriptionLineItem),
			SubscriptionID:   sub.ID,
			PriceComponentID: c.ID,
			BaseModel: types.BaseModel{
				TenantID:  tenantID,
				Status:    types.StatusActive,
				CreatedAt: now,
				UpdatedAt: now,
				CreatedBy: createdBy,
				UpdatedBy: createdBy,
			},
		})
	}

	if err := m.subs.CreateWithLineItems(ctx, sub, items); err != nil {
		return nil, err
	}

	horizon := sub.StartDate.AddDate(1, 0, 0)
	periods := billingperiod.Generate(sub.ID, sub.StartDate, horizon, p.BillingFrequency, tenantID, createdBy)
	if len(periods) > 0 {
		if err := m.periods.CreateBulk(ctx, periods); err != nil {
			return nil, err
		}
		firstID := periods[0].ID
		sub.CurrentPeriodID = &firstID
		if err := m.subs.Update(ctx, sub); err != nil {
			return nil, err
		}
	}

	return sub, nil
}

func (m *SubscriptionManager) Get(ctx context.Context, id string) (*subscription.Subscription, error) {
	if id == "" {
		return nil, ierr.NewError("subscription id is required").Mark(ierr.ErrValidation)
	}
	return m.subs.Get(ctx, id)
}

func (m *SubscriptionManager) ListByCustomer(ctx context.Context, customerID string) ([]*subscription.Subscription, error) {
	return m.subs.ListByCustomerID(ctx, customerID)
}

// Cancel ends a subscription as of effectiveAt. Billing periods already
// generated past effectiveAt are left in place but Generate is not called
// again for this subscription; the invoice assembler's window intersection
// against the (now bounded) subscription lifetime naturally excludes usage
// after cancellation.
func (m *SubscriptionManager) Cancel(ctx context.Context, id string, effectiveAt time.Time, updatedBy string) (*subscription.Subscription, error) {
	sub, err := m.subs.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if sub.SubscriptionStatus == subscription.SubscriptionStatusCanceled {
		return nil, ierr.NewError("subscription is already canceled").Mark(ierr.ErrInvalidOperation)
	}

	sub.SubscriptionStatus = subscription.SubscriptionStatusCanceled
	sub.EndDate = &effectiveAt
	sub.CancelledAt = &effectiveAt
	sub.UpdatedBy = updatedBy
	sub.UpdatedAt = time.Now().UTC()

	if err := m.subs.Update(ctx, sub); err != nil {
		return nil, err
	}
	return sub, nil
}

// Pause records a SubscriptionPause from now until the optional resumeAt
// and sets the subscription's status to paused, which excludes it from
// ListActiveAt and so from the date-range invoice path. It does not change
// the subscription's billing periods, and nothing sets the status back to
// active when resumeAt passes.
func (m *SubscriptionManager) Pause(ctx context.Context, id, reason string, resumeAt *time.Time, tenantID, createdBy string) error {
	sub, err := m.subs.Get(ctx, id)
	if err != nil {
		return err
	}
	if sub.SubscriptionStatus == subscription.SubscriptionStatusPaused {
		return ierr.NewError("subscription is already paused").Mark(ierr.ErrInvalidOperation)
	}

	now := time.Now().UTC()
	pause := &subscription.SubscriptionPause{
		ID:             types.GenerateUUIDWithPrefix(types.UUIDPrefixSubscriptionPause),
		SubscriptionID: id,
		PausedAt:       now,
		ResumedAt:      resumeAt,
		Reason:         reason,
		BaseModel: types.BaseModel{
			TenantID:  tenantID,
			Status:    types.StatusActive,
			CreatedAt: now,
			UpdatedAt: now,
			CreatedBy: createdBy,
			UpdatedBy: createdBy,
		},
	}
	if err := m.subs.CreatePause(ctx, pause); err != nil {
		return err
	}

	sub.SubscriptionStatus = subscription.SubscriptionStatusPaused
	sub.UpdatedBy = createdBy
	sub.UpdatedAt = now
	return m.subs.Update(ctx, sub)
}

// CurrentPeriod returns the billing period containing t for a subscription.
func (m *SubscriptionManager) CurrentPeriod(ctx context.Context, subscriptionID string, t time.Time) (*billingperiod.BillingPeriod, error) {
	return m.periods.FindContaining(ctx, subscriptionID, t)
}
