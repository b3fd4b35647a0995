package dto

import (
	"github.com/flexprice/flexprice/internal/domain/plan"
	"github.com/flexprice/flexprice/internal/types"
)

// CreatePlanRequest is the wire shape for POST /plans. Components are
// optional at creation time, per spec.md §6.1.
type CreatePlanRequest struct {
	Name             string                        `json:"name" validate:"required"`
	Description      string                        `json:"description"`
	BillingFrequency types.BillingFrequency        `json:"billing_frequency" validate:"required"`
	Components       []CreatePriceComponentRequest `json:"components,omitempty"`
}

type CreatePriceComponentRequest struct {
	MetricID string              `json:"metric_id,omitempty"`
	Type     types.PricingType   `json:"type" validate:"required"`
	Currency string              `json:"currency" validate:"required"`
	Details  plan.PricingDetails `json:"pricing_details"`
}

func (r *CreatePriceComponentRequest) ToComponent(planID string) *plan.PriceComponent {
	return &plan.PriceComponent{
		PlanID:   planID,
		MetricID: r.MetricID,
		Type:     r.Type,
		Currency: r.Currency,
		Details:  plan.JSONBPricingDetails(r.Details),
	}
}

// UpdatePlanRequest is the wire shape for PUT /plans/{id}.
type UpdatePlanRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

func (r *UpdatePlanRequest) ApplyTo(p *plan.Plan) {
	if r.Name != nil {
		p.Name = *r.Name
	}
	if r.Description != nil {
		p.Description = *r.Description
	}
}
