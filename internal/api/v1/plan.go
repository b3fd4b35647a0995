package v1

import (
	"net/http"

	"github.com/flexprice/flexprice/internal/api/dto"
	"github.com/flexprice/flexprice/internal/domain/plan"
	ierr "github.com/flexprice/flexprice/internal/errors"
	"github.com/flexprice/flexprice/internal/logger"
	"github.com/flexprice/flexprice/internal/service"
	"github.com/flexprice/flexprice/internal/validator"
	"github.com/gin-gonic/gin"
)

// PlanHandler exposes the Plan + PriceComponent resources (spec.md §6.1).
type PlanHandler struct {
	plans  *service.PlanManager
	logger *logger.Logger
}

func NewPlanHandler(plans *service.PlanManager, logger *logger.Logger) *PlanHandler {
	return &PlanHandler{plans: plans, logger: logger}
}

func (h *PlanHandler) CreatePlan(c *gin.Context) {
	var req dto.CreatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).WithHint("invalid request body").Mark(ierr.ErrValidation))
		return
	}
	if err := validator.ValidateRequest(&req); err != nil {
		c.Error(err)
		return
	}

	p := &plan.Plan{Name: req.Name, Description: req.Description, BillingFrequency: req.BillingFrequency, Active: true}
	p.TenantID = tenantID(c)
	p.CreatedBy, p.UpdatedBy = actor(c), actor(c)
	created, err := h.plans.CreatePlan(c.Request.Context(), p)
	if err != nil {
		c.Error(err)
		return
	}

	for _, comp := range req.Components {
		if _, err := h.plans.AddComponent(c.Request.Context(), comp.ToComponent(created.ID)); err != nil {
			c.Error(err)
			return
		}
	}

	c.JSON(http.StatusCreated, created)
}

func (h *PlanHandler) GetPlan(c *gin.Context) {
	p, err := h.plans.GetPlan(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *PlanHandler) GetPlans(c *gin.Context) {
	limit, offset := pageParams(c)
	plans, err := h.plans.ListPlans(c.Request.Context(), limit, offset)
	if err != nil {
		c.Error(err)
		return
	}
	if c.Query("active_only") == "true" {
		active := plans[:0]
		for _, p := range plans {
			if p.Active {
				active = append(active, p)
			}
		}
		plans = active
	}
	c.JSON(http.StatusOK, gin.H{"plans": plans})
}

func (h *PlanHandler) UpdatePlan(c *gin.Context) {
	var req dto.UpdatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).WithHint("invalid request body").Mark(ierr.ErrValidation))
		return
	}
	p, err := h.plans.GetPlan(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	req.ApplyTo(p)

	updated, err := h.plans.UpdatePlan(c.Request.Context(), p, actor(c))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *PlanHandler) DeactivatePlan(c *gin.Context) {
	p, err := h.plans.Deactivate(c.Request.Context(), c.Param("id"), actor(c))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *PlanHandler) AddComponent(c *gin.Context) {
	var req dto.CreatePriceComponentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).WithHint("invalid request body").Mark(ierr.ErrValidation))
		return
	}
	if err := validator.ValidateRequest(&req); err != nil {
		c.Error(err)
		return
	}

	comp, err := h.plans.AddComponent(c.Request.Context(), req.ToComponent(c.Param("id")))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, comp)
}

func (h *PlanHandler) RemoveComponent(c *gin.Context) {
	if err := h.plans.RemoveComponent(c.Request.Context(), c.Param("cid")); err != nil {
		c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}
