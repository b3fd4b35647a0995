package v1

import (
	"net/http"
	"time"

	"github.com/flexprice/flexprice/internal/api/dto"
	ierr "github.com/flexprice/flexprice/internal/errors"
	"github.com/flexprice/flexprice/internal/logger"
	"github.com/flexprice/flexprice/internal/service"
	"github.com/flexprice/flexprice/internal/validator"
	"github.com/gin-gonic/gin"
)

// SubscriptionHandler exposes the Subscription resource, scoped under its
// owning customer (spec.md §6.1).
type SubscriptionHandler struct {
	subs   *service.SubscriptionManager
	logger *logger.Logger
}

func NewSubscriptionHandler(subs *service.SubscriptionManager, logger *logger.Logger) *SubscriptionHandler {
	return &SubscriptionHandler{subs: subs, logger: logger}
}

func (h *SubscriptionHandler) CreateSubscription(c *gin.Context) {
	var req dto.CreateSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).WithHint("invalid request body").Mark(ierr.ErrValidation))
		return
	}
	if err := validator.ValidateRequest(&req); err != nil {
		c.Error(err)
		return
	}

	sub, err := h.subs.Create(c.Request.Context(), req.ToSubscription(c.Param("id")), tenantID(c), actor(c))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, sub)
}

func (h *SubscriptionHandler) GetSubscriptions(c *gin.Context) {
	subs, err := h.subs.ListByCustomer(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	if c.Query("active_only") == "true" {
		active := subs[:0]
		for _, s := range subs {
			if s.SubscriptionStatus == "active" {
				active = append(active, s)
			}
		}
		subs = active
	}
	c.JSON(http.StatusOK, gin.H{"subscriptions": subs})
}

func (h *SubscriptionHandler) CancelSubscription(c *gin.Context) {
	effectiveAt := time.Now().UTC()
	if v := c.Query("end_date"); v != "" {
		parsed, err := time.Parse(time.RFC3339, v)
		if err != nil {
			c.Error(ierr.WithError(err).WithHint("end_date must be RFC3339").Mark(ierr.ErrValidation))
			return
		}
		effectiveAt = parsed
	}

	sub, err := h.subs.Cancel(c.Request.Context(), c.Param("sid"), effectiveAt, actor(c))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, sub)
}
