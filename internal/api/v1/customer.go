package v1

import (
	"net/http"
	"strconv"

	"github.com/flexprice/flexprice/internal/api/dto"
	ierr "github.com/flexprice/flexprice/internal/errors"
	"github.com/flexprice/flexprice/internal/logger"
	"github.com/flexprice/flexprice/internal/service"
	"github.com/flexprice/flexprice/internal/types"
	"github.com/flexprice/flexprice/internal/validator"
	"github.com/gin-gonic/gin"
)

// CustomerHandler exposes the Customer resource (spec.md §6.1). Grounded on
// the teacher's CustomerHandler shape: bind request, validate, delegate to
// the service, translate errors through gin's error chain for ErrorHandler
// middleware to render.
type CustomerHandler struct {
	customers *service.CustomerManager
	logger    *logger.Logger
}

func NewCustomerHandler(customers *service.CustomerManager, logger *logger.Logger) *CustomerHandler {
	return &CustomerHandler{customers: customers, logger: logger}
}

func (h *CustomerHandler) CreateCustomer(c *gin.Context) {
	var req dto.CreateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).WithHint("invalid request body").Mark(ierr.ErrValidation))
		return
	}
	if err := validator.ValidateRequest(&req); err != nil {
		c.Error(err)
		return
	}

	cust, err := h.customers.Create(c.Request.Context(), req.ToCustomer(), tenantID(c), actor(c))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, cust)
}

func (h *CustomerHandler) GetCustomer(c *gin.Context) {
	cust, err := h.customers.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, cust)
}

func (h *CustomerHandler) GetCustomers(c *gin.Context) {
	limit, offset := pageParams(c)
	customers, err := h.customers.List(c.Request.Context(), limit, offset)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"customers": customers})
}

func (h *CustomerHandler) UpdateCustomer(c *gin.Context) {
	var req dto.UpdateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).WithHint("invalid request body").Mark(ierr.ErrValidation))
		return
	}

	cust, err := h.customers.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	req.ApplyTo(cust)

	updated, err := h.customers.Update(c.Request.Context(), cust, actor(c))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// tenantID reads the tenant bound by middleware.TenantMiddleware.
func tenantID(c *gin.Context) string {
	return types.GetTenantID(c.Request.Context())
}

// actor is the caller attributed to create/update audit fields. There is
// no authenticated-user layer in this deployment; X-User-ID lets a caller
// identify itself, defaulting to "system" for unattended callers (cron,
// internal jobs).
func actor(c *gin.Context) string {
	if v := c.GetHeader("X-User-ID"); v != "" {
		return v
	}
	return "system"
}

func pageParams(c *gin.Context) (limit, offset int) {
	limit = 50
	offset = 0
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	if v := c.Query("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			offset = n
		}
	}
	return limit, offset
}
