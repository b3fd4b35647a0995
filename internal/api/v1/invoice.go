package v1

import (
	"net/http"
	"time"

	"github.com/flexprice/flexprice/internal/api/dto"
	"github.com/flexprice/flexprice/internal/config"
	"github.com/flexprice/flexprice/internal/domain/invoice"
	ierr "github.com/flexprice/flexprice/internal/errors"
	"github.com/flexprice/flexprice/internal/logger"
	"github.com/flexprice/flexprice/internal/service"
	"github.com/flexprice/flexprice/internal/types"
	"github.com/flexprice/flexprice/internal/validator"
	"github.com/gin-gonic/gin"
)

// InvoiceHandler exposes the Invoice resource: manual creation, retrieval,
// status transitions, line-item edits and bulk generation (spec.md §6.1).
type InvoiceHandler struct {
	invoices  invoice.Repository
	manager   *service.InvoiceManager
	assembler *service.InvoiceAssembler
	cfg       *config.Configuration
	logger    *logger.Logger
}

func NewInvoiceHandler(invoices invoice.Repository, manager *service.InvoiceManager, assembler *service.InvoiceAssembler, cfg *config.Configuration, logger *logger.Logger) *InvoiceHandler {
	return &InvoiceHandler{invoices: invoices, manager: manager, assembler: assembler, cfg: cfg, logger: logger}
}

func (h *InvoiceHandler) CreateInvoice(c *gin.Context) {
	var req dto.CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).WithHint("invalid request body").Mark(ierr.ErrValidation))
		return
	}
	if err := validator.ValidateRequest(&req); err != nil {
		c.Error(err)
		return
	}

	inv := req.ToInvoice(h.cfg.Billing.PaymentTermDays)
	if err := inv.Validate(); err != nil {
		c.Error(err)
		return
	}

	now := time.Now().UTC()
	inv.ID = types.GenerateUUIDWithPrefix(types.UUIDPrefixInvoice)
	inv.BaseModel = types.BaseModel{
		TenantID:  tenantID(c),
		Status:    types.StatusActive,
		CreatedAt: now,
		UpdatedAt: now,
		CreatedBy: actor(c),
		UpdatedBy: actor(c),
	}
	for _, item := range inv.LineItems {
		item.ID = types.GenerateUUIDWithPrefix(types.UUIDPrefixInvoiceItem)
		item.InvoiceID = inv.ID
		item.BaseModel = inv.BaseModel
	}

	if err := h.invoices.CreateWithLineItems(c.Request.Context(), inv); err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, inv)
}

func (h *InvoiceHandler) GetInvoice(c *gin.Context) {
	inv, err := h.invoices.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, inv)
}

func (h *InvoiceHandler) GetCustomerInvoices(c *gin.Context) {
	limit, offset := pageParams(c)
	invoices, err := h.invoices.List(c.Request.Context(), c.Param("id"), limit, offset)
	if err != nil {
		c.Error(err)
		return
	}
	if status := c.Query("status"); status != "" {
		filtered := invoices[:0]
		for _, inv := range invoices {
			if string(inv.InvoiceStatus) == status {
				filtered = append(filtered, inv)
			}
		}
		invoices = filtered
	}
	c.JSON(http.StatusOK, gin.H{"invoices": invoices})
}

func (h *InvoiceHandler) FinalizeInvoice(c *gin.Context) {
	inv, err := h.manager.Finalize(c.Request.Context(), c.Param("id"), tenantID(c), actor(c))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, inv)
}

func (h *InvoiceHandler) VoidInvoice(c *gin.Context) {
	var req struct {
		Reason string `json:"reason"`
	}
	_ = c.ShouldBindJSON(&req)

	inv, err := h.manager.Void(c.Request.Context(), c.Param("id"), req.Reason, tenantID(c), actor(c))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, inv)
}

func (h *InvoiceHandler) UpdatePaymentStatus(c *gin.Context) {
	var req dto.UpdatePaymentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).WithHint("invalid request body").Mark(ierr.ErrValidation))
		return
	}
	if err := validator.ValidateRequest(&req); err != nil {
		c.Error(err)
		return
	}

	inv, err := h.manager.UpdatePaymentStatus(c.Request.Context(), c.Param("id"), req.Status, req.Amount, actor(c))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, inv)
}

func (h *InvoiceHandler) AddLineItem(c *gin.Context) {
	var req dto.AddLineItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).WithHint("invalid request body").Mark(ierr.ErrValidation))
		return
	}
	if err := validator.ValidateRequest(&req); err != nil {
		c.Error(err)
		return
	}

	inv, err := h.manager.AddLineItem(c.Request.Context(), c.Param("id"), req.ToLineItem(c.Param("id")))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, inv)
}

func (h *InvoiceHandler) RemoveLineItem(c *gin.Context) {
	inv, err := h.manager.RemoveLineItem(c.Request.Context(), c.Param("id"), c.Param("iid"))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, inv)
}

// GenerateInvoices runs InvoiceAssembler.GenerateForRange over a window,
// one invoice per customer with a subscription active at the window's
// start (spec.md §5 Invoice Generation). start_date defaults to 30 days ago,
// end_date defaults to now.
func (h *InvoiceHandler) GenerateInvoices(c *gin.Context) {
	end := time.Now().UTC()
	start := end.AddDate(0, 0, -30)

	if v := c.Query("start_date"); v != "" {
		parsed, err := time.Parse(time.RFC3339, v)
		if err != nil {
			c.Error(ierr.WithError(err).WithHint("start_date must be RFC3339").Mark(ierr.ErrValidation))
			return
		}
		start = parsed
	}
	if v := c.Query("end_date"); v != "" {
		parsed, err := time.Parse(time.RFC3339, v)
		if err != nil {
			c.Error(ierr.WithError(err).WithHint("end_date must be RFC3339").Mark(ierr.ErrValidation))
			return
		}
		end = parsed
	}

	var customerID *string
	if v := c.Query("customer_id"); v != "" {
		customerID = &v
	}

	invoices, err := h.assembler.GenerateForRange(c.Request.Context(), start, end, customerID, tenantID(c), actor(c))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"invoices": invoices, "count": len(invoices)})
}
