package api

import (
	"net/http"

	v1 "github.com/flexprice/flexprice/internal/api/v1"
	"github.com/flexprice/flexprice/internal/config"
	"github.com/flexprice/flexprice/internal/logger"
	"github.com/flexprice/flexprice/internal/rest/middleware"
	"github.com/gin-gonic/gin"
)

// Handlers bundles every resource handler the router wires up. Grounded on
// the teacher's router.go Handlers struct, trimmed to the resources
// SPEC_FULL.md actually defines.
type Handlers struct {
	Customer     *v1.CustomerHandler
	Plan         *v1.PlanHandler
	Subscription *v1.SubscriptionHandler
	Event        *v1.EventHandler
	Invoice      *v1.InvoiceHandler
}

// NewRouter assembles the gin engine: global middleware, a health check,
// and the /v1 resource tree (spec.md §6.1).
func NewRouter(h *Handlers, cfg *config.Configuration, log *logger.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware)
	r.Use(middleware.TenantMiddleware())
	r.Use(middleware.CORSMiddleware(cfg.Server.AllowedOrigins))
	r.Use(middleware.LoggingMiddleware(log))
	r.Use(middleware.ErrorHandler())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1Group := r.Group("/v1")
	{
		customers := v1Group.Group("/customers")
		customers.POST("", h.Customer.CreateCustomer)
		customers.GET("", h.Customer.GetCustomers)
		customers.GET("/:id", h.Customer.GetCustomer)
		customers.PUT("/:id", h.Customer.UpdateCustomer)

		customers.POST("/:id/subscriptions", h.Subscription.CreateSubscription)
		customers.GET("/:id/subscriptions", h.Subscription.GetSubscriptions)
		customers.PUT("/:id/subscriptions/:sid/cancel", h.Subscription.CancelSubscription)

		plans := v1Group.Group("/plans")
		plans.POST("", h.Plan.CreatePlan)
		plans.GET("", h.Plan.GetPlans)
		plans.GET("/:id", h.Plan.GetPlan)
		plans.PUT("/:id", h.Plan.UpdatePlan)
		plans.POST("/:id/deactivate", h.Plan.DeactivatePlan)
		plans.POST("/:id/components", h.Plan.AddComponent)
		plans.DELETE("/:id/components/:cid", h.Plan.RemoveComponent)

		events := v1Group.Group("/events")
		events.POST("", h.Event.TrackEvent)
		events.POST("/batch", h.Event.BatchTrackEvents)
		events.GET("/customers/:id", h.Event.GetCustomerEvents)
		events.GET("/customers/:id/usage", h.Event.GetCustomerUsage)

		usage := v1Group.Group("/usage")
		usage.POST("/track", h.Event.TrackEvent)
		usage.GET("/customer/:id", h.Event.GetCustomerUsage)

		invoices := v1Group.Group("/invoices")
		invoices.POST("", h.Invoice.CreateInvoice)
		invoices.POST("/generate", h.Invoice.GenerateInvoices)
		invoices.GET("/:id", h.Invoice.GetInvoice)
		invoices.GET("/customer/:id", h.Invoice.GetCustomerInvoices)
		invoices.PUT("/:id/finalize", h.Invoice.FinalizeInvoice)
		invoices.PUT("/:id/void", h.Invoice.VoidInvoice)
		invoices.PUT("/:id/payment", h.Invoice.UpdatePaymentStatus)
		invoices.POST("/:id/items", h.Invoice.AddLineItem)
		invoices.DELETE("/:id/items/:iid", h.Invoice.RemoveLineItem)
	}

	return r
}
