package middleware

import (
	"context"
	"net/http"

	"github.com/flexprice/flexprice/internal/types"
	"github.com/gin-gonic/gin"
)

// DefaultTenantID is used when a caller does not present a tenant header,
// so that a freshly started single-tenant deployment works out of the box.
const DefaultTenantID = "default"

// TenantMiddleware binds every request to a tenant from the X-Tenant-ID
// header, scoping every downstream repository call. Authentication of the
// caller against that tenant is a deployment-specific concern and is not
// handled here.
func TenantMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tenantID := c.GetHeader("X-Tenant-ID")
		if tenantID == "" {
			tenantID = DefaultTenantID
		}

		ctx := context.WithValue(c.Request.Context(), types.CtxTenantID, tenantID)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// RequireTenant rejects requests that somehow reached a handler without a
// tenant bound to the context; defensive, since TenantMiddleware always
// assigns one.
func RequireTenant(c *gin.Context) {
	if types.GetTenantID(c.Request.Context()) == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "missing tenant"})
		return
	}
	c.Next()
}
