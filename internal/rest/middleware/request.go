package middleware

import (
	"context"

	"github.com/flexprice/flexprice/internal/types"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestIDMiddleware stamps every request with an opaque request id, either
// forwarded from the caller or freshly generated, for log correlation.
func RequestIDMiddleware(c *gin.Context) {
	requestID := c.GetHeader("X-Request-ID")
	if requestID == "" {
		requestID = uuid.New().String()
	}

	ctx := context.WithValue(c.Request.Context(), types.CtxRequestID, requestID)
	c.Request = c.Request.WithContext(ctx)
	c.Header("X-Request-ID", requestID)
	c.Next()
}
