package middleware

import (
	"time"

	"github.com/flexprice/flexprice/internal/logger"
	"github.com/flexprice/flexprice/internal/types"
	"github.com/gin-gonic/gin"
)

// LoggingMiddleware logs each request's outcome through the shared zap-backed logger.
func LoggingMiddleware(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		fields := []interface{}{
			"status", c.Writer.Status(),
			"method", c.Request.Method,
			"path", path,
			"query", raw,
			"latency_ms", latency.Milliseconds(),
			"tenant_id", types.GetTenantID(c.Request.Context()),
		}

		if requestID := types.GetRequestID(c.Request.Context()); requestID != "" {
			fields = append(fields, "request_id", requestID)
		}
		if len(c.Errors) > 0 {
			fields = append(fields, "errors", c.Errors.String())
		}

		switch status := c.Writer.Status(); {
		case status >= 500:
			log.Errorw("http_request", fields...)
		case status >= 400:
			log.Warnw("http_request", fields...)
		default:
			log.Infow("http_request", fields...)
		}
	}
}
