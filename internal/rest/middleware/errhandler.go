package middleware

import (
	ierr "github.com/flexprice/flexprice/internal/errors"
	"github.com/gin-gonic/gin"
)

// ErrorHandler converts the last error attached to the gin context into
// the standard JSON error envelope, deriving the HTTP status and the
// user-facing message from the hints/details attached via ierr.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 {
			err := c.Errors.Last().Err

			response := ierr.ErrorResponse{
				Success: false,
				Error: ierr.ErrorDetail{
					Message: ierr.DisplayMessage(err),
					Details: ierr.SafeDetails(err),
				},
			}

			c.JSON(ierr.HTTPStatusFromErr(err), response)
		}
	}
}
