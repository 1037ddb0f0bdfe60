package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"github.com/fixmarket/fixmarket/internal/errors"
	"github.com/fixmarket/fixmarket/internal/telemetry"
)

// ErrorHandler recovers panics and converts errors attached to the gin
// context into a structured JSON response. AppError carries its own HTTP
// status; anything else becomes a 500.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				ctx := c.Request.Context()
				telemetry.GetContextualLogger(ctx).WithFields(map[string]interface{}{
					"operation":   "panic_recovery",
					"panic_value": fmt.Sprintf("%v", r),
					"stack_trace": string(debug.Stack()),
				}).Error("Panic recovered in request handler")

				appErr := errors.NewInternalError(fmt.Sprintf("panic: %v", r), nil).
					WithCorrelationID(telemetry.GetCorrelationID(ctx))
				c.AbortWithStatusJSON(http.StatusInternalServerError, appErr)
			}
		}()

		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err
		ctx := c.Request.Context()

		appErr, ok := err.(*errors.AppError)
		if !ok {
			appErr = errors.NewInternalError("Unexpected error", err)
		}
		if appErr.CorrelationID == "" {
			appErr.CorrelationID = telemetry.GetCorrelationID(ctx)
		}

		telemetry.GetContextualLogger(ctx).WithFields(map[string]interface{}{
			"error_type": string(appErr.Type),
			"error_code": appErr.Code,
		}).WithError(err).Warn("Request error")

		c.AbortWithStatusJSON(appErr.HTTPStatus, appErr)
	}
}
