package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fixmarket/fixmarket/internal/telemetry"
)

// RequestLogging attaches a correlation ID to every request context and
// logs the request outcome with latency.
func RequestLogging() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		correlationID := c.GetHeader("X-Correlation-ID")
		if correlationID == "" {
			correlationID = telemetry.NewCorrelationID()
		}
		ctx := telemetry.WithCorrelationID(c.Request.Context(), correlationID)
		c.Request = c.Request.WithContext(ctx)
		c.Header("X-Correlation-ID", correlationID)

		c.Next()

		logger := telemetry.GetContextualLogger(ctx).WithFields(map[string]interface{}{
			"method":     c.Request.Method,
			"path":       c.FullPath(),
			"status":     c.Writer.Status(),
			"latency_ms": time.Since(start).Milliseconds(),
			"client_ip":  c.ClientIP(),
		})

		switch {
		case c.Writer.Status() >= 500:
			logger.Error("Request failed")
		case c.Writer.Status() >= 400:
			logger.Warn("Request rejected")
		default:
			logger.Debug("Request completed")
		}
	}
}
