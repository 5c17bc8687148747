package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ridloal/woodkits-store/internal/platform/logger"
)

// RequestLogger writes one structured line per request.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := logger.Fields{
			"method":     c.Request.Method,
			"path":       c.FullPath(),
			"status":     c.Writer.Status(),
			"latency_ms": time.Since(start).Milliseconds(),
			"request_id": RequestIDFromContext(c.Request.Context()),
			"client_ip":  c.ClientIP(),
		}
		if len(c.Errors) > 0 {
			fields["errors"] = c.Errors.String()
		}

		switch status := c.Writer.Status(); {
		case status >= 500:
			logger.Error("request failed", nil, fields)
		case status >= 400:
			logger.Warn("request rejected", fields)
		default:
			logger.Info("request served", fields)
		}
	}
}
