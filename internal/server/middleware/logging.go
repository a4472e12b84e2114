// Package middleware holds gin middleware for the Frontend HTTP surface.
package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/distcluster/coordinator/internal/logger"
)

const requestIDHeader = "X-Request-Id"

// RequestLogging assigns a request id (reusing one supplied by the caller,
// if any) and logs method/path/status/latency once the handler returns,
// the same request-scoped logging shape the teacher's handlers follow.
func RequestLogging(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Writer.Header().Set(requestIDHeader, requestID)

		start := time.Now()
		c.Next()

		log.Debug("request handled",
			"request_id", requestID,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency", time.Since(start),
		)
	}
}
