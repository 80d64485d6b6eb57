package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jchoi/storefront-backend/pkg/logger"
)

const ContextRequestID = "request_id"

// RequestLogger tags every request with a UUID, echoes it in the
// X-Request-ID header, and logs the request on completion.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set(ContextRequestID, requestID)
		c.Header("X-Request-ID", requestID)

		start := time.Now()
		c.Next()
		elapsed := time.Since(start)

		fields := map[string]interface{}{
			"request_id": requestID,
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     c.Writer.Status(),
			"latency_ms": elapsed.Milliseconds(),
			"client_ip":  c.ClientIP(),
		}
		if userID, ok := GetUserID(c); ok {
			fields["user_id"] = userID
		}

		switch {
		case c.Writer.Status() >= 500:
			logger.Error("Request failed", nil, fields)
		case c.Writer.Status() >= 400:
			logger.Warn("Request rejected", fields)
		default:
			logger.Info("Request completed", fields)
		}
	}
}

// GetRequestID returns the request's correlation ID
func GetRequestID(c *gin.Context) string {
	if value, exists := c.Get(ContextRequestID); exists {
		if id, ok := value.(string); ok {
			return id
		}
	}
	return ""
}
