package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"candleChart/internal/ports"
)

func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeaderKey)
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Header(RequestIDHeaderKey, requestID)
		c.Set(RequestIDContextKey, requestID)
		c.Next()
	}
}

// loggerMiddleware logs each request through the application logger.
func loggerMiddleware(logger ports.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := map[string]interface{}{
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     c.Writer.Status(),
			"latency":    time.Since(start).String(),
			"request_id": c.GetString(RequestIDContextKey),
		}
		if c.Writer.Status() >= 500 {
			logger.Warn(c.Request.Context(), "HTTP request failed", fields)
			return
		}
		logger.Debug(c.Request.Context(), "HTTP request", fields)
	}
}
