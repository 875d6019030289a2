package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"applygen-backend/internal/shared/metrics"
	"applygen-backend/internal/shared/telemetry"
)

// Logging emits a structured log and a request metric per request.
func Logging() gin.HandlerFunc {
	return func(c *gin.Context) {
		if strings.EqualFold(c.Request.Method, "OPTIONS") {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()
		latency := time.Since(start)
		status := c.Writer.Status()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.ObserveHTTPRequest(route, c.Request.Method, status)

		userID, _ := c.Get(userIDKey)
		isGuest, _ := c.Get(isGuestKey)
		batchID, _ := c.Get("batchId")

		telemetry.Info("request.complete", map[string]any{
			"request_id":  RequestIDFromContext(c),
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"route":       route,
			"status":      status,
			"duration_ms": float64(latency.Microseconds()) / 1000.0,
			"user_id":     userID,
			"batch_id":    batchID,
			"is_guest":    isGuest,
			"client_ip":   c.ClientIP(),
			"user_agent":  c.Request.UserAgent(),
		})
	}
}
