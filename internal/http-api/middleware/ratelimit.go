package middleware

import (
	"log/slog"
	"net/http"

	"yamdb/internal/metrics"
	"yamdb/internal/ratelimit"

	"github.com/gin-gonic/gin"
)

// RateLimit rejects clients that exceed the limiter's budget with 429.
// Limiter failures let the request through.
func RateLimit(limiter ratelimit.Limiter, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		allowed, err := limiter.Allow(c.Request.Context(), c.ClientIP())
		if err != nil {
			logger.WarnContext(c.Request.Context(), "rate limiter unavailable", "error", err)
			c.Next()
			return
		}
		if !allowed {
			metrics.RateLimited.WithLabelValues(c.FullPath()).Inc()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
			return
		}
		c.Next()
	}
}
