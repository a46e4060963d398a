package middleware

import (
	"net/http"

	"farmerfriend-backend/internal/logger"
	"farmerfriend-backend/internal/metrics"
	"farmerfriend-backend/internal/ratelimit"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RateLimit caps attempts per client IP on each route. A failing store lets
// the request through.
func RateLimit(l ratelimit.Limiter, m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		route := c.FullPath()
		allowed, err := l.Allow(c.Request.Context(), route+"|"+c.ClientIP())
		if err != nil {
			logger.FromCtx(c.Request.Context()).Warn("rate limiter unavailable", zap.String("route", route), zap.Error(err))
			c.Next()
			return
		}
		if !allowed {
			m.RateLimited(route)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"success": false,
				"message": "Too many requests, please try again later",
			})
			return
		}
		c.Next()
	}
}
