package middleware

import (
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apierrors "github.com/bonesdao/onboarding/internal/api/shared/errors"
	"github.com/bonesdao/onboarding/internal/logger"
	"github.com/bonesdao/onboarding/internal/metrics"
	"github.com/bonesdao/onboarding/internal/ratelimit"
)

// RateLimit rejects clients over their budget for route with 429.
// A nil limiter disables the check; limiter errors let the request through.
func RateLimit(limiter ratelimit.Limiter, route string, m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		decision, err := limiter.Allow(ctx, route, c.ClientIP())
		if err != nil {
			logger.WarnCtx(ctx, "Rate limit check failed",
				zap.String("route", route),
				zap.Error(err))
			c.Next()
			return
		}

		if decision.Limit > 0 {
			c.Header("X-RateLimit-Limit", strconv.Itoa(decision.Limit))
			c.Header("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))
		}
		if decision.Degraded {
			c.Header("X-RateLimit-Status", "degraded")
		}

		if !decision.Allowed {
			retryAfter := max(int(math.Ceil(decision.RetryAfter.Seconds())), 1)
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			m.IncRateLimited(route)
			c.AbortWithStatusJSON(http.StatusTooManyRequests,
				apierrors.NewRateLimitedError("Too many requests", "retry after "+strconv.Itoa(retryAfter)+"s"))
			return
		}

		c.Next()
	}
}
