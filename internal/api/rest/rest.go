package rest

import (
	"github.com/gin-gonic/gin"

	"github.com/bonesdao/onboarding/internal/api/middleware"
	"github.com/bonesdao/onboarding/internal/auth"
	"github.com/bonesdao/onboarding/internal/metrics"
	"github.com/bonesdao/onboarding/internal/ratelimit"
)

// SetupRoutes configures all REST API routes
func SetupRoutes(router *gin.Engine, handler Handler, gateway auth.Gateway, limiter ratelimit.Limiter, m *metrics.Metrics) {
	// Health and metrics endpoints (no auth, no version prefix)
	router.GET("/health", handler.HealthCheck)
	router.GET("/metrics", gin.WrapH(m.Handler()))

	v1 := router.Group("/api/v1")
	{
		// Applicant endpoints (open, limited per client)
		statusLimit := middleware.RateLimit(limiter, ratelimit.RouteStatus, m)
		v1.POST("/onboarding/submit", middleware.RateLimit(limiter, ratelimit.RouteSubmit, m), handler.Submit)
		v1.GET("/onboarding/status", statusLimit, handler.CheckStatus)
		v1.POST("/onboarding/status", statusLimit, handler.CheckStatus)

		// Credential endpoints (open)
		loginLimit := middleware.RateLimit(limiter, ratelimit.RouteLogin, m)
		v1.POST("/admin/login", loginLimit, handler.Login)
		v1.POST("/admin/refresh-token", loginLimit, handler.RefreshToken)

		// Review and ledger endpoints (requires an access token)
		admin := v1.Group("/admin", middleware.Auth(gateway))
		{
			admin.GET("/verify-token", handler.VerifyToken)
			admin.GET("/submissions", handler.ListSubmissions)
			admin.POST("/update-submission-status", handler.UpdateSubmissionStatus)
			admin.GET("/onboarded", handler.ListOnboarded)
			admin.POST("/save-transaction", handler.SaveTransaction)
			admin.GET("/transaction-records", handler.ListTransactionRecords)
			admin.GET("/transaction-stats", handler.TransactionStats)
			admin.POST("/pending-transactions", handler.TrackPending)
		}
	}
}
