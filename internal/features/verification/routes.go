package verification

import (
	"github.com/gin-gonic/gin"

	"github.com/onthebell/onthebell-api/internal/features/access"
	"github.com/onthebell/onthebell-api/internal/pkg/ratelimit"
)

func RegisterRoutes(router *gin.RouterGroup, handler *Handler, authMiddleware, activeOnly gin.HandlerFunc, limiter *ratelimit.RateLimiter) {
	verifications := router.Group("/verifications")
	verifications.Use(authMiddleware)
	{
		verifications.POST("",
			activeOnly,
			ratelimit.CustomKeyMiddleware(limiter, ratelimit.UserKey("verification")),
			handler.SubmitVerification,
		)
		verifications.GET("/me", handler.ListMine)
	}

	admin := router.Group("/admin/verifications")
	admin.Use(authMiddleware, access.RequireAdmin())
	{
		admin.GET("", handler.ListRequests)
		admin.PATCH("", handler.DecideRequest)
	}
}
