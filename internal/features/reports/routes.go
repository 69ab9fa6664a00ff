package reports

import (
	"github.com/gin-gonic/gin"

	"github.com/onthebell/onthebell-api/internal/features/access"
	"github.com/onthebell/onthebell-api/internal/pkg/ratelimit"
)

func RegisterRoutes(router *gin.RouterGroup, handler *Handler, authMiddleware, activeOnly gin.HandlerFunc, limiter *ratelimit.RateLimiter) {
	RegisterValidations()

	router.POST("/reports",
		authMiddleware,
		activeOnly,
		ratelimit.CustomKeyMiddleware(limiter, ratelimit.UserKey("report")),
		handler.CreateReport,
	)

	admin := router.Group("/admin/reports")
	admin.Use(authMiddleware, access.RequireAdmin())
	{
		admin.GET("", handler.ListReports)
		admin.POST("/resolve", handler.ResolveReport)
		admin.GET("/stats", handler.GetStats)
	}
}
