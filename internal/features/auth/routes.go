package auth

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers the auth routes
func RegisterRoutes(router *gin.RouterGroup, svc *Service, authMiddleware gin.HandlerFunc) {
	handler := NewHandler(svc)

	auth := router.Group("/auth")
	{
		auth.POST("/session", handler.CreateSession)
		auth.POST("/refresh", handler.Refresh)
		auth.GET("/me", authMiddleware, handler.Me)
	}
}
