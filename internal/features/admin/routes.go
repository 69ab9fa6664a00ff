package admin

import (
	"github.com/gin-gonic/gin"

	"github.com/onthebell/onthebell-api/internal/features/access"
)

func RegisterRoutes(router *gin.RouterGroup, handler *Handler, authMiddleware gin.HandlerFunc) {
	admin := router.Group("/admin/users")
	admin.Use(authMiddleware, access.RequireAdmin())
	{
		admin.PUT("", handler.UpdateUser)
		admin.DELETE("", handler.DeleteUser)
	}
}
