package users

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers profile routes. authMiddleware and activeOnly come
// from the auth feature, which itself depends on this package.
func RegisterRoutes(router *gin.RouterGroup, repo *Repository, authMiddleware, activeOnly gin.HandlerFunc) {
	handler := NewHandler(repo)

	users := router.Group("/users")
	{
		users.PATCH("/me", authMiddleware, activeOnly, handler.UpdateProfile)
		users.GET("/:id", handler.GetProfile)
	}
}
