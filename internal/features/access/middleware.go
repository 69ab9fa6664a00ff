package access

import (
	"github.com/gin-gonic/gin"

	"github.com/onthebell/onthebell-api/internal/pkg/response"
)

// SubjectFromContext returns the authenticated subject set by the auth middleware
func SubjectFromContext(c *gin.Context) Subject {
	v, exists := c.Get("user")
	if !exists {
		return nil
	}
	s, ok := v.(Subject)
	if !ok {
		return nil
	}
	return s
}

// RequireAdmin aborts unless the caller is moderator or above
func RequireAdmin() gin.HandlerFunc {
	return RequirePermission("")
}

// RequirePermission aborts unless the caller is an admin holding p.
// An empty p only demands an admin.
func RequirePermission(p Permission) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := Check(SubjectFromContext(c), Requirement{Permission: p}); err != nil {
			response.FromError(c, err)
			c.Abort()
			return
		}
		c.Next()
	}
}
