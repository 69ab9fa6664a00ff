package auth

import (
	"github.com/getsentry/sentry-go"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"

	"github.com/onthebell/onthebell-api/internal/features/users"
	"github.com/onthebell/onthebell-api/internal/middleware"
	"github.com/onthebell/onthebell-api/internal/pkg/response"
)

// NewAuthMiddleware creates a Gin middleware for JWT authentication
func NewAuthMiddleware(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := middleware.BearerToken(c)
		if !ok {
			response.Unauthorized(c, "Authorization header required", "AUTH_REQUIRED")
			c.Abort()
			return
		}

		user, err := svc.Authenticate(c.Request.Context(), token)
		if err != nil {
			response.FromError(c, err)
			c.Abort()
			return
		}

		c.Set("user", user)
		c.Set("userID", user.ID)
		if hub := sentrygin.GetHubFromContext(c); hub != nil {
			hub.Scope().SetUser(sentry.User{ID: user.ID.Hex()})
		}
		c.Next()
	}
}

// RequireActive refuses suspended users. Expired suspensions were already
// lifted by the auth middleware.
func RequireActive() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := users.FromContext(c)
		if user == nil {
			response.Unauthorized(c, "Authentication required", "AUTH_REQUIRED")
			c.Abort()
			return
		}
		if user.IsSuspended {
			response.Forbidden(c, "Your account is suspended", "ACCOUNT_SUSPENDED")
			c.Abort()
			return
		}
		c.Next()
	}
}
