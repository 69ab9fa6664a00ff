package middleware

import (
	"time"

	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
)

// Sentry attaches a Sentry hub to each request and reports panics
func Sentry() gin.HandlerFunc {
	return sentrygin.New(sentrygin.Options{
		Repanic: true,
		Timeout: 2 * time.Second,
	})
}

// SentryTags tags the request hub with the request ID. Register after Logger
// and Sentry.
func SentryTags() gin.HandlerFunc {
	return func(c *gin.Context) {
		if hub := sentrygin.GetHubFromContext(c); hub != nil {
			hub.Scope().SetTag("request_id", c.GetString("requestID"))
		}
		c.Next()
	}
}
