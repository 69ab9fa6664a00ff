package ratelimit

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/onthebell/onthebell-api/internal/pkg/response"
)

// KeyFunc extracts the limiter key from a request
type KeyFunc func(c *gin.Context) string

// Middleware limits requests per client IP
func Middleware(limiter *RateLimiter) gin.HandlerFunc {
	return CustomKeyMiddleware(limiter, func(c *gin.Context) string { return c.ClientIP() })
}

// UserKey keys on the authenticated user id set by the auth middleware,
// namespaced by prefix. Anonymous requests fall back to the client IP.
func UserKey(prefix string) KeyFunc {
	return func(c *gin.Context) string {
		if id, ok := c.Get("userID"); ok {
			if h, ok := id.(interface{ Hex() string }); ok {
				return prefix + ":" + h.Hex()
			}
		}
		return prefix + ":" + c.ClientIP()
	}
}

// CustomKeyMiddleware limits requests per key, falling back to the client IP
// when keyFunc yields nothing
func CustomKeyMiddleware(limiter *RateLimiter, keyFunc KeyFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := keyFunc(c)
		if key == "" {
			key = c.ClientIP()
		}

		limit := strconv.Itoa(limiter.Limit())

		if !limiter.Allow(key) {
			resetTime := limiter.GetResetTime(key)
			retryAfter := time.Until(resetTime).Round(time.Second)
			if retryAfter < time.Second {
				retryAfter = time.Second
			}

			c.Header("X-RateLimit-Limit", limit)
			c.Header("X-RateLimit-Remaining", "0")
			c.Header("X-RateLimit-Reset", resetTime.Format(time.RFC3339))
			c.Header("Retry-After", strconv.Itoa(int(retryAfter.Seconds())))

			c.AbortWithStatusJSON(http.StatusTooManyRequests, response.APIResponse{
				Success:    false,
				StatusCode: http.StatusTooManyRequests,
				Message:    "Rate limit exceeded. Try again later.",
				Code:       "RATE_LIMITED",
				Data: gin.H{
					"retry_after": retryAfter.String(),
					"reset_time":  resetTime.Format(time.RFC3339),
					"limit":       limiter.Limit(),
				},
			})
			return
		}

		c.Header("X-RateLimit-Limit", limit)
		c.Header("X-RateLimit-Remaining", strconv.Itoa(limiter.GetRemaining(key)))
		c.Header("X-RateLimit-Reset", limiter.GetResetTime(key).Format(time.RFC3339))

		c.Next()
	}
}
