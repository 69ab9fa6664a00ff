package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// BearerToken extracts the token from the Authorization header. Both
// "Bearer <token>" (case-insensitive) and a raw token are accepted. Websocket
// clients that cannot set headers may pass ?token= instead.
func BearerToken(c *gin.Context) (string, bool) {
	authHeader := strings.TrimSpace(c.GetHeader("Authorization"))
	if authHeader == "" {
		if t := c.Query("token"); t != "" && c.IsWebsocket() {
			return t, true
		}
		return "", false
	}

	fields := strings.Fields(authHeader)
	if len(fields) == 2 && strings.EqualFold(fields[0], "Bearer") {
		return fields[1], true
	}
	if len(fields) == 1 && !strings.EqualFold(fields[0], "Bearer") {
		return fields[0], true
	}
	return "", false
}
