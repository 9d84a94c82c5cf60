package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
)

const sessionIDKey = "sessionId"

// Session records the session a request targets, taken from the :id route
// parameter or the X-Session-Id header. It never rejects a request; handlers
// decide whether a session is required.
func Session() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.Param("id"))
		if id == "" {
			id = strings.TrimSpace(c.GetHeader("X-Session-Id"))
		}
		if id != "" {
			c.Set(sessionIDKey, id)
		}
		c.Next()
	}
}

// SessionIDFromContext fetches the session ID stored by Session middleware.
func SessionIDFromContext(c *gin.Context) string {
	if c == nil {
		return ""
	}
	val, _ := c.Get(sessionIDKey)
	if id, ok := val.(string); ok {
		return id
	}
	return ""
}
