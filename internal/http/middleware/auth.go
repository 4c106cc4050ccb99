package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
)

const accessTokenKey = "access_token"

// BearerToken stores the token of an "Authorization: Bearer ..." header.
// Requests without one pass through anonymously.
func BearerToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := strings.TrimSpace(c.GetHeader("Authorization"))
		scheme, token, ok := strings.Cut(header, " ")
		if ok && strings.EqualFold(scheme, "bearer") {
			if token = strings.TrimSpace(token); token != "" {
				c.Set(accessTokenKey, token)
			}
		}
		c.Next()
	}
}

// GetAccessToken returns the bearer token of the request, or "".
func GetAccessToken(c *gin.Context) string {
	if c == nil {
		return ""
	}
	if v, ok := c.Get(accessTokenKey); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
