package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"market-service/internal/auth"
)

// SessionCookie is the HTTP-only cookie carrying the session token.
const SessionCookie = "token"

// AuthMiddleware validates the session cookie and sets userID on the context.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(SessionCookie)
		if err != nil || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "login required"})
			return
		}

		userID, err := auth.ValidateToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set("userID", userID)
		c.Next()
	}
}

// OptionalAuth sets userID when a valid session cookie is present but never
// rejects the request. Used by public pages that adapt to the viewer.
func OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, err := c.Cookie(SessionCookie); err == nil && token != "" {
			if userID, err := auth.ValidateToken(token); err == nil {
				c.Set("userID", userID)
			}
		}
		c.Next()
	}
}
