package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// UserIDKey is the gin context key holding the authenticated user's ID.
const UserIDKey = "user_id"

type TokenValidator interface {
	ValidateToken(token string) (uint, error)
}

func JWTAuth(tokens TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization header required", "code": "unauthorized"})
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header format", "code": "unauthorized"})
			return
		}

		userID, err := tokens.ValidateToken(parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token", "code": "unauthorized"})
			return
		}

		c.Set(UserIDKey, userID)
		c.Next()
	}
}

// QueryTokenAuth accepts the token from the "token" query parameter when no
// Authorization header is present. Browsers cannot set headers on websocket
// upgrades.
func QueryTokenAuth(tokens TokenValidator) gin.HandlerFunc {
	headerAuth := JWTAuth(tokens)
	return func(c *gin.Context) {
		token := c.Query("token")
		if c.GetHeader("Authorization") != "" || token == "" {
			headerAuth(c)
			return
		}

		userID, err := tokens.ValidateToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token", "code": "unauthorized"})
			return
		}
		c.Set(UserIDKey, userID)
		c.Next()
	}
}
