package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/poabike/rental-backend/internal/auth"
)

// RoleKey for storing the caller role in the Gin context
const RoleKey = "role"

// APIKey classifies every request as developer or client from the
// x-api-key header. Requests without a recognized key never reach a
// handler.
func APIKey(developerKey, clientKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader("x-api-key")
		if key == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "API key required"})
			return
		}

		switch key {
		case developerKey:
			c.Set(RoleKey, auth.RoleDeveloper)
		case clientKey:
			c.Set(RoleKey, auth.RoleClient)
		default:
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "invalid API key"})
			return
		}

		c.Next()
	}
}

// GetRole returns the caller role set by APIKey.
func GetRole(c *gin.Context) (auth.Role, bool) {
	v, exists := c.Get(RoleKey)
	if !exists {
		return "", false
	}
	return v.(auth.Role), true
}
