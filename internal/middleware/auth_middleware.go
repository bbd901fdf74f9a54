package middleware

import (
	"net/http"
	"strings"

	"resto_pos_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// Context keys set by AuthMiddleware for downstream handlers.
const (
	ContextUserID   = "userID"
	ContextUsername = "username"
)

// AuthMiddleware creates a Gin middleware for JWT authentication.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			utils.RespondFail(c, http.StatusUnauthorized, "authorization header required")
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			utils.RespondFail(c, http.StatusUnauthorized, "invalid authorization header format, use Bearer <token>")
			return
		}

		claims, err := utils.ValidateToken(parts[1])
		if err != nil {
			utils.RespondFail(c, http.StatusUnauthorized, "invalid or expired token")
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextUsername, claims.Username)

		c.Next()
	}
}

// CurrentUserID reads the authenticated user ID placed in the context
// by AuthMiddleware.
func CurrentUserID(c *gin.Context) (int64, bool) {
	value, exists := c.Get(ContextUserID)
	if !exists {
		return 0, false
	}
	userID, ok := value.(int64)
	return userID, ok
}

// CurrentUsername reads the authenticated username from the context.
func CurrentUsername(c *gin.Context) (string, bool) {
	value, exists := c.Get(ContextUsername)
	if !exists {
		return "", false
	}
	username, ok := value.(string)
	return username, ok
}
