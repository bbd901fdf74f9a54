package middleware

import (
	"net/http"

	"resto_pos_backend/internal/services"
	"resto_pos_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// RequirePermission gates a route behind a named permission such as
// "table.update". The effective permission set is resolved per request,
// so role and permission edits apply without a re-login. AuthMiddleware
// must run first.
func RequirePermission(authz services.AuthzService, permission string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := CurrentUserID(c)
		if !ok {
			utils.RespondFail(c, http.StatusUnauthorized, "authentication required")
			return
		}

		allowed, err := authz.Can(userID, permission)
		if err != nil {
			utils.LogError(err, "resolving permissions")
			utils.RespondFail(c, http.StatusInternalServerError, "failed to resolve permissions")
			return
		}
		if !allowed {
			utils.RespondFail(c, http.StatusForbidden, "permission denied: "+permission)
			return
		}

		c.Next()
	}
}
