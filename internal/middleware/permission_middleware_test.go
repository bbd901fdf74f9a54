package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type stubAuthz struct {
	permissions map[string]bool
	err         error
}

func (s stubAuthz) Can(userID int64, permission string) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	return s.permissions[permission], nil
}

func (s stubAuthz) PermissionsFor(userID int64) ([]string, error) {
	names := make([]string, 0, len(s.permissions))
	for name := range s.permissions {
		names = append(names, name)
	}
	return names, s.err
}

func permissionTestRouter(authz stubAuthz, authenticated bool) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.PUT("/tables/:id",
		func(c *gin.Context) {
			if authenticated {
				c.Set(ContextUserID, int64(7))
			}
		},
		RequirePermission(authz, "table.update"),
		func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"ok": true})
		},
	)
	return engine
}

func TestRequirePermissionAllowed(t *testing.T) {
	authz := stubAuthz{permissions: map[string]bool{"table.update": true}}
	engine := permissionTestRouter(authz, true)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/tables/3", nil)
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequirePermissionDenied(t *testing.T) {
	authz := stubAuthz{permissions: map[string]bool{"table.index": true}}
	engine := permissionTestRouter(authz, true)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/tables/3", nil)
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "table.update")
}

func TestRequirePermissionUnauthenticated(t *testing.T) {
	authz := stubAuthz{permissions: map[string]bool{"table.update": true}}
	engine := permissionTestRouter(authz, false)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/tables/3", nil)
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
