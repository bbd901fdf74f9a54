package handlers

import (
	"net/http"

	"resto_pos_backend/internal/middleware"
	"resto_pos_backend/internal/services"
	"resto_pos_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// AuthHandler holds the auth service.
type AuthHandler struct {
	authService services.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(as services.AuthService) *AuthHandler {
	return &AuthHandler{authService: as}
}

// Login authenticates a user and returns an access token.
func (h *AuthHandler) Login(c *gin.Context) {
	var req services.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	resp, err := h.authService.Login(req)
	if err != nil {
		respondServiceError(c, err, "Login")
		return
	}
	utils.RespondOK(c, http.StatusOK, "logged in", resp)
}

// Me returns the authenticated user's profile with roles.
func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		utils.RespondFail(c, http.StatusUnauthorized, "authentication required")
		return
	}

	resp, err := h.authService.Me(userID)
	if err != nil {
		respondServiceError(c, err, "Me")
		return
	}
	utils.RespondOK(c, http.StatusOK, "profile", resp)
}

// Refresh issues a fresh access token for the current principal.
func (h *AuthHandler) Refresh(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		utils.RespondFail(c, http.StatusUnauthorized, "authentication required")
		return
	}
	username, _ := middleware.CurrentUsername(c)

	resp, err := h.authService.Refresh(userID, username)
	if err != nil {
		respondServiceError(c, err, "Refresh")
		return
	}
	utils.RespondOK(c, http.StatusOK, "token refreshed", resp)
}

// Logout signs the user off, optionally freeing the table they served.
func (h *AuthHandler) Logout(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		utils.RespondFail(c, http.StatusUnauthorized, "authentication required")
		return
	}

	// The body is optional: a bare logout frees nothing.
	var req services.LogoutRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, err)
			return
		}
	}

	if err := h.authService.Logout(userID, req); err != nil {
		respondServiceError(c, err, "Logout")
		return
	}
	utils.RespondOK(c, http.StatusOK, "logged out", nil)
}
