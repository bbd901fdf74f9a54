package handlers

import (
	"net/http"

	"resto_pos_backend/internal/services"
	"resto_pos_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// UserHandler holds the user service.
type UserHandler struct {
	userService services.UserService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(us services.UserService) *UserHandler {
	return &UserHandler{userService: us}
}

// GetUsers lists user accounts.
func (h *UserHandler) GetUsers(c *gin.Context) {
	opts := ParseListOptions(c)

	users, total, err := h.userService.GetUsers(opts)
	if err != nil {
		respondServiceError(c, err, "GetUsers")
		return
	}
	utils.RespondOK(c, http.StatusOK, "users", listData(users, total, opts))
}

// GetUser returns one user with their roles.
func (h *UserHandler) GetUser(c *gin.Context) {
	userID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	user, err := h.userService.GetUserByID(userID)
	if err != nil {
		respondServiceError(c, err, "GetUser")
		return
	}
	utils.RespondOK(c, http.StatusOK, "user", user)
}

// CreateUser adds an account, optionally with initial roles.
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req services.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	user, err := h.userService.CreateUser(req)
	if err != nil {
		respondServiceError(c, err, "CreateUser")
		return
	}
	utils.RespondOK(c, http.StatusCreated, "user created", user)
}

// UpdateUser renames an account and optionally resets its password.
func (h *UserHandler) UpdateUser(c *gin.Context) {
	userID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req services.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	user, err := h.userService.UpdateUser(userID, req)
	if err != nil {
		respondServiceError(c, err, "UpdateUser")
		return
	}
	utils.RespondOK(c, http.StatusOK, "user updated", user)
}

// DeleteUser removes an account.
func (h *UserHandler) DeleteUser(c *gin.Context) {
	userID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.userService.DeleteUser(userID); err != nil {
		respondServiceError(c, err, "DeleteUser")
		return
	}
	utils.RespondOK(c, http.StatusOK, "user deleted", nil)
}

// SyncRoles replaces the user's role set.
func (h *UserHandler) SyncRoles(c *gin.Context) {
	userID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req services.SyncRolesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	user, err := h.userService.SyncRoles(userID, req.RoleIDs)
	if err != nil {
		respondServiceError(c, err, "SyncRoles")
		return
	}
	utils.RespondOK(c, http.StatusOK, "roles updated", user)
}

// Export streams user accounts, hashes included, as a spreadsheet.
func (h *UserHandler) Export(c *gin.Context) {
	format, ok := exportFormat(c)
	if !ok {
		return
	}

	data, err := h.userService.ExportUsers(format)
	if err != nil {
		respondServiceError(c, err, "ExportUsers")
		return
	}
	serveExport(c, format, "users", data)
}

// Import loads accounts from an exported spreadsheet.
func (h *UserHandler) Import(c *gin.Context) {
	file, format, ok := importUpload(c)
	if !ok {
		return
	}
	defer file.Close()

	imported, err := h.userService.ImportUsers(format, file)
	if err != nil {
		respondServiceError(c, err, "ImportUsers")
		return
	}
	utils.RespondOK(c, http.StatusOK, "users imported", gin.H{"imported": imported})
}
