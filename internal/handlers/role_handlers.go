package handlers

import (
	"net/http"

	"resto_pos_backend/internal/services"
	"resto_pos_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// RoleHandler holds the role service.
type RoleHandler struct {
	roleService services.RoleService
}

// NewRoleHandler creates a new RoleHandler.
func NewRoleHandler(rs services.RoleService) *RoleHandler {
	return &RoleHandler{roleService: rs}
}

// GetRoles lists roles.
func (h *RoleHandler) GetRoles(c *gin.Context) {
	opts := ParseListOptions(c)

	roles, total, err := h.roleService.GetRoles(opts)
	if err != nil {
		respondServiceError(c, err, "GetRoles")
		return
	}
	utils.RespondOK(c, http.StatusOK, "roles", listData(roles, total, opts))
}

// GetRole returns one role with its permissions.
func (h *RoleHandler) GetRole(c *gin.Context) {
	roleID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	role, err := h.roleService.GetRoleByID(roleID)
	if err != nil {
		respondServiceError(c, err, "GetRole")
		return
	}
	utils.RespondOK(c, http.StatusOK, "role", role)
}

// CreateRole adds a role.
func (h *RoleHandler) CreateRole(c *gin.Context) {
	var req services.CreateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	role, err := h.roleService.CreateRole(req)
	if err != nil {
		respondServiceError(c, err, "CreateRole")
		return
	}
	utils.RespondOK(c, http.StatusCreated, "role created", role)
}

// UpdateRole renames a role.
func (h *RoleHandler) UpdateRole(c *gin.Context) {
	roleID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req services.UpdateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	role, err := h.roleService.UpdateRole(roleID, req)
	if err != nil {
		respondServiceError(c, err, "UpdateRole")
		return
	}
	utils.RespondOK(c, http.StatusOK, "role updated", role)
}

// DeleteRole removes a role.
func (h *RoleHandler) DeleteRole(c *gin.Context) {
	roleID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.roleService.DeleteRole(roleID); err != nil {
		respondServiceError(c, err, "DeleteRole")
		return
	}
	utils.RespondOK(c, http.StatusOK, "role deleted", nil)
}

// SyncPermissions replaces the role's permission set.
func (h *RoleHandler) SyncPermissions(c *gin.Context) {
	roleID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req services.SyncPermissionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	role, err := h.roleService.SyncPermissions(roleID, req.PermissionIDs)
	if err != nil {
		respondServiceError(c, err, "SyncPermissions")
		return
	}
	utils.RespondOK(c, http.StatusOK, "permissions updated", role)
}

// Export streams roles as a spreadsheet.
func (h *RoleHandler) Export(c *gin.Context) {
	format, ok := exportFormat(c)
	if !ok {
		return
	}

	data, err := h.roleService.ExportRoles(format)
	if err != nil {
		respondServiceError(c, err, "ExportRoles")
		return
	}
	serveExport(c, format, "roles", data)
}

// Import loads roles from an exported spreadsheet.
func (h *RoleHandler) Import(c *gin.Context) {
	file, format, ok := importUpload(c)
	if !ok {
		return
	}
	defer file.Close()

	imported, err := h.roleService.ImportRoles(format, file)
	if err != nil {
		respondServiceError(c, err, "ImportRoles")
		return
	}
	utils.RespondOK(c, http.StatusOK, "roles imported", gin.H{"imported": imported})
}
