package handlers

import (
	"net/http"

	"resto_pos_backend/internal/services"
	"resto_pos_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// PermissionHandler holds the permission service.
type PermissionHandler struct {
	permissionService services.PermissionService
}

// NewPermissionHandler creates a new PermissionHandler.
func NewPermissionHandler(ps services.PermissionService) *PermissionHandler {
	return &PermissionHandler{permissionService: ps}
}

// GetPermissions lists the permission catalog.
func (h *PermissionHandler) GetPermissions(c *gin.Context) {
	opts := ParseListOptions(c)

	permissions, total, err := h.permissionService.GetPermissions(opts)
	if err != nil {
		respondServiceError(c, err, "GetPermissions")
		return
	}
	utils.RespondOK(c, http.StatusOK, "permissions", listData(permissions, total, opts))
}

// GetPermission returns one permission.
func (h *PermissionHandler) GetPermission(c *gin.Context) {
	permissionID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	permission, err := h.permissionService.GetPermissionByID(permissionID)
	if err != nil {
		respondServiceError(c, err, "GetPermission")
		return
	}
	utils.RespondOK(c, http.StatusOK, "permission", permission)
}

// CreatePermission adds a permission.
func (h *PermissionHandler) CreatePermission(c *gin.Context) {
	var req services.CreatePermissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	permission, err := h.permissionService.CreatePermission(req)
	if err != nil {
		respondServiceError(c, err, "CreatePermission")
		return
	}
	utils.RespondOK(c, http.StatusCreated, "permission created", permission)
}

// UpdatePermission renames a permission.
func (h *PermissionHandler) UpdatePermission(c *gin.Context) {
	permissionID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req services.UpdatePermissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	permission, err := h.permissionService.UpdatePermission(permissionID, req)
	if err != nil {
		respondServiceError(c, err, "UpdatePermission")
		return
	}
	utils.RespondOK(c, http.StatusOK, "permission updated", permission)
}

// DeletePermission removes a permission.
func (h *PermissionHandler) DeletePermission(c *gin.Context) {
	permissionID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.permissionService.DeletePermission(permissionID); err != nil {
		respondServiceError(c, err, "DeletePermission")
		return
	}
	utils.RespondOK(c, http.StatusOK, "permission deleted", nil)
}

// Export streams the permission catalog as a spreadsheet.
func (h *PermissionHandler) Export(c *gin.Context) {
	format, ok := exportFormat(c)
	if !ok {
		return
	}

	data, err := h.permissionService.ExportPermissions(format)
	if err != nil {
		respondServiceError(c, err, "ExportPermissions")
		return
	}
	serveExport(c, format, "permissions", data)
}

// Import loads permissions from an exported spreadsheet.
func (h *PermissionHandler) Import(c *gin.Context) {
	file, format, ok := importUpload(c)
	if !ok {
		return
	}
	defer file.Close()

	imported, err := h.permissionService.ImportPermissions(format, file)
	if err != nil {
		respondServiceError(c, err, "ImportPermissions")
		return
	}
	utils.RespondOK(c, http.StatusOK, "permissions imported", gin.H{"imported": imported})
}
