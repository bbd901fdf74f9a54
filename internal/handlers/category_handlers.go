package handlers

import (
	"net/http"

	"resto_pos_backend/internal/services"
	"resto_pos_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// CategoryHandler holds the category service.
type CategoryHandler struct {
	categoryService services.CategoryService
}

// NewCategoryHandler creates a new CategoryHandler.
func NewCategoryHandler(cs services.CategoryService) *CategoryHandler {
	return &CategoryHandler{categoryService: cs}
}

// GetCategories lists menu categories.
func (h *CategoryHandler) GetCategories(c *gin.Context) {
	opts := ParseListOptions(c)

	categories, total, err := h.categoryService.GetCategories(opts)
	if err != nil {
		respondServiceError(c, err, "GetCategories")
		return
	}
	utils.RespondOK(c, http.StatusOK, "categories", listData(categories, total, opts))
}

// GetCategory returns one category.
func (h *CategoryHandler) GetCategory(c *gin.Context) {
	categoryID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	category, err := h.categoryService.GetCategoryByID(categoryID)
	if err != nil {
		respondServiceError(c, err, "GetCategory")
		return
	}
	utils.RespondOK(c, http.StatusOK, "category", category)
}

// CreateCategory adds a category.
func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	var req services.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	category, err := h.categoryService.CreateCategory(req)
	if err != nil {
		respondServiceError(c, err, "CreateCategory")
		return
	}
	utils.RespondOK(c, http.StatusCreated, "category created", category)
}

// UpdateCategory renames a category.
func (h *CategoryHandler) UpdateCategory(c *gin.Context) {
	categoryID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req services.UpdateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	category, err := h.categoryService.UpdateCategory(categoryID, req)
	if err != nil {
		respondServiceError(c, err, "UpdateCategory")
		return
	}
	utils.RespondOK(c, http.StatusOK, "category updated", category)
}

// DeleteCategory removes a category.
func (h *CategoryHandler) DeleteCategory(c *gin.Context) {
	categoryID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.categoryService.DeleteCategory(categoryID); err != nil {
		respondServiceError(c, err, "DeleteCategory")
		return
	}
	utils.RespondOK(c, http.StatusOK, "category deleted", nil)
}

// Export streams categories as a spreadsheet.
func (h *CategoryHandler) Export(c *gin.Context) {
	format, ok := exportFormat(c)
	if !ok {
		return
	}

	data, err := h.categoryService.ExportCategories(format)
	if err != nil {
		respondServiceError(c, err, "ExportCategories")
		return
	}
	serveExport(c, format, "categories", data)
}

// Import loads categories from an exported spreadsheet.
func (h *CategoryHandler) Import(c *gin.Context) {
	file, format, ok := importUpload(c)
	if !ok {
		return
	}
	defer file.Close()

	imported, err := h.categoryService.ImportCategories(format, file)
	if err != nil {
		respondServiceError(c, err, "ImportCategories")
		return
	}
	utils.RespondOK(c, http.StatusOK, "categories imported", gin.H{"imported": imported})
}
