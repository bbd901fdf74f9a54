package handlers

import (
	"fmt"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"resto_pos_backend/internal/models"
	"resto_pos_backend/internal/services"
	"resto_pos_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// FoodHandler holds the food service.
type FoodHandler struct {
	foodService services.FoodService
}

// NewFoodHandler creates a new FoodHandler.
func NewFoodHandler(fs services.FoodService) *FoodHandler {
	return &FoodHandler{foodService: fs}
}

// GetFoods lists menu entries with search, category filter and preset
// orderings.
func (h *FoodHandler) GetFoods(c *gin.Context) {
	opts := models.FoodListOptions{
		ListOptions: ParseListOptions(c),
		Preset:      c.Query("filter"),
	}

	if categories := c.Query("categories"); categories != "" {
		for _, part := range strings.Split(categories, ",") {
			if id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64); err == nil && id > 0 {
				opts.CategoryIDs = append(opts.CategoryIDs, id)
			}
		}
	}

	foods, total, err := h.foodService.GetFoods(opts)
	if err != nil {
		respondServiceError(c, err, "GetFoods")
		return
	}
	utils.RespondOK(c, http.StatusOK, "foods", listData(foods, total, opts.ListOptions))
}

// GetFood returns one menu entry.
func (h *FoodHandler) GetFood(c *gin.Context) {
	foodID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	food, err := h.foodService.GetFoodByID(foodID)
	if err != nil {
		respondServiceError(c, err, "GetFood")
		return
	}
	utils.RespondOK(c, http.StatusOK, "food", food)
}

// CreateFood adds a menu entry, optionally with an image upload.
func (h *FoodHandler) CreateFood(c *gin.Context) {
	var req services.CreateFoodRequest
	if err := c.ShouldBind(&req); err != nil {
		respondBindError(c, err)
		return
	}

	var imagePath *string
	if fileHeader, err := c.FormFile("image"); err == nil {
		path, err := saveUploadedImage(c, fileHeader)
		if err != nil {
			utils.LogError(err, "CreateFood: storing image")
			utils.RespondFail(c, http.StatusInternalServerError, "failed to store image")
			return
		}
		imagePath = &path
	}

	food, err := h.foodService.CreateFood(req, imagePath)
	if err != nil {
		respondServiceError(c, err, "CreateFood")
		return
	}
	utils.RespondOK(c, http.StatusCreated, "food created", food)
}

// UpdateFood changes menu entry fields.
func (h *FoodHandler) UpdateFood(c *gin.Context) {
	foodID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req services.UpdateFoodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	food, err := h.foodService.UpdateFood(foodID, req)
	if err != nil {
		respondServiceError(c, err, "UpdateFood")
		return
	}
	utils.RespondOK(c, http.StatusOK, "food updated", food)
}

// SetImage replaces the stored image for a menu entry.
func (h *FoodHandler) SetImage(c *gin.Context) {
	foodID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		utils.RespondFail(c, http.StatusBadRequest, "image upload is required")
		return
	}
	path, err := saveUploadedImage(c, fileHeader)
	if err != nil {
		utils.LogError(err, "SetImage: storing image")
		utils.RespondFail(c, http.StatusInternalServerError, "failed to store image")
		return
	}

	food, err := h.foodService.SetImage(foodID, path)
	if err != nil {
		respondServiceError(c, err, "SetImage")
		return
	}
	utils.RespondOK(c, http.StatusOK, "image updated", food)
}

// DeleteFood removes a menu entry and its stored image.
func (h *FoodHandler) DeleteFood(c *gin.Context) {
	foodID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.foodService.DeleteFood(foodID); err != nil {
		respondServiceError(c, err, "DeleteFood")
		return
	}
	utils.RespondOK(c, http.StatusOK, "food deleted", nil)
}

// Export streams the menu as a spreadsheet.
func (h *FoodHandler) Export(c *gin.Context) {
	format, ok := exportFormat(c)
	if !ok {
		return
	}

	data, err := h.foodService.ExportFoods(format)
	if err != nil {
		respondServiceError(c, err, "ExportFoods")
		return
	}
	serveExport(c, format, "foods", data)
}

// Import loads menu entries from an exported spreadsheet.
func (h *FoodHandler) Import(c *gin.Context) {
	file, format, ok := importUpload(c)
	if !ok {
		return
	}
	defer file.Close()

	imported, err := h.foodService.ImportFoods(format, file)
	if err != nil {
		respondServiceError(c, err, "ImportFoods")
		return
	}
	utils.RespondOK(c, http.StatusOK, "foods imported", gin.H{"imported": imported})
}

// saveUploadedImage stores an uploaded image under the configured
// upload directory and returns the stored path.
func saveUploadedImage(c *gin.Context, fileHeader *multipart.FileHeader) (string, error) {
	dir := utils.Getenv("UPLOAD_DIR", "uploads/foods")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating upload directory: %w", err)
	}

	name := fmt.Sprintf("%d_%s", time.Now().UnixNano(), filepath.Base(fileHeader.Filename))
	path := filepath.Join(dir, name)
	if err := c.SaveUploadedFile(fileHeader, path); err != nil {
		return "", fmt.Errorf("saving uploaded file: %w", err)
	}
	return path, nil
}
