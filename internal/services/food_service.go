package services

import (
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"resto_pos_backend/internal/models"
	"resto_pos_backend/internal/repositories"
	"resto_pos_backend/internal/spreadsheet"
	"resto_pos_backend/pkg/utils"
)

// --- DTOs ---

// CreateFoodRequest is bound from a multipart form; the image file
// itself is handled by the handler and passed in as a stored path.
type CreateFoodRequest struct {
	CategoryID  int64   `form:"category_id" binding:"required"`
	Name        string  `form:"name" binding:"required"`
	Description string  `form:"description"`
	Price       float64 `form:"price" binding:"required,gt=0"`
	Discount    float64 `form:"discount" binding:"gte=0,lte=100"`
}

type UpdateFoodRequest struct {
	CategoryID  *int64   `json:"category_id"`
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price" binding:"omitempty,gt=0"`
	Discount    *float64 `json:"discount" binding:"omitempty,gte=0,lte=100"`
}

type FoodResponse struct {
	ID          int64             `json:"id"`
	CategoryID  int64             `json:"category_id"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Price       float64           `json:"price"`
	Discount    float64           `json:"discount"`
	Image       *string           `json:"image"`
	Category    *CategoryResponse `json:"category,omitempty"`
	CreatedAt   string            `json:"created_at"`
	UpdatedAt   string            `json:"updated_at"`
}

func newFoodResponse(f *models.Food) *FoodResponse {
	resp := &FoodResponse{
		ID:          f.ID,
		CategoryID:  f.CategoryID,
		Name:        f.Name,
		Description: f.Description,
		Price:       f.Price,
		Discount:    f.Discount,
		Image:       f.Image,
		CreatedAt:   formatTime(f.CreatedAt),
		UpdatedAt:   formatTime(f.UpdatedAt),
	}
	if f.Category != nil {
		resp.Category = &CategoryResponse{
			ID:        f.Category.ID,
			Name:      f.Category.Name,
			CreatedAt: formatTime(f.Category.CreatedAt),
			UpdatedAt: formatTime(f.Category.UpdatedAt),
		}
	}
	return resp
}

// --- FoodService Interface ---

type FoodService interface {
	CreateFood(req CreateFoodRequest, imagePath *string) (*FoodResponse, error)
	GetFoods(opts models.FoodListOptions) ([]FoodResponse, int, error)
	GetFoodByID(foodID int64) (*FoodResponse, error)
	UpdateFood(foodID int64, req UpdateFoodRequest) (*FoodResponse, error)
	// SetImage stores the new image path and removes the previous file.
	SetImage(foodID int64, imagePath string) (*FoodResponse, error)
	DeleteFood(foodID int64) error

	ExportFoods(format string) ([]byte, error)
	ImportFoods(format string, r io.Reader) (int, error)
}

type foodService struct {
	foodRepo repositories.FoodRepository
	db       *sql.DB
}

// NewFoodService creates a new instance of FoodService.
func NewFoodService(foodRepo repositories.FoodRepository, db *sql.DB) FoodService {
	return &foodService{foodRepo: foodRepo, db: db}
}

func (s *foodService) CreateFood(req CreateFoodRequest, imagePath *string) (*FoodResponse, error) {
	food := models.Food{
		CategoryID:  req.CategoryID,
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Price:       req.Price,
		Discount:    req.Discount,
		Image:       imagePath,
	}
	if food.Name == "" {
		return nil, fmt.Errorf("%w: food name cannot be empty", ErrValidation)
	}

	if _, err := s.foodRepo.CreateFood(s.db, &food); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: category %d", ErrCategoryNotFound, req.CategoryID)
		}
		return nil, fmt.Errorf("creating food: %w", err)
	}
	return s.GetFoodByID(food.ID)
}

func (s *foodService) GetFoods(opts models.FoodListOptions) ([]FoodResponse, int, error) {
	foods, totalCount, err := s.foodRepo.GetFoods(opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get foods: %w", err)
	}
	responses := make([]FoodResponse, 0, len(foods))
	for i := range foods {
		responses = append(responses, *newFoodResponse(&foods[i]))
	}
	return responses, totalCount, nil
}

func (s *foodService) GetFoodByID(foodID int64) (*FoodResponse, error) {
	food, err := s.foodRepo.GetFoodByID(foodID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrFoodNotFound
		}
		return nil, fmt.Errorf("failed to get food: %w", err)
	}
	return newFoodResponse(food), nil
}

func (s *foodService) UpdateFood(foodID int64, req UpdateFoodRequest) (*FoodResponse, error) {
	food, err := s.foodRepo.GetFoodByID(foodID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrFoodNotFound
		}
		return nil, fmt.Errorf("failed to get food: %w", err)
	}

	if req.CategoryID != nil {
		food.CategoryID = *req.CategoryID
	}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: food name cannot be empty", ErrValidation)
		}
		food.Name = name
	}
	if req.Description != nil {
		food.Description = *req.Description
	}
	if req.Price != nil {
		food.Price = *req.Price
	}
	if req.Discount != nil {
		food.Discount = *req.Discount
	}

	if err := s.foodRepo.UpdateFood(s.db, food); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: category %d", ErrCategoryNotFound, food.CategoryID)
		}
		return nil, fmt.Errorf("updating food: %w", err)
	}
	return s.GetFoodByID(foodID)
}

func (s *foodService) SetImage(foodID int64, imagePath string) (*FoodResponse, error) {
	food, err := s.foodRepo.GetFoodByID(foodID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrFoodNotFound
		}
		return nil, fmt.Errorf("failed to get food: %w", err)
	}

	if err := s.foodRepo.UpdateFoodImage(s.db, foodID, imagePath); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrFoodNotFound
		}
		return nil, fmt.Errorf("updating food image: %w", err)
	}

	removeImageFile(food.Image)
	return s.GetFoodByID(foodID)
}

func (s *foodService) DeleteFood(foodID int64) error {
	food, err := s.foodRepo.GetFoodByID(foodID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrFoodNotFound
		}
		return fmt.Errorf("failed to get food: %w", err)
	}

	if err := s.foodRepo.DeleteFood(s.db, foodID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrFoodNotFound
		}
		return fmt.Errorf("deleting food: %w", err)
	}

	removeImageFile(food.Image)
	return nil
}

// removeImageFile is best-effort: a missing file is not an error worth
// failing the request over.
func removeImageFile(path *string) {
	if path == nil || *path == "" {
		return
	}
	if err := os.Remove(*path); err != nil && !os.IsNotExist(err) {
		utils.LogError(err, "removing food image "+*path)
	}
}

var foodExportHeaders = []string{"id", "category_id", "name", "description", "price", "discount", "image", "created_at", "updated_at"}

func (s *foodService) ExportFoods(format string) ([]byte, error) {
	foods, err := s.foodRepo.GetAllFoods()
	if err != nil {
		return nil, fmt.Errorf("failed to get foods for export: %w", err)
	}

	rows := make([][]string, 0, len(foods))
	for _, f := range foods {
		image := ""
		if f.Image != nil {
			image = *f.Image
		}
		rows = append(rows, []string{
			strconv.FormatInt(f.ID, 10),
			strconv.FormatInt(f.CategoryID, 10),
			f.Name,
			f.Description,
			strconv.FormatFloat(f.Price, 'f', 2, 64),
			strconv.FormatFloat(f.Discount, 'f', 2, 64),
			image,
			formatTime(f.CreatedAt),
			formatTime(f.UpdatedAt),
		})
	}
	return spreadsheet.Write(format, "foods", foodExportHeaders, rows)
}

func (s *foodService) ImportFoods(format string, r io.Reader) (int, error) {
	rows, err := spreadsheet.Read(format, r)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if len(rows) <= 1 {
		return 0, nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to start database transaction: %w", err)
	}
	defer tx.Rollback()

	imported := 0
	for i, row := range rows[1:] {
		if len(row) < 9 {
			return 0, fmt.Errorf("%w: row %d has %d columns, want 9", ErrValidation, i+2, len(row))
		}
		categoryID, err := strconv.ParseInt(row[1], 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: row %d category_id: %v", ErrValidation, i+2, err)
		}
		price, err := strconv.ParseFloat(row[4], 64)
		if err != nil {
			return 0, fmt.Errorf("%w: row %d price: %v", ErrValidation, i+2, err)
		}
		discount, err := strconv.ParseFloat(row[5], 64)
		if err != nil {
			return 0, fmt.Errorf("%w: row %d discount: %v", ErrValidation, i+2, err)
		}
		if discount < 0 || discount > 100 {
			return 0, fmt.Errorf("%w: row %d discount must be between 0 and 100", ErrValidation, i+2)
		}
		createdAt, err := parseTime(row[7])
		if err != nil {
			return 0, fmt.Errorf("%w: row %d created_at: %v", ErrValidation, i+2, err)
		}
		updatedAt, err := parseTime(row[8])
		if err != nil {
			return 0, fmt.Errorf("%w: row %d updated_at: %v", ErrValidation, i+2, err)
		}

		food := models.Food{
			CategoryID:  categoryID,
			Name:        strings.TrimSpace(row[2]),
			Description: row[3],
			Price:       price,
			Discount:    discount,
			CreatedAt:   createdAt,
			UpdatedAt:   updatedAt,
		}
		if food.Name == "" {
			return 0, fmt.Errorf("%w: row %d food name cannot be empty", ErrValidation, i+2)
		}
		food.Image = utils.NewNullString(row[6])
		if _, err := s.foodRepo.CreateFood(tx, &food); err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return 0, fmt.Errorf("%w: row %d category %d", ErrCategoryNotFound, i+2, categoryID)
			}
			return 0, fmt.Errorf("importing row %d: %w", i+2, err)
		}
		imported++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit food import: %w", err)
	}
	return imported, nil
}
