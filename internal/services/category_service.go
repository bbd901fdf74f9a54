package services

import (
	"database/sql"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"resto_pos_backend/internal/models"
	"resto_pos_backend/internal/repositories"
	"resto_pos_backend/internal/spreadsheet"
)

// --- DTOs ---

type CreateCategoryRequest struct {
	Name string `json:"name" binding:"required"`
}

type UpdateCategoryRequest struct {
	Name string `json:"name" binding:"required"`
}

type CategoryResponse struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

func newCategoryResponse(c *models.Category) *CategoryResponse {
	return &CategoryResponse{
		ID:        c.ID,
		Name:      c.Name,
		CreatedAt: formatTime(c.CreatedAt),
		UpdatedAt: formatTime(c.UpdatedAt),
	}
}

// --- CategoryService Interface ---

type CategoryService interface {
	CreateCategory(req CreateCategoryRequest) (*CategoryResponse, error)
	GetCategories(opts models.ListOptions) ([]CategoryResponse, int, error)
	GetCategoryByID(categoryID int64) (*CategoryResponse, error)
	UpdateCategory(categoryID int64, req UpdateCategoryRequest) (*CategoryResponse, error)
	DeleteCategory(categoryID int64) error

	ExportCategories(format string) ([]byte, error)
	ImportCategories(format string, r io.Reader) (int, error)
}

type categoryService struct {
	categoryRepo repositories.CategoryRepository
	db           *sql.DB
}

// NewCategoryService creates a new instance of CategoryService.
func NewCategoryService(categoryRepo repositories.CategoryRepository, db *sql.DB) CategoryService {
	return &categoryService{categoryRepo: categoryRepo, db: db}
}

func (s *categoryService) CreateCategory(req CreateCategoryRequest) (*CategoryResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: category name cannot be empty", ErrValidation)
	}

	category := models.Category{Name: name}
	if _, err := s.categoryRepo.CreateCategory(s.db, &category); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, fmt.Errorf("%w: category %q", ErrDuplicate, name)
		}
		return nil, fmt.Errorf("creating category: %w", err)
	}
	return newCategoryResponse(&category), nil
}

func (s *categoryService) GetCategories(opts models.ListOptions) ([]CategoryResponse, int, error) {
	categories, totalCount, err := s.categoryRepo.GetCategories(opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get categories: %w", err)
	}
	responses := make([]CategoryResponse, 0, len(categories))
	for i := range categories {
		responses = append(responses, *newCategoryResponse(&categories[i]))
	}
	return responses, totalCount, nil
}

func (s *categoryService) GetCategoryByID(categoryID int64) (*CategoryResponse, error) {
	category, err := s.categoryRepo.GetCategoryByID(categoryID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	return newCategoryResponse(category), nil
}

func (s *categoryService) UpdateCategory(categoryID int64, req UpdateCategoryRequest) (*CategoryResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: category name cannot be empty", ErrValidation)
	}

	category := models.Category{ID: categoryID, Name: name}
	if err := s.categoryRepo.UpdateCategory(s.db, &category); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrCategoryNotFound
		}
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, fmt.Errorf("%w: category %q", ErrDuplicate, name)
		}
		return nil, fmt.Errorf("updating category: %w", err)
	}
	return s.GetCategoryByID(categoryID)
}

func (s *categoryService) DeleteCategory(categoryID int64) error {
	if err := s.categoryRepo.DeleteCategory(s.db, categoryID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrCategoryNotFound
		}
		return fmt.Errorf("deleting category: %w", err)
	}
	return nil
}

var categoryExportHeaders = []string{"id", "name", "created_at", "updated_at"}

func (s *categoryService) ExportCategories(format string) ([]byte, error) {
	categories, err := s.categoryRepo.GetAllCategories()
	if err != nil {
		return nil, fmt.Errorf("failed to get categories for export: %w", err)
	}

	rows := make([][]string, 0, len(categories))
	for _, c := range categories {
		rows = append(rows, []string{
			strconv.FormatInt(c.ID, 10),
			c.Name,
			formatTime(c.CreatedAt),
			formatTime(c.UpdatedAt),
		})
	}
	return spreadsheet.Write(format, "categories", categoryExportHeaders, rows)
}

func (s *categoryService) ImportCategories(format string, r io.Reader) (int, error) {
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
		if len(row) < 2 {
			return 0, fmt.Errorf("%w: row %d has %d columns, want at least 2", ErrValidation, i+2, len(row))
		}
		category := models.Category{Name: strings.TrimSpace(row[1])}
		if category.Name == "" {
			return 0, fmt.Errorf("%w: row %d category name cannot be empty", ErrValidation, i+2)
		}
		if _, err := s.categoryRepo.CreateCategory(tx, &category); err != nil {
			if errors.Is(err, repositories.ErrDuplicateKey) {
				return 0, fmt.Errorf("%w: row %d category %q", ErrDuplicate, i+2, category.Name)
			}
			return 0, fmt.Errorf("importing row %d: %w", i+2, err)
		}
		imported++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit category import: %w", err)
	}
	return imported, nil
}
