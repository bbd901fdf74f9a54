package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"resto_pos_backend/internal/models"

	"github.com/lib/pq"
)

// CategoryRepository defines the database operations for menu categories.
type CategoryRepository interface {
	CreateCategory(executor SQLExecutor, category *models.Category) (int64, error)
	GetCategoryByID(categoryID int64) (*models.Category, error)
	GetCategories(opts models.ListOptions) ([]models.Category, int, error)
	GetAllCategories() ([]models.Category, error)
	UpdateCategory(executor SQLExecutor, category *models.Category) error
	DeleteCategory(executor SQLExecutor, categoryID int64) error
}

type categoryRepository struct {
	db *sql.DB
}

// NewCategoryRepository creates a new instance of CategoryRepository.
func NewCategoryRepository(db *sql.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

var categorySearchFields = FieldMap{
	"name": "name",
}

var categorySortFields = FieldMap{
	"id":         "id",
	"name":       "name",
	"created_at": "created_at",
	"updated_at": "updated_at",
}

func (r *categoryRepository) CreateCategory(executor SQLExecutor, category *models.Category) (int64, error) {
	query := `INSERT INTO categories (name, created_at, updated_at)
	          VALUES ($1, $2, $3)
	          RETURNING id`

	if category.CreatedAt.IsZero() {
		category.CreatedAt = time.Now()
	}
	if category.UpdatedAt.IsZero() {
		category.UpdatedAt = time.Now()
	}

	err := executor.QueryRow(query, category.Name, category.CreatedAt, category.UpdatedAt).Scan(&category.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return 0, fmt.Errorf("%w: category name %q", ErrDuplicateKey, category.Name)
		}
		return 0, fmt.Errorf("%w: creating category: %v", ErrDatabaseError, err)
	}
	return category.ID, nil
}

func (r *categoryRepository) GetCategoryByID(categoryID int64) (*models.Category, error) {
	category := &models.Category{}
	query := `SELECT id, name, created_at, updated_at FROM categories WHERE id = $1`
	err := r.db.QueryRow(query, categoryID).Scan(
		&category.ID, &category.Name, &category.CreatedAt, &category.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting category by ID %d: %v", ErrDatabaseError, categoryID, err)
	}
	return category, nil
}

func (r *categoryRepository) GetCategories(opts models.ListOptions) ([]models.Category, int, error) {
	categories := []models.Category{}
	totalCount := 0

	var queryBuilder strings.Builder
	queryBuilder.WriteString(`
        SELECT id, name, created_at, updated_at,
               COUNT(*) OVER() as total_count
        FROM categories`)

	var args []interface{}
	argCounter := 1

	if cond, searchArgs := SearchCondition(opts.Search, categorySearchFields, argCounter); cond != "" {
		queryBuilder.WriteString(" WHERE " + cond)
		args = append(args, searchArgs...)
		argCounter += len(searchArgs)
	}

	if orderBy := OrderByClause(opts.Sort, categorySortFields); orderBy != "" {
		queryBuilder.WriteString(orderBy)
	} else {
		queryBuilder.WriteString(" ORDER BY id")
	}

	limitClause, limitArgs := LimitOffsetClause(opts, argCounter)
	queryBuilder.WriteString(limitClause)
	args = append(args, limitArgs...)

	rows, err := r.db.Query(queryBuilder.String(), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: querying categories: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.CreatedAt, &c.UpdatedAt, &totalCount); err != nil {
			return nil, 0, fmt.Errorf("%w: scanning category: %v", ErrDatabaseError, err)
		}
		categories = append(categories, c)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating category rows: %v", ErrDatabaseError, err)
	}
	return categories, totalCount, nil
}

func (r *categoryRepository) GetAllCategories() ([]models.Category, error) {
	categories := []models.Category{}
	rows, err := r.db.Query(`SELECT id, name, created_at, updated_at FROM categories ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("%w: querying all categories: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("%w: scanning category: %v", ErrDatabaseError, err)
		}
		categories = append(categories, c)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating category rows: %v", ErrDatabaseError, err)
	}
	return categories, nil
}

func (r *categoryRepository) UpdateCategory(executor SQLExecutor, category *models.Category) error {
	result, err := executor.Exec(
		`UPDATE categories SET name = $1, updated_at = $2 WHERE id = $3`,
		category.Name, time.Now(), category.ID,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return fmt.Errorf("%w: category name %q", ErrDuplicateKey, category.Name)
		}
		return fmt.Errorf("%w: updating category ID %d: %v", ErrDatabaseError, category.ID, err)
	}
	return requireRowsAffected(result, category.ID)
}

func (r *categoryRepository) DeleteCategory(executor SQLExecutor, categoryID int64) error {
	result, err := executor.Exec(`DELETE FROM categories WHERE id = $1`, categoryID)
	if err != nil {
		return fmt.Errorf("%w: deleting category ID %d: %v", ErrDatabaseError, categoryID, err)
	}
	return requireRowsAffected(result, categoryID)
}
