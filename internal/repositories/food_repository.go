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

// FoodRepository defines the database operations for menu foods.
type FoodRepository interface {
	CreateFood(executor SQLExecutor, food *models.Food) (int64, error)
	GetFoodByID(foodID int64) (*models.Food, error)
	GetFoods(opts models.FoodListOptions) ([]models.Food, int, error)
	GetAllFoods() ([]models.Food, error)
	UpdateFood(executor SQLExecutor, food *models.Food) error
	UpdateFoodImage(executor SQLExecutor, foodID int64, imagePath string) error
	DeleteFood(executor SQLExecutor, foodID int64) error
	// CountExisting reports how many of the given food IDs exist, used
	// to validate order line items in one round trip.
	CountExisting(executor SQLExecutor, foodIDs []int64) (int, error)
}

type foodRepository struct {
	db *sql.DB
}

// NewFoodRepository creates a new instance of FoodRepository.
func NewFoodRepository(db *sql.DB) FoodRepository {
	return &foodRepository{db: db}
}

var foodSearchFields = FieldMap{
	"name":        "f.name",
	"description": "f.description",
	"price":       "f.price::text",
	"discount":    "f.discount::text",
}

var foodSortFields = FieldMap{
	"id":          "f.id",
	"name":        "f.name",
	"description": "f.description",
	"price":       "f.price",
	"discount":    "f.discount",
	"created_at":  "f.created_at",
	"updated_at":  "f.updated_at",
}

const foodColumns = `f.id, f.category_id, f.name, f.description, f.price, f.discount, f.image,
	       f.created_at, f.updated_at, c.name as category_name`

func scanFood(row interface{ Scan(...interface{}) error }, f *models.Food, extra ...interface{}) error {
	var image sql.NullString
	var categoryName sql.NullString

	dest := []interface{}{
		&f.ID, &f.CategoryID, &f.Name, &f.Description, &f.Price, &f.Discount, &image,
		&f.CreatedAt, &f.UpdatedAt, &categoryName,
	}
	dest = append(dest, extra...)
	if err := row.Scan(dest...); err != nil {
		return err
	}

	if image.Valid {
		f.Image = &image.String
	}
	if categoryName.Valid {
		f.Category = &models.Category{ID: f.CategoryID, Name: categoryName.String}
	}
	return nil
}

func (r *foodRepository) CreateFood(executor SQLExecutor, food *models.Food) (int64, error) {
	query := `INSERT INTO foods (category_id, name, description, price, discount, image, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	          RETURNING id`

	if food.CreatedAt.IsZero() {
		food.CreatedAt = time.Now()
	}
	if food.UpdatedAt.IsZero() {
		food.UpdatedAt = time.Now()
	}

	err := executor.QueryRow(query,
		food.CategoryID, food.Name, food.Description, food.Price, food.Discount, food.Image,
		food.CreatedAt, food.UpdatedAt,
	).Scan(&food.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23503" {
			return 0, fmt.Errorf("%w: category %d for food: %v", ErrNotFound, food.CategoryID, err)
		}
		return 0, fmt.Errorf("%w: creating food: %v", ErrDatabaseError, err)
	}
	return food.ID, nil
}

func (r *foodRepository) GetFoodByID(foodID int64) (*models.Food, error) {
	food := &models.Food{}
	query := `SELECT ` + foodColumns + `
	          FROM foods f
	          LEFT JOIN categories c ON f.category_id = c.id
	          WHERE f.id = $1`
	err := scanFood(r.db.QueryRow(query, foodID), food)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting food by ID %d: %v", ErrDatabaseError, foodID, err)
	}
	return food, nil
}

// presetOrderBy maps the "filter" query presets to orderings. "popular"
// ranks by all-time ordered quantity.
func presetOrderBy(preset string) string {
	switch preset {
	case models.FoodPresetNew:
		return " ORDER BY f.created_at DESC"
	case models.FoodPresetRandom:
		return " ORDER BY RANDOM()"
	case models.FoodPresetPopular:
		return " ORDER BY (SELECT COALESCE(SUM(d.qty), 0) FROM detail_orders d WHERE d.food_id = f.id) DESC"
	case models.FoodPresetName:
		return " ORDER BY f.name"
	case models.FoodPresetPrice:
		return " ORDER BY f.price"
	default:
		return ""
	}
}

func (r *foodRepository) GetFoods(opts models.FoodListOptions) ([]models.Food, int, error) {
	foods := []models.Food{}
	totalCount := 0

	var queryBuilder strings.Builder
	queryBuilder.WriteString(`
        SELECT ` + foodColumns + `,
               COUNT(*) OVER() as total_count
        FROM foods f
        LEFT JOIN categories c ON f.category_id = c.id`)

	var conditions []string
	var args []interface{}
	argCounter := 1

	if len(opts.CategoryIDs) > 0 {
		conditions = append(conditions, fmt.Sprintf("f.category_id = ANY($%d)", argCounter))
		args = append(args, pq.Array(opts.CategoryIDs))
		argCounter++
	}
	if cond, searchArgs := SearchCondition(opts.Search, foodSearchFields, argCounter); cond != "" {
		conditions = append(conditions, cond)
		args = append(args, searchArgs...)
		argCounter += len(searchArgs)
	}

	if len(conditions) > 0 {
		queryBuilder.WriteString(" WHERE " + strings.Join(conditions, " AND "))
	}

	if orderBy := presetOrderBy(opts.Preset); orderBy != "" {
		queryBuilder.WriteString(orderBy)
	} else if orderBy := OrderByClause(opts.Sort, foodSortFields); orderBy != "" {
		queryBuilder.WriteString(orderBy)
	} else {
		queryBuilder.WriteString(" ORDER BY f.id")
	}

	limitClause, limitArgs := LimitOffsetClause(opts.ListOptions, argCounter)
	queryBuilder.WriteString(limitClause)
	args = append(args, limitArgs...)

	rows, err := r.db.Query(queryBuilder.String(), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: querying foods: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var f models.Food
		if err := scanFood(rows, &f, &totalCount); err != nil {
			return nil, 0, fmt.Errorf("%w: scanning food: %v", ErrDatabaseError, err)
		}
		foods = append(foods, f)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating food rows: %v", ErrDatabaseError, err)
	}
	return foods, totalCount, nil
}

func (r *foodRepository) GetAllFoods() ([]models.Food, error) {
	foods := []models.Food{}
	query := `SELECT ` + foodColumns + `
	          FROM foods f
	          LEFT JOIN categories c ON f.category_id = c.id
	          ORDER BY f.id`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("%w: querying all foods: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var f models.Food
		if err := scanFood(rows, &f); err != nil {
			return nil, fmt.Errorf("%w: scanning food: %v", ErrDatabaseError, err)
		}
		foods = append(foods, f)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating food rows: %v", ErrDatabaseError, err)
	}
	return foods, nil
}

func (r *foodRepository) UpdateFood(executor SQLExecutor, food *models.Food) error {
	query := `UPDATE foods SET category_id = $1, name = $2, description = $3, price = $4, discount = $5, updated_at = $6
	          WHERE id = $7`
	result, err := executor.Exec(query,
		food.CategoryID, food.Name, food.Description, food.Price, food.Discount, time.Now(), food.ID,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23503" {
			return fmt.Errorf("%w: category %d for food", ErrNotFound, food.CategoryID)
		}
		return fmt.Errorf("%w: updating food ID %d: %v", ErrDatabaseError, food.ID, err)
	}
	return requireRowsAffected(result, food.ID)
}

func (r *foodRepository) UpdateFoodImage(executor SQLExecutor, foodID int64, imagePath string) error {
	result, err := executor.Exec(
		`UPDATE foods SET image = $1, updated_at = $2 WHERE id = $3`,
		imagePath, time.Now(), foodID,
	)
	if err != nil {
		return fmt.Errorf("%w: updating food image for ID %d: %v", ErrDatabaseError, foodID, err)
	}
	return requireRowsAffected(result, foodID)
}

func (r *foodRepository) DeleteFood(executor SQLExecutor, foodID int64) error {
	result, err := executor.Exec(`DELETE FROM foods WHERE id = $1`, foodID)
	if err != nil {
		return fmt.Errorf("%w: deleting food ID %d: %v", ErrDatabaseError, foodID, err)
	}
	return requireRowsAffected(result, foodID)
}

func (r *foodRepository) CountExisting(executor SQLExecutor, foodIDs []int64) (int, error) {
	var count int
	err := executor.QueryRow(
		`SELECT COUNT(DISTINCT id) FROM foods WHERE id = ANY($1)`,
		pq.Array(foodIDs),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("%w: counting foods: %v", ErrDatabaseError, err)
	}
	return count, nil
}
