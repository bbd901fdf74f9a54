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

// PermissionRepository defines the database operations for the
// permission catalog.
type PermissionRepository interface {
	CreatePermission(executor SQLExecutor, permission *models.Permission) (int64, error)
	GetPermissionByID(permissionID int64) (*models.Permission, error)
	GetPermissions(opts models.ListOptions) ([]models.Permission, int, error)
	UpdatePermission(executor SQLExecutor, permission *models.Permission) error
	DeletePermission(executor SQLExecutor, permissionID int64) error
}

type permissionRepository struct {
	db *sql.DB
}

// NewPermissionRepository creates a new instance of PermissionRepository.
func NewPermissionRepository(db *sql.DB) PermissionRepository {
	return &permissionRepository{db: db}
}

var permissionSearchFields = FieldMap{
	"name": "name",
}

var permissionSortFields = FieldMap{
	"id":         "id",
	"name":       "name",
	"created_at": "created_at",
	"updated_at": "updated_at",
}

func (r *permissionRepository) CreatePermission(executor SQLExecutor, permission *models.Permission) (int64, error) {
	query := `INSERT INTO permissions (name, created_at, updated_at)
	          VALUES ($1, $2, $3)
	          RETURNING id`

	permission.CreatedAt = time.Now()
	permission.UpdatedAt = permission.CreatedAt

	err := executor.QueryRow(query, permission.Name, permission.CreatedAt, permission.UpdatedAt).Scan(&permission.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return 0, fmt.Errorf("%w: permission %q", ErrDuplicateKey, permission.Name)
		}
		return 0, fmt.Errorf("%w: creating permission: %v", ErrDatabaseError, err)
	}
	return permission.ID, nil
}

func (r *permissionRepository) GetPermissionByID(permissionID int64) (*models.Permission, error) {
	permission := &models.Permission{}
	query := `SELECT id, name, created_at, updated_at FROM permissions WHERE id = $1`
	err := r.db.QueryRow(query, permissionID).Scan(
		&permission.ID, &permission.Name, &permission.CreatedAt, &permission.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: finding permission by ID %d: %v", ErrDatabaseError, permissionID, err)
	}
	return permission, nil
}

func (r *permissionRepository) GetPermissions(opts models.ListOptions) ([]models.Permission, int, error) {
	permissions := []models.Permission{}
	totalCount := 0

	var queryBuilder strings.Builder
	queryBuilder.WriteString(`
        SELECT id, name, created_at, updated_at,
               COUNT(*) OVER() as total_count
        FROM permissions`)

	var args []interface{}
	argCounter := 1

	if cond, searchArgs := SearchCondition(opts.Search, permissionSearchFields, argCounter); cond != "" {
		queryBuilder.WriteString(" WHERE " + cond)
		args = append(args, searchArgs...)
		argCounter += len(searchArgs)
	}

	if orderBy := OrderByClause(opts.Sort, permissionSortFields); orderBy != "" {
		queryBuilder.WriteString(orderBy)
	} else {
		queryBuilder.WriteString(" ORDER BY id")
	}

	limitClause, limitArgs := LimitOffsetClause(opts, argCounter)
	queryBuilder.WriteString(limitClause)
	args = append(args, limitArgs...)

	rows, err := r.db.Query(queryBuilder.String(), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: querying permissions: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var p models.Permission
		if err := rows.Scan(&p.ID, &p.Name, &p.CreatedAt, &p.UpdatedAt, &totalCount); err != nil {
			return nil, 0, fmt.Errorf("%w: scanning permission: %v", ErrDatabaseError, err)
		}
		permissions = append(permissions, p)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating permission rows: %v", ErrDatabaseError, err)
	}
	return permissions, totalCount, nil
}

func (r *permissionRepository) UpdatePermission(executor SQLExecutor, permission *models.Permission) error {
	result, err := executor.Exec(
		`UPDATE permissions SET name = $1, updated_at = $2 WHERE id = $3`,
		permission.Name, time.Now(), permission.ID,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return fmt.Errorf("%w: permission %q", ErrDuplicateKey, permission.Name)
		}
		return fmt.Errorf("%w: updating permission ID %d: %v", ErrDatabaseError, permission.ID, err)
	}
	return requireRowsAffected(result, permission.ID)
}

func (r *permissionRepository) DeletePermission(executor SQLExecutor, permissionID int64) error {
	result, err := executor.Exec(`DELETE FROM permissions WHERE id = $1`, permissionID)
	if err != nil {
		return fmt.Errorf("%w: deleting permission ID %d: %v", ErrDatabaseError, permissionID, err)
	}
	return requireRowsAffected(result, permissionID)
}
