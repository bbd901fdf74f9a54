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

// RoleRepository defines the database operations for roles and their
// permission grants.
type RoleRepository interface {
	CreateRole(executor SQLExecutor, role *models.Role) (int64, error)
	GetRoleByID(roleID int64) (*models.Role, error)
	GetRoles(opts models.ListOptions) ([]models.Role, int, error)
	UpdateRole(executor SQLExecutor, role *models.Role) error
	DeleteRole(executor SQLExecutor, roleID int64) error

	SyncPermissions(executor SQLExecutor, roleID int64, permissionIDs []int64) error
	GetPermissionsForRole(roleID int64) ([]models.Permission, error)
}

type roleRepository struct {
	db *sql.DB
}

// NewRoleRepository creates a new instance of RoleRepository.
func NewRoleRepository(db *sql.DB) RoleRepository {
	return &roleRepository{db: db}
}

var roleSearchFields = FieldMap{
	"name": "name",
}

var roleSortFields = FieldMap{
	"id":         "id",
	"name":       "name",
	"created_at": "created_at",
	"updated_at": "updated_at",
}

func (r *roleRepository) CreateRole(executor SQLExecutor, role *models.Role) (int64, error) {
	query := `INSERT INTO roles (name, created_at, updated_at)
	          VALUES ($1, $2, $3)
	          RETURNING id`

	role.CreatedAt = time.Now()
	role.UpdatedAt = role.CreatedAt

	err := executor.QueryRow(query, role.Name, role.CreatedAt, role.UpdatedAt).Scan(&role.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return 0, fmt.Errorf("%w: role %q", ErrDuplicateKey, role.Name)
		}
		return 0, fmt.Errorf("%w: creating role: %v", ErrDatabaseError, err)
	}
	return role.ID, nil
}

func (r *roleRepository) GetRoleByID(roleID int64) (*models.Role, error) {
	role := &models.Role{}
	query := `SELECT id, name, created_at, updated_at FROM roles WHERE id = $1`
	err := r.db.QueryRow(query, roleID).Scan(&role.ID, &role.Name, &role.CreatedAt, &role.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: finding role by ID %d: %v", ErrDatabaseError, roleID, err)
	}
	return role, nil
}

func (r *roleRepository) GetRoles(opts models.ListOptions) ([]models.Role, int, error) {
	roles := []models.Role{}
	totalCount := 0

	var queryBuilder strings.Builder
	queryBuilder.WriteString(`
        SELECT id, name, created_at, updated_at,
               COUNT(*) OVER() as total_count
        FROM roles`)

	var args []interface{}
	argCounter := 1

	if cond, searchArgs := SearchCondition(opts.Search, roleSearchFields, argCounter); cond != "" {
		queryBuilder.WriteString(" WHERE " + cond)
		args = append(args, searchArgs...)
		argCounter += len(searchArgs)
	}

	if orderBy := OrderByClause(opts.Sort, roleSortFields); orderBy != "" {
		queryBuilder.WriteString(orderBy)
	} else {
		queryBuilder.WriteString(" ORDER BY id")
	}

	limitClause, limitArgs := LimitOffsetClause(opts, argCounter)
	queryBuilder.WriteString(limitClause)
	args = append(args, limitArgs...)

	rows, err := r.db.Query(queryBuilder.String(), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: querying roles: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var ro models.Role
		if err := rows.Scan(&ro.ID, &ro.Name, &ro.CreatedAt, &ro.UpdatedAt, &totalCount); err != nil {
			return nil, 0, fmt.Errorf("%w: scanning role: %v", ErrDatabaseError, err)
		}
		roles = append(roles, ro)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating role rows: %v", ErrDatabaseError, err)
	}
	return roles, totalCount, nil
}

func (r *roleRepository) UpdateRole(executor SQLExecutor, role *models.Role) error {
	result, err := executor.Exec(
		`UPDATE roles SET name = $1, updated_at = $2 WHERE id = $3`,
		role.Name, time.Now(), role.ID,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return fmt.Errorf("%w: role %q", ErrDuplicateKey, role.Name)
		}
		return fmt.Errorf("%w: updating role ID %d: %v", ErrDatabaseError, role.ID, err)
	}
	return requireRowsAffected(result, role.ID)
}

func (r *roleRepository) DeleteRole(executor SQLExecutor, roleID int64) error {
	result, err := executor.Exec(`DELETE FROM roles WHERE id = $1`, roleID)
	if err != nil {
		return fmt.Errorf("%w: deleting role ID %d: %v", ErrDatabaseError, roleID, err)
	}
	return requireRowsAffected(result, roleID)
}

func (r *roleRepository) SyncPermissions(executor SQLExecutor, roleID int64, permissionIDs []int64) error {
	if _, err := executor.Exec(`DELETE FROM role_permissions WHERE role_id = $1`, roleID); err != nil {
		return fmt.Errorf("%w: clearing permissions for role ID %d: %v", ErrDatabaseError, roleID, err)
	}
	for _, permissionID := range permissionIDs {
		_, err := executor.Exec(
			`INSERT INTO role_permissions (role_id, permission_id) VALUES ($1, $2)`,
			roleID, permissionID,
		)
		if err != nil {
			var pqErr *pq.Error
			if errors.As(err, &pqErr) && pqErr.Code == "23503" {
				return fmt.Errorf("%w: permission %d", ErrNotFound, permissionID)
			}
			return fmt.Errorf("%w: granting permission %d to role ID %d: %v", ErrDatabaseError, permissionID, roleID, err)
		}
	}
	return nil
}

func (r *roleRepository) GetPermissionsForRole(roleID int64) ([]models.Permission, error) {
	permissions := []models.Permission{}
	query := `SELECT p.id, p.name, p.created_at, p.updated_at
	          FROM permissions p
	          JOIN role_permissions rp ON rp.permission_id = p.id
	          WHERE rp.role_id = $1
	          ORDER BY p.id`

	rows, err := r.db.Query(query, roleID)
	if err != nil {
		return nil, fmt.Errorf("%w: querying permissions for role ID %d: %v", ErrDatabaseError, roleID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var p models.Permission
		if err := rows.Scan(&p.ID, &p.Name, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("%w: scanning permission for role ID %d: %v", ErrDatabaseError, roleID, err)
		}
		permissions = append(permissions, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating permission rows for role ID %d: %v", ErrDatabaseError, roleID, err)
	}
	return permissions, nil
}
