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

// UserRepository defines the database operations for user accounts and
// their role assignments.
type UserRepository interface {
	CreateUser(executor SQLExecutor, user *models.User, hashedPassword string) (int64, error)
	FindUserByUsername(username string) (*models.User, string, error) // user, hashed password
	GetUserByID(userID int64) (*models.User, error)
	GetUsers(opts models.ListOptions) ([]models.User, int, error)
	GetAllUsersWithHash() ([]models.User, error)
	UpdateUser(executor SQLExecutor, userID int64, username string, hashedPassword *string) error
	DeleteUser(executor SQLExecutor, userID int64) error

	SyncRoles(executor SQLExecutor, userID int64, roleIDs []int64) error
	GetRolesForUser(userID int64) ([]models.Role, error)
	// GetPermissionNamesForUser resolves the effective permission set:
	// the union of the permissions of every role assigned to the user.
	GetPermissionNamesForUser(userID int64) ([]string, error)
}

type userRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new instance of UserRepository.
func NewUserRepository(db *sql.DB) UserRepository {
	return &userRepository{db: db}
}

var userSearchFields = FieldMap{
	"username": "username",
}

var userSortFields = FieldMap{
	"id":         "id",
	"username":   "username",
	"created_at": "created_at",
	"updated_at": "updated_at",
}

func (r *userRepository) CreateUser(executor SQLExecutor, user *models.User, hashedPassword string) (int64, error) {
	query := `INSERT INTO users (username, password_hash, created_at, updated_at)
	          VALUES ($1, $2, $3, $4)
	          RETURNING id`

	// Imported rows carry their own timestamps.
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	if user.UpdatedAt.IsZero() {
		user.UpdatedAt = time.Now()
	}

	err := executor.QueryRow(query, user.Username, hashedPassword, user.CreatedAt, user.UpdatedAt).Scan(&user.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return 0, fmt.Errorf("%w: username %q", ErrDuplicateKey, user.Username)
		}
		return 0, fmt.Errorf("%w: creating user: %v", ErrDatabaseError, err)
	}
	return user.ID, nil
}

func (r *userRepository) FindUserByUsername(username string) (*models.User, string, error) {
	user := &models.User{}
	var hashedPassword string

	query := `SELECT id, username, password_hash, created_at, updated_at FROM users WHERE username = $1`
	err := r.db.QueryRow(query, username).Scan(
		&user.ID, &user.Username, &hashedPassword, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, "", ErrNotFound
		}
		return nil, "", fmt.Errorf("%w: finding user by username %s: %v", ErrDatabaseError, username, err)
	}
	return user, hashedPassword, nil
}

func (r *userRepository) GetUserByID(userID int64) (*models.User, error) {
	user := &models.User{}
	query := `SELECT id, username, created_at, updated_at FROM users WHERE id = $1`
	err := r.db.QueryRow(query, userID).Scan(
		&user.ID, &user.Username, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: finding user by ID %d: %v", ErrDatabaseError, userID, err)
	}
	return user, nil
}

func (r *userRepository) GetUsers(opts models.ListOptions) ([]models.User, int, error) {
	users := []models.User{}
	totalCount := 0

	var queryBuilder strings.Builder
	queryBuilder.WriteString(`
        SELECT id, username, created_at, updated_at,
               COUNT(*) OVER() as total_count
        FROM users`)

	var args []interface{}
	argCounter := 1

	if cond, searchArgs := SearchCondition(opts.Search, userSearchFields, argCounter); cond != "" {
		queryBuilder.WriteString(" WHERE " + cond)
		args = append(args, searchArgs...)
		argCounter += len(searchArgs)
	}

	if orderBy := OrderByClause(opts.Sort, userSortFields); orderBy != "" {
		queryBuilder.WriteString(orderBy)
	} else {
		queryBuilder.WriteString(" ORDER BY id")
	}

	limitClause, limitArgs := LimitOffsetClause(opts, argCounter)
	queryBuilder.WriteString(limitClause)
	args = append(args, limitArgs...)

	rows, err := r.db.Query(queryBuilder.String(), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: querying users: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Username, &u.CreatedAt, &u.UpdatedAt, &totalCount); err != nil {
			return nil, 0, fmt.Errorf("%w: scanning user: %v", ErrDatabaseError, err)
		}
		users = append(users, u)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating user rows: %v", ErrDatabaseError, err)
	}
	return users, totalCount, nil
}

// GetAllUsersWithHash is used only by the administrative export, which
// intentionally includes the stored password hashes.
func (r *userRepository) GetAllUsersWithHash() ([]models.User, error) {
	users := []models.User{}
	rows, err := r.db.Query(`SELECT id, username, password_hash, created_at, updated_at FROM users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("%w: querying all users: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, fmt.Errorf("%w: scanning user: %v", ErrDatabaseError, err)
		}
		users = append(users, u)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating user rows: %v", ErrDatabaseError, err)
	}
	return users, nil
}

func (r *userRepository) UpdateUser(executor SQLExecutor, userID int64, username string, hashedPassword *string) error {
	var result sql.Result
	var err error

	if hashedPassword != nil {
		result, err = executor.Exec(
			`UPDATE users SET username = $1, password_hash = $2, updated_at = $3 WHERE id = $4`,
			username, *hashedPassword, time.Now(), userID,
		)
	} else {
		result, err = executor.Exec(
			`UPDATE users SET username = $1, updated_at = $2 WHERE id = $3`,
			username, time.Now(), userID,
		)
	}
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return fmt.Errorf("%w: username %q", ErrDuplicateKey, username)
		}
		return fmt.Errorf("%w: updating user ID %d: %v", ErrDatabaseError, userID, err)
	}
	return requireRowsAffected(result, userID)
}

func (r *userRepository) DeleteUser(executor SQLExecutor, userID int64) error {
	result, err := executor.Exec(`DELETE FROM users WHERE id = $1`, userID)
	if err != nil {
		return fmt.Errorf("%w: deleting user ID %d: %v", ErrDatabaseError, userID, err)
	}
	return requireRowsAffected(result, userID)
}

func (r *userRepository) SyncRoles(executor SQLExecutor, userID int64, roleIDs []int64) error {
	if _, err := executor.Exec(`DELETE FROM user_roles WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("%w: clearing roles for user ID %d: %v", ErrDatabaseError, userID, err)
	}
	for _, roleID := range roleIDs {
		_, err := executor.Exec(
			`INSERT INTO user_roles (user_id, role_id) VALUES ($1, $2)`,
			userID, roleID,
		)
		if err != nil {
			var pqErr *pq.Error
			if errors.As(err, &pqErr) && pqErr.Code == "23503" {
				return fmt.Errorf("%w: role %d", ErrNotFound, roleID)
			}
			return fmt.Errorf("%w: assigning role %d to user ID %d: %v", ErrDatabaseError, roleID, userID, err)
		}
	}
	return nil
}

func (r *userRepository) GetRolesForUser(userID int64) ([]models.Role, error) {
	roles := []models.Role{}
	query := `SELECT ro.id, ro.name, ro.created_at, ro.updated_at
	          FROM roles ro
	          JOIN user_roles ur ON ur.role_id = ro.id
	          WHERE ur.user_id = $1
	          ORDER BY ro.id`

	rows, err := r.db.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: querying roles for user ID %d: %v", ErrDatabaseError, userID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var ro models.Role
		if err := rows.Scan(&ro.ID, &ro.Name, &ro.CreatedAt, &ro.UpdatedAt); err != nil {
			return nil, fmt.Errorf("%w: scanning role for user ID %d: %v", ErrDatabaseError, userID, err)
		}
		roles = append(roles, ro)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating role rows for user ID %d: %v", ErrDatabaseError, userID, err)
	}
	return roles, nil
}

func (r *userRepository) GetPermissionNamesForUser(userID int64) ([]string, error) {
	names := []string{}
	query := `SELECT DISTINCT p.name
	          FROM permissions p
	          JOIN role_permissions rp ON rp.permission_id = p.id
	          JOIN user_roles ur ON ur.role_id = rp.role_id
	          WHERE ur.user_id = $1`

	rows, err := r.db.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: querying permissions for user ID %d: %v", ErrDatabaseError, userID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("%w: scanning permission for user ID %d: %v", ErrDatabaseError, userID, err)
		}
		names = append(names, name)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating permission rows for user ID %d: %v", ErrDatabaseError, userID, err)
	}
	return names, nil
}
