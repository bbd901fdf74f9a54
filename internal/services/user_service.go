package services

import (
	"database/sql"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"

	"resto_pos_backend/internal/models"
	"resto_pos_backend/internal/repositories"
	"resto_pos_backend/internal/spreadsheet"

	"golang.org/x/crypto/bcrypt"
)

// usernamePattern mirrors the login rule: lowercase letters, digits,
// underscore.
var usernamePattern = regexp.MustCompile(`^[_a-z0-9]+$`)

// --- DTOs ---

type CreateUserRequest struct {
	Username string  `json:"username" binding:"required"`
	Password string  `json:"password" binding:"required,min=6"`
	RoleIDs  []int64 `json:"role_ids"`
}

type UpdateUserRequest struct {
	Username string  `json:"username" binding:"required"`
	Password *string `json:"password"`
}

type SyncRolesRequest struct {
	RoleIDs []int64 `json:"role_ids" binding:"required"`
}

// UserResponse never carries the password hash.
type UserResponse struct {
	ID        int64          `json:"id"`
	Username  string         `json:"username"`
	Roles     []RoleResponse `json:"roles,omitempty"`
	CreatedAt string         `json:"created_at"`
	UpdatedAt string         `json:"updated_at"`
}

func newUserResponse(u *models.User, roles []models.Role) *UserResponse {
	resp := &UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		CreatedAt: formatTime(u.CreatedAt),
		UpdatedAt: formatTime(u.UpdatedAt),
	}
	for _, ro := range roles {
		resp.Roles = append(resp.Roles, *newRoleResponse(&ro, nil))
	}
	return resp
}

// --- UserService Interface ---

type UserService interface {
	CreateUser(req CreateUserRequest) (*UserResponse, error)
	GetUsers(opts models.ListOptions) ([]UserResponse, int, error)
	GetUserByID(userID int64) (*UserResponse, error)
	UpdateUser(userID int64, req UpdateUserRequest) (*UserResponse, error)
	DeleteUser(userID int64) error
	SyncRoles(userID int64, roleIDs []int64) (*UserResponse, error)

	ExportUsers(format string) ([]byte, error)
	ImportUsers(format string, r io.Reader) (int, error)
}

type userService struct {
	userRepo repositories.UserRepository
	db       *sql.DB // for transactions spanning user + role assignment
}

// NewUserService creates a new instance of UserService.
func NewUserService(userRepo repositories.UserRepository, db *sql.DB) UserService {
	return &userService{userRepo: userRepo, db: db}
}

func (s *userService) CreateUser(req CreateUserRequest) (*UserResponse, error) {
	if !usernamePattern.MatchString(req.Username) {
		return nil, fmt.Errorf("%w: username must match %s", ErrValidation, usernamePattern.String())
	}

	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to start database transaction: %w", err)
	}
	defer tx.Rollback()

	user := models.User{Username: req.Username}
	if _, err := s.userRepo.CreateUser(tx, &user, string(hashedBytes)); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, fmt.Errorf("%w: username %q", ErrDuplicate, req.Username)
		}
		return nil, fmt.Errorf("creating user: %w", err)
	}

	if len(req.RoleIDs) > 0 {
		if err := s.userRepo.SyncRoles(tx, user.ID, req.RoleIDs); err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return nil, fmt.Errorf("%w: %v", ErrRoleNotFound, err)
			}
			return nil, fmt.Errorf("assigning roles: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit user transaction: %w", err)
	}
	return s.GetUserByID(user.ID)
}

func (s *userService) GetUsers(opts models.ListOptions) ([]UserResponse, int, error) {
	users, totalCount, err := s.userRepo.GetUsers(opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get users: %w", err)
	}
	responses := make([]UserResponse, 0, len(users))
	for i := range users {
		responses = append(responses, *newUserResponse(&users[i], nil))
	}
	return responses, totalCount, nil
}

func (s *userService) GetUserByID(userID int64) (*UserResponse, error) {
	user, err := s.userRepo.GetUserByID(userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	roles, err := s.userRepo.GetRolesForUser(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get roles for user %d: %w", userID, err)
	}
	return newUserResponse(user, roles), nil
}

func (s *userService) UpdateUser(userID int64, req UpdateUserRequest) (*UserResponse, error) {
	if !usernamePattern.MatchString(req.Username) {
		return nil, fmt.Errorf("%w: username must match %s", ErrValidation, usernamePattern.String())
	}

	var hashedPassword *string
	if req.Password != nil {
		if len(*req.Password) < 6 {
			return nil, fmt.Errorf("%w: password must be at least 6 characters", ErrValidation)
		}
		hashedBytes, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hashing password: %w", err)
		}
		hashed := string(hashedBytes)
		hashedPassword = &hashed
	}

	if err := s.userRepo.UpdateUser(s.db, userID, req.Username, hashedPassword); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, fmt.Errorf("%w: username %q", ErrDuplicate, req.Username)
		}
		return nil, fmt.Errorf("updating user: %w", err)
	}
	return s.GetUserByID(userID)
}

func (s *userService) DeleteUser(userID int64) error {
	if err := s.userRepo.DeleteUser(s.db, userID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("deleting user: %w", err)
	}
	return nil
}

func (s *userService) SyncRoles(userID int64, roleIDs []int64) (*UserResponse, error) {
	if _, err := s.userRepo.GetUserByID(userID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to start database transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.userRepo.SyncRoles(tx, userID, roleIDs); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: %v", ErrRoleNotFound, err)
		}
		return nil, fmt.Errorf("syncing roles: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit role sync: %w", err)
	}
	return s.GetUserByID(userID)
}

var userExportHeaders = []string{"id", "username", "password_hash", "created_at", "updated_at"}

// ExportUsers includes password hashes; the route is gated by the
// user.export permission.
func (s *userService) ExportUsers(format string) ([]byte, error) {
	users, err := s.userRepo.GetAllUsersWithHash()
	if err != nil {
		return nil, fmt.Errorf("failed to get users for export: %w", err)
	}

	rows := make([][]string, 0, len(users))
	for _, u := range users {
		rows = append(rows, []string{
			strconv.FormatInt(u.ID, 10),
			u.Username,
			u.PasswordHash,
			formatTime(u.CreatedAt),
			formatTime(u.UpdatedAt),
		})
	}
	return spreadsheet.Write(format, "users", userExportHeaders, rows)
}

// ImportUsers expects the export layout; the password column carries
// the bcrypt hash, not a plain password.
func (s *userService) ImportUsers(format string, r io.Reader) (int, error) {
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
		if len(row) < 5 {
			return 0, fmt.Errorf("%w: row %d has %d columns, want 5", ErrValidation, i+2, len(row))
		}
		createdAt, err := parseTime(row[3])
		if err != nil {
			return 0, fmt.Errorf("%w: row %d created_at: %v", ErrValidation, i+2, err)
		}
		updatedAt, err := parseTime(row[4])
		if err != nil {
			return 0, fmt.Errorf("%w: row %d updated_at: %v", ErrValidation, i+2, err)
		}

		user := models.User{Username: row[1], CreatedAt: createdAt, UpdatedAt: updatedAt}
		if _, err := s.userRepo.CreateUser(tx, &user, row[2]); err != nil {
			if errors.Is(err, repositories.ErrDuplicateKey) {
				return 0, fmt.Errorf("%w: row %d username %q", ErrDuplicate, i+2, row[1])
			}
			return 0, fmt.Errorf("importing row %d: %w", i+2, err)
		}
		imported++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit user import: %w", err)
	}
	return imported, nil
}
