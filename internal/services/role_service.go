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

type CreateRoleRequest struct {
	Name string `json:"name" binding:"required"`
}

type UpdateRoleRequest struct {
	Name string `json:"name" binding:"required"`
}

type SyncPermissionsRequest struct {
	PermissionIDs []int64 `json:"permission_ids" binding:"required"`
}

type RoleResponse struct {
	ID          int64                `json:"id"`
	Name        string               `json:"name"`
	Permissions []PermissionResponse `json:"permissions,omitempty"`
	CreatedAt   string               `json:"created_at"`
	UpdatedAt   string               `json:"updated_at"`
}

func newRoleResponse(ro *models.Role, permissions []models.Permission) *RoleResponse {
	resp := &RoleResponse{
		ID:        ro.ID,
		Name:      ro.Name,
		CreatedAt: formatTime(ro.CreatedAt),
		UpdatedAt: formatTime(ro.UpdatedAt),
	}
	for _, p := range permissions {
		resp.Permissions = append(resp.Permissions, *newPermissionResponse(&p))
	}
	return resp
}

// --- RoleService Interface ---

type RoleService interface {
	CreateRole(req CreateRoleRequest) (*RoleResponse, error)
	GetRoles(opts models.ListOptions) ([]RoleResponse, int, error)
	GetRoleByID(roleID int64) (*RoleResponse, error)
	UpdateRole(roleID int64, req UpdateRoleRequest) (*RoleResponse, error)
	DeleteRole(roleID int64) error
	SyncPermissions(roleID int64, permissionIDs []int64) (*RoleResponse, error)

	ExportRoles(format string) ([]byte, error)
	ImportRoles(format string, r io.Reader) (int, error)
}

type roleService struct {
	roleRepo repositories.RoleRepository
	db       *sql.DB
}

// NewRoleService creates a new instance of RoleService.
func NewRoleService(roleRepo repositories.RoleRepository, db *sql.DB) RoleService {
	return &roleService{roleRepo: roleRepo, db: db}
}

func (s *roleService) CreateRole(req CreateRoleRequest) (*RoleResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: role name cannot be empty", ErrValidation)
	}

	role := models.Role{Name: name}
	if _, err := s.roleRepo.CreateRole(s.db, &role); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, fmt.Errorf("%w: role %q", ErrDuplicate, name)
		}
		return nil, fmt.Errorf("creating role: %w", err)
	}
	return newRoleResponse(&role, nil), nil
}

func (s *roleService) GetRoles(opts models.ListOptions) ([]RoleResponse, int, error) {
	roles, totalCount, err := s.roleRepo.GetRoles(opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get roles: %w", err)
	}
	responses := make([]RoleResponse, 0, len(roles))
	for i := range roles {
		responses = append(responses, *newRoleResponse(&roles[i], nil))
	}
	return responses, totalCount, nil
}

func (s *roleService) GetRoleByID(roleID int64) (*RoleResponse, error) {
	role, err := s.roleRepo.GetRoleByID(roleID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrRoleNotFound
		}
		return nil, fmt.Errorf("failed to get role: %w", err)
	}
	permissions, err := s.roleRepo.GetPermissionsForRole(roleID)
	if err != nil {
		return nil, fmt.Errorf("failed to get permissions for role %d: %w", roleID, err)
	}
	return newRoleResponse(role, permissions), nil
}

func (s *roleService) UpdateRole(roleID int64, req UpdateRoleRequest) (*RoleResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: role name cannot be empty", ErrValidation)
	}

	role := models.Role{ID: roleID, Name: name}
	if err := s.roleRepo.UpdateRole(s.db, &role); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrRoleNotFound
		}
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, fmt.Errorf("%w: role %q", ErrDuplicate, name)
		}
		return nil, fmt.Errorf("updating role: %w", err)
	}
	return s.GetRoleByID(roleID)
}

func (s *roleService) DeleteRole(roleID int64) error {
	if err := s.roleRepo.DeleteRole(s.db, roleID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrRoleNotFound
		}
		return fmt.Errorf("deleting role: %w", err)
	}
	return nil
}

func (s *roleService) SyncPermissions(roleID int64, permissionIDs []int64) (*RoleResponse, error) {
	if _, err := s.roleRepo.GetRoleByID(roleID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrRoleNotFound
		}
		return nil, fmt.Errorf("failed to get role: %w", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to start database transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.roleRepo.SyncPermissions(tx, roleID, permissionIDs); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: %v", ErrPermissionNotFound, err)
		}
		return nil, fmt.Errorf("syncing permissions: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit permission sync: %w", err)
	}
	return s.GetRoleByID(roleID)
}

var roleExportHeaders = []string{"id", "name", "created_at", "updated_at"}

func (s *roleService) ExportRoles(format string) ([]byte, error) {
	roles, _, err := s.roleRepo.GetRoles(models.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get roles for export: %w", err)
	}

	rows := make([][]string, 0, len(roles))
	for _, ro := range roles {
		rows = append(rows, []string{
			strconv.FormatInt(ro.ID, 10),
			ro.Name,
			formatTime(ro.CreatedAt),
			formatTime(ro.UpdatedAt),
		})
	}
	return spreadsheet.Write(format, "roles", roleExportHeaders, rows)
}

func (s *roleService) ImportRoles(format string, r io.Reader) (int, error) {
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
		role := models.Role{Name: strings.TrimSpace(row[1])}
		if role.Name == "" {
			return 0, fmt.Errorf("%w: row %d role name cannot be empty", ErrValidation, i+2)
		}
		if _, err := s.roleRepo.CreateRole(tx, &role); err != nil {
			if errors.Is(err, repositories.ErrDuplicateKey) {
				return 0, fmt.Errorf("%w: row %d role %q", ErrDuplicate, i+2, role.Name)
			}
			return 0, fmt.Errorf("importing row %d: %w", i+2, err)
		}
		imported++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit role import: %w", err)
	}
	return imported, nil
}
