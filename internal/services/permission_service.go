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

type CreatePermissionRequest struct {
	Name string `json:"name" binding:"required"`
}

type UpdatePermissionRequest struct {
	Name string `json:"name" binding:"required"`
}

type PermissionResponse struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

func newPermissionResponse(p *models.Permission) *PermissionResponse {
	return &PermissionResponse{
		ID:        p.ID,
		Name:      p.Name,
		CreatedAt: formatTime(p.CreatedAt),
		UpdatedAt: formatTime(p.UpdatedAt),
	}
}

// --- PermissionService Interface ---

type PermissionService interface {
	CreatePermission(req CreatePermissionRequest) (*PermissionResponse, error)
	GetPermissions(opts models.ListOptions) ([]PermissionResponse, int, error)
	GetPermissionByID(permissionID int64) (*PermissionResponse, error)
	UpdatePermission(permissionID int64, req UpdatePermissionRequest) (*PermissionResponse, error)
	DeletePermission(permissionID int64) error

	ExportPermissions(format string) ([]byte, error)
	ImportPermissions(format string, r io.Reader) (int, error)
}

type permissionService struct {
	permissionRepo repositories.PermissionRepository
	db             *sql.DB
}

// NewPermissionService creates a new instance of PermissionService.
func NewPermissionService(permissionRepo repositories.PermissionRepository, db *sql.DB) PermissionService {
	return &permissionService{permissionRepo: permissionRepo, db: db}
}

func (s *permissionService) CreatePermission(req CreatePermissionRequest) (*PermissionResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: permission name cannot be empty", ErrValidation)
	}

	permission := models.Permission{Name: name}
	if _, err := s.permissionRepo.CreatePermission(s.db, &permission); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, fmt.Errorf("%w: permission %q", ErrDuplicate, name)
		}
		return nil, fmt.Errorf("creating permission: %w", err)
	}
	return newPermissionResponse(&permission), nil
}

func (s *permissionService) GetPermissions(opts models.ListOptions) ([]PermissionResponse, int, error) {
	permissions, totalCount, err := s.permissionRepo.GetPermissions(opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get permissions: %w", err)
	}
	responses := make([]PermissionResponse, 0, len(permissions))
	for i := range permissions {
		responses = append(responses, *newPermissionResponse(&permissions[i]))
	}
	return responses, totalCount, nil
}

func (s *permissionService) GetPermissionByID(permissionID int64) (*PermissionResponse, error) {
	permission, err := s.permissionRepo.GetPermissionByID(permissionID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrPermissionNotFound
		}
		return nil, fmt.Errorf("failed to get permission: %w", err)
	}
	return newPermissionResponse(permission), nil
}

func (s *permissionService) UpdatePermission(permissionID int64, req UpdatePermissionRequest) (*PermissionResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: permission name cannot be empty", ErrValidation)
	}

	permission := models.Permission{ID: permissionID, Name: name}
	if err := s.permissionRepo.UpdatePermission(s.db, &permission); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrPermissionNotFound
		}
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, fmt.Errorf("%w: permission %q", ErrDuplicate, name)
		}
		return nil, fmt.Errorf("updating permission: %w", err)
	}
	return s.GetPermissionByID(permissionID)
}

func (s *permissionService) DeletePermission(permissionID int64) error {
	if err := s.permissionRepo.DeletePermission(s.db, permissionID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrPermissionNotFound
		}
		return fmt.Errorf("deleting permission: %w", err)
	}
	return nil
}

var permissionExportHeaders = []string{"id", "name", "created_at", "updated_at"}

func (s *permissionService) ExportPermissions(format string) ([]byte, error) {
	permissions, _, err := s.permissionRepo.GetPermissions(models.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get permissions for export: %w", err)
	}

	rows := make([][]string, 0, len(permissions))
	for _, p := range permissions {
		rows = append(rows, []string{
			strconv.FormatInt(p.ID, 10),
			p.Name,
			formatTime(p.CreatedAt),
			formatTime(p.UpdatedAt),
		})
	}
	return spreadsheet.Write(format, "permissions", permissionExportHeaders, rows)
}

func (s *permissionService) ImportPermissions(format string, r io.Reader) (int, error) {
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
		permission := models.Permission{Name: strings.TrimSpace(row[1])}
		if permission.Name == "" {
			return 0, fmt.Errorf("%w: row %d permission name cannot be empty", ErrValidation, i+2)
		}
		if _, err := s.permissionRepo.CreatePermission(tx, &permission); err != nil {
			if errors.Is(err, repositories.ErrDuplicateKey) {
				return 0, fmt.Errorf("%w: row %d permission %q", ErrDuplicate, i+2, permission.Name)
			}
			return 0, fmt.Errorf("importing row %d: %w", i+2, err)
		}
		imported++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit permission import: %w", err)
	}
	return imported, nil
}
