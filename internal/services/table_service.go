package services

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"resto_pos_backend/internal/models"
	"resto_pos_backend/internal/repositories"
)

// --- DTOs ---

type CreateTableRequest struct {
	Number    int64  `json:"number" binding:"required,gt=0"`
	Available string `json:"available"`
}

type UpdateTableRequest struct {
	Number    *int64  `json:"number" binding:"omitempty,gt=0"`
	Available *string `json:"available"`
}

// SeatTableRequest drives the seat/release/move flow:
// number alone seats a table, old_number alone frees one, both
// together move a party atomically.
type SeatTableRequest struct {
	Number    *int64 `json:"number"`
	OldNumber *int64 `json:"old_number"`
}

type TableResponse struct {
	ID        int64  `json:"id"`
	Number    int64  `json:"number"`
	Available string `json:"available"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

func newTableResponse(t *models.Table) *TableResponse {
	return &TableResponse{
		ID:        t.ID,
		Number:    t.Number,
		Available: t.Available,
		CreatedAt: formatTime(t.CreatedAt),
		UpdatedAt: formatTime(t.UpdatedAt),
	}
}

// --- TableService Interface ---

type TableService interface {
	CreateTable(req CreateTableRequest) (*TableResponse, error)
	GetTables(opts models.TableListOptions) ([]TableResponse, int, error)
	GetTableByID(tableID int64) (*TableResponse, error)
	UpdateTable(tableID int64, req UpdateTableRequest) (*TableResponse, error)
	DeleteTable(tableID int64) error

	// Seat executes the seat/release/move flow from SeatTableRequest.
	// The returned table is the newly seated one, nil for a pure release.
	Seat(req SeatTableRequest) (*TableResponse, error)
}

type tableService struct {
	tableRepo repositories.TableRepository
	db        *sql.DB
	notifier  Notifier
}

// NewTableService creates a new instance of TableService.
func NewTableService(tableRepo repositories.TableRepository, db *sql.DB, notifier Notifier) TableService {
	return &tableService{
		tableRepo: tableRepo,
		db:        db,
		notifier:  orNoop(notifier),
	}
}

func normalizeAvailability(value string) (string, error) {
	switch strings.ToUpper(strings.TrimSpace(value)) {
	case "", models.TableFree:
		return models.TableFree, nil
	case models.TableOccupied:
		return models.TableOccupied, nil
	default:
		return "", fmt.Errorf("%w: available must be %q or %q", ErrValidation, models.TableFree, models.TableOccupied)
	}
}

func (s *tableService) CreateTable(req CreateTableRequest) (*TableResponse, error) {
	available, err := normalizeAvailability(req.Available)
	if err != nil {
		return nil, err
	}

	table := models.Table{Number: req.Number, Available: available}
	if _, err := s.tableRepo.CreateTable(s.db, &table); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, fmt.Errorf("%w: table number %d", ErrDuplicate, req.Number)
		}
		return nil, fmt.Errorf("creating table: %w", err)
	}
	return newTableResponse(&table), nil
}

func (s *tableService) GetTables(opts models.TableListOptions) ([]TableResponse, int, error) {
	tables, totalCount, err := s.tableRepo.GetTables(opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get tables: %w", err)
	}
	responses := make([]TableResponse, 0, len(tables))
	for i := range tables {
		responses = append(responses, *newTableResponse(&tables[i]))
	}
	return responses, totalCount, nil
}

func (s *tableService) GetTableByID(tableID int64) (*TableResponse, error) {
	table, err := s.tableRepo.GetTableByID(tableID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrTableNotFound
		}
		return nil, fmt.Errorf("failed to get table: %w", err)
	}
	return newTableResponse(table), nil
}

func (s *tableService) UpdateTable(tableID int64, req UpdateTableRequest) (*TableResponse, error) {
	table, err := s.tableRepo.GetTableByID(tableID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrTableNotFound
		}
		return nil, fmt.Errorf("failed to get table: %w", err)
	}

	if req.Number != nil {
		table.Number = *req.Number
	}
	if req.Available != nil {
		available, err := normalizeAvailability(*req.Available)
		if err != nil {
			return nil, err
		}
		table.Available = available
	}

	if err := s.tableRepo.UpdateTable(s.db, table); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrTableNotFound
		}
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, fmt.Errorf("%w: table number %d", ErrDuplicate, table.Number)
		}
		return nil, fmt.Errorf("updating table: %w", err)
	}

	s.notifier.Broadcast(EventRefreshTables, nil)
	return s.GetTableByID(tableID)
}

func (s *tableService) DeleteTable(tableID int64) error {
	if err := s.tableRepo.DeleteTable(s.db, tableID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrTableNotFound
		}
		return fmt.Errorf("deleting table: %w", err)
	}
	s.notifier.Broadcast(EventRefreshTables, nil)
	return nil
}

func (s *tableService) Seat(req SeatTableRequest) (*TableResponse, error) {
	if req.Number == nil && req.OldNumber == nil {
		return nil, fmt.Errorf("%w: number or old_number is required", ErrValidation)
	}
	if req.Number != nil && req.OldNumber != nil && *req.Number == *req.OldNumber {
		return nil, fmt.Errorf("%w: number and old_number must differ", ErrValidation)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to start database transaction: %w", err)
	}
	defer tx.Rollback()

	var seated *models.Table
	if req.Number != nil {
		seated, err = s.tableRepo.SeatByNumber(tx, *req.Number)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return nil, ErrTableNotFound
			}
			if errors.Is(err, repositories.ErrConflict) {
				return nil, ErrTableBusy
			}
			return nil, fmt.Errorf("seating table %d: %w", *req.Number, err)
		}
	}
	if req.OldNumber != nil {
		if err := s.tableRepo.ReleaseByNumber(tx, *req.OldNumber); err != nil {
			return nil, fmt.Errorf("releasing table %d: %w", *req.OldNumber, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit seat transaction: %w", err)
	}

	s.notifier.Broadcast(EventRefreshTables, nil)
	if seated == nil {
		return nil, nil
	}
	return newTableResponse(seated), nil
}
