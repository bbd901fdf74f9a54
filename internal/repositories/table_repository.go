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

// TableRepository defines the database operations for restaurant tables.
type TableRepository interface {
	CreateTable(executor SQLExecutor, table *models.Table) (int64, error)
	GetTables(opts models.TableListOptions) ([]models.Table, int, error)
	GetTableByID(tableID int64) (*models.Table, error)
	GetTableByNumber(number int64) (*models.Table, error)
	UpdateTable(executor SQLExecutor, table *models.Table) error
	DeleteTable(executor SQLExecutor, tableID int64) error

	// GetTableByNumberForUpdate locks the table row for the duration of
	// the surrounding transaction. Used by the open-order flow.
	GetTableByNumberForUpdate(executor SQLExecutor, number int64) (*models.Table, error)

	// SeatByNumber flips an available table to occupied with a single
	// conditional update, so exactly one of any concurrent seat attempts
	// succeeds. Returns ErrNotFound for an unknown number and ErrConflict
	// when the table is already occupied.
	SeatByNumber(executor SQLExecutor, number int64) (*models.Table, error)

	// ReleaseByNumber frees a table. Releasing an already-free table is
	// a no-op, not an error.
	ReleaseByNumber(executor SQLExecutor, number int64) error

	// ReleaseByID frees a table addressed by primary key (checkout path).
	ReleaseByID(executor SQLExecutor, tableID int64) error

	// OccupyByID marks a table occupied regardless of its current state.
	// Used when an order is opened on a table that was seated earlier.
	OccupyByID(executor SQLExecutor, tableID int64) error
}

type tableRepository struct {
	db *sql.DB
}

// NewTableRepository creates a new instance of TableRepository.
func NewTableRepository(db *sql.DB) TableRepository {
	return &tableRepository{db: db}
}

var tableSortFields = FieldMap{
	"id":         "id",
	"number":     "number",
	"available":  "available",
	"created_at": "created_at",
	"updated_at": "updated_at",
}

func (r *tableRepository) CreateTable(executor SQLExecutor, table *models.Table) (int64, error) {
	query := `INSERT INTO restaurant_tables (number, available, created_at, updated_at)
	          VALUES ($1, $2, $3, $4)
	          RETURNING id`

	now := time.Now()
	if table.Available == "" {
		table.Available = models.TableFree
	}
	table.CreatedAt = now
	table.UpdatedAt = now

	err := executor.QueryRow(query, table.Number, table.Available, table.CreatedAt, table.UpdatedAt).Scan(&table.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return 0, fmt.Errorf("%w: table number %d", ErrDuplicateKey, table.Number)
		}
		return 0, fmt.Errorf("%w: creating table: %v", ErrDatabaseError, err)
	}
	return table.ID, nil
}

func (r *tableRepository) GetTables(opts models.TableListOptions) ([]models.Table, int, error) {
	tables := []models.Table{}
	totalCount := 0

	var queryBuilder strings.Builder
	queryBuilder.WriteString(`
        SELECT id, number, available, created_at, updated_at,
               COUNT(*) OVER() as total_count
        FROM restaurant_tables`)

	var conditions []string
	var args []interface{}
	argCounter := 1

	if opts.Number != nil {
		conditions = append(conditions, fmt.Sprintf("number = $%d", argCounter))
		args = append(args, *opts.Number)
		argCounter++
	}
	if opts.Available != nil && *opts.Available != "" {
		conditions = append(conditions, fmt.Sprintf("available = $%d", argCounter))
		args = append(args, strings.ToUpper(*opts.Available))
		argCounter++
	}

	if len(conditions) > 0 {
		queryBuilder.WriteString(" WHERE " + strings.Join(conditions, " AND "))
	}

	if orderBy := OrderByClause(opts.Sort, tableSortFields); orderBy != "" {
		queryBuilder.WriteString(orderBy)
	} else {
		queryBuilder.WriteString(" ORDER BY number")
	}

	limitClause, limitArgs := LimitOffsetClause(opts.ListOptions, argCounter)
	queryBuilder.WriteString(limitClause)
	args = append(args, limitArgs...)

	rows, err := r.db.Query(queryBuilder.String(), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: querying tables: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var t models.Table
		if err := rows.Scan(&t.ID, &t.Number, &t.Available, &t.CreatedAt, &t.UpdatedAt, &totalCount); err != nil {
			return nil, 0, fmt.Errorf("%w: scanning table: %v", ErrDatabaseError, err)
		}
		tables = append(tables, t)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating table rows: %v", ErrDatabaseError, err)
	}
	return tables, totalCount, nil
}

func (r *tableRepository) GetTableByID(tableID int64) (*models.Table, error) {
	return r.getTable("id", tableID)
}

func (r *tableRepository) GetTableByNumber(number int64) (*models.Table, error) {
	return r.getTable("number", number)
}

func (r *tableRepository) getTable(column string, value int64) (*models.Table, error) {
	table := &models.Table{}
	query := fmt.Sprintf(`SELECT id, number, available, created_at, updated_at
	          FROM restaurant_tables WHERE %s = $1`, column)
	err := r.db.QueryRow(query, value).Scan(
		&table.ID, &table.Number, &table.Available, &table.CreatedAt, &table.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting table by %s %d: %v", ErrDatabaseError, column, value, err)
	}
	return table, nil
}

func (r *tableRepository) GetTableByNumberForUpdate(executor SQLExecutor, number int64) (*models.Table, error) {
	table := &models.Table{}
	query := `SELECT id, number, available, created_at, updated_at
	          FROM restaurant_tables WHERE number = $1 FOR UPDATE`
	err := executor.QueryRow(query, number).Scan(
		&table.ID, &table.Number, &table.Available, &table.CreatedAt, &table.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: locking table %d: %v", ErrDatabaseError, number, err)
	}
	return table, nil
}

func (r *tableRepository) UpdateTable(executor SQLExecutor, table *models.Table) error {
	query := `UPDATE restaurant_tables SET number = $1, available = $2, updated_at = $3 WHERE id = $4`
	result, err := executor.Exec(query, table.Number, strings.ToUpper(table.Available), time.Now(), table.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return fmt.Errorf("%w: table number %d", ErrDuplicateKey, table.Number)
		}
		return fmt.Errorf("%w: updating table ID %d: %v", ErrDatabaseError, table.ID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: rows affected for table update ID %d: %v", ErrDatabaseError, table.ID, err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *tableRepository) DeleteTable(executor SQLExecutor, tableID int64) error {
	result, err := executor.Exec(`DELETE FROM restaurant_tables WHERE id = $1`, tableID)
	if err != nil {
		return fmt.Errorf("%w: deleting table ID %d: %v", ErrDatabaseError, tableID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: rows affected for deleting table ID %d: %v", ErrDatabaseError, tableID, err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *tableRepository) SeatByNumber(executor SQLExecutor, number int64) (*models.Table, error) {
	table := &models.Table{}
	query := `UPDATE restaurant_tables
	          SET available = $1, updated_at = $2
	          WHERE number = $3 AND available = $4
	          RETURNING id, number, available, created_at, updated_at`
	err := executor.QueryRow(query, models.TableOccupied, time.Now(), number, models.TableFree).Scan(
		&table.ID, &table.Number, &table.Available, &table.CreatedAt, &table.UpdatedAt,
	)
	if err == nil {
		return table, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: seating table %d: %v", ErrDatabaseError, number, err)
	}

	// The conditional update matched nothing: either the number is
	// unknown or another caller holds the table.
	var exists bool
	err = executor.QueryRow(`SELECT EXISTS(SELECT 1 FROM restaurant_tables WHERE number = $1)`, number).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("%w: checking table %d: %v", ErrDatabaseError, number, err)
	}
	if !exists {
		return nil, ErrNotFound
	}
	return nil, ErrConflict
}

func (r *tableRepository) ReleaseByNumber(executor SQLExecutor, number int64) error {
	query := `UPDATE restaurant_tables SET available = $1, updated_at = $2
	          WHERE number = $3 AND available = $4`
	if _, err := executor.Exec(query, models.TableFree, time.Now(), number, models.TableOccupied); err != nil {
		return fmt.Errorf("%w: releasing table %d: %v", ErrDatabaseError, number, err)
	}
	return nil
}

func (r *tableRepository) ReleaseByID(executor SQLExecutor, tableID int64) error {
	query := `UPDATE restaurant_tables SET available = $1, updated_at = $2 WHERE id = $3`
	if _, err := executor.Exec(query, models.TableFree, time.Now(), tableID); err != nil {
		return fmt.Errorf("%w: releasing table ID %d: %v", ErrDatabaseError, tableID, err)
	}
	return nil
}

func (r *tableRepository) OccupyByID(executor SQLExecutor, tableID int64) error {
	query := `UPDATE restaurant_tables SET available = $1, updated_at = $2 WHERE id = $3`
	if _, err := executor.Exec(query, models.TableOccupied, time.Now(), tableID); err != nil {
		return fmt.Errorf("%w: occupying table ID %d: %v", ErrDatabaseError, tableID, err)
	}
	return nil
}
