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

// TransactionRepository defines the database operations for checkout
// transactions.
type TransactionRepository interface {
	CreateTransaction(executor SQLExecutor, tr *models.Transaction) (int64, error)
	GetTransactionByID(transactionID int64) (*models.Transaction, error)
	GetTransactions(opts models.ListOptions) ([]models.Transaction, int, error)
	GetAllTransactions() ([]models.Transaction, error)
	DeleteTransaction(executor SQLExecutor, transactionID int64) error
}

type transactionRepository struct {
	db *sql.DB
}

// NewTransactionRepository creates a new instance of TransactionRepository.
func NewTransactionRepository(db *sql.DB) TransactionRepository {
	return &transactionRepository{db: db}
}

var transactionSortFields = FieldMap{
	"id":          "tr.id",
	"total_price": "tr.total_price",
	"created_at":  "tr.created_at",
	"updated_at":  "tr.updated_at",
}

func (r *transactionRepository) CreateTransaction(executor SQLExecutor, tr *models.Transaction) (int64, error) {
	query := `INSERT INTO transactions (order_id, user_id, total_price, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5)
	          RETURNING id`

	// Imported rows carry their own timestamps.
	if tr.CreatedAt.IsZero() {
		tr.CreatedAt = time.Now()
	}
	if tr.UpdatedAt.IsZero() {
		tr.UpdatedAt = time.Now()
	}

	err := executor.QueryRow(query,
		tr.OrderID, tr.UserID, tr.TotalPrice, tr.CreatedAt, tr.UpdatedAt,
	).Scan(&tr.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return 0, fmt.Errorf("%w: transaction for order %d", ErrDuplicateKey, tr.OrderID)
		}
		return 0, fmt.Errorf("%w: creating transaction: %v", ErrDatabaseError, err)
	}
	return tr.ID, nil
}

func (r *transactionRepository) GetTransactionByID(transactionID int64) (*models.Transaction, error) {
	tr := &models.Transaction{}
	var cashierUsername sql.NullString

	query := `SELECT tr.id, tr.order_id, tr.user_id, tr.total_price, tr.created_at, tr.updated_at,
	                 u.username
	          FROM transactions tr
	          LEFT JOIN users u ON tr.user_id = u.id
	          WHERE tr.id = $1`
	err := r.db.QueryRow(query, transactionID).Scan(
		&tr.ID, &tr.OrderID, &tr.UserID, &tr.TotalPrice, &tr.CreatedAt, &tr.UpdatedAt,
		&cashierUsername,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting transaction by ID %d: %v", ErrDatabaseError, transactionID, err)
	}

	if cashierUsername.Valid {
		tr.Cashier = &models.User{ID: tr.UserID, Username: cashierUsername.String}
	}
	return tr, nil
}

func (r *transactionRepository) GetTransactions(opts models.ListOptions) ([]models.Transaction, int, error) {
	transactions := []models.Transaction{}
	totalCount := 0

	var queryBuilder strings.Builder
	queryBuilder.WriteString(`
        SELECT tr.id, tr.order_id, tr.user_id, tr.total_price, tr.created_at, tr.updated_at,
               u.username,
               COUNT(*) OVER() as total_count
        FROM transactions tr
        LEFT JOIN users u ON tr.user_id = u.id`)

	if orderBy := OrderByClause(opts.Sort, transactionSortFields); orderBy != "" {
		queryBuilder.WriteString(orderBy)
	} else {
		queryBuilder.WriteString(" ORDER BY tr.created_at DESC")
	}

	var args []interface{}
	limitClause, limitArgs := LimitOffsetClause(opts, 1)
	queryBuilder.WriteString(limitClause)
	args = append(args, limitArgs...)

	rows, err := r.db.Query(queryBuilder.String(), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: querying transactions: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var tr models.Transaction
		var cashierUsername sql.NullString
		err := rows.Scan(
			&tr.ID, &tr.OrderID, &tr.UserID, &tr.TotalPrice, &tr.CreatedAt, &tr.UpdatedAt,
			&cashierUsername, &totalCount,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: scanning transaction: %v", ErrDatabaseError, err)
		}
		if cashierUsername.Valid {
			tr.Cashier = &models.User{ID: tr.UserID, Username: cashierUsername.String}
		}
		transactions = append(transactions, tr)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating transaction rows: %v", ErrDatabaseError, err)
	}
	return transactions, totalCount, nil
}

func (r *transactionRepository) GetAllTransactions() ([]models.Transaction, error) {
	transactions := []models.Transaction{}
	query := `SELECT id, order_id, user_id, total_price, created_at, updated_at
	          FROM transactions ORDER BY id`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("%w: querying all transactions: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var tr models.Transaction
		err := rows.Scan(&tr.ID, &tr.OrderID, &tr.UserID, &tr.TotalPrice, &tr.CreatedAt, &tr.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("%w: scanning transaction: %v", ErrDatabaseError, err)
		}
		transactions = append(transactions, tr)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating transaction rows: %v", ErrDatabaseError, err)
	}
	return transactions, nil
}

func (r *transactionRepository) DeleteTransaction(executor SQLExecutor, transactionID int64) error {
	result, err := executor.Exec(`DELETE FROM transactions WHERE id = $1`, transactionID)
	if err != nil {
		return fmt.Errorf("%w: deleting transaction ID %d: %v", ErrDatabaseError, transactionID, err)
	}
	return requireRowsAffected(result, transactionID)
}
