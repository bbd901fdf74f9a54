package services

import (
	"database/sql"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"

	"resto_pos_backend/internal/models"
	"resto_pos_backend/internal/repositories"
	"resto_pos_backend/internal/spreadsheet"
	"resto_pos_backend/pkg/utils"
)

// --- DTOs ---

type CheckoutRequest struct {
	OrderID int64 `json:"order_id" binding:"required"`
}

type TransactionResponse struct {
	ID         int64          `json:"id"`
	OrderID    int64          `json:"order_id"`
	TotalPrice float64        `json:"total_price"`
	Cashier    *OrderCustomer `json:"cashier,omitempty"`
	CreatedAt  string         `json:"created_at"`
	UpdatedAt  string         `json:"updated_at"`
}

func newTransactionResponse(tr *models.Transaction) *TransactionResponse {
	resp := &TransactionResponse{
		ID:         tr.ID,
		OrderID:    tr.OrderID,
		TotalPrice: tr.TotalPrice,
		CreatedAt:  formatTime(tr.CreatedAt),
		UpdatedAt:  formatTime(tr.UpdatedAt),
	}
	if tr.Cashier != nil {
		resp.Cashier = &OrderCustomer{ID: tr.Cashier.ID, Username: tr.Cashier.Username}
	}
	return resp
}

// ComputeTotal sums qty times the discounted unit price over the line
// items, rounded to two decimal places.
func ComputeTotal(details []models.DetailOrder) float64 {
	var total float64
	for _, d := range details {
		if d.Food == nil {
			continue
		}
		total += float64(d.Qty) * d.Food.EffectivePrice()
	}
	return math.Round(total*100) / 100
}

// --- TransactionService Interface ---

type TransactionService interface {
	// Checkout closes an open order: it computes the bill, records the
	// transaction, marks the order paid and frees the table, all in one
	// database transaction. Checking out an order that is not open is
	// ErrOrderNotFound.
	Checkout(cashierID int64, req CheckoutRequest) (*TransactionResponse, error)
	GetTransactions(opts models.ListOptions) ([]TransactionResponse, int, error)
	GetTransactionByID(transactionID int64) (*TransactionResponse, error)
	DeleteTransaction(transactionID int64) error

	ExportTransactions(format string) ([]byte, error)
	ImportTransactions(format string, r io.Reader) (int, error)
}

type transactionService struct {
	transactionRepo repositories.TransactionRepository
	orderRepo       repositories.OrderRepository
	tableRepo       repositories.TableRepository
	db              *sql.DB
	notifier        Notifier
}

// NewTransactionService creates a new instance of TransactionService.
func NewTransactionService(
	transactionRepo repositories.TransactionRepository,
	orderRepo repositories.OrderRepository,
	tableRepo repositories.TableRepository,
	db *sql.DB,
	notifier Notifier,
) TransactionService {
	return &transactionService{
		transactionRepo: transactionRepo,
		orderRepo:       orderRepo,
		tableRepo:       tableRepo,
		db:              db,
		notifier:        orNoop(notifier),
	}
}

func (s *transactionService) Checkout(cashierID int64, req CheckoutRequest) (*TransactionResponse, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to start database transaction: %w", err)
	}
	defer tx.Rollback()

	// The row lock serializes against concurrent checkouts and against
	// line items being appended mid-bill.
	order, err := s.orderRepo.GetOrderForUpdate(tx, req.OrderID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("locking order %d: %w", req.OrderID, err)
	}
	if order.Status != models.OrderOpen {
		return nil, fmt.Errorf("%w: order %d is no longer open", ErrOrderNotFound, req.OrderID)
	}

	details, err := s.orderRepo.GetDetailsByOrderID(order.ID)
	if err != nil {
		return nil, fmt.Errorf("loading line items for order %d: %w", order.ID, err)
	}

	trx := models.Transaction{
		OrderID:    order.ID,
		UserID:     cashierID,
		TotalPrice: ComputeTotal(details),
	}
	if _, err := s.transactionRepo.CreateTransaction(tx, &trx); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, fmt.Errorf("%w: order %d is already paid", ErrDuplicate, order.ID)
		}
		return nil, fmt.Errorf("recording transaction: %w", err)
	}
	if err := s.orderRepo.UpdateOrderStatus(tx, order.ID, models.OrderClosed); err != nil {
		return nil, fmt.Errorf("closing order %d: %w", order.ID, err)
	}
	if err := s.tableRepo.ReleaseByID(tx, order.TableID); err != nil {
		return nil, fmt.Errorf("releasing table %d: %w", order.TableID, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit checkout: %w", err)
	}

	resp, err := s.GetTransactionByID(trx.ID)
	if err != nil {
		return nil, err
	}
	s.notifier.Broadcast(EventTransactionComplete, resp)
	s.notifier.Broadcast(EventRefreshTables, nil)
	return resp, nil
}

func (s *transactionService) GetTransactions(opts models.ListOptions) ([]TransactionResponse, int, error) {
	transactions, totalCount, err := s.transactionRepo.GetTransactions(opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get transactions: %w", err)
	}
	responses := make([]TransactionResponse, 0, len(transactions))
	for i := range transactions {
		responses = append(responses, *newTransactionResponse(&transactions[i]))
	}
	return responses, totalCount, nil
}

func (s *transactionService) GetTransactionByID(transactionID int64) (*TransactionResponse, error) {
	tr, err := s.transactionRepo.GetTransactionByID(transactionID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return newTransactionResponse(tr), nil
}

func (s *transactionService) DeleteTransaction(transactionID int64) error {
	if err := s.transactionRepo.DeleteTransaction(s.db, transactionID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrTransactionNotFound
		}
		return fmt.Errorf("deleting transaction: %w", err)
	}
	return nil
}

var transactionExportHeaders = []string{"id", "order_id", "user_id", "total_price", "created_at", "updated_at"}

func (s *transactionService) ExportTransactions(format string) ([]byte, error) {
	transactions, err := s.transactionRepo.GetAllTransactions()
	if err != nil {
		return nil, fmt.Errorf("failed to get transactions for export: %w", err)
	}

	rows := make([][]string, 0, len(transactions))
	for _, tr := range transactions {
		rows = append(rows, []string{
			utils.Int64ToStr(tr.ID),
			utils.Int64ToStr(tr.OrderID),
			utils.Int64ToStr(tr.UserID),
			strconv.FormatFloat(tr.TotalPrice, 'f', 2, 64),
			formatTime(tr.CreatedAt),
			formatTime(tr.UpdatedAt),
		})
	}
	return spreadsheet.Write(format, "transactions", transactionExportHeaders, rows)
}

// ImportTransactions replays exported rows. It does not touch orders or
// tables; it restores the ledger only.
func (s *transactionService) ImportTransactions(format string, r io.Reader) (int, error) {
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
		if len(row) < 6 {
			return 0, fmt.Errorf("%w: row %d has %d columns, want 6", ErrValidation, i+2, len(row))
		}
		orderID, err := utils.StrToInt64(row[1])
		if err != nil {
			return 0, fmt.Errorf("%w: row %d order_id: %v", ErrValidation, i+2, err)
		}
		userID, err := utils.StrToInt64(row[2])
		if err != nil {
			return 0, fmt.Errorf("%w: row %d user_id: %v", ErrValidation, i+2, err)
		}
		totalPrice, err := strconv.ParseFloat(row[3], 64)
		if err != nil {
			return 0, fmt.Errorf("%w: row %d total_price: %v", ErrValidation, i+2, err)
		}
		createdAt, err := parseTime(row[4])
		if err != nil {
			return 0, fmt.Errorf("%w: row %d created_at: %v", ErrValidation, i+2, err)
		}
		updatedAt, err := parseTime(row[5])
		if err != nil {
			return 0, fmt.Errorf("%w: row %d updated_at: %v", ErrValidation, i+2, err)
		}

		trx := models.Transaction{
			OrderID:    orderID,
			UserID:     userID,
			TotalPrice: totalPrice,
			CreatedAt:  createdAt,
			UpdatedAt:  updatedAt,
		}
		if _, err := s.transactionRepo.CreateTransaction(tx, &trx); err != nil {
			if errors.Is(err, repositories.ErrDuplicateKey) {
				return 0, fmt.Errorf("%w: row %d order %d", ErrDuplicate, i+2, orderID)
			}
			return 0, fmt.Errorf("importing row %d: %w", i+2, err)
		}
		imported++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction import: %w", err)
	}
	return imported, nil
}
