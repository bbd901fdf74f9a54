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

// OrderRepository defines the database operations for orders and their
// line items.
type OrderRepository interface {
	// GetOpenOrderForUpdate loads the open order for a table inside an
	// enclosing transaction, taking a row lock so concurrent placements
	// on the same table serialize.
	GetOpenOrderForUpdate(executor SQLExecutor, tableID int64) (*models.Order, error)
	// GetOrderForUpdate locks an order by primary key for the enclosing
	// transaction (checkout path).
	GetOrderForUpdate(executor SQLExecutor, orderID int64) (*models.Order, error)
	GetOpenOrderByTableID(tableID int64) (*models.Order, error)
	CreateOrder(executor SQLExecutor, order *models.Order) (int64, error)
	GetOrderByID(orderID int64) (*models.Order, error)
	GetOrders(opts models.ListOptions) ([]models.Order, int, error)
	UpdateOrderStatus(executor SQLExecutor, orderID int64, status string) error
	UpdateDetailsComplete(executor SQLExecutor, orderID int64, flag string) error
	DeleteOrder(executor SQLExecutor, orderID int64) error

	CreateDetail(executor SQLExecutor, detail *models.DetailOrder) (int64, error)
	GetDetailsByOrderID(orderID int64) ([]models.DetailOrder, error)
	// ServeDetail stamps served_at on a line item. Stamping an already
	// served item is a no-op; a detail that does not belong to the order
	// is ErrNotFound.
	ServeDetail(executor SQLExecutor, orderID, detailID int64) error
	CountUnservedOpenDetails(executor SQLExecutor, orderID int64) (int, error)
	DeleteDetail(executor SQLExecutor, orderID, detailID int64) error
	// GetUnservedOpenDetails returns every unserved line item belonging
	// to an open order, the kitchen work queue.
	GetUnservedOpenDetails() ([]models.DetailOrder, error)
}

type orderRepository struct {
	db *sql.DB
}

// NewOrderRepository creates a new instance of OrderRepository.
func NewOrderRepository(db *sql.DB) OrderRepository {
	return &orderRepository{db: db}
}

var orderSortFields = FieldMap{
	"id":         "o.id",
	"status":     "o.status",
	"created_at": "o.created_at",
	"updated_at": "o.updated_at",
}

const orderColumns = `o.id, o.customer_id, o.table_id, o.status, o.details_complete, o.created_at, o.updated_at,
	       u.username as customer_username, t.number as table_number`

func scanOrder(row interface{ Scan(...interface{}) error }, o *models.Order, extra ...interface{}) error {
	var customerUsername sql.NullString
	var tableNumber sql.NullInt64

	dest := []interface{}{
		&o.ID, &o.CustomerID, &o.TableID, &o.Status, &o.DetailsComplete, &o.CreatedAt, &o.UpdatedAt,
		&customerUsername, &tableNumber,
	}
	dest = append(dest, extra...)
	if err := row.Scan(dest...); err != nil {
		return err
	}

	if customerUsername.Valid {
		o.Customer = &models.User{ID: o.CustomerID, Username: customerUsername.String}
	}
	if tableNumber.Valid {
		o.Table = &models.Table{ID: o.TableID, Number: tableNumber.Int64}
	}
	return nil
}

func (r *orderRepository) GetOpenOrderForUpdate(executor SQLExecutor, tableID int64) (*models.Order, error) {
	order := &models.Order{}
	query := `SELECT id, customer_id, table_id, status, details_complete, created_at, updated_at
	          FROM orders
	          WHERE table_id = $1 AND status = $2
	          FOR UPDATE`
	err := executor.QueryRow(query, tableID, models.OrderOpen).Scan(
		&order.ID, &order.CustomerID, &order.TableID, &order.Status, &order.DetailsComplete,
		&order.CreatedAt, &order.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: locking open order for table %d: %v", ErrDatabaseError, tableID, err)
	}
	return order, nil
}

func (r *orderRepository) GetOrderForUpdate(executor SQLExecutor, orderID int64) (*models.Order, error) {
	order := &models.Order{}
	query := `SELECT id, customer_id, table_id, status, details_complete, created_at, updated_at
	          FROM orders
	          WHERE id = $1
	          FOR UPDATE`
	err := executor.QueryRow(query, orderID).Scan(
		&order.ID, &order.CustomerID, &order.TableID, &order.Status, &order.DetailsComplete,
		&order.CreatedAt, &order.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: locking order %d: %v", ErrDatabaseError, orderID, err)
	}
	return order, nil
}

func (r *orderRepository) GetOpenOrderByTableID(tableID int64) (*models.Order, error) {
	order := &models.Order{}
	query := `SELECT ` + orderColumns + `
	          FROM orders o
	          LEFT JOIN users u ON o.customer_id = u.id
	          JOIN restaurant_tables t ON o.table_id = t.id
	          WHERE o.table_id = $1 AND o.status = $2 AND t.available = $3`
	err := scanOrder(r.db.QueryRow(query, tableID, models.OrderOpen, models.TableOccupied), order)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting open order for table %d: %v", ErrDatabaseError, tableID, err)
	}
	return order, nil
}

func (r *orderRepository) CreateOrder(executor SQLExecutor, order *models.Order) (int64, error) {
	query := `INSERT INTO orders (customer_id, table_id, status, details_complete, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6)
	          RETURNING id`

	now := time.Now()
	if order.Status == "" {
		order.Status = models.OrderOpen
	}
	if order.DetailsComplete == "" {
		order.DetailsComplete = models.DetailsIncomplete
	}
	order.CreatedAt = now
	order.UpdatedAt = now

	err := executor.QueryRow(query,
		order.CustomerID, order.TableID, order.Status, order.DetailsComplete,
		order.CreatedAt, order.UpdatedAt,
	).Scan(&order.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			// The one-open-order-per-table partial index fired: a
			// concurrent placement won the race.
			return 0, fmt.Errorf("%w: open order for table %d", ErrDuplicateKey, order.TableID)
		}
		return 0, fmt.Errorf("%w: creating order: %v", ErrDatabaseError, err)
	}
	return order.ID, nil
}

func (r *orderRepository) GetOrderByID(orderID int64) (*models.Order, error) {
	order := &models.Order{}
	query := `SELECT ` + orderColumns + `
	          FROM orders o
	          LEFT JOIN users u ON o.customer_id = u.id
	          LEFT JOIN restaurant_tables t ON o.table_id = t.id
	          WHERE o.id = $1`
	err := scanOrder(r.db.QueryRow(query, orderID), order)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting order by ID %d: %v", ErrDatabaseError, orderID, err)
	}
	return order, nil
}

func (r *orderRepository) GetOrders(opts models.ListOptions) ([]models.Order, int, error) {
	orders := []models.Order{}
	totalCount := 0

	var queryBuilder strings.Builder
	queryBuilder.WriteString(`
        SELECT ` + orderColumns + `,
               COUNT(*) OVER() as total_count
        FROM orders o
        LEFT JOIN users u ON o.customer_id = u.id
        LEFT JOIN restaurant_tables t ON o.table_id = t.id`)

	if orderBy := OrderByClause(opts.Sort, orderSortFields); orderBy != "" {
		queryBuilder.WriteString(orderBy)
	} else {
		queryBuilder.WriteString(" ORDER BY o.created_at DESC")
	}

	var args []interface{}
	limitClause, limitArgs := LimitOffsetClause(opts, 1)
	queryBuilder.WriteString(limitClause)
	args = append(args, limitArgs...)

	rows, err := r.db.Query(queryBuilder.String(), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: querying orders: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var o models.Order
		if err := scanOrder(rows, &o, &totalCount); err != nil {
			return nil, 0, fmt.Errorf("%w: scanning order: %v", ErrDatabaseError, err)
		}
		orders = append(orders, o)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating order rows: %v", ErrDatabaseError, err)
	}
	return orders, totalCount, nil
}

func (r *orderRepository) UpdateOrderStatus(executor SQLExecutor, orderID int64, status string) error {
	result, err := executor.Exec(
		`UPDATE orders SET status = $1, updated_at = $2 WHERE id = $3`,
		status, time.Now(), orderID,
	)
	if err != nil {
		return fmt.Errorf("%w: updating order status for ID %d: %v", ErrDatabaseError, orderID, err)
	}
	return requireRowsAffected(result, orderID)
}

func (r *orderRepository) UpdateDetailsComplete(executor SQLExecutor, orderID int64, flag string) error {
	result, err := executor.Exec(
		`UPDATE orders SET details_complete = $1, updated_at = $2 WHERE id = $3`,
		flag, time.Now(), orderID,
	)
	if err != nil {
		return fmt.Errorf("%w: updating details_complete for order ID %d: %v", ErrDatabaseError, orderID, err)
	}
	return requireRowsAffected(result, orderID)
}

func (r *orderRepository) DeleteOrder(executor SQLExecutor, orderID int64) error {
	// Line items cascade on delete.
	result, err := executor.Exec(`DELETE FROM orders WHERE id = $1`, orderID)
	if err != nil {
		return fmt.Errorf("%w: deleting order ID %d: %v", ErrDatabaseError, orderID, err)
	}
	return requireRowsAffected(result, orderID)
}

func requireRowsAffected(result sql.Result, id int64) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: getting rows affected for ID %d: %v", ErrDatabaseError, id, err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// --- Line item methods ---

func (r *orderRepository) CreateDetail(executor SQLExecutor, detail *models.DetailOrder) (int64, error) {
	query := `INSERT INTO detail_orders (order_id, food_id, qty, tips, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6)
	          RETURNING id`

	now := time.Now()
	detail.CreatedAt = now
	detail.UpdatedAt = now

	err := executor.QueryRow(query,
		detail.OrderID, detail.FoodID, detail.Qty, detail.Tips, detail.CreatedAt, detail.UpdatedAt,
	).Scan(&detail.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23503" {
			return 0, fmt.Errorf("%w: creating line item (constraint: %s): %v", ErrDatabaseError, pqErr.Constraint, err)
		}
		return 0, fmt.Errorf("%w: creating line item: %v", ErrDatabaseError, err)
	}
	return detail.ID, nil
}

const detailColumns = `d.id, d.order_id, d.food_id, d.qty, d.served_at, d.tips, d.created_at, d.updated_at,
	       f.name, f.description, f.price, f.discount, f.image, f.category_id`

func scanDetail(rows *sql.Rows, d *models.DetailOrder, extra ...interface{}) error {
	var food models.Food
	var image sql.NullString

	dest := []interface{}{
		&d.ID, &d.OrderID, &d.FoodID, &d.Qty, &d.ServedAt, &d.Tips, &d.CreatedAt, &d.UpdatedAt,
		&food.Name, &food.Description, &food.Price, &food.Discount, &image, &food.CategoryID,
	}
	dest = append(dest, extra...)
	if err := rows.Scan(dest...); err != nil {
		return err
	}

	food.ID = d.FoodID
	if image.Valid {
		food.Image = &image.String
	}
	d.Food = &food
	return nil
}

func (r *orderRepository) GetDetailsByOrderID(orderID int64) ([]models.DetailOrder, error) {
	details := []models.DetailOrder{}
	query := `SELECT ` + detailColumns + `
	          FROM detail_orders d
	          JOIN foods f ON d.food_id = f.id
	          WHERE d.order_id = $1
	          ORDER BY d.id`

	rows, err := r.db.Query(query, orderID)
	if err != nil {
		return nil, fmt.Errorf("%w: querying line items for order ID %d: %v", ErrDatabaseError, orderID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var d models.DetailOrder
		if err := scanDetail(rows, &d); err != nil {
			return nil, fmt.Errorf("%w: scanning line item for order ID %d: %v", ErrDatabaseError, orderID, err)
		}
		details = append(details, d)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating line item rows for order ID %d: %v", ErrDatabaseError, orderID, err)
	}
	return details, nil
}

func (r *orderRepository) ServeDetail(executor SQLExecutor, orderID, detailID int64) error {
	result, err := executor.Exec(
		`UPDATE detail_orders SET served_at = $1, updated_at = $1
		 WHERE id = $2 AND order_id = $3 AND served_at IS NULL`,
		time.Now(), detailID, orderID,
	)
	if err != nil {
		return fmt.Errorf("%w: serving line item %d: %v", ErrDatabaseError, detailID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: rows affected serving line item %d: %v", ErrDatabaseError, detailID, err)
	}
	if rowsAffected > 0 {
		return nil
	}

	// Nothing matched: either the item was already served (fine) or it
	// does not belong to this order.
	var exists bool
	err = executor.QueryRow(
		`SELECT EXISTS(SELECT 1 FROM detail_orders WHERE id = $1 AND order_id = $2)`,
		detailID, orderID,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("%w: checking line item %d: %v", ErrDatabaseError, detailID, err)
	}
	if !exists {
		return ErrNotFound
	}
	return nil
}

func (r *orderRepository) CountUnservedOpenDetails(executor SQLExecutor, orderID int64) (int, error) {
	var count int
	query := `SELECT COUNT(*)
	          FROM detail_orders d
	          JOIN orders o ON d.order_id = o.id
	          WHERE d.order_id = $1 AND d.served_at IS NULL AND o.status = $2`
	err := executor.QueryRow(query, orderID, models.OrderOpen).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("%w: counting unserved line items for order ID %d: %v", ErrDatabaseError, orderID, err)
	}
	return count, nil
}

func (r *orderRepository) DeleteDetail(executor SQLExecutor, orderID, detailID int64) error {
	result, err := executor.Exec(
		`DELETE FROM detail_orders WHERE id = $1 AND order_id = $2`,
		detailID, orderID,
	)
	if err != nil {
		return fmt.Errorf("%w: deleting line item %d: %v", ErrDatabaseError, detailID, err)
	}
	return requireRowsAffected(result, detailID)
}

func (r *orderRepository) GetUnservedOpenDetails() ([]models.DetailOrder, error) {
	details := []models.DetailOrder{}
	query := `SELECT ` + detailColumns + `
	          FROM detail_orders d
	          JOIN foods f ON d.food_id = f.id
	          JOIN orders o ON d.order_id = o.id
	          WHERE o.status = $1 AND d.served_at IS NULL
	          ORDER BY d.created_at`

	rows, err := r.db.Query(query, models.OrderOpen)
	if err != nil {
		return nil, fmt.Errorf("%w: querying kitchen queue: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var d models.DetailOrder
		if err := scanDetail(rows, &d); err != nil {
			return nil, fmt.Errorf("%w: scanning kitchen queue row: %v", ErrDatabaseError, err)
		}
		details = append(details, d)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating kitchen queue rows: %v", ErrDatabaseError, err)
	}
	return details, nil
}
