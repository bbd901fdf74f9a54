package services

import (
	"database/sql"
	"errors"
	"fmt"

	"resto_pos_backend/internal/models"
	"resto_pos_backend/internal/repositories"
)

// --- DTOs ---

type OrderItemRequest struct {
	FoodID int64   `json:"food_id" binding:"required"`
	Qty    int     `json:"qty" binding:"required,gt=0"`
	Tips   *string `json:"tips"`
}

// CreateOrderRequest opens an order on a table, or appends line items
// to the table's already-open order.
type CreateOrderRequest struct {
	TableNumber int64              `json:"table_number" binding:"required"`
	Details     []OrderItemRequest `json:"details" binding:"required,min=1,dive"`
}

type DetailResponse struct {
	ID        int64   `json:"id"`
	OrderID   int64   `json:"order_id"`
	FoodID    int64   `json:"food_id"`
	FoodName  string  `json:"food_name"`
	Price     float64 `json:"price"`
	Discount  float64 `json:"discount"`
	Qty       int     `json:"qty"`
	Tips      *string `json:"tips,omitempty"`
	ServedAt  *string `json:"served_at"`
	CreatedAt string  `json:"created_at"`
	UpdatedAt string  `json:"updated_at"`
}

type OrderCustomer struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

type OrderTable struct {
	ID     int64 `json:"id"`
	Number int64 `json:"number"`
}

type OrderResponse struct {
	ID              int64            `json:"id"`
	Status          string           `json:"status"`
	DetailsComplete string           `json:"details_complete"`
	Customer        *OrderCustomer   `json:"customer,omitempty"`
	Table           *OrderTable      `json:"table,omitempty"`
	Details         []DetailResponse `json:"details,omitempty"`
	CreatedAt       string           `json:"created_at"`
	UpdatedAt       string           `json:"updated_at"`
}

func newDetailResponse(d *models.DetailOrder) *DetailResponse {
	resp := &DetailResponse{
		ID:        d.ID,
		OrderID:   d.OrderID,
		FoodID:    d.FoodID,
		Qty:       d.Qty,
		Tips:      d.Tips,
		ServedAt:  formatTimePtr(d.ServedAt),
		CreatedAt: formatTime(d.CreatedAt),
		UpdatedAt: formatTime(d.UpdatedAt),
	}
	if d.Food != nil {
		resp.FoodName = d.Food.Name
		resp.Price = d.Food.Price
		resp.Discount = d.Food.Discount
	}
	return resp
}

func newOrderResponse(o *models.Order, details []models.DetailOrder) *OrderResponse {
	resp := &OrderResponse{
		ID:              o.ID,
		Status:          o.Status,
		DetailsComplete: o.DetailsComplete,
		CreatedAt:       formatTime(o.CreatedAt),
		UpdatedAt:       formatTime(o.UpdatedAt),
	}
	if o.Customer != nil {
		resp.Customer = &OrderCustomer{ID: o.Customer.ID, Username: o.Customer.Username}
	}
	if o.Table != nil {
		resp.Table = &OrderTable{ID: o.Table.ID, Number: o.Table.Number}
	}
	for i := range details {
		resp.Details = append(resp.Details, *newDetailResponse(&details[i]))
	}
	return resp
}

// --- OrderService Interface ---

type OrderService interface {
	// PlaceOrder opens an order on the table (or joins its open order)
	// and adds the requested line items, all in one transaction.
	PlaceOrder(customerID int64, req CreateOrderRequest) (*OrderResponse, error)
	GetOrders(opts models.ListOptions) ([]OrderResponse, int, error)
	GetOrderByID(orderID int64) (*OrderResponse, error)
	// GetOpenOrderForTable returns (nil, nil) when the table is free.
	GetOpenOrderForTable(tableID int64) (*OrderResponse, error)
	DeleteOrder(orderID int64) error

	ServeDetail(orderID, detailID int64) (*OrderResponse, error)
	DeleteDetail(orderID, detailID int64) (*OrderResponse, error)
	// KitchenQueue lists every unserved line item of the open orders.
	KitchenQueue() ([]DetailResponse, error)
}

type orderService struct {
	orderRepo repositories.OrderRepository
	tableRepo repositories.TableRepository
	foodRepo  repositories.FoodRepository
	db        *sql.DB
	notifier  Notifier
}

// NewOrderService creates a new instance of OrderService.
func NewOrderService(
	orderRepo repositories.OrderRepository,
	tableRepo repositories.TableRepository,
	foodRepo repositories.FoodRepository,
	db *sql.DB,
	notifier Notifier,
) OrderService {
	return &orderService{
		orderRepo: orderRepo,
		tableRepo: tableRepo,
		foodRepo:  foodRepo,
		db:        db,
		notifier:  orNoop(notifier),
	}
}

func (s *orderService) PlaceOrder(customerID int64, req CreateOrderRequest) (*OrderResponse, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to start database transaction: %w", err)
	}
	defer tx.Rollback()

	// Locking the table row serializes concurrent placements on the
	// same table; the partial unique index on open orders is the backstop.
	table, err := s.tableRepo.GetTableByNumberForUpdate(tx, req.TableNumber)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrTableNotFound
		}
		return nil, fmt.Errorf("locking table %d: %w", req.TableNumber, err)
	}

	if err := s.checkFoodsExist(tx, req.Details); err != nil {
		return nil, err
	}

	order, err := s.orderRepo.GetOpenOrderForUpdate(tx, table.ID)
	if err != nil {
		if !errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("loading open order for table %d: %w", table.ID, err)
		}
		order = &models.Order{CustomerID: customerID, TableID: table.ID}
		if _, err := s.orderRepo.CreateOrder(tx, order); err != nil {
			if !errors.Is(err, repositories.ErrDuplicateKey) {
				return nil, fmt.Errorf("creating order: %w", err)
			}
			// Lost the race on the open-order unique index: another
			// placement slipped in ahead of the table-row lock. Join
			// the winner's order instead.
			order, err = s.orderRepo.GetOpenOrderForUpdate(tx, table.ID)
			if err != nil {
				return nil, fmt.Errorf("reloading open order for table %d: %w", table.ID, err)
			}
		}
	}

	for _, item := range req.Details {
		detail := models.DetailOrder{
			OrderID: order.ID,
			FoodID:  item.FoodID,
			Qty:     item.Qty,
			Tips:    item.Tips,
		}
		if _, err := s.orderRepo.CreateDetail(tx, &detail); err != nil {
			return nil, fmt.Errorf("adding line item for food %d: %w", item.FoodID, err)
		}
	}

	// New unserved items reopen the kitchen flag.
	if err := s.orderRepo.UpdateDetailsComplete(tx, order.ID, models.DetailsIncomplete); err != nil {
		return nil, fmt.Errorf("flagging order %d incomplete: %w", order.ID, err)
	}
	if err := s.tableRepo.OccupyByID(tx, table.ID); err != nil {
		return nil, fmt.Errorf("occupying table %d: %w", table.ID, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit order transaction: %w", err)
	}

	resp, err := s.GetOrderByID(order.ID)
	if err != nil {
		return nil, err
	}
	s.notifier.Broadcast(EventNewOrder, resp)
	s.notifier.Broadcast(EventRefreshTables, nil)
	return resp, nil
}

func (s *orderService) checkFoodsExist(executor repositories.SQLExecutor, items []OrderItemRequest) error {
	seen := make(map[int64]struct{}, len(items))
	ids := make([]int64, 0, len(items))
	for _, item := range items {
		if _, ok := seen[item.FoodID]; ok {
			continue
		}
		seen[item.FoodID] = struct{}{}
		ids = append(ids, item.FoodID)
	}

	count, err := s.foodRepo.CountExisting(executor, ids)
	if err != nil {
		return fmt.Errorf("checking foods: %w", err)
	}
	if count != len(ids) {
		return fmt.Errorf("%w: one or more food ids are unknown", ErrValidation)
	}
	return nil
}

func (s *orderService) GetOrders(opts models.ListOptions) ([]OrderResponse, int, error) {
	orders, totalCount, err := s.orderRepo.GetOrders(opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get orders: %w", err)
	}
	responses := make([]OrderResponse, 0, len(orders))
	for i := range orders {
		responses = append(responses, *newOrderResponse(&orders[i], nil))
	}
	return responses, totalCount, nil
}

func (s *orderService) GetOrderByID(orderID int64) (*OrderResponse, error) {
	order, err := s.orderRepo.GetOrderByID(orderID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	details, err := s.orderRepo.GetDetailsByOrderID(orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to get line items for order %d: %w", orderID, err)
	}
	return newOrderResponse(order, details), nil
}

func (s *orderService) GetOpenOrderForTable(tableID int64) (*OrderResponse, error) {
	if _, err := s.tableRepo.GetTableByID(tableID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrTableNotFound
		}
		return nil, fmt.Errorf("failed to get table: %w", err)
	}

	order, err := s.orderRepo.GetOpenOrderByTableID(tableID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, nil // free table
		}
		return nil, fmt.Errorf("failed to get open order for table %d: %w", tableID, err)
	}
	details, err := s.orderRepo.GetDetailsByOrderID(order.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get line items for order %d: %w", order.ID, err)
	}
	return newOrderResponse(order, details), nil
}

// DeleteOrder removes an order and its line items. Deleting an open
// order also frees its table.
func (s *orderService) DeleteOrder(orderID int64) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to start database transaction: %w", err)
	}
	defer tx.Rollback()

	// The status decides whether the table gets freed, so read it under
	// the same lock the checkout path takes.
	order, err := s.orderRepo.GetOrderForUpdate(tx, orderID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrOrderNotFound
		}
		return fmt.Errorf("failed to get order: %w", err)
	}

	if err := s.orderRepo.DeleteOrder(tx, orderID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrOrderNotFound
		}
		return fmt.Errorf("deleting order: %w", err)
	}
	if order.Status == models.OrderOpen {
		if err := s.tableRepo.ReleaseByID(tx, order.TableID); err != nil {
			return fmt.Errorf("releasing table %d: %w", order.TableID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit order delete: %w", err)
	}

	if order.Status == models.OrderOpen {
		s.notifier.Broadcast(EventRefreshTables, nil)
	}
	return nil
}

func (s *orderService) ServeDetail(orderID, detailID int64) (*OrderResponse, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to start database transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.orderRepo.ServeDetail(tx, orderID, detailID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrDetailNotFound
		}
		return nil, fmt.Errorf("serving line item %d: %w", detailID, err)
	}
	if err := s.recomputeDetailsComplete(tx, orderID); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit serve transaction: %w", err)
	}
	return s.GetOrderByID(orderID)
}

func (s *orderService) DeleteDetail(orderID, detailID int64) (*OrderResponse, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to start database transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.orderRepo.DeleteDetail(tx, orderID, detailID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrDetailNotFound
		}
		return nil, fmt.Errorf("deleting line item %d: %w", detailID, err)
	}
	if err := s.recomputeDetailsComplete(tx, orderID); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit line item delete: %w", err)
	}
	return s.GetOrderByID(orderID)
}

func (s *orderService) recomputeDetailsComplete(executor repositories.SQLExecutor, orderID int64) error {
	unserved, err := s.orderRepo.CountUnservedOpenDetails(executor, orderID)
	if err != nil {
		return fmt.Errorf("counting unserved line items: %w", err)
	}
	flag := models.DetailsComplete
	if unserved > 0 {
		flag = models.DetailsIncomplete
	}
	if err := s.orderRepo.UpdateDetailsComplete(executor, orderID, flag); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrOrderNotFound
		}
		return fmt.Errorf("updating details_complete for order %d: %w", orderID, err)
	}
	return nil
}

func (s *orderService) KitchenQueue() ([]DetailResponse, error) {
	details, err := s.orderRepo.GetUnservedOpenDetails()
	if err != nil {
		return nil, fmt.Errorf("failed to get kitchen queue: %w", err)
	}
	responses := make([]DetailResponse, 0, len(details))
	for i := range details {
		responses = append(responses, *newDetailResponse(&details[i]))
	}
	return responses, nil
}
