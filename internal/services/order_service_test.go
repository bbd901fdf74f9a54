package services

import (
	"database/sql"
	"testing"
	"time"

	"resto_pos_backend/internal/models"
	"resto_pos_backend/internal/repositories"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

// The repository stubs ignore the executor; sqlmock only backs the
// Begin/Commit pairs the service opens around them.

type stubOrderRepo struct {
	repositories.OrderRepository

	getOpenForUpdate func(tableID int64) (*models.Order, error)
	createOrderErr   error
	order            *models.Order
	orderForUpdate   *models.Order

	createdDetails []models.DetailOrder
	unservedLeft   int
	flags          []string

	deletedOrders []int64
}

func (s *stubOrderRepo) GetOpenOrderForUpdate(_ repositories.SQLExecutor, tableID int64) (*models.Order, error) {
	return s.getOpenForUpdate(tableID)
}

func (s *stubOrderRepo) GetOrderForUpdate(_ repositories.SQLExecutor, orderID int64) (*models.Order, error) {
	if s.orderForUpdate == nil {
		return nil, repositories.ErrNotFound
	}
	return s.orderForUpdate, nil
}

func (s *stubOrderRepo) CreateOrder(_ repositories.SQLExecutor, order *models.Order) (int64, error) {
	if s.createOrderErr != nil {
		return 0, s.createOrderErr
	}
	order.ID = 99
	order.Status = models.OrderOpen
	order.DetailsComplete = models.DetailsIncomplete
	return order.ID, nil
}

func (s *stubOrderRepo) CreateDetail(_ repositories.SQLExecutor, detail *models.DetailOrder) (int64, error) {
	detail.ID = int64(len(s.createdDetails) + 1)
	s.createdDetails = append(s.createdDetails, *detail)
	return detail.ID, nil
}

func (s *stubOrderRepo) UpdateDetailsComplete(_ repositories.SQLExecutor, orderID int64, flag string) error {
	s.flags = append(s.flags, flag)
	return nil
}

func (s *stubOrderRepo) ServeDetail(_ repositories.SQLExecutor, orderID, detailID int64) error {
	if s.unservedLeft > 0 {
		s.unservedLeft--
	}
	return nil
}

func (s *stubOrderRepo) CountUnservedOpenDetails(_ repositories.SQLExecutor, orderID int64) (int, error) {
	return s.unservedLeft, nil
}

func (s *stubOrderRepo) DeleteOrder(_ repositories.SQLExecutor, orderID int64) error {
	s.deletedOrders = append(s.deletedOrders, orderID)
	return nil
}

func (s *stubOrderRepo) GetOrderByID(orderID int64) (*models.Order, error) {
	if s.order == nil {
		return nil, repositories.ErrNotFound
	}
	return s.order, nil
}

func (s *stubOrderRepo) GetDetailsByOrderID(orderID int64) ([]models.DetailOrder, error) {
	return s.createdDetails, nil
}

type stubTableRepo struct {
	repositories.TableRepository

	table    *models.Table
	occupied []int64
	released []int64
}

func (s *stubTableRepo) GetTableByNumberForUpdate(_ repositories.SQLExecutor, number int64) (*models.Table, error) {
	if s.table == nil || s.table.Number != number {
		return nil, repositories.ErrNotFound
	}
	return s.table, nil
}

func (s *stubTableRepo) OccupyByID(_ repositories.SQLExecutor, tableID int64) error {
	s.occupied = append(s.occupied, tableID)
	return nil
}

func (s *stubTableRepo) ReleaseByID(_ repositories.SQLExecutor, tableID int64) error {
	s.released = append(s.released, tableID)
	return nil
}

type stubFoodRepo struct {
	repositories.FoodRepository

	missingFood bool
}

func (s *stubFoodRepo) CountExisting(_ repositories.SQLExecutor, foodIDs []int64) (int, error) {
	if s.missingFood {
		return len(foodIDs) - 1, nil
	}
	return len(foodIDs), nil
}

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func openOrderFixture() *models.Order {
	now := time.Now()
	return &models.Order{
		ID:              7,
		CustomerID:      3,
		TableID:         5,
		Status:          models.OrderOpen,
		DetailsComplete: models.DetailsIncomplete,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

func TestPlaceOrderWithoutTipsOpensOrder(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	orderRepo := &stubOrderRepo{
		getOpenForUpdate: func(int64) (*models.Order, error) { return nil, repositories.ErrNotFound },
	}
	tableRepo := &stubTableRepo{table: &models.Table{ID: 5, Number: 12, Available: models.TableFree}}
	svc := NewOrderService(orderRepo, tableRepo, &stubFoodRepo{}, db, nil)

	// Fetching the response after commit re-reads the order.
	created := openOrderFixture()
	created.ID = 99
	orderRepo.order = created

	resp, err := svc.PlaceOrder(3, CreateOrderRequest{
		TableNumber: 12,
		Details:     []OrderItemRequest{{FoodID: 1, Qty: 2}},
	})

	assert.NoError(t, err)
	assert.NotNil(t, resp)
	if assert.Len(t, orderRepo.createdDetails, 1) {
		detail := orderRepo.createdDetails[0]
		assert.Equal(t, int64(99), detail.OrderID)
		assert.Equal(t, 2, detail.Qty)
		// Tips stay null when the guest leaves none.
		assert.Nil(t, detail.Tips)
	}
	assert.Equal(t, []string{models.DetailsIncomplete}, orderRepo.flags)
	assert.Equal(t, []int64{5}, tableRepo.occupied)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPlaceOrderUnknownFoodIsValidationError(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	orderRepo := &stubOrderRepo{
		getOpenForUpdate: func(int64) (*models.Order, error) { return nil, repositories.ErrNotFound },
	}
	tableRepo := &stubTableRepo{table: &models.Table{ID: 5, Number: 12, Available: models.TableFree}}
	svc := NewOrderService(orderRepo, tableRepo, &stubFoodRepo{missingFood: true}, db, nil)

	_, err := svc.PlaceOrder(3, CreateOrderRequest{
		TableNumber: 12,
		Details:     []OrderItemRequest{{FoodID: 1, Qty: 1}, {FoodID: 404, Qty: 1}},
	})

	assert.ErrorIs(t, err, ErrValidation)
	assert.Empty(t, orderRepo.createdDetails)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPlaceOrderJoinsWinnerAfterUniqueViolation(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	winner := openOrderFixture()
	calls := 0
	orderRepo := &stubOrderRepo{
		createOrderErr: repositories.ErrDuplicateKey,
		order:          winner,
	}
	orderRepo.getOpenForUpdate = func(int64) (*models.Order, error) {
		calls++
		if calls == 1 {
			return nil, repositories.ErrNotFound
		}
		return winner, nil
	}
	tableRepo := &stubTableRepo{table: &models.Table{ID: 5, Number: 12, Available: models.TableOccupied}}
	svc := NewOrderService(orderRepo, tableRepo, &stubFoodRepo{}, db, nil)

	resp, err := svc.PlaceOrder(3, CreateOrderRequest{
		TableNumber: 12,
		Details:     []OrderItemRequest{{FoodID: 1, Qty: 1}},
	})

	assert.NoError(t, err)
	assert.NotNil(t, resp)
	assert.Equal(t, 2, calls)
	if assert.Len(t, orderRepo.createdDetails, 1) {
		assert.Equal(t, winner.ID, orderRepo.createdDetails[0].OrderID)
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestServeDetailFlipsCompleteOnLastItem(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectCommit()
	mock.ExpectBegin()
	mock.ExpectCommit()

	order := openOrderFixture()
	orderRepo := &stubOrderRepo{
		order:        order,
		unservedLeft: 2,
	}
	svc := NewOrderService(orderRepo, &stubTableRepo{}, &stubFoodRepo{}, db, nil)

	// First serve leaves one item outstanding: the flag stays N.
	_, err := svc.ServeDetail(order.ID, 1)
	assert.NoError(t, err)
	assert.Equal(t, []string{models.DetailsIncomplete}, orderRepo.flags)

	// Serving the last item flips it to Y.
	_, err = svc.ServeDetail(order.ID, 2)
	assert.NoError(t, err)
	assert.Equal(t, []string{models.DetailsIncomplete, models.DetailsComplete}, orderRepo.flags)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteOrderFreesTableOnlyWhenOpen(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectCommit()
	mock.ExpectBegin()
	mock.ExpectCommit()

	open := openOrderFixture()
	orderRepo := &stubOrderRepo{orderForUpdate: open}
	tableRepo := &stubTableRepo{}
	svc := NewOrderService(orderRepo, tableRepo, &stubFoodRepo{}, db, nil)

	assert.NoError(t, svc.DeleteOrder(open.ID))
	assert.Equal(t, []int64{open.TableID}, tableRepo.released)

	closed := openOrderFixture()
	closed.Status = models.OrderClosed
	orderRepo.orderForUpdate = closed

	assert.NoError(t, svc.DeleteOrder(closed.ID))
	// A closed order's table was already freed at checkout.
	assert.Equal(t, []int64{open.TableID}, tableRepo.released)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteOrderUnknownOrder(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	svc := NewOrderService(&stubOrderRepo{}, &stubTableRepo{}, &stubFoodRepo{}, db, nil)

	err := svc.DeleteOrder(123)
	assert.ErrorIs(t, err, ErrOrderNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
