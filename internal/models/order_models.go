package models

import "time"

// Order status flags. Closed is terminal: a closed order is never
// reopened, a new one is created instead.
const (
	OrderOpen   = "N"
	OrderClosed = "Y"
)

// Values for Order.DetailsComplete.
const (
	DetailsComplete   = "Y"
	DetailsIncomplete = "N"
)

// Order is the open/closed order aggregate for one table. At most one
// open order may exist per table at any time.
type Order struct {
	ID              int64         `json:"id"`
	CustomerID      int64         `json:"customer_id" db:"customer_id"`
	TableID         int64         `json:"table_id" db:"table_id"`
	Status          string        `json:"status" db:"status"`
	DetailsComplete string        `json:"details_complete" db:"details_complete"`
	CreatedAt       time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at" db:"updated_at"`
	Customer        *User         `json:"customer,omitempty"`
	Table           *Table        `json:"table,omitempty"`
	Details         []DetailOrder `json:"details,omitempty"`
}

// DetailOrder is a single food+quantity line item within an order.
// ServedAt is stamped exactly once by the serve action and never unset.
type DetailOrder struct {
	ID        int64      `json:"id"`
	OrderID   int64      `json:"order_id" db:"order_id"`
	FoodID    int64      `json:"food_id" db:"food_id"`
	Qty       int        `json:"qty" db:"qty"`
	ServedAt  *time.Time `json:"served_at,omitempty" db:"served_at"`
	Tips      *string    `json:"tips,omitempty" db:"tips"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
	Food      *Food      `json:"food,omitempty"`
}
