package models

import "time"

// Transaction is the checkout record for one order. Creating it is the
// sole trigger that closes the order and frees its table.
type Transaction struct {
	ID         int64     `json:"id"`
	OrderID    int64     `json:"order_id" db:"order_id"`
	UserID     int64     `json:"user_id" db:"user_id"`
	TotalPrice float64   `json:"total_price" db:"total_price"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
	Order      *Order    `json:"order,omitempty"`
	Cashier    *User     `json:"cashier,omitempty"`
}
