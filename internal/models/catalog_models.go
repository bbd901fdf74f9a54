package models

import "time"

// Category groups foods on the menu.
type Category struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Food is a menu entry. Discount is a whole percentage (0-100); the
// effective unit price is price minus discount% of price.
type Food struct {
	ID          int64     `json:"id"`
	CategoryID  int64     `json:"category_id" db:"category_id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	Price       float64   `json:"price" db:"price"`
	Discount    float64   `json:"discount" db:"discount"`
	Image       *string   `json:"image,omitempty" db:"image"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
	Category    *Category `json:"category,omitempty"`
}

// EffectivePrice returns the unit price after applying the percentage
// discount. A discount of 0 means no reduction.
func (f Food) EffectivePrice() float64 {
	if f.Discount > 0 {
		return f.Price - f.Discount/100*f.Price
	}
	return f.Price
}
