package models

import "time"

// Table availability flags. A table is occupied exactly while it has an
// open order attached to it.
const (
	TableFree     = "Y"
	TableOccupied = "N"
)

// Table is a physical restaurant table, addressed by its unique number.
type Table struct {
	ID        int64     `json:"id"`
	Number    int64     `json:"number" db:"number"`
	Available string    `json:"available" db:"available"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
