package models

import "time"

// User represents a back-office or floor staff account. A user may hold
// any number of roles; the effective permission set is the union of the
// permissions of all assigned roles.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username" db:"username"`
	PasswordHash string    `json:"-" db:"password_hash"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
	Roles        []Role    `json:"roles,omitempty"`
}

// Role groups permissions and is assigned to users many-to-many.
type Role struct {
	ID          int64        `json:"id"`
	Name        string       `json:"name" db:"name"`
	CreatedAt   time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at" db:"updated_at"`
	Permissions []Permission `json:"permissions,omitempty"`
}

// Permission is a single route-level ability, named "<resource>.<action>",
// e.g. "table.update".
type Permission struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
