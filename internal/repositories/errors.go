package repositories

import (
	"database/sql"
	"errors"
)

var (
	// ErrNotFound is returned when a specific record is not found.
	ErrNotFound = errors.New("requested record not found")

	// ErrDatabaseError wraps unexpected database driver errors.
	ErrDatabaseError = errors.New("database error")

	// ErrDuplicateKey is returned when an insert/update violates a
	// unique constraint.
	ErrDuplicateKey = errors.New("duplicate key value violates unique constraint")

	// ErrConflict is returned when a conditional update touched no rows
	// because another caller already changed the row state, e.g. seating
	// an occupied table.
	ErrConflict = errors.New("record is in a conflicting state")
)

// SQLExecutor is satisfied by *sql.DB and *sql.Tx, so repository methods
// can run standalone or inside an enclosing transaction.
type SQLExecutor interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
	QueryRow(query string, args ...interface{}) *sql.Row
	Query(query string, args ...interface{}) (*sql.Rows, error)
}
