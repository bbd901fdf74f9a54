package services

import (
	"errors"
	"time"
)

// Service-level sentinel errors. Handlers map these onto HTTP statuses
// with errors.Is, so wrap them rather than returning new roots.
var (
	ErrValidation         = errors.New("validation error")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrTokenGeneration    = errors.New("failed to generate token")

	ErrUserNotFound        = errors.New("user not found")
	ErrRoleNotFound        = errors.New("role not found")
	ErrPermissionNotFound  = errors.New("permission not found")
	ErrTableNotFound       = errors.New("table not found")
	ErrTableBusy           = errors.New("table is busy")
	ErrOrderNotFound       = errors.New("order not found")
	ErrDetailNotFound      = errors.New("order detail not found")
	ErrFoodNotFound        = errors.New("food not found")
	ErrCategoryNotFound    = errors.New("category not found")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrDuplicate           = errors.New("duplicate record")
)

// Broadcast event names pushed through the websocket hub.
const (
	EventNewOrder            = "new-order"
	EventRefreshTables       = "refresh-tables"
	EventTransactionComplete = "transaction-complete"
)

// Notifier decouples services from the websocket hub. The hub satisfies
// it; tests pass a stub or nil-guard via noopNotifier.
type Notifier interface {
	Broadcast(event string, data interface{})
}

type noopNotifier struct{}

func (noopNotifier) Broadcast(string, interface{}) {}

// orNoop lets constructors accept a nil notifier.
func orNoop(n Notifier) Notifier {
	if n == nil {
		return noopNotifier{}
	}
	return n
}

// timeLayout is the timestamp format used in every API response.
const timeLayout = "2006-01-02 15:04:05"

func formatTime(t time.Time) string {
	return t.Format(timeLayout)
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(timeLayout)
	return &s
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(timeLayout, s)
}
