package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatTime(t *testing.T) {
	ts := time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)
	assert.Equal(t, "2025-03-14 09:26:53", formatTime(ts))
}

func TestFormatTimePtr(t *testing.T) {
	assert.Nil(t, formatTimePtr(nil))

	ts := time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)
	formatted := formatTimePtr(&ts)
	if assert.NotNil(t, formatted) {
		assert.Equal(t, "2025-03-14 09:26:53", *formatted)
	}
}

func TestParseTimeRoundTrip(t *testing.T) {
	parsed, err := parseTime("2025-03-14 09:26:53")
	assert.NoError(t, err)
	assert.Equal(t, "2025-03-14 09:26:53", formatTime(parsed))

	_, err = parseTime("not-a-timestamp")
	assert.Error(t, err)
}

func TestOrNoop(t *testing.T) {
	// A nil notifier is replaced so services can broadcast
	// unconditionally.
	n := orNoop(nil)
	assert.NotNil(t, n)
	assert.NotPanics(t, func() {
		n.Broadcast(EventRefreshTables, nil)
	})
}
