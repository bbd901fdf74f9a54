package ws

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBroadcastWithoutClients(t *testing.T) {
	hub := NewHub()
	assert.Equal(t, 0, hub.ClientCount())

	// No subscribers: the event is dropped without blocking.
	assert.NotPanics(t, func() {
		hub.Broadcast("refresh-tables", map[string]interface{}{"table": 3})
	})
}
