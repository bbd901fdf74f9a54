// Package ws pushes server events to connected terminals. Waiter and
// kitchen screens subscribe once and refresh on new-order,
// refresh-tables and transaction-complete events instead of polling.
package ws

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"resto_pos_backend/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 45 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// CORS policy is enforced on the REST surface; the socket
		// carries no privileged data beyond what the REST API serves.
		return true
	},
}

// Event is the wire format for every broadcast message.
type Event struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data,omitempty"`
}

// Hub fans broadcast events out to every connected client.
type Hub struct {
	mu      sync.RWMutex
	clients map[*client]struct{}
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// NewHub creates an empty hub. No background goroutine is needed;
// clients pump themselves.
func NewHub() *Hub {
	return &Hub{clients: make(map[*client]struct{})}
}

// Broadcast serializes an event and queues it to every client. Clients
// whose send buffer is full are dropped rather than blocking the caller.
func (h *Hub) Broadcast(event string, data interface{}) {
	payload, err := json.Marshal(Event{Event: event, Data: data})
	if err != nil {
		utils.LogError(err, "ws: marshaling event "+event)
		return
	}

	h.mu.RLock()
	stale := []*client{}
	for c := range h.clients {
		select {
		case c.send <- payload:
		default:
			stale = append(stale, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range stale {
		h.remove(c)
	}
}

// ClientCount reports the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) add(c *client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

// Handler upgrades the request and registers the connection with the hub.
func (h *Hub) Handler() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		conn, err := upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
		if err != nil {
			utils.LogError(err, "ws: upgrading connection")
			return
		}

		c := &client{conn: conn, send: make(chan []byte, 64)}
		h.add(c)

		go c.writePump(h)
		go c.readPump(h)
	}
}

// readPump drains the connection so pongs and close frames are
// processed; incoming payloads are ignored, the socket is server-push only.
func (c *client) readPump(h *Hub) {
	defer func() {
		h.remove(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(1024)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				utils.LogDebug("ws: read error: " + err.Error())
			}
			return
		}
	}
}

func (c *client) writePump(h *Hub) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
