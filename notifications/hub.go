package notifications

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/linesmerrill/dinebuddies-api/models"
)

const writeWait = 10 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type client struct {
	conn *websocket.Conn
	// gorilla allows one concurrent writer per connection
	mu sync.Mutex
}

func (c *client) writeJSON(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteJSON(v)
}

// Hub keeps the open websocket connections of each user. A user may be
// connected from several devices at once.
type Hub struct {
	mu      sync.Mutex
	clients map[string]map[*client]struct{}
}

// NewHub creates an empty Hub
func NewHub() *Hub {
	return &Hub{clients: make(map[string]map[*client]struct{})}
}

// Name of the sink
func (h *Hub) Name() string { return "websocket" }

// ServeWS upgrades the request and keeps the connection registered for
// userID until the client goes away
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, userID string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		zap.S().Warnw("websocket upgrade failed", "user", userID, "error", err)
		return
	}

	c := &client{conn: conn}
	h.add(userID, c)
	zap.S().Debugw("user connected to notifications", "user", userID)

	defer func() {
		h.remove(userID, c)
		conn.Close()
		zap.S().Debugw("user disconnected from notifications", "user", userID)
	}()

	for {
		if _, _, err := conn.NextReader(); err != nil {
			return
		}
	}
}

func (h *Hub) add(userID string, c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[userID] == nil {
		h.clients[userID] = make(map[*client]struct{})
	}
	h.clients[userID][c] = struct{}{}
}

func (h *Hub) remove(userID string, c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients[userID], c)
	if len(h.clients[userID]) == 0 {
		delete(h.clients, userID)
	}
}

// Connected returns how many connections userID has open
func (h *Hub) Connected(userID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients[userID])
}

// Deliver pushes the notification to every connection of its user. A
// connection that cannot be written to is dropped.
func (h *Hub) Deliver(ctx context.Context, n models.Notification) error {
	h.mu.Lock()
	targets := make([]*client, 0, len(h.clients[n.UserID]))
	for c := range h.clients[n.UserID] {
		targets = append(targets, c)
	}
	h.mu.Unlock()

	var firstErr error
	for _, c := range targets {
		err := c.writeJSON(map[string]interface{}{
			"event": "new_notification",
			"data":  n,
		})
		if err != nil {
			h.remove(n.UserID, c)
			c.conn.Close()
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
