package hub

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"spark-command-backend/internal/models"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBuffer     = 64
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Client is one websocket subscriber. Terminal once disconnected; a
// reconnecting peer gets a fresh Client with a fresh id.
type Client struct {
	ID   string
	hub  *Hub
	conn *websocket.Conn
	send chan models.BroadcastMessage

	mu     sync.Mutex
	topics map[string]bool // nil means all kinds
}

// ServeWS upgrades the request and registers the subscriber.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", zap.Error(err))
		return
	}

	client := &Client{
		ID:   uuid.NewString(),
		hub:  h,
		conn: conn,
		send: make(chan models.BroadcastMessage, sendBuffer),
	}
	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

// deliver queues a message without blocking. Reports false when the
// subscriber's buffer is full.
func (c *Client) deliver(message models.BroadcastMessage) bool {
	select {
	case c.send <- message:
		return true
	default:
		return false
	}
}

// wants reports whether the subscriber asked for this message kind. The
// acknowledgement and keepalive kinds always pass.
func (c *Client) wants(kind string) bool {
	if kind == models.MsgConnected || kind == models.MsgKeepalive {
		return true
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.topics == nil || c.topics[kind]
}

// readPump consumes keepalive and subscription-preference messages until
// the peer goes away, then unregisters the subscriber.
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		c.conn.SetReadDeadline(time.Now().Add(pongWait))

		var msg models.SubscriberMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			continue
		}

		switch msg.Type {
		case models.MsgKeepalive:
			c.deliver(models.NewBroadcastMessage(models.MsgKeepalive, nil))
		case "subscribe":
			c.setTopics(msg.Topics)
		}
	}
}

func (c *Client) setTopics(topics []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(topics) == 0 {
		c.topics = nil
		return
	}
	c.topics = make(map[string]bool, len(topics))
	for _, t := range topics {
		c.topics[t] = true
	}
}

// writePump flushes queued messages and pings the peer. Exits when the hub
// closes the send channel or a write fails.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(message); err != nil {
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
