package hub

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	maxMessageSize = 512

	sendBufferSize = 64
)

// Client is one websocket subscriber.
type Client struct {
	ID   string
	conn *websocket.Conn
	hub  *Hub

	sendMu sync.Mutex
	send   chan ServerMessage
	closed bool

	sportsMu sync.RWMutex
	sports   []string
}

func newClient(id string, conn *websocket.Conn, h *Hub) *Client {
	return &Client{
		ID:   id,
		conn: conn,
		send: make(chan ServerMessage, sendBufferSize),
		hub:  h,
	}
}

// readPump handles subscription changes until the peer goes away.
func (c *Client) readPump(ctx context.Context) {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if ctx.Err() != nil {
			return
		}

		var msg ClientMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				slog.Warn("Websocket closed unexpectedly", "client", c.ID, "error", err)
			}
			return
		}
		c.handle(msg)
	}
}

// writePump drains the send buffer and keeps the connection alive.
func (c *Client) writePump(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return

		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(msg); err != nil {
				slog.Warn("Websocket write failed", "client", c.ID, "error", err)
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

// trySend queues msg without blocking. It returns false when the client is
// too slow to keep up.
func (c *Client) trySend(msg ServerMessage) bool {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if c.closed {
		return false
	}

	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

// closeSend closes the send buffer once, which tells writePump to hang up.
func (c *Client) closeSend() {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

func (c *Client) setSports(sports []string) {
	c.sportsMu.Lock()
	defer c.sportsMu.Unlock()
	c.sports = sports
}

// wants reports whether the client subscribed to sport. No subscription
// means everything.
func (c *Client) wants(sport string) bool {
	c.sportsMu.RLock()
	defer c.sportsMu.RUnlock()
	return len(c.sports) == 0 || slices.Contains(c.sports, sport)
}

func (c *Client) handle(msg ClientMessage) {
	switch msg.Type {
	case MessageTypeSubscribe:
		c.setSports(msg.Sports)
		slog.Debug("Client subscribed", "client", c.ID, "sports", msg.Sports)
	case MessageTypeUnsubscribe:
		c.setSports(nil)
	case MessageTypeHeartbeat:
		c.trySend(ServerMessage{Type: MessageTypeHeartbeat, Timestamp: time.Now()})
	default:
		c.trySend(ServerMessage{
			Type: MessageTypeError,
			Payload: ErrorMessage{
				Code:    "unknown_message_type",
				Message: fmt.Sprintf("unknown message type: %s", msg.Type),
			},
			Timestamp: time.Now(),
		})
	}
}
