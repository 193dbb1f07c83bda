package hub

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"ev-dashboard/internal/ledger"
)

// ErrBufferFull is returned by Publish when the broadcast queue is saturated.
var ErrBufferFull = errors.New("broadcast buffer full")

type broadcastMsg struct {
	sport string
	msg   ServerMessage
}

// Hub fans ledger events out to connected websocket clients.
type Hub struct {
	clients   map[*Client]bool
	clientsMu sync.RWMutex

	broadcast  chan broadcastMsg
	register   chan *Client
	unregister chan *Client
	done       chan struct{}

	upgrader websocket.Upgrader
}

// New creates a hub. allowOrigin decides websocket origin checks; nil allows
// every origin.
func New(allowOrigin func(r *http.Request) bool) *Hub {
	if allowOrigin == nil {
		allowOrigin = func(*http.Request) bool { return true }
	}
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan broadcastMsg, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     allowOrigin,
		},
	}
}

// Run owns client membership until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	slog.Info("Hub started")
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			h.shutdown()
			return

		case c := <-h.register:
			h.clientsMu.Lock()
			h.clients[c] = true
			n := len(h.clients)
			h.clientsMu.Unlock()
			slog.Info("Client connected", "client", c.ID, "total", n)

		case c := <-h.unregister:
			h.remove(c)

		case b := <-h.broadcast:
			h.deliver(b)
		}
	}
}

// Register adds a client. It is a no-op once the hub has stopped.
func (h *Hub) Register(c *Client) {
	select {
	case h.register <- c:
	case <-h.done:
	}
}

// Unregister removes a client. It is a no-op once the hub has stopped.
func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// Publish queues a ledger event for every subscribed client.
func (h *Hub) Publish(_ context.Context, ev ledger.Event) error {
	msgType := MessageTypeBetPlaced
	if ev.Type == ledger.EventSettled {
		msgType = MessageTypeBetSettled
	}

	b := broadcastMsg{
		sport: ev.Bet.Sport,
		msg:   ServerMessage{Type: msgType, Payload: ev.Bet, Timestamp: ev.At},
	}
	select {
	case h.broadcast <- b:
		return nil
	default:
		return ErrBufferFull
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()
	return len(h.clients)
}

// Handler upgrades requests to websocket subscriptions. Pumps run under ctx
// so they stop with the server, not with the request.
func (h *Hub) Handler(ctx context.Context) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := h.upgrader.Upgrade(w, r, nil)
		if err != nil {
			slog.Warn("Websocket upgrade failed", "error", err)
			return
		}

		c := newClient(uuid.NewString(), conn, h)
		h.Register(c)

		go c.writePump(ctx)
		go c.readPump(ctx)
	}
}

func (h *Hub) remove(c *Client) {
	h.clientsMu.Lock()
	defer h.clientsMu.Unlock()

	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		c.closeSend()
		slog.Info("Client disconnected", "client", c.ID, "total", len(h.clients))
	}
}

func (h *Hub) deliver(b broadcastMsg) {
	h.clientsMu.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.clientsMu.RUnlock()

	for _, c := range clients {
		if !c.wants(b.sport) {
			continue
		}
		if !c.trySend(b.msg) {
			slog.Warn("Client too slow, disconnecting", "client", c.ID)
			h.remove(c)
		}
	}
}

func (h *Hub) shutdown() {
	h.clientsMu.Lock()
	defer h.clientsMu.Unlock()

	slog.Info("Shutting down hub", "clients", len(h.clients))
	for c := range h.clients {
		c.closeSend()
		delete(h.clients, c)
	}
}
