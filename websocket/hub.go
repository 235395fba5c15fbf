// Package websocket keeps the live connections that receive assignment
// status events.
package websocket

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Conn is the subset of a websocket connection the hub writes to.
type Conn interface {
	WriteJSON(v any) error
	Close() error
}

type client struct {
	userID uuid.UUID
	conn   Conn
}

type envelope struct {
	userID  uuid.UUID
	message any
}

// Hub routes messages to every connection a user has open. A single Run
// goroutine owns the connection map.
type Hub struct {
	register   chan client
	unregister chan client
	broadcast  chan envelope
	done       chan struct{}
	log        *zap.Logger

	mu      sync.RWMutex
	clients map[uuid.UUID]map[Conn]struct{}
}

func NewHub(log *zap.Logger) *Hub {
	return &Hub{
		register:   make(chan client),
		unregister: make(chan client),
		broadcast:  make(chan envelope, 256),
		done:       make(chan struct{}),
		log:        log.Named("hub"),
		clients:    make(map[uuid.UUID]map[Conn]struct{}),
	}
}

// Run serves the hub until ctx is canceled, then closes every connection.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case c := <-h.register:
			h.mu.Lock()
			conns, ok := h.clients[c.userID]
			if !ok {
				conns = make(map[Conn]struct{})
				h.clients[c.userID] = conns
			}
			conns[c.conn] = struct{}{}
			h.mu.Unlock()
			h.log.Debug("client registered", zap.Stringer("user_id", c.userID))
		case c := <-h.unregister:
			h.remove(c)
			h.log.Debug("client unregistered", zap.Stringer("user_id", c.userID))
		case env := <-h.broadcast:
			h.deliver(env)
		}
	}
}

func (h *Hub) Register(userID uuid.UUID, conn Conn) {
	select {
	case h.register <- client{userID: userID, conn: conn}:
	case <-h.done:
	}
}

func (h *Hub) Unregister(userID uuid.UUID, conn Conn) {
	select {
	case h.unregister <- client{userID: userID, conn: conn}:
	case <-h.done:
	}
}

// Publish queues a message for userID. It never blocks; when the queue is
// full the message is dropped.
func (h *Hub) Publish(userID uuid.UUID, message any) {
	select {
	case h.broadcast <- envelope{userID: userID, message: message}:
	default:
		h.log.Warn("hub queue full; message dropped", zap.Stringer("user_id", userID))
	}
}

// Connections reports how many connections userID has open.
func (h *Hub) Connections(userID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

func (h *Hub) deliver(env envelope) {
	h.mu.RLock()
	conns := make([]Conn, 0, len(h.clients[env.userID]))
	for conn := range h.clients[env.userID] {
		conns = append(conns, conn)
	}
	h.mu.RUnlock()

	for _, conn := range conns {
		if err := conn.WriteJSON(env.message); err != nil {
			h.log.Info("dropping client after write error", zap.Stringer("user_id", env.userID), zap.Error(err))
			_ = conn.Close()
			h.remove(client{userID: env.userID, conn: conn})
		}
	}
}

func (h *Hub) remove(c client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	conns, ok := h.clients[c.userID]
	if !ok {
		return
	}
	delete(conns, c.conn)
	if len(conns) == 0 {
		delete(h.clients, c.userID)
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for userID, conns := range h.clients {
		for conn := range conns {
			_ = conn.Close()
		}
		delete(h.clients, userID)
	}
}
