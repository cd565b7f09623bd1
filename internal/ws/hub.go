package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"othello_server/internal/logger"
	"othello_server/internal/metrics"
)

// Hub tracks live connections and the named rooms they belong to.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client
	rooms   map[string]room
	joinSeq uint64
	log     *slog.Logger
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]*Client),
		rooms:   make(map[string]room),
		log:     logger.With("component", "hub"),
	}
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	h.clients[c.ID] = c
	n := len(h.clients)
	h.mu.Unlock()

	metrics.ConnectionsActive.Set(float64(n))
	h.log.Debug("client registered", "socket_id", c.ID, "clients", n)
}

// unregister drops c from every room and closes its send queue.
func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c.ID]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, c.ID)
	for name, members := range h.rooms {
		delete(members, c.ID)
		if len(members) == 0 {
			delete(h.rooms, name)
		}
	}
	close(c.send)
	n := len(h.clients)
	h.mu.Unlock()

	metrics.ConnectionsActive.Set(float64(n))
	h.log.Debug("client unregistered", "socket_id", c.ID, "clients", n)
}

// Join adds a live connection to a room. Joining twice keeps the original
// position.
func (h *Hub) Join(socketID, name string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[socketID]; !ok {
		return
	}
	members, ok := h.rooms[name]
	if !ok {
		members = make(room)
		h.rooms[name] = members
	}
	if _, already := members[socketID]; already {
		return
	}
	h.joinSeq++
	members[socketID] = h.joinSeq
}

// Leave removes a connection from a room.
func (h *Hub) Leave(socketID, name string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	members, ok := h.rooms[name]
	if !ok {
		return
	}
	delete(members, socketID)
	if len(members) == 0 {
		delete(h.rooms, name)
	}
}

// Members lists the connections in a room in join order.
func (h *Hub) Members(ctx context.Context, name string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.rooms[name].ordered(), nil
}

// Emit sends an event to one connection.
func (h *Hub) Emit(socketID, event string, payload any) {
	data, ok := h.encode(event, payload)
	if !ok {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	if c, ok := h.clients[socketID]; ok {
		h.deliver(c, event, data)
	}
}

// BroadcastRoom sends an event to every member of a room.
func (h *Hub) BroadcastRoom(name, event string, payload any) {
	data, ok := h.encode(event, payload)
	if !ok {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for socketID := range h.rooms[name] {
		if c, ok := h.clients[socketID]; ok {
			h.deliver(c, event, data)
		}
	}
}

// BroadcastAll sends an event to every connection.
func (h *Hub) BroadcastAll(event string, payload any) {
	data, ok := h.encode(event, payload)
	if !ok {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.clients {
		h.deliver(c, event, data)
	}
}

// ClientCount returns the number of live connections.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for _, c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		_ = c.conn.Close()
	}
}

func (h *Hub) encode(event string, payload any) ([]byte, bool) {
	data, err := json.Marshal(Message{Type: event, Payload: payload})
	if err != nil {
		h.log.Error("marshal error", "event", event, "error", err)
		return nil, false
	}
	return data, true
}

// deliver must be called with h.mu held; the send queue is only closed under
// the write lock.
func (h *Hub) deliver(c *Client, event string, data []byte) {
	select {
	case c.send <- data:
	default:
		h.log.Warn("message dropped, client buffer full", "socket_id", c.ID, "event", event)
	}
}
