package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 30 * time.Second
	pingPeriod     = 25 * time.Second
	maxMessageSize = 4096
	sendBuffer     = 256
)

// Client is one websocket connection. ID is its connection identity.
type Client struct {
	ID         string
	conn       *websocket.Conn
	send       chan []byte
	hub        *Hub
	dispatcher Dispatcher
	log        *slog.Logger
}

func NewClient(id string, conn *websocket.Conn, hub *Hub, dispatcher Dispatcher) *Client {
	return &Client{
		ID:         id,
		conn:       conn,
		send:       make(chan []byte, sendBuffer),
		hub:        hub,
		dispatcher: dispatcher,
		log:        hub.log.With("socket_id", id),
	}
}

// Run registers the client, serves it until the connection drops, then
// reports the disconnect. It blocks for the lifetime of the connection.
func (c *Client) Run(ctx context.Context) {
	c.hub.register(c)
	go c.writePump()

	c.dispatcher.HandleConnect(ctx, c.ID)
	c.readPump(ctx)

	c.hub.unregister(c)
	c.dispatcher.HandleDisconnect(ctx, c.ID)
}

func (c *Client) readPump(ctx context.Context) {
	defer c.conn.Close()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Warn("read error", "error", err)
			}
			return
		}

		var msg inbound
		if err := json.Unmarshal(raw, &msg); err != nil || msg.Type == "" {
			c.log.Warn("dropping malformed frame", "bytes", len(raw))
			continue
		}
		c.dispatch(ctx, msg)
	}
}

// dispatch isolates a panicking handler to the event that caused it.
func (c *Client) dispatch(ctx context.Context, msg inbound) {
	defer func() {
		if r := recover(); r != nil {
			c.log.Error("event handler panicked", "event", msg.Type, "panic", r, "stack", string(debug.Stack()))
		}
	}()
	c.dispatcher.HandleEvent(ctx, c.ID, msg.Type, msg.Payload)
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				c.log.Warn("write error", "error", err)
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
