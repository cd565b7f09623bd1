package ws

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type event struct {
	kind    string
	socket  string
	name    string
	payload string
}

// echoDispatcher records lifecycle calls and answers every event with an
// "echo" frame carrying the raw payload.
type echoDispatcher struct {
	hub    *Hub
	mu     sync.Mutex
	events []event
	done   chan string
}

func (d *echoDispatcher) HandleConnect(_ context.Context, socketID string) {
	d.add(event{kind: "connect", socket: socketID})
}

func (d *echoDispatcher) HandleEvent(_ context.Context, socketID, name string, payload json.RawMessage) {
	if name == "explode" {
		panic("boom")
	}
	d.add(event{kind: "event", socket: socketID, name: name, payload: string(payload)})
	d.hub.Emit(socketID, "echo", payload)
}

func (d *echoDispatcher) HandleDisconnect(_ context.Context, socketID string) {
	d.add(event{kind: "disconnect", socket: socketID})
	d.done <- socketID
}

func (d *echoDispatcher) add(e event) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, e)
}

func (d *echoDispatcher) snapshot() []event {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]event(nil), d.events...)
}

func TestClientRoundTrip(t *testing.T) {
	gin.SetMode(gin.TestMode)
	hub := NewHub()
	d := &echoDispatcher{hub: hub, done: make(chan string, 1)}

	r := gin.New()
	r.GET("/ws", HandleWS(hub, d, ""))
	srv := httptest.NewServer(r)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)

	// malformed frames and panicking handlers do not end the connection
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`not json`)))
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"explode"}`)))
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"ping","payload":{"n":1}}`)))

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var m struct {
		Type    string          `json:"type"`
		Payload json.RawMessage `json:"payload"`
	}
	require.NoError(t, conn.ReadJSON(&m))
	assert.Equal(t, "echo", m.Type)
	assert.JSONEq(t, `{"n":1}`, string(m.Payload))
	assert.Equal(t, 1, hub.ClientCount())

	require.NoError(t, conn.Close())

	select {
	case <-d.done:
	case <-time.After(2 * time.Second):
		t.Fatal("disconnect was not reported")
	}

	events := d.snapshot()
	require.Len(t, events, 3)
	assert.Equal(t, "connect", events[0].kind)
	assert.Equal(t, "event", events[1].kind)
	assert.Equal(t, "ping", events[1].name)
	assert.Equal(t, "disconnect", events[2].kind)
	assert.Equal(t, events[0].socket, events[2].socket)
	assert.Equal(t, 0, hub.ClientCount())
}

func TestHandleWSRejectsForeignOrigin(t *testing.T) {
	gin.SetMode(gin.TestMode)
	hub := NewHub()
	d := &echoDispatcher{hub: hub, done: make(chan string, 1)}

	r := gin.New()
	r.GET("/ws", HandleWS(hub, d, "https://othello.example"))
	srv := httptest.NewServer(r)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	header := map[string][]string{"Origin": {"https://evil.example"}}
	_, resp, err := websocket.DefaultDialer.Dial(url, header)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, 403, resp.StatusCode)
	assert.Empty(t, d.snapshot())
}
