package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/gorilla/websocket"
)

type frame struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

func main() {
	addr := flag.String("addr", "127.0.0.1:8080", "server host:port, prefer 127.0.0.1 over localhost")
	room := flag.String("room", "smoke", "game room to join")
	flag.Parse()

	url := fmt.Sprintf("ws://%s/ws", *addr)

	connA, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		log.Fatalf("dial A: %v", err)
	}
	defer connA.Close()

	connB, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		log.Fatalf("dial B: %v", err)
	}
	defer connB.Close()

	send(connA, "join_room", map[string]any{"room": *room, "username": "smokeA"})
	var joined struct {
		SocketID string `json:"socket_id"`
	}
	_ = json.Unmarshal(waitFor(connA, "join_room_response"), &joined)
	send(connB, "join_room", map[string]any{"room": *room, "username": "smokeB"})

	// the second join seats both players and broadcasts the board
	stateA := waitFor(connA, "game_update")
	waitFor(connB, "game_update")

	var upd struct {
		Game struct {
			PlayerBlack struct {
				Socket string `json:"socket"`
			} `json:"player_black"`
		} `json:"game"`
	}
	_ = json.Unmarshal(stateA, &upd)

	// whoever holds black opens
	black, white := connA, connB
	if upd.Game.PlayerBlack.Socket != joined.SocketID {
		black, white = connB, connA
	}

	send(black, "play_token", map[string]any{"row": 2, "column": 3, "color": "black"})
	log.Printf("black got: %s", waitFor(black, "play_token_response"))
	waitFor(black, "game_update")
	log.Printf("white saw: %s", waitFor(white, "game_update"))

	send(white, "play_token", map[string]any{"row": 2, "column": 4, "color": "white"})
	log.Printf("white got: %s", waitFor(white, "play_token_response"))
	log.Printf("black saw: %s", waitFor(black, "game_update"))

	log.Println("smoke test finished")
}

func send(conn *websocket.Conn, event string, payload any) {
	b, err := json.Marshal(map[string]any{"type": event, "payload": payload})
	if err != nil {
		log.Fatalf("marshal %s: %v", event, err)
	}
	if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
		log.Fatalf("write %s: %v", event, err)
	}
}

// waitFor reads until an event of the given type arrives and returns its
// payload. Other events, including server log lines, are skipped.
func waitFor(conn *websocket.Conn, event string) json.RawMessage {
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		_ = conn.SetReadDeadline(deadline)
		_, msg, err := conn.ReadMessage()
		if err != nil {
			log.Fatalf("waiting for %s: %v", event, err)
		}
		var f frame
		if err := json.Unmarshal(msg, &f); err != nil {
			continue
		}
		if f.Type == event {
			return f.Payload
		}
	}
	log.Fatalf("timed out waiting for %s", event)
	return nil
}
