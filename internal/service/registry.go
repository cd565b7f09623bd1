package service

import "sync"

// Player is what the registry knows about a connection that joined a room.
type Player struct {
	Username string
	Room     string
}

// Registry maps connection identities to players.
type Registry struct {
	mu      sync.RWMutex
	players map[string]Player
}

func NewRegistry() *Registry {
	return &Registry{players: make(map[string]Player)}
}

// Register records socketID as username in room, replacing any earlier entry.
func (r *Registry) Register(socketID, username, room string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.players[socketID] = Player{Username: username, Room: room}
}

func (r *Registry) Lookup(socketID string) (Player, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.players[socketID]
	return p, ok
}

// ClearRoom drops the room from socketID's entry, but only while that entry
// still names room. It reports whether the entry changed.
func (r *Registry) ClearRoom(socketID, room string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.players[socketID]
	if !ok || p.Room != room {
		return false
	}
	p.Room = ""
	r.players[socketID] = p
	return true
}

// Remove deletes the entry for socketID and returns it.
func (r *Registry) Remove(socketID string) (Player, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.players[socketID]
	if ok {
		delete(r.players, socketID)
	}
	return p, ok
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.players)
}
