package service

import (
	"context"
	"slices"
	"sync"

	"othello_server/internal/domain"
)

type sent struct {
	To      string // set for Emit
	Room    string // set for BroadcastRoom, "*" for BroadcastAll
	Event   string
	Payload any
}

// fakeTransport keeps rooms in memory and records every outbound message.
type fakeTransport struct {
	mu         sync.Mutex
	rooms      map[string][]string
	sent       []sent
	membersErr error
	onMembers  func(room string)
}

var _ Transport = (*fakeTransport)(nil)

func newFakeTransport() *fakeTransport {
	return &fakeTransport{rooms: make(map[string][]string)}
}

func (f *fakeTransport) Join(socketID, room string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !slices.Contains(f.rooms[room], socketID) {
		f.rooms[room] = append(f.rooms[room], socketID)
	}
}

func (f *fakeTransport) Leave(socketID, room string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rooms[room] = slices.DeleteFunc(f.rooms[room], func(id string) bool { return id == socketID })
}

// drop removes socketID from every room, as the hub does on disconnect.
func (f *fakeTransport) drop(socketID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for room, ids := range f.rooms {
		f.rooms[room] = slices.DeleteFunc(ids, func(id string) bool { return id == socketID })
	}
}

func (f *fakeTransport) Members(_ context.Context, room string) ([]string, error) {
	if f.onMembers != nil {
		f.onMembers(room)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.membersErr != nil {
		return nil, f.membersErr
	}
	return slices.Clone(f.rooms[room]), nil
}

func (f *fakeTransport) Emit(socketID, event string, payload any) {
	f.record(sent{To: socketID, Event: event, Payload: payload})
}

func (f *fakeTransport) BroadcastRoom(room, event string, payload any) {
	f.record(sent{Room: room, Event: event, Payload: payload})
}

func (f *fakeTransport) BroadcastAll(event string, payload any) {
	f.record(sent{Room: "*", Event: event, Payload: payload})
}

func (f *fakeTransport) record(s sent) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, s)
}

func (f *fakeTransport) inRoom(room, socketID string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Contains(f.rooms[room], socketID)
}

// events returns the recorded messages of one event type, in order.
func (f *fakeTransport) events(event string) []sent {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []sent
	for _, s := range f.sent {
		if s.Event == event {
			out = append(out, s)
		}
	}
	return out
}

func (f *fakeTransport) reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = nil
}

type fakeRecorder struct {
	games chan *domain.FinishedGame
}

func newFakeRecorder() *fakeRecorder {
	return &fakeRecorder{games: make(chan *domain.FinishedGame, 4)}
}

func (r *fakeRecorder) Create(_ context.Context, g *domain.FinishedGame) error {
	r.games <- g
	return nil
}

type fakeLimiter struct {
	allow bool
	err   error
	calls []string
}

func (l *fakeLimiter) Allow(_ context.Context, ident string) (bool, error) {
	l.calls = append(l.calls, ident)
	return l.allow, l.err
}
