package game

import (
	"sync"
	"time"
)

type cleanup struct {
	timer *time.Timer
	gen   uint64
}

// Table owns every live Session, keyed by game id, along with the deferred
// cleanup scheduled for finished games.
type Table struct {
	mu       sync.Mutex
	sessions map[string]*Session
	cleanups map[string]cleanup
	gen      uint64

	// OnEvict, if set, is called after a scheduled cleanup removes a session.
	OnEvict func(id string)
}

func NewTable() *Table {
	return &Table{
		sessions: make(map[string]*Session),
		cleanups: make(map[string]cleanup),
	}
}

// Get returns the session for id, if any.
func (t *Table) Get(id string) (*Session, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	s, ok := t.sessions[id]
	return s, ok
}

// Ensure returns the session for id, creating a fresh one if absent. The
// second result reports whether a session was created.
func (t *Table) Ensure(id string, now time.Time) (*Session, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if s, ok := t.sessions[id]; ok {
		return s, false
	}
	s := NewSession(now)
	t.sessions[id] = s
	return s, true
}

// Delete removes the session for id and cancels its pending cleanup.
func (t *Table) Delete(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.deleteLocked(id)
}

func (t *Table) deleteLocked(id string) {
	if c, ok := t.cleanups[id]; ok {
		c.timer.Stop()
		delete(t.cleanups, id)
	}
	delete(t.sessions, id)
}

// ScheduleCleanup removes the session for id after delay. Scheduling again
// for the same id cancels the previous timer and starts a new one, so the
// delay always counts from the most recent call.
func (t *Table) ScheduleCleanup(id string, delay time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if c, ok := t.cleanups[id]; ok {
		c.timer.Stop()
	}
	t.gen++
	gen := t.gen
	timer := time.AfterFunc(delay, func() { t.expire(id, gen) })
	t.cleanups[id] = cleanup{timer: timer, gen: gen}
}

// expire runs on the timer goroutine. A timer that was superseded between
// firing and acquiring the lock is ignored.
func (t *Table) expire(id string, gen uint64) {
	t.mu.Lock()
	c, ok := t.cleanups[id]
	if !ok || c.gen != gen {
		t.mu.Unlock()
		return
	}
	t.deleteLocked(id)
	onEvict := t.OnEvict
	t.mu.Unlock()

	if onEvict != nil {
		onEvict(id)
	}
}

// cleanupPending reports whether a cleanup is scheduled for id.
func (t *Table) cleanupPending(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.cleanups[id]
	return ok
}

// Len returns the number of live sessions.
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.sessions)
}

// Close cancels every pending cleanup. Sessions are left in place.
func (t *Table) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for id, c := range t.cleanups {
		c.timer.Stop()
		delete(t.cleanups, id)
	}
}
