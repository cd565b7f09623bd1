package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegistry(t *testing.T) {
	r := NewRegistry()

	_, ok := r.Lookup("s1")
	assert.False(t, ok)

	r.Register("s1", "alice", "Lobby")
	r.Register("s1", "alice", "g1")
	p, ok := r.Lookup("s1")
	assert.True(t, ok)
	assert.Equal(t, Player{Username: "alice", Room: "g1"}, p)
	assert.Equal(t, 1, r.Len())

	p, ok = r.Remove("s1")
	assert.True(t, ok)
	assert.Equal(t, "alice", p.Username)
	assert.Equal(t, 0, r.Len())

	_, ok = r.Remove("s1")
	assert.False(t, ok)
}

func TestRegistryClearRoom(t *testing.T) {
	r := NewRegistry()
	assert.False(t, r.ClearRoom("s1", "g1"))

	r.Register("s1", "alice", "g2")
	assert.False(t, r.ClearRoom("s1", "g1"), "entry names another room")

	assert.True(t, r.ClearRoom("s1", "g2"))
	p, ok := r.Lookup("s1")
	assert.True(t, ok)
	assert.Equal(t, Player{Username: "alice"}, p)
}
