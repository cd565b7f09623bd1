package service

import "errors"

var (
	ErrNotRegistered = errors.New("player is not registered")
	ErrNoGame        = errors.New("no game for room")
	ErrNotInRoom     = errors.New("connection is not in the room")
	ErrRateLimited   = errors.New("too many commands, slow down")
)

// ValidationError reports a missing or malformed request field. Message is
// what the requesting client is told.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}
