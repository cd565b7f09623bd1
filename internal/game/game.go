package game

import (
	"errors"
	"sync"
	"time"
)

var (
	ErrWrongTurn    = errors.New("color does not match whose turn it is")
	ErrWrongPlayer  = errors.New("color is not seated by this connection")
	ErrCellOccupied = errors.New("cell is already occupied")
	ErrOutOfBounds  = errors.New("cell is outside the board")
)

// Seat is one color's assignment within a game. An empty Socket means the
// seat is open.
type Seat struct {
	Socket   string `json:"socket"`
	Username string `json:"username"`
}

// SeatResult is the outcome of offering a seat to a connection.
type SeatResult int

const (
	AlreadySeated SeatResult = iota
	SeatedWhite
	SeatedBlack
	NoSeat
)

func (r SeatResult) String() string {
	switch r {
	case AlreadySeated:
		return "already_seated"
	case SeatedWhite:
		return "white"
	case SeatedBlack:
		return "black"
	default:
		return "no_seat"
	}
}

// State is a copy of a session suitable for serialization.
type State struct {
	PlayerWhite  Seat  `json:"player_white"`
	PlayerBlack  Seat  `json:"player_black"`
	LastMoveTime int64 `json:"last_move_time"`
	WhoseTurn    Color `json:"whose_turn"`
	Board        Board `json:"board"`
	LegalMoves   Board `json:"legal_moves"`
}

// Session is the live state of one game. All methods are safe for
// concurrent use.
type Session struct {
	mu           sync.Mutex
	white        Seat
	black        Seat
	lastMoveTime time.Time
	whoseTurn    Color
	board        Board
	legalMoves   Board
	finished     bool
}

// NewSession returns a session with the opening position and black to move.
func NewSession(now time.Time) *Session {
	return newSessionFrom(NewBoard(), ColorBlack, now)
}

func newSessionFrom(b Board, turn Color, now time.Time) *Session {
	return &Session{
		lastMoveTime: now,
		whoseTurn:    turn,
		board:        b,
		legalMoves:   LegalMoves(turn, b),
	}
}

// State returns a snapshot of the session.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return State{
		PlayerWhite:  s.white,
		PlayerBlack:  s.black,
		LastMoveTime: s.lastMoveTime.UnixMilli(),
		WhoseTurn:    s.whoseTurn,
		Board:        s.board,
		LegalMoves:   s.legalMoves,
	}
}

// WhoseTurn returns the color expected to move next.
func (s *Session) WhoseTurn() Color {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.whoseTurn
}

func (s *Session) seatedLocked(socket string) bool {
	return socket != "" && (s.white.Socket == socket || s.black.Socket == socket)
}

// TakeSeat offers a seat to socket. The already-seated check runs before any
// assignment, so offering a seat to an occupant again changes nothing. White
// is filled first, then black.
func (s *Session) TakeSeat(socket, username string) SeatResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.seatedLocked(socket) {
		return AlreadySeated
	}
	switch {
	case s.white.Socket == "":
		s.white = Seat{Socket: socket, Username: username}
		return SeatedWhite
	case s.black.Socket == "":
		s.black = Seat{Socket: socket, Username: username}
		return SeatedBlack
	default:
		return NoSeat
	}
}

// Vacate frees whichever seat socket holds. A seat held by anyone else is
// left alone. It reports whether a seat was freed.
func (s *Session) Vacate(socket string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case socket == "":
		return false
	case s.white.Socket == socket:
		s.white = Seat{}
	case s.black.Socket == socket:
		s.black = Seat{}
	default:
		return false
	}
	return true
}

// Play places color's token at (row, column) on behalf of socket. It checks
// the turn, then seat ownership, then that the cell is free. The legal-move
// map is not consulted. On success the turn passes to the other color and
// the legal-move map is recomputed for it.
func (s *Session) Play(socket string, row, column int, color Color, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if color != s.whoseTurn {
		return ErrWrongTurn
	}
	seat := s.black
	if s.whoseTurn == ColorWhite {
		seat = s.white
	}
	if seat.Socket != socket {
		return ErrWrongPlayer
	}
	if !InBounds(row, column) {
		return ErrOutOfBounds
	}
	if !s.board[row][column].IsEmpty() {
		return ErrCellOccupied
	}

	s.board[row][column] = color.Cell()
	s.whoseTurn = color.Opponent()
	s.legalMoves = LegalMoves(s.whoseTurn, s.board)
	s.lastMoveTime = now
	return nil
}

// Finish marks the session finished if the board is full. It returns true
// only for the call that performs the transition.
func (s *Session) Finish() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.finished || !s.board.Full() {
		return false
	}
	s.finished = true
	return true
}

// Finished reports whether Finish has already succeeded.
func (s *Session) Finished() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.finished
}
