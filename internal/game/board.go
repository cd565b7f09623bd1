package game

import "fmt"

// Size is the side length of the board.
const Size = 8

// Cell is the content of a single board square. The string values are what
// clients receive on the wire.
type Cell string

const (
	Empty Cell = " "
	White Cell = "w"
	Black Cell = "b"
)

// Color identifies a side, as used in whose_turn and play_token.
type Color string

const (
	ColorWhite Color = "white"
	ColorBlack Color = "black"
)

// Valid reports whether c names one of the two sides.
func (c Color) Valid() bool {
	return c == ColorWhite || c == ColorBlack
}

// Cell returns the board token for the color.
func (c Color) Cell() Cell {
	switch c {
	case ColorWhite:
		return White
	case ColorBlack:
		return Black
	default:
		return Empty
	}
}

// Opponent returns the other side.
func (c Color) Opponent() Color {
	if c == ColorWhite {
		return ColorBlack
	}
	return ColorWhite
}

// IsEmpty reports whether the cell holds no disc. The zero value counts as
// empty.
func (c Cell) IsEmpty() bool {
	return c == Empty || c == ""
}

// Opponent returns the token of the other side, or Empty for Empty.
func (c Cell) Opponent() Cell {
	switch c {
	case White:
		return Black
	case Black:
		return White
	default:
		return Empty
	}
}

// Board is an 8x8 grid indexed [row][column].
type Board [Size][Size]Cell

// EmptyBoard returns a board with every cell empty.
func EmptyBoard() Board {
	var b Board
	for r := 0; r < Size; r++ {
		for c := 0; c < Size; c++ {
			b[r][c] = Empty
		}
	}
	return b
}

// NewBoard returns the opening position: white on the main diagonal of the
// centre square, black on the anti-diagonal.
func NewBoard() Board {
	b := EmptyBoard()
	b[3][3] = White
	b[3][4] = Black
	b[4][3] = Black
	b[4][4] = White
	return b
}

// InBounds reports whether (row, column) addresses a square on the board.
func InBounds(row, column int) bool {
	return row >= 0 && row < Size && column >= 0 && column < Size
}

// Occupied counts the non-empty cells.
func (b *Board) Occupied() int {
	n := 0
	for r := 0; r < Size; r++ {
		for c := 0; c < Size; c++ {
			if !b[r][c].IsEmpty() {
				n++
			}
		}
	}
	return n
}

// Full reports whether all 64 cells are occupied.
func (b *Board) Full() bool {
	return b.Occupied() == Size*Size
}

// Count returns the number of cells holding the given token.
func (b *Board) Count(cell Cell) int {
	n := 0
	for r := 0; r < Size; r++ {
		for c := 0; c < Size; c++ {
			if b[r][c] == cell {
				n++
			}
		}
	}
	return n
}

// Leader returns the color with more discs, or "everyone" on a tie.
func (b *Board) Leader() string {
	white, black := b.Count(White), b.Count(Black)
	switch {
	case white > black:
		return string(ColorWhite)
	case black > white:
		return string(ColorBlack)
	default:
		return "everyone"
	}
}

// String renders the board one row per line, mostly for test failures.
func (b Board) String() string {
	out := ""
	for r := 0; r < Size; r++ {
		out += fmt.Sprintf("%d |", r)
		for c := 0; c < Size; c++ {
			cell := b[r][c]
			if cell.IsEmpty() {
				out += "."
			} else {
				out += string(cell)
			}
		}
		out += "|\n"
	}
	return out
}
