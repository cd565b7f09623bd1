package game

var directions = [8][2]int{
	{-1, -1}, {-1, 0}, {-1, 1},
	{0, -1}, {0, 1},
	{1, -1}, {1, 0}, {1, 1},
}

// LegalMoves computes the legal-move map for color on b. A cell holds the
// color's token if playing there would flank at least one run of opposing
// discs in some direction, Empty otherwise. Occupied cells are never legal.
// The input board is not modified.
func LegalMoves(color Color, b Board) Board {
	moves := EmptyBoard()
	who := color.Cell()
	if who == Empty {
		return moves
	}

	for r := 0; r < Size; r++ {
		for c := 0; c < Size; c++ {
			if !b[r][c].IsEmpty() {
				continue
			}
			for _, d := range directions {
				if flanks(&b, who, r, c, d[0], d[1]) {
					moves[r][c] = who
					break
				}
			}
		}
	}
	return moves
}

// flanks walks from (r, c) in direction (dr, dc): the adjacent square must
// hold the opponent and the run of opponents must end on a square holding who.
func flanks(b *Board, who Cell, r, c, dr, dc int) bool {
	other := who.Opponent()
	r, c = r+dr, c+dc
	if !InBounds(r, c) || b[r][c] != other {
		return false
	}
	for {
		r, c = r+dr, c+dc
		if !InBounds(r, c) {
			return false
		}
		switch b[r][c] {
		case who:
			return true
		case other:
			continue
		default:
			return false
		}
	}
}
