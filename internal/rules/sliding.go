package rules

import "github.com/mkarras/robochess/internal/board"

// pathClear walks the open interval strictly between from and to along the
// sign-of-displacement unit step. The caller has already established the
// displacement is a legal shape for the piece, so the step never degenerates.
// Destination occupancy is deliberately not inspected: a blocked capture and
// an open capture land here identically.
func pathClear(from, to board.Square, b *board.Board) bool {
	stepRow := sign(to.Row - from.Row)
	stepCol := sign(to.Col - from.Col)
	sq := board.Sq(from.Row+stepRow, from.Col+stepCol)
	for sq != to {
		if b.Occupied(sq) {
			return false
		}
		sq = board.Sq(sq.Row+stepRow, sq.Col+stepCol)
	}
	return true
}

func diagonal(from, to board.Square) bool {
	dRow, dCol := abs(to.Row-from.Row), abs(to.Col-from.Col)
	return dRow == dCol && dRow != 0
}

func straight(from, to board.Square) bool {
	return (from.Row == to.Row) != (from.Col == to.Col)
}

func validBishop(from, to board.Square, b *board.Board) bool {
	return diagonal(from, to) && pathClear(from, to, b)
}

func validRook(from, to board.Square, b *board.Board) bool {
	return straight(from, to) && pathClear(from, to, b)
}

func validQueen(from, to board.Square, b *board.Board) bool {
	return (diagonal(from, to) || straight(from, to)) && pathClear(from, to, b)
}
