package rules

import "github.com/mkarras/robochess/internal/board"

// validPawn covers the push, the double push, the diagonal capture and the
// en-passant capture. Promotion is not a distinct shape: a push or capture
// onto the last rank is legal here and the coordinator raises the pending
// promotion flag.
func validPawn(from, to board.Square, ctx *Context, color board.Color) bool {
	dir := 1
	startRow := 1
	if color == board.Black {
		dir = -1
		startRow = 6
	}
	dRow := to.Row - from.Row
	dCol := abs(to.Col - from.Col)

	// forward pushes land only on empty squares
	if dCol == 0 {
		if ctx.Board.Occupied(to) {
			return false
		}
		if dRow == dir {
			return true
		}
		if dRow == 2*dir && from.Row == startRow {
			return !ctx.Board.Occupied(board.Sq(from.Row+dir, from.Col))
		}
		return false
	}

	if dCol != 1 || dRow != dir {
		return false
	}
	if o := ctx.Board.At(to); o != nil {
		return o.Color != color
	}
	return ctx.EnPassant != nil && *ctx.EnPassant == to
}

// PromotionRow is the last rank for the given color.
func PromotionRow(c board.Color) int {
	if c == board.White {
		return 7
	}
	return 0
}
