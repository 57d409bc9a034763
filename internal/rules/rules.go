// Package rules holds the per-piece legality predicates and the
// check-safety oracle. Everything here is a pure function of the supplied
// occupancy and rights; nothing mutates the board or the session.
package rules

import "github.com/mkarras/robochess/internal/board"

// Rights is the castling bookkeeping a king validator needs for one color.
type Rights struct {
	KingMoved          bool
	KingsideRookMoved  bool
	QueensideRookMoved bool
}

// Context is the read-only view a validator works against.
type Context struct {
	Board  *board.Board
	Mover  board.Color
	Rights Rights
	// EnPassant is the capturable square for exactly one ply after a
	// double pawn push, nil otherwise.
	EnPassant *board.Square
}

// ValidateMove dispatches on the piece standing on from. It answers the
// shape/path question only: destination occupancy by the mover's own color
// and self-check exclusion are the coordinator's concern. A move with zero
// displacement is illegal for every piece, and an empty from square yields
// false rather than a failure.
func ValidateMove(from, to board.Square, ctx *Context) bool {
	if ctx == nil || ctx.Board == nil || !from.Valid() || !to.Valid() {
		return false
	}
	if from == to {
		return false
	}
	o := ctx.Board.At(from)
	if o == nil {
		return false
	}
	switch o.Kind {
	case board.Bishop:
		return validBishop(from, to, ctx.Board)
	case board.Rook:
		return validRook(from, to, ctx.Board)
	case board.Queen:
		return validQueen(from, to, ctx.Board)
	case board.Knight:
		return validKnight(from, to)
	case board.King:
		return validKing(from, to, ctx)
	case board.Pawn:
		return validPawn(from, to, ctx, o.Color)
	default:
		return false
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func sign(n int) int {
	switch {
	case n > 0:
		return 1
	case n < 0:
		return -1
	default:
		return 0
	}
}
