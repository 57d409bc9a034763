package rules

import "github.com/mkarras/robochess/internal/board"

func validKnight(from, to board.Square) bool {
	dRow, dCol := abs(to.Row-from.Row), abs(to.Col-from.Col)
	return (dRow == 1 && dCol == 2) || (dRow == 2 && dCol == 1)
}

const (
	queensideCastleCol = 2
	kingsideCastleCol  = 6
	kingHomeCol        = 4
)

// validKing accepts a Chebyshev-1 step or a castling request. Castling is
// recognized by a multi-column displacement on the home rank landing on
// column 2 or 6, and is the only predicate that consults the check-safety
// oracle.
func validKing(from, to board.Square, ctx *Context) bool {
	dRow, dCol := abs(to.Row-from.Row), abs(to.Col-from.Col)
	if dRow <= 1 && dCol <= 1 {
		return dRow+dCol != 0
	}
	if dCol <= 1 || dRow != 0 {
		return false
	}
	if to.Col != queensideCastleCol && to.Col != kingsideCastleCol {
		return false
	}
	return validCastle(from, to, ctx)
}

func validCastle(from, to board.Square, ctx *Context) bool {
	if ctx.Rights.KingMoved {
		return false
	}
	row := homeRow(ctx.Mover)
	if from.Row != row || from.Col != kingHomeCol {
		return false
	}

	kingside := to.Col == kingsideCastleCol
	rookCol := 0
	if kingside {
		rookCol = 7
	}
	if kingside && ctx.Rights.KingsideRookMoved {
		return false
	}
	if !kingside && ctx.Rights.QueensideRookMoved {
		return false
	}
	// The rights flag tracks a specific rook; it must still be standing on
	// its home corner for the flag to mean anything.
	rook := ctx.Board.At(board.Sq(row, rookCol))
	if rook == nil || rook.Kind != board.Rook || rook.Color != ctx.Mover {
		return false
	}

	// Every square strictly between king and rook must be empty. For the
	// queenside this includes the rook's b-file transit square.
	lo, hi := to.Col, kingHomeCol
	if kingside {
		lo, hi = kingHomeCol, rookCol
	} else {
		lo = rookCol
	}
	for col := lo + 1; col < hi; col++ {
		if ctx.Board.Occupied(board.Sq(row, col)) {
			return false
		}
	}

	// The king may not castle out of, through, or into check: the transit
	// scan starts at the origin square.
	step := sign(to.Col - from.Col)
	for col := from.Col; col != to.Col+step; col += step {
		if Attacked(ctx.Board, board.Sq(row, col), ctx.Mover.Opponent()) {
			return false
		}
	}
	return true
}

func homeRow(c board.Color) int {
	if c == board.White {
		return 0
	}
	return 7
}
