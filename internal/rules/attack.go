package rules

import "github.com/mkarras/robochess/internal/board"

var (
	knightOffsets = [8][2]int{{-2, -1}, {-2, 1}, {-1, -2}, {-1, 2}, {1, -2}, {1, 2}, {2, -1}, {2, 1}}
	kingOffsets   = [8][2]int{{-1, -1}, {-1, 0}, {-1, 1}, {0, -1}, {0, 1}, {1, -1}, {1, 0}, {1, 1}}
	diagonalDirs  = [4][2]int{{-1, -1}, {-1, 1}, {1, -1}, {1, 1}}
	straightDirs  = [4][2]int{{-1, 0}, {1, 0}, {0, -1}, {0, 1}}
)

// Attacked reports whether any piece of color by could capture onto sq in
// the given occupancy. The scan is a direct per-family probe, so it never
// re-enters castling logic and the mutual recursion the naive formulation
// would invite cannot occur.
func Attacked(b *board.Board, sq board.Square, by board.Color) bool {
	return pawnAttacks(b, sq, by) ||
		offsetAttacks(b, sq, by, board.Knight, knightOffsets) ||
		offsetAttacks(b, sq, by, board.King, kingOffsets) ||
		slidingAttacks(b, sq, by, diagonalDirs, board.Bishop) ||
		slidingAttacks(b, sq, by, straightDirs, board.Rook)
}

// SafeFor is the oracle the castling validator phrases its question in:
// true iff sq is not attacked by the opponent of color.
func SafeFor(color board.Color, sq board.Square, b *board.Board) bool {
	return !Attacked(b, sq, color.Opponent())
}

func pawnAttacks(b *board.Board, sq board.Square, by board.Color) bool {
	// A white pawn attacks upward, so it sits one row below its target.
	srcRow := sq.Row - 1
	if by == board.Black {
		srcRow = sq.Row + 1
	}
	for _, dCol := range [2]int{-1, 1} {
		src := board.Sq(srcRow, sq.Col+dCol)
		if !src.Valid() {
			continue
		}
		if o := b.At(src); o != nil && o.Color == by && o.Kind == board.Pawn {
			return true
		}
	}
	return false
}

func offsetAttacks(b *board.Board, sq board.Square, by board.Color, kind board.PieceKind, offsets [8][2]int) bool {
	for _, off := range offsets {
		src := board.Sq(sq.Row+off[0], sq.Col+off[1])
		if !src.Valid() {
			continue
		}
		if o := b.At(src); o != nil && o.Color == by && o.Kind == kind {
			return true
		}
	}
	return false
}

func slidingAttacks(b *board.Board, sq board.Square, by board.Color, dirs [4][2]int, kind board.PieceKind) bool {
	for _, dir := range dirs {
		cur := board.Sq(sq.Row+dir[0], sq.Col+dir[1])
		for cur.Valid() {
			if o := b.At(cur); o != nil {
				if o.Color == by && (o.Kind == kind || o.Kind == board.Queen) {
					return true
				}
				break
			}
			cur = board.Sq(cur.Row+dir[0], cur.Col+dir[1])
		}
	}
	return false
}
