package match

import (
	"go.uber.org/zap"

	"github.com/mkarras/robochess/internal/board"
	"github.com/mkarras/robochess/internal/obslog"
	"github.com/mkarras/robochess/internal/rules"
)

var pieceValues = map[board.PieceKind]int{
	board.Pawn:   1,
	board.Knight: 3,
	board.Bishop: 3,
	board.Rook:   5,
	board.Queen:  9,
}

// InCheck reports whether color's king currently stands attacked.
func (c *Coordinator) InCheck(color board.Color) bool {
	king := c.board.King(color)
	if king == nil {
		return false
	}
	return rules.Attacked(c.board, king.Square, color.Opponent())
}

// leavesKingInCheck probes a hypothetical application of from->to on a
// cloned occupancy and asks whether the mover's own king would stand
// attacked afterwards.
func (c *Coordinator) leavesKingInCheck(from, to board.Square) bool {
	mover := c.board.At(from)
	if mover == nil {
		return true
	}
	probe := c.board.Clone()
	if captured := probe.At(to); captured != nil {
		probe.Remove(to)
	} else if mover.Kind == board.Pawn && from.Col != to.Col {
		// en passant removes the bypassed pawn, not the destination
		probe.Remove(board.Sq(from.Row, to.Col))
	}
	probe.Relocate(from, to)
	king := probe.King(mover.Color)
	if king == nil {
		return false
	}
	return rules.Attacked(probe, king.Square, mover.Color.Opponent())
}

// hasAnyLegalMove brute-force scans every piece of color against every
// destination. Plenty fast for one 8x8 board per committed move.
func (c *Coordinator) hasAnyLegalMove(color board.Color) bool {
	rctx := c.rulesContext(color)
	for _, o := range c.board.Pieces() {
		if o.Color != color {
			continue
		}
		for row := 0; row <= 7; row++ {
			for col := 0; col <= 7; col++ {
				to := board.Sq(row, col)
				if dst := c.board.At(to); dst != nil && dst.Color == color {
					continue
				}
				if !rules.ValidateMove(o.Square, to, rctx) {
					continue
				}
				if c.leavesKingInCheck(o.Square, to) {
					continue
				}
				return true
			}
		}
	}
	return false
}

// evaluateStatus asserts at most one terminal flag for the side now to
// move, and records the position for repetition detection.
func (c *Coordinator) evaluateStatus() {
	toMove := c.sess.ActiveColor()
	inCheck := c.InCheck(toMove)
	hasMove := c.hasAnyLegalMove(toMove)

	switch {
	case inCheck && !hasMove:
		c.sess.SetCheckmate(true)
		obslog.L().Info("match_checkmate", zap.String("loser", string(toMove)))
	case !inCheck && !hasMove:
		c.sess.SetStalemate(true)
		obslog.L().Info("match_stalemate")
	default:
		if c.sess.RecordPosition(c.sess.ReducedPosition(c.board)) >= 3 {
			c.sess.SetThreefold(true)
			obslog.L().Info("match_threefold_repetition")
		}
	}
}

// materialBalance sums piece values, White positive.
func (c *Coordinator) materialBalance() int {
	total := 0
	for _, o := range c.board.Pieces() {
		v := pieceValues[o.Kind]
		if o.Color == board.White {
			total += v
		} else {
			total -= v
		}
	}
	return total
}
