package match

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mkarras/robochess/internal/board"
	"github.com/mkarras/robochess/internal/obslog"
	"github.com/mkarras/robochess/internal/rules"
	"github.com/mkarras/robochess/internal/session"
	"github.com/mkarras/robochess/pkg/matchdto"
)

// rulesContext builds the read-only view a validator works against for the
// given color.
func (c *Coordinator) rulesContext(color board.Color) *rules.Context {
	r := c.sess.Rights(color)
	return &rules.Context{
		Board: c.board,
		Mover: color,
		Rights: rules.Rights{
			KingMoved:          r.KingMoved,
			KingsideRookMoved:  r.KingsideRookMoved,
			QueensideRookMoved: r.QueensideRookMoved,
		},
		EnPassant: c.sess.EnPassant(),
	}
}

// ProposeMove validates and, when legal, commits a move. The session phase
// machine gates re-entry: a second proposal before ConfirmActuation or
// Rollback is rejected with ErrMoveInProgress. Malformed input (out-of-range
// squares, an empty origin) is an explicit error, never a silent false.
func (c *Coordinator) ProposeMove(ctx context.Context, from, to board.Square) error {
	if !from.Valid() || !to.Valid() {
		return fmt.Errorf("%w: square out of range (%v -> %v)", ErrMalformedInput, from, to)
	}
	mover := c.board.At(from)
	if mover == nil {
		return fmt.Errorf("%w: no piece on %v", ErrMalformedInput, from)
	}
	if c.sess.Paused() {
		return ErrPaused
	}
	if c.sess.PromotionPending() {
		return ErrPromotionPending
	}
	if err := c.sess.BeginMove(); err != nil {
		return err
	}

	reject := func(reason string) error {
		c.sess.FinishMove()
		obslog.L().Debug("move_rejected",
			zap.String("from", from.String()),
			zap.String("to", to.String()),
			zap.String("reason", reason),
		)
		return fmt.Errorf("%w: %s", ErrIllegalMove, reason)
	}

	color := c.sess.ActiveColor()
	if mover.Color != color {
		return reject(fmt.Sprintf("it is %s's turn", color))
	}
	if dst := c.board.At(to); dst != nil && dst.Color == color {
		return reject("destination holds own piece")
	}
	if !rules.ValidateMove(from, to, c.rulesContext(color)) {
		return reject(fmt.Sprintf("%s cannot move %v -> %v", mover.Kind, from, to))
	}
	if c.leavesKingInCheck(from, to) {
		return reject("leaves own king in check")
	}

	if err := c.sess.MarkCommitting(); err != nil {
		c.sess.FinishMove()
		return err
	}
	c.commitMove(ctx, mover, from, to)
	return nil
}

// Rollback abandons a committed-but-unactuated move at the lifecycle level.
// The board stays as committed; physical reconciliation happens through the
// recovery snapshot the orchestration layer already holds.
func (c *Coordinator) Rollback() {
	c.sess.FinishMove()
	obslog.L().Warn("move_rollback")
}

func (c *Coordinator) commitMove(ctx context.Context, mover *board.Occupant, from, to board.Square) {
	color := mover.Color
	opponent := color.Opponent()

	castle := mover.Kind == board.King && abs(to.Col-from.Col) > 1

	// Resolve the capture, en passant included.
	captureSq := to
	captured := c.board.At(to)
	if captured == nil && mover.Kind == board.Pawn && from.Col != to.Col {
		captureSq = board.Sq(from.Row, to.Col)
		captured = c.board.At(captureSq)
	}
	if captured != nil {
		c.board.Remove(captureSq)
		c.applyCaptureCounts(captured)
		c.captureClearsRookRight(captured, captureSq)
	}

	c.board.Relocate(from, to)
	if castle {
		row := from.Row
		if to.Col > from.Col {
			c.board.Relocate(board.Sq(row, 7), board.Sq(row, 5))
		} else {
			c.board.Relocate(board.Sq(row, 0), board.Sq(row, 3))
		}
	}

	c.updateRightsAfterMove(mover, from)
	c.updateEnPassant(mover, from, to)

	// clocks
	if mover.Kind == board.Pawn || captured != nil {
		c.sess.SetHalfmoveClock(0)
	} else {
		c.sess.SetHalfmoveClock(c.sess.HalfmoveClock() + 1)
	}
	if color == board.Black {
		c.sess.SetMove(c.sess.Move() + 1)
	}
	c.sess.SetActiveColor(opponent)

	promotion := mover.Kind == board.Pawn && to.Row == rules.PromotionRow(color)
	if promotion {
		c.sess.SetPromotionPending(true)
	}

	lm := session.LastMove{Moved: mover.Label, From: from, To: to}
	if captured != nil {
		lm.Captured = captured.Label
	}
	c.sess.SetLastMove(lm)

	fen := c.sess.EncodeFEN(c.board)
	c.sess.SetPosition(fen)
	c.sess.SetMaterial(c.materialBalance())
	// a position with an unresolved promotion is not final; the terminal
	// verdict waits for CompletePromotion
	if !promotion {
		c.evaluateStatus()
	}

	if err := c.saveRecovery(true); err != nil {
		obslog.L().Warn("recovery_save_failed", zap.Error(err))
	}
	c.appendArchiveMove(ctx, mover, captured, from, to, fen)

	obslog.L().Info("move_committed",
		zap.String("piece", mover.Label),
		zap.String("from", from.String()),
		zap.String("to", to.String()),
		zap.Bool("capture", captured != nil),
		zap.Bool("castle", castle),
		zap.Bool("promotion_pending", promotion),
		zap.String("fen", fen),
	)
}

// CompletePromotion swaps the promoted pawn for the chosen piece. The
// choice must be physically plausible: the set only fields as many pieces
// of a kind as its inventory allows (one spare queen per side).
func (c *Coordinator) CompletePromotion(ctx context.Context, kind board.PieceKind) error {
	if !c.sess.PromotionPending() {
		return fmt.Errorf("%w: no promotion pending", ErrMalformedInput)
	}
	switch kind {
	case board.Queen, board.Rook, board.Bishop, board.Knight:
	default:
		return fmt.Errorf("%w: cannot promote to %s", ErrMalformedInput, kind)
	}

	// The promoting side is the one that just moved.
	color := c.sess.ActiveColor().Opponent()
	row := rules.PromotionRow(color)
	var pawn *board.Occupant
	for col := 0; col <= 7; col++ {
		if o := c.board.At(board.Sq(row, col)); o != nil && o.Color == color && o.Kind == board.Pawn {
			pawn = o
			break
		}
	}
	if pawn == nil {
		c.sess.SetPromotionPending(false)
		return fmt.Errorf("%w: no pawn on promotion rank", ErrMalformedInput)
	}

	if !c.promotionPlausible(color, kind) {
		return fmt.Errorf("%w: no %s available in the set", ErrIllegalMove, kind)
	}

	sq := pawn.Square
	c.board.Remove(sq)
	promoted := board.NewOccupant(promotedLabel(color, kind, c.board.Count(color, kind)+1), color, kind, sq)
	c.board.Place(promoted)

	counts := c.sess.Counts(color)
	counts.Pawns--
	c.sess.SetCounts(color, counts)
	c.sess.SetPromotionPending(false)

	fen := c.sess.EncodeFEN(c.board)
	c.sess.SetPosition(fen)
	c.sess.SetMaterial(c.materialBalance())
	c.evaluateStatus()

	if err := c.saveRecovery(true); err != nil {
		obslog.L().Warn("recovery_save_failed", zap.Error(err))
	}
	if c.record != nil {
		c.applyTerminalStatus(color)
		c.record.UpdatedAt = time.Now()
	}
	c.archiveRecord(ctx)
	if c.record != nil && c.record.Status != matchdto.StatusActive {
		c.persistResult(ctx)
	}

	obslog.L().Info("promotion_completed",
		zap.String("pawn", pawn.Label),
		zap.String("promoted", promoted.Label),
		zap.String("square", sq.String()),
	)
	return nil
}

// promotionPlausible checks the physical inventory: pieces of kind already
// fielded must stay below the side's allotment for that kind.
func (c *Coordinator) promotionPlausible(color board.Color, kind board.PieceKind) bool {
	counts := c.sess.Counts(color)
	var allowed int
	switch kind {
	case board.Queen:
		allowed = counts.Queens
	case board.Rook:
		allowed = counts.Rooks
	case board.Bishop:
		allowed = counts.Bishops
	case board.Knight:
		allowed = counts.Knights
	}
	return c.board.Count(color, kind) < allowed
}

func promotedLabel(color board.Color, kind board.PieceKind, n int) string {
	prefix := "w"
	if color == board.Black {
		prefix = "b"
	}
	letters := map[board.PieceKind]string{
		board.Queen: "Q", board.Rook: "R", board.Bishop: "B", board.Knight: "N",
	}
	return fmt.Sprintf("%s%s%d", prefix, letters[kind], n)
}

// applyCaptureCounts decrements the victim side's inventory for the
// captured kind.
func (c *Coordinator) applyCaptureCounts(captured *board.Occupant) {
	counts := c.sess.Counts(captured.Color)
	switch captured.Kind {
	case board.Queen:
		counts.Queens--
	case board.Rook:
		counts.Rooks--
	case board.Bishop:
		counts.Bishops--
	case board.Knight:
		counts.Knights--
	case board.Pawn:
		counts.Pawns--
	}
	c.sess.SetCounts(captured.Color, counts)
}

// captureClearsRookRight clears the castling flag of a rook captured on its
// home corner: the right is tied to that specific rook.
func (c *Coordinator) captureClearsRookRight(captured *board.Occupant, sq board.Square) {
	if captured.Kind != board.Rook {
		return
	}
	row := 0
	if captured.Color == board.Black {
		row = 7
	}
	if sq.Row != row {
		return
	}
	r := c.sess.Rights(captured.Color)
	switch sq.Col {
	case 7:
		r.KingsideRookMoved = true
	case 0:
		r.QueensideRookMoved = true
	default:
		return
	}
	c.sess.SetRights(captured.Color, r)
}

func (c *Coordinator) updateRightsAfterMove(mover *board.Occupant, from board.Square) {
	r := c.sess.Rights(mover.Color)
	homeRow := 0
	if mover.Color == board.Black {
		homeRow = 7
	}
	switch mover.Kind {
	case board.King:
		r.KingMoved = true
	case board.Rook:
		if from.Row == homeRow && from.Col == 7 {
			r.KingsideRookMoved = true
		}
		if from.Row == homeRow && from.Col == 0 {
			r.QueensideRookMoved = true
		}
	default:
		return
	}
	c.sess.SetRights(mover.Color, r)
}

// updateEnPassant sets the target for exactly one ply after a double pawn
// push and clears it otherwise.
func (c *Coordinator) updateEnPassant(mover *board.Occupant, from, to board.Square) {
	if mover.Kind == board.Pawn && abs(to.Row-from.Row) == 2 {
		target := board.Sq((from.Row+to.Row)/2, from.Col)
		c.sess.SetEnPassant(&target)
		return
	}
	c.sess.SetEnPassant(nil)
}

func (c *Coordinator) appendArchiveMove(ctx context.Context, mover, captured *board.Occupant, from, to board.Square, fen string) {
	if c.record == nil {
		return
	}
	rec := matchdto.MoveRecord{
		Ply:      len(c.record.Moves) + 1,
		Mover:    string(mover.Color),
		Piece:    mover.Label,
		From:     from.String(),
		To:       to.String(),
		FEN:      fen,
		PlayedAt: time.Now(),
	}
	if captured != nil {
		rec.Captured = captured.Label
	}
	c.record.Moves = append(c.record.Moves, rec)
	c.record.Turn = string(c.sess.ActiveColor())
	c.record.UpdatedAt = time.Now()
	c.applyTerminalStatus(mover.Color)
	c.archiveRecord(ctx)
	if c.record.Status != matchdto.StatusActive {
		c.persistResult(ctx)
	}
}

// applyTerminalStatus folds the session's terminal flags into the archive
// record. winner is the side whose move produced the position.
func (c *Coordinator) applyTerminalStatus(winner board.Color) {
	if c.record == nil {
		return
	}
	switch {
	case c.sess.Checkmate():
		c.record.Status = matchdto.StatusCheckmate
		c.record.Result = string(winner)
		c.record.ResultMethod = "checkmate"
	case c.sess.Stalemate():
		c.record.Status = matchdto.StatusStalemate
		c.record.Result = "draw"
		c.record.ResultMethod = "stalemate"
	case c.sess.Threefold():
		c.record.Status = matchdto.StatusDraw
		c.record.Result = "draw"
		c.record.ResultMethod = "threefold_repetition"
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
