// Package match coordinates a physical chess game: it is the only writer
// of the session and the board, dispatches the legality predicates, keeps
// the recovery snapshot current and feeds the archive and the evaluation
// bridge. Physical actuation itself stays outside; the coordinator exposes
// the confirm/rollback seam the orchestration layer reports back through.
package match

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mkarras/robochess/internal/archive"
	"github.com/mkarras/robochess/internal/board"
	"github.com/mkarras/robochess/internal/obslog"
	"github.com/mkarras/robochess/internal/recovery"
	"github.com/mkarras/robochess/internal/session"
	"github.com/mkarras/robochess/internal/uci"
	"github.com/mkarras/robochess/internal/watchdog"
	"github.com/mkarras/robochess/pkg/matchdto"
)

var (
	// ErrIllegalMove is the validators' definite "no".
	ErrIllegalMove = errors.New("match: illegal move")
	// ErrMalformedInput marks a caller contract violation (out-of-range
	// square, empty origin) rather than a mere illegal move.
	ErrMalformedInput = errors.New("match: malformed input")
	// ErrPaused rejects proposals while the match is paused.
	ErrPaused = errors.New("match: match is paused")
	// ErrPromotionPending rejects proposals while a promotion choice is
	// outstanding.
	ErrPromotionPending = errors.New("match: promotion pending")
)

// Options carries the optional collaborators. Any of them may be nil; the
// coordinator then degrades to logging for that concern.
type Options struct {
	Archive    *archive.Store
	Repository *archive.Repository
	Bridge     *uci.Bridge
}

// Coordinator is the single owner of the board and session.
type Coordinator struct {
	board *board.Board
	sess  *session.Session
	store *recovery.Store
	opts  Options

	record *matchdto.MatchRecord

	connMu       sync.RWMutex
	connectivity watchdog.Status
}

func NewCoordinator(sess *session.Session, store *recovery.Store, opts Options) *Coordinator {
	return &Coordinator{
		board: board.NewInitial(),
		sess:  sess,
		store: store,
		opts:  opts,
	}
}

func (c *Coordinator) Board() *board.Board { return c.board }

func (c *Coordinator) Session() *session.Session { return c.sess }

// SetConnectivity installs the latest watchdog snapshot. It is called from
// the watchdog goroutine, so the handoff is mutex-guarded; the coordinator
// never reads connectivity from ambient state.
func (c *Coordinator) SetConnectivity(st watchdog.Status) {
	c.connMu.Lock()
	c.connectivity = st
	c.connMu.Unlock()
}

func (c *Coordinator) Connectivity() watchdog.Status {
	c.connMu.RLock()
	defer c.connMu.RUnlock()
	return c.connectivity
}

// StartMatch resets everything to a fresh game: session defaults, initial
// occupancy, cleared recovery snapshot, a new archive record.
func (c *Coordinator) StartMatch(ctx context.Context) error {
	c.sess.Reset()
	c.board = board.NewInitial()
	c.sess.SetPosition(c.sess.EncodeFEN(c.board))
	// the starting position counts toward repetition
	c.sess.RecordPosition(c.sess.ReducedPosition(c.board))

	if err := c.store.Clear(); err != nil {
		obslog.L().Warn("recovery_clear_failed", zap.Error(err))
	}
	c.record = &matchdto.MatchRecord{
		ID:        uuid.NewString(),
		Status:    matchdto.StatusActive,
		Turn:      string(c.sess.ActiveColor()),
		StartedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	c.archiveRecord(ctx)
	obslog.L().Info("match_start", zap.String("match_id", c.record.ID))
	return nil
}

// Restore loads the recovery snapshot at startup. When a resume is needed
// the board is rebuilt from the snapshot and true is returned so the
// orchestration layer can reconcile it against the physical placement
// before play continues.
func (c *Coordinator) Restore() bool {
	needed, pieces := c.store.Load()
	if !needed || len(pieces) == 0 {
		return false
	}
	b := board.New()
	for name, rec := range pieces {
		if !rec.Enabled {
			continue
		}
		sq := board.Sq(rec.Row, rec.Col)
		if !sq.Valid() {
			obslog.L().Warn("recovery_piece_out_of_range",
				zap.String("piece", name), zap.Int("row", rec.Row), zap.Int("col", rec.Col))
			continue
		}
		color, kind, ok := parseLabel(rec.Name)
		if !ok {
			obslog.L().Warn("recovery_piece_unrecognized", zap.String("piece", name))
			continue
		}
		b.Place(board.NewOccupant(rec.Name, color, kind, sq))
	}
	c.board = b
	c.sess.SetPosition(c.sess.EncodeFEN(c.board))
	c.sess.RecordPosition(c.sess.ReducedPosition(c.board))
	obslog.L().Info("match_restored", zap.Int("pieces", len(pieces)))
	return true
}

// parseLabel recovers color and kind from a snapshot piece name ("wR1").
func parseLabel(label string) (board.Color, board.PieceKind, bool) {
	if len(label) < 2 {
		return "", "", false
	}
	var color board.Color
	switch label[0] {
	case 'w':
		color = board.White
	case 'b':
		color = board.Black
	default:
		return "", "", false
	}
	kinds := map[byte]board.PieceKind{
		'P': board.Pawn, 'N': board.Knight, 'B': board.Bishop,
		'R': board.Rook, 'Q': board.Queen, 'K': board.King,
	}
	kind, ok := kinds[label[1]]
	if !ok {
		return "", "", false
	}
	return color, kind, true
}

// ConfirmActuation is called by the orchestration layer once the robot has
// finished executing the committed move: the snapshot flips to
// not-needed and the session returns to Idle.
func (c *Coordinator) ConfirmActuation(ctx context.Context) error {
	if err := c.saveRecovery(false); err != nil {
		obslog.L().Warn("recovery_save_failed", zap.Error(err))
	}
	c.sess.FinishMove()
	c.requestEvaluation(ctx)
	return nil
}

// Abort marks the current match aborted and releases the move lifecycle.
func (c *Coordinator) Abort(ctx context.Context) {
	c.sess.FinishMove()
	if c.record != nil {
		c.record.Status = matchdto.StatusAborted
		c.record.UpdatedAt = time.Now()
		c.archiveRecord(ctx)
		c.persistResult(ctx)
	}
	obslog.L().Info("match_abort")
}

func (c *Coordinator) saveRecovery(needed bool) error {
	return c.store.Save(recovery.FromBoard(c.board), needed)
}

func (c *Coordinator) archiveRecord(ctx context.Context) {
	if c.opts.Archive == nil || c.record == nil {
		return
	}
	if err := c.opts.Archive.SaveMatch(ctx, c.record); err != nil {
		obslog.L().Warn("archive_save_failed", zap.String("match_id", c.record.ID), zap.Error(err))
	}
}

func (c *Coordinator) persistResult(ctx context.Context) {
	if c.opts.Repository == nil || c.record == nil {
		return
	}
	if err := c.opts.Repository.SaveResult(ctx, c.record); err != nil {
		obslog.L().Error("result_persist_failed", zap.String("match_id", c.record.ID), zap.Error(err))
	}
}

// requestEvaluation asks the engine bridge for an advisory score of the
// current position. Failures are logged and the previous evaluation stays;
// legality never waits on this.
func (c *Coordinator) requestEvaluation(ctx context.Context) {
	if c.opts.Bridge == nil {
		return
	}
	fen := c.sess.Position()
	if strings.TrimSpace(fen) == "" {
		return
	}
	res, err := c.opts.Bridge.Evaluate(ctx, fen)
	if err != nil {
		obslog.L().Warn("engine_eval_failed", zap.String("fen", fen), zap.Error(err))
		return
	}
	c.sess.SetEvaluation(res.ScoreCP)
	obslog.L().Debug("engine_eval",
		zap.String("fen", fen),
		zap.Int("score_cp", res.ScoreCP),
		zap.String("best_move", res.BestMove),
	)
}
