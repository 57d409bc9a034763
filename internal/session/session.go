// Package session holds the single authoritative record of a match: turn,
// castling rights, counters, evaluation and coordination flags. Every field
// changes through one committing setter that short-circuits on equal values
// and notifies subscribers with the field identity, so the UI refresh and
// the recovery writer observe every transition.
package session

import (
	"errors"
	"fmt"

	"github.com/mkarras/robochess/internal/board"
)

// Field identifies a session field in change notifications.
type Field string

const (
	FieldActiveColor    Field = "active_color"
	FieldMove           Field = "move"
	FieldHalfmoveClock  Field = "halfmove_clock"
	FieldRights         Field = "castling_rights"
	FieldEnPassant      Field = "en_passant"
	FieldCounts         Field = "piece_counts"
	FieldLastMove       Field = "last_move"
	FieldPosition       Field = "position"
	FieldPaused         Field = "paused"
	FieldMoveInProgress Field = "move_in_progress"
	FieldMaterial       Field = "material"
	FieldEvaluation     Field = "evaluation"
	FieldTerminal       Field = "terminal"
	FieldPhase          Field = "phase"
	FieldPromotion      Field = "promotion_pending"
)

// Observer receives committed field changes synchronously, in registration
// order, on the mutating call path. An observer must not mutate the same
// field it is being notified about.
type Observer func(Field)

// Phase is the enforced move lifecycle. The cooperative MoveInProgress
// convention of older revisions is kept as an observable flag, but the
// transitions below are what actually gate a new proposal.
type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseValidating Phase = "validating"
	PhaseCommitting Phase = "committing"
)

// ErrMoveInProgress is returned when a move is proposed outside PhaseIdle.
var ErrMoveInProgress = errors.New("session: move already in progress")

// SideRights is the castling bookkeeping for one color. The two rook flags
// track specific rook instances; CanCastle is the derived resultant kept in
// step by the setter.
type SideRights struct {
	KingMoved          bool
	KingsideRookMoved  bool
	QueensideRookMoved bool
	CanCastle          bool
}

func (r SideRights) canCastle() bool {
	return !r.KingMoved && (!r.KingsideRookMoved || !r.QueensideRookMoved)
}

// PieceCounts tracks how many pieces of each kind a side may field,
// promotion inventory included (the physical set carries a spare queen, so
// queens start at 2).
type PieceCounts struct {
	Queens  int
	Rooks   int
	Bishops int
	Knights int
	Pawns   int
}

func initialCounts() PieceCounts {
	return PieceCounts{Queens: 2, Rooks: 2, Bishops: 2, Knights: 2, Pawns: 8}
}

// LastMove is the metadata of the most recently committed move.
type LastMove struct {
	Moved    string
	Captured string
	From     board.Square
	To       board.Square
}

// Session is the mutable match record. It is a single-owner object: only
// the coordinator applying a confirmed move writes to it, and observers are
// invoked on that same call path.
type Session struct {
	activeColor   board.Color
	move          int
	halfmoveClock int

	white SideRights
	black SideRights

	enPassant *board.Square

	whiteCounts PieceCounts
	blackCounts PieceCounts

	lastMove LastMove
	position string

	paused         bool
	moveInProgress bool

	material int
	evalCP   int

	checkmate bool
	stalemate bool
	threefold bool

	promotionPending bool

	phase Phase

	// history holds reduced position strings for repetition detection. It
	// is cleared in place on Reset because the recovery writer may hold a
	// reference to it.
	history []string

	observers []Observer
}

// New returns a session at match-start defaults.
func New() *Session {
	s := &Session{}
	s.resetFields()
	return s
}

// Subscribe registers an observer for committed field changes.
func (s *Session) Subscribe(o Observer) {
	if o != nil {
		s.observers = append(s.observers, o)
	}
}

// commit is the single mutation entry point: no-op when the value is
// unchanged, otherwise apply and notify. It never fails.
func (s *Session) commit(field Field, equal bool, apply func()) {
	if equal {
		return
	}
	apply()
	for _, o := range s.observers {
		o(field)
	}
}

// Reset restores every field to its match-start default and clears
// collection-valued fields in place.
func (s *Session) Reset() {
	s.resetFields()
	for _, o := range s.observers {
		o(Field("reset"))
	}
}

// FieldReset is emitted once after a full reset instead of one event per
// restored field.
const FieldReset Field = "reset"

func (s *Session) resetFields() {
	s.activeColor = board.White
	s.move = 1
	s.halfmoveClock = 0
	s.white = SideRights{CanCastle: true}
	s.black = SideRights{CanCastle: true}
	s.enPassant = nil
	s.whiteCounts = initialCounts()
	s.blackCounts = initialCounts()
	s.lastMove = LastMove{}
	s.position = ""
	s.paused = false
	s.moveInProgress = false
	s.material = 0
	s.evalCP = 0
	s.checkmate = false
	s.stalemate = false
	s.threefold = false
	s.promotionPending = false
	s.phase = PhaseIdle
	s.history = s.history[:0]
}

// --- phase machine -----------------------------------------------------

func (s *Session) Phase() Phase { return s.phase }

// BeginMove transitions Idle → Validating; any other starting phase means a
// move is already being processed and the proposal is rejected.
func (s *Session) BeginMove() error {
	if s.phase != PhaseIdle {
		return fmt.Errorf("%w (phase %s)", ErrMoveInProgress, s.phase)
	}
	s.commit(FieldPhase, false, func() { s.phase = PhaseValidating })
	s.SetMoveInProgress(true)
	return nil
}

// MarkCommitting transitions Validating → Committing.
func (s *Session) MarkCommitting() error {
	if s.phase != PhaseValidating {
		return fmt.Errorf("session: cannot commit from phase %s", s.phase)
	}
	s.commit(FieldPhase, false, func() { s.phase = PhaseCommitting })
	return nil
}

// FinishMove returns to Idle from any phase. Used on both completion and
// rollback.
func (s *Session) FinishMove() {
	s.commit(FieldPhase, s.phase == PhaseIdle, func() { s.phase = PhaseIdle })
	s.SetMoveInProgress(false)
}

// --- getters / setters --------------------------------------------------

func (s *Session) ActiveColor() board.Color { return s.activeColor }

func (s *Session) SetActiveColor(c board.Color) {
	s.commit(FieldActiveColor, s.activeColor == c, func() { s.activeColor = c })
}

func (s *Session) Move() int { return s.move }

func (s *Session) SetMove(n int) {
	s.commit(FieldMove, s.move == n, func() { s.move = n })
}

func (s *Session) HalfmoveClock() int { return s.halfmoveClock }

func (s *Session) SetHalfmoveClock(n int) {
	s.commit(FieldHalfmoveClock, s.halfmoveClock == n, func() { s.halfmoveClock = n })
}

func (s *Session) Rights(c board.Color) SideRights {
	if c == board.White {
		return s.white
	}
	return s.black
}

// SetRights installs the three moved-flags for one side and recomputes the
// resultant CanCastle boolean.
func (s *Session) SetRights(c board.Color, r SideRights) {
	r.CanCastle = r.canCastle()
	target := &s.white
	if c == board.Black {
		target = &s.black
	}
	s.commit(FieldRights, *target == r, func() { *target = r })
}

func (s *Session) EnPassant() *board.Square {
	if s.enPassant == nil {
		return nil
	}
	sq := *s.enPassant
	return &sq
}

func (s *Session) SetEnPassant(sq *board.Square) {
	equal := (s.enPassant == nil && sq == nil) ||
		(s.enPassant != nil && sq != nil && *s.enPassant == *sq)
	s.commit(FieldEnPassant, equal, func() {
		if sq == nil {
			s.enPassant = nil
			return
		}
		cp := *sq
		s.enPassant = &cp
	})
}

func (s *Session) Counts(c board.Color) PieceCounts {
	if c == board.White {
		return s.whiteCounts
	}
	return s.blackCounts
}

func (s *Session) SetCounts(c board.Color, pc PieceCounts) {
	target := &s.whiteCounts
	if c == board.Black {
		target = &s.blackCounts
	}
	s.commit(FieldCounts, *target == pc, func() { *target = pc })
}

func (s *Session) LastMove() LastMove { return s.lastMove }

func (s *Session) SetLastMove(lm LastMove) {
	s.commit(FieldLastMove, s.lastMove == lm, func() { s.lastMove = lm })
}

// Position is the canonical position string (FEN) after the last committed
// move.
func (s *Session) Position() string { return s.position }

func (s *Session) SetPosition(fen string) {
	s.commit(FieldPosition, s.position == fen, func() { s.position = fen })
}

func (s *Session) Paused() bool { return s.paused }

func (s *Session) SetPaused(v bool) {
	s.commit(FieldPaused, s.paused == v, func() { s.paused = v })
}

func (s *Session) MoveInProgress() bool { return s.moveInProgress }

func (s *Session) SetMoveInProgress(v bool) {
	s.commit(FieldMoveInProgress, s.moveInProgress == v, func() { s.moveInProgress = v })
}

func (s *Session) Material() int { return s.material }

func (s *Session) SetMaterial(v int) {
	s.commit(FieldMaterial, s.material == v, func() { s.material = v })
}

func (s *Session) Evaluation() int { return s.evalCP }

// SetEvaluation stores the advisory engine score in centipawns, White
// positive.
func (s *Session) SetEvaluation(cp int) {
	s.commit(FieldEvaluation, s.evalCP == cp, func() { s.evalCP = cp })
}

func (s *Session) PromotionPending() bool { return s.promotionPending }

func (s *Session) SetPromotionPending(v bool) {
	s.commit(FieldPromotion, s.promotionPending == v, func() { s.promotionPending = v })
}

// Terminal state: at most one of checkmate, stalemate and threefold may be
// asserted at a time; asserting one clears the others.

func (s *Session) Checkmate() bool { return s.checkmate }
func (s *Session) Stalemate() bool { return s.stalemate }
func (s *Session) Threefold() bool { return s.threefold }

func (s *Session) SetCheckmate(v bool) {
	s.commit(FieldTerminal, s.checkmate == v, func() {
		s.checkmate = v
		if v {
			s.stalemate, s.threefold = false, false
		}
	})
}

func (s *Session) SetStalemate(v bool) {
	s.commit(FieldTerminal, s.stalemate == v, func() {
		s.stalemate = v
		if v {
			s.checkmate, s.threefold = false, false
		}
	})
}

func (s *Session) SetThreefold(v bool) {
	s.commit(FieldTerminal, s.threefold == v, func() {
		s.threefold = v
		if v {
			s.checkmate, s.stalemate = false, false
		}
	})
}

// --- repetition history -------------------------------------------------

// RecordPosition appends a reduced position string and returns how many
// times it has now occurred.
func (s *Session) RecordPosition(reduced string) int {
	s.history = append(s.history, reduced)
	n := 0
	for _, p := range s.history {
		if p == reduced {
			n++
		}
	}
	return n
}

func (s *Session) HistoryLen() int { return len(s.history) }
