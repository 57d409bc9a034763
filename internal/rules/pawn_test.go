package rules

import (
	"testing"

	"github.com/mkarras/robochess/internal/board"
)

func TestPawnPushes(t *testing.T) {
	b := placed(t, occ(board.White, board.Pawn, 1, 4))
	ctx := emptyCtx(b)
	if !ValidateMove(board.Sq(1, 4), board.Sq(2, 4), ctx) {
		t.Errorf("single push should be legal")
	}
	if !ValidateMove(board.Sq(1, 4), board.Sq(3, 4), ctx) {
		t.Errorf("double push from the start rank should be legal")
	}
	if ValidateMove(board.Sq(1, 4), board.Sq(0, 4), ctx) {
		t.Errorf("backward push should be illegal")
	}

	// off the start rank the double push disappears
	b2 := placed(t, occ(board.White, board.Pawn, 2, 4))
	if ValidateMove(board.Sq(2, 4), board.Sq(4, 4), emptyCtx(b2)) {
		t.Errorf("double push off the start rank should be illegal")
	}

	// pushes only land on empty squares
	b3 := placed(t,
		occ(board.White, board.Pawn, 1, 4),
		occ(board.Black, board.Knight, 2, 4),
	)
	if ValidateMove(board.Sq(1, 4), board.Sq(2, 4), emptyCtx(b3)) {
		t.Errorf("push onto an occupant should be illegal")
	}
	if ValidateMove(board.Sq(1, 4), board.Sq(3, 4), emptyCtx(b3)) {
		t.Errorf("double push across an occupant should be illegal")
	}
}

func TestBlackPawnDirection(t *testing.T) {
	b := placed(t, occ(board.Black, board.Pawn, 6, 2))
	ctx := &Context{Board: b, Mover: board.Black}
	if !ValidateMove(board.Sq(6, 2), board.Sq(5, 2), ctx) {
		t.Errorf("black single push should head toward row 0")
	}
	if !ValidateMove(board.Sq(6, 2), board.Sq(4, 2), ctx) {
		t.Errorf("black double push from row 6 should be legal")
	}
	if ValidateMove(board.Sq(6, 2), board.Sq(7, 2), ctx) {
		t.Errorf("black pawn cannot push toward row 7")
	}
}

func TestPawnCaptures(t *testing.T) {
	b := placed(t,
		occ(board.White, board.Pawn, 3, 3),
		occ(board.Black, board.Knight, 4, 4),
		occ(board.White, board.Bishop, 4, 2),
	)
	ctx := emptyCtx(b)
	if !ValidateMove(board.Sq(3, 3), board.Sq(4, 4), ctx) {
		t.Errorf("diagonal capture of an opponent should be legal")
	}
	if ValidateMove(board.Sq(3, 3), board.Sq(4, 2), ctx) {
		t.Errorf("diagonal onto an own piece should be illegal")
	}
	// an empty diagonal without an en-passant target is illegal
	b2 := placed(t, occ(board.White, board.Pawn, 3, 3))
	if ValidateMove(board.Sq(3, 3), board.Sq(4, 4), emptyCtx(b2)) {
		t.Errorf("diagonal onto an empty square should be illegal")
	}
}

func TestPawnEnPassant(t *testing.T) {
	// black just pushed d7d5; white's c5 pawn may capture onto d6
	b := placed(t,
		occ(board.White, board.Pawn, 4, 2),
		occ(board.Black, board.Pawn, 4, 3),
	)
	target := board.Sq(5, 3)
	ctx := &Context{Board: b, Mover: board.White, EnPassant: &target}
	if !ValidateMove(board.Sq(4, 2), board.Sq(5, 3), ctx) {
		t.Errorf("en-passant capture onto the target should be legal")
	}
	// a different empty diagonal stays illegal
	if ValidateMove(board.Sq(4, 2), board.Sq(5, 1), ctx) {
		t.Errorf("empty diagonal away from the target should be illegal")
	}
	// the same move without the target is illegal
	if ValidateMove(board.Sq(4, 2), board.Sq(5, 3), emptyCtx(b)) {
		t.Errorf("en-passant without an active target should be illegal")
	}
}

func TestPawnPromotionShapes(t *testing.T) {
	b := placed(t, occ(board.White, board.Pawn, 6, 0))
	if !ValidateMove(board.Sq(6, 0), board.Sq(7, 0), emptyCtx(b)) {
		t.Errorf("push onto the last rank should be legal; promotion is coordinator bookkeeping")
	}
	if PromotionRow(board.White) != 7 || PromotionRow(board.Black) != 0 {
		t.Errorf("unexpected promotion rows: %d/%d", PromotionRow(board.White), PromotionRow(board.Black))
	}
}
