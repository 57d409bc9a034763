package board

import "testing"

func TestNewInitialLayout(t *testing.T) {
	b := NewInitial()
	if got := len(b.Pieces()); got != 32 {
		t.Fatalf("initial position has %d pieces", got)
	}

	checks := []struct {
		sq    Square
		color Color
		kind  PieceKind
		label string
	}{
		{Sq(0, 0), White, Rook, "wR1"},
		{Sq(0, 4), White, King, "wK"},
		{Sq(0, 3), White, Queen, "wQ"},
		{Sq(0, 7), White, Rook, "wR2"},
		{Sq(1, 0), White, Pawn, "wP1"},
		{Sq(1, 7), White, Pawn, "wP8"},
		{Sq(7, 1), Black, Knight, "bN1"},
		{Sq(7, 6), Black, Knight, "bN2"},
		{Sq(6, 3), Black, Pawn, "bP4"},
		{Sq(7, 4), Black, King, "bK"},
	}
	for _, c := range checks {
		o := b.At(c.sq)
		if o == nil {
			t.Errorf("%v is empty", c.sq)
			continue
		}
		if o.Color != c.color || o.Kind != c.kind || o.Label != c.label {
			t.Errorf("%v: got %s %s %q", c.sq, o.Color, o.Kind, o.Label)
		}
	}
	for row := 2; row <= 5; row++ {
		for col := 0; col <= 7; col++ {
			if b.Occupied(Sq(row, col)) {
				t.Errorf("middle square %v should start empty", Sq(row, col))
			}
		}
	}
}

func TestOccupantIdentitySurvivesRelocation(t *testing.T) {
	b := NewInitial()
	before := b.At(Sq(0, 0))
	moved := b.Relocate(Sq(0, 0), Sq(4, 0))
	if moved == nil || moved.ID != before.ID {
		t.Fatalf("relocation must preserve the piece instance")
	}
	if moved.Square != Sq(4, 0) {
		t.Errorf("occupant square not updated: %v", moved.Square)
	}
	if b.At(Sq(0, 0)) != nil {
		t.Errorf("origin should be empty after relocation")
	}
	// the two rooks stay distinguishable
	other := b.At(Sq(0, 7))
	if other.ID == moved.ID || other.Label == moved.Label {
		t.Errorf("rook instances should be distinct: %q vs %q", other.Label, moved.Label)
	}
}

func TestRemoveAndCount(t *testing.T) {
	b := NewInitial()
	if got := b.Count(White, Pawn); got != 8 {
		t.Fatalf("white pawn count: %d", got)
	}
	taken := b.Remove(Sq(1, 3))
	if taken == nil || taken.Kind != Pawn {
		t.Fatalf("Remove returned %+v", taken)
	}
	if b.Count(White, Pawn) != 7 || b.Occupied(Sq(1, 3)) {
		t.Errorf("removal not reflected in occupancy")
	}
	if b.Remove(Sq(4, 4)) != nil {
		t.Errorf("removing an empty square should return nil")
	}
}

func TestCloneIsIndependent(t *testing.T) {
	b := NewInitial()
	probe := b.Clone()
	probe.Remove(Sq(0, 3))
	probe.Relocate(Sq(1, 4), Sq(3, 4))

	if b.At(Sq(0, 3)) == nil {
		t.Errorf("mutating the clone must not touch the original")
	}
	if pawn := b.At(Sq(1, 4)); pawn == nil || pawn.Square != Sq(1, 4) {
		t.Errorf("original occupant moved through a clone mutation")
	}
}

func TestKingLookup(t *testing.T) {
	b := NewInitial()
	wk := b.King(White)
	if wk == nil || wk.Square != Sq(0, 4) {
		t.Errorf("white king lookup: %+v", wk)
	}
	b.Remove(Sq(7, 4))
	if b.King(Black) != nil {
		t.Errorf("king lookup on a kingless color should return nil")
	}
}

func TestPiecesOrderIsDeterministic(t *testing.T) {
	b := NewInitial()
	pieces := b.Pieces()
	for i := 1; i < len(pieces); i++ {
		prev, cur := pieces[i-1].Square, pieces[i].Square
		if cur.Row < prev.Row || (cur.Row == prev.Row && cur.Col <= prev.Col) {
			t.Fatalf("pieces out of row-major order at %d: %v then %v", i, prev, cur)
		}
	}
}

func TestSquareString(t *testing.T) {
	cases := map[Square]string{
		Sq(0, 0): "a1",
		Sq(3, 4): "e4",
		Sq(7, 7): "h8",
	}
	for sq, want := range cases {
		if got := sq.String(); got != want {
			t.Errorf("%v.String() = %q, want %q", sq, got, want)
		}
	}
	if Sq(8, 0).Valid() || Sq(0, -1).Valid() {
		t.Errorf("out-of-range squares should not validate")
	}
}
