package board

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// Occupant is a single piece instance. ID stays stable for the lifetime of
// the piece so the two rooks of one color remain distinguishable; Label is
// the short human name used by the recovery snapshot and the actuation
// layer ("wR1", "bK").
type Occupant struct {
	ID     uuid.UUID
	Label  string
	Color  Color
	Kind   PieceKind
	Square Square
}

func NewOccupant(label string, c Color, k PieceKind, sq Square) *Occupant {
	return &Occupant{
		ID:     uuid.New(),
		Label:  label,
		Color:  c,
		Kind:   k,
		Square: sq,
	}
}

// Board holds occupancy only. It carries no rules of its own; validators
// and the coordinator consult it and the coordinator mutates it.
type Board struct {
	pieces map[Square]*Occupant
}

func New() *Board {
	return &Board{pieces: make(map[Square]*Occupant, 32)}
}

var backRank = []PieceKind{Rook, Knight, Bishop, Queen, King, Bishop, Knight, Rook}

// NewInitial builds the standard starting position.
func NewInitial() *Board {
	b := New()
	for col, kind := range backRank {
		b.Place(NewOccupant(initialLabel(White, kind, col), White, kind, Sq(0, col)))
		b.Place(NewOccupant(fmt.Sprintf("wP%d", col+1), White, Pawn, Sq(1, col)))
		b.Place(NewOccupant(fmt.Sprintf("bP%d", col+1), Black, Pawn, Sq(6, col)))
		b.Place(NewOccupant(initialLabel(Black, kind, col), Black, kind, Sq(7, col)))
	}
	return b
}

func initialLabel(c Color, k PieceKind, col int) string {
	prefix := "w"
	if c == Black {
		prefix = "b"
	}
	letter := map[PieceKind]string{
		Rook: "R", Knight: "N", Bishop: "B", Queen: "Q", King: "K",
	}[k]
	switch k {
	case Queen, King:
		return prefix + letter
	default:
		// left-hand instance is 1, right-hand is 2
		n := 1
		if col > 4 {
			n = 2
		}
		return fmt.Sprintf("%s%s%d", prefix, letter, n)
	}
}

// At returns the occupant on sq, or nil.
func (b *Board) At(sq Square) *Occupant { return b.pieces[sq] }

func (b *Board) Occupied(sq Square) bool { return b.pieces[sq] != nil }

// Place puts o on its own square, replacing any previous occupant there.
func (b *Board) Place(o *Occupant) {
	if o == nil {
		return
	}
	b.pieces[o.Square] = o
}

// Remove lifts the occupant off sq and returns it.
func (b *Board) Remove(sq Square) *Occupant {
	o := b.pieces[sq]
	delete(b.pieces, sq)
	return o
}

// Relocate moves the occupant on from to to. The destination must have been
// cleared by the caller; captures are coordinator bookkeeping, not board
// bookkeeping.
func (b *Board) Relocate(from, to Square) *Occupant {
	o := b.pieces[from]
	if o == nil {
		return nil
	}
	delete(b.pieces, from)
	o.Square = to
	b.pieces[to] = o
	return o
}

// King finds the king of the given color, or nil if absent (test boards).
func (b *Board) King(c Color) *Occupant {
	for _, o := range b.pieces {
		if o.Color == c && o.Kind == King {
			return o
		}
	}
	return nil
}

// Pieces returns every occupant in a deterministic row-major order.
func (b *Board) Pieces() []*Occupant {
	out := make([]*Occupant, 0, len(b.pieces))
	for _, o := range b.pieces {
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Square.Row != out[j].Square.Row {
			return out[i].Square.Row < out[j].Square.Row
		}
		return out[i].Square.Col < out[j].Square.Col
	})
	return out
}

func (b *Board) Count(c Color, k PieceKind) int {
	n := 0
	for _, o := range b.pieces {
		if o.Color == c && o.Kind == k {
			n++
		}
	}
	return n
}

// Clone deep-copies the occupancy for hypothetical probes. Occupant values
// are copied so callers may move them freely.
func (b *Board) Clone() *Board {
	c := &Board{pieces: make(map[Square]*Occupant, len(b.pieces))}
	for sq, o := range b.pieces {
		cp := *o
		c.pieces[sq] = &cp
	}
	return c
}

// String renders a debug diagram, rank 8 first.
func (b *Board) String() string {
	letters := map[PieceKind]byte{
		Pawn: 'p', Knight: 'n', Bishop: 'b', Rook: 'r', Queen: 'q', King: 'k',
	}
	var sb strings.Builder
	for row := 7; row >= 0; row-- {
		for col := 0; col <= 7; col++ {
			o := b.pieces[Sq(row, col)]
			switch {
			case o == nil:
				sb.WriteByte('.')
			case o.Color == White:
				sb.WriteByte(letters[o.Kind] - 'a' + 'A')
			default:
				sb.WriteByte(letters[o.Kind])
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
