package board

import "fmt"

// Color identifies a side of the match.
type Color string

const (
	White Color = "white"
	Black Color = "black"
)

func (c Color) Opponent() Color {
	if c == White {
		return Black
	}
	return White
}

// PieceKind is the chess piece family.
type PieceKind string

const (
	Pawn   PieceKind = "pawn"
	Knight PieceKind = "knight"
	Bishop PieceKind = "bishop"
	Rook   PieceKind = "rook"
	Queen  PieceKind = "queen"
	King   PieceKind = "king"
)

// Square addresses a board cell. Row 0 is White's home rank, Col 0 is the
// a-file. Both axes run 0-7; anything else is a caller contract violation.
type Square struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func Sq(row, col int) Square { return Square{Row: row, Col: col} }

func (s Square) Valid() bool {
	return s.Row >= 0 && s.Row <= 7 && s.Col >= 0 && s.Col <= 7
}

// String renders algebraic notation ("e4").
func (s Square) String() string {
	if !s.Valid() {
		return fmt.Sprintf("??(%d,%d)", s.Row, s.Col)
	}
	return fmt.Sprintf("%c%d", 'a'+rune(s.Col), s.Row+1)
}
