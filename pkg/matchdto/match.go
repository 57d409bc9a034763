// Package matchdto holds the exported shapes the archive stores and any
// reporting surface exchange. Field names are stable; these documents
// outlive individual builds.
package matchdto

import "time"

// Match lifecycle states as archived.
const (
	StatusActive    = "ACTIVE"
	StatusCheckmate = "CHECKMATE"
	StatusStalemate = "STALEMATE"
	StatusDraw      = "DRAW"
	StatusAborted   = "ABORTED"
)

// MoveRecord is one committed move.
type MoveRecord struct {
	Ply      int       `json:"ply"`
	Mover    string    `json:"mover"`
	Piece    string    `json:"piece"`
	From     string    `json:"from"`
	To       string    `json:"to"`
	Captured string    `json:"captured,omitempty"`
	FEN      string    `json:"fen"`
	PlayedAt time.Time `json:"played_at"`
}

// MatchRecord is the archived state of one match.
type MatchRecord struct {
	ID           string       `json:"id"`
	Status       string       `json:"status"`
	Turn         string       `json:"turn"`
	Moves        []MoveRecord `json:"moves"`
	Result       string       `json:"result,omitempty"`
	ResultMethod string       `json:"result_method,omitempty"`
	StartedAt    time.Time    `json:"started_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}
