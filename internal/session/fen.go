package session

import (
	"strconv"
	"strings"

	"github.com/mkarras/robochess/internal/board"
)

var fenLetters = map[board.PieceKind]byte{
	board.Pawn:   'p',
	board.Knight: 'n',
	board.Bishop: 'b',
	board.Rook:   'r',
	board.Queen:  'q',
	board.King:   'k',
}

// EncodeFEN renders the standard position string for the given occupancy
// and the session's turn, rights, en-passant and clock fields. This is the
// notation the engine bridge consumes.
func (s *Session) EncodeFEN(b *board.Board) string {
	var sb strings.Builder
	sb.WriteString(placementField(b))
	sb.WriteByte(' ')

	if s.activeColor == board.White {
		sb.WriteByte('w')
	} else {
		sb.WriteByte('b')
	}
	sb.WriteByte(' ')

	sb.WriteString(castlingField(s.white, s.black))
	sb.WriteByte(' ')

	if s.enPassant != nil {
		sb.WriteString(s.enPassant.String())
	} else {
		sb.WriteByte('-')
	}
	sb.WriteByte(' ')

	sb.WriteString(strconv.Itoa(s.halfmoveClock))
	sb.WriteByte(' ')
	sb.WriteString(strconv.Itoa(s.move))
	return sb.String()
}

// ReducedPosition is the repetition key: placement, turn, rights and
// en-passant target, with the move clocks dropped.
func (s *Session) ReducedPosition(b *board.Board) string {
	full := s.EncodeFEN(b)
	fields := strings.Fields(full)
	if len(fields) < 4 {
		return full
	}
	return strings.Join(fields[:4], " ")
}

func placementField(b *board.Board) string {
	var sb strings.Builder
	for row := 7; row >= 0; row-- {
		empty := 0
		for col := 0; col <= 7; col++ {
			o := b.At(board.Sq(row, col))
			if o == nil {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteString(strconv.Itoa(empty))
				empty = 0
			}
			letter := fenLetters[o.Kind]
			if o.Color == board.White {
				letter = letter - 'a' + 'A'
			}
			sb.WriteByte(letter)
		}
		if empty > 0 {
			sb.WriteString(strconv.Itoa(empty))
		}
		if row > 0 {
			sb.WriteByte('/')
		}
	}
	return sb.String()
}

func castlingField(white, black SideRights) string {
	var sb strings.Builder
	if !white.KingMoved && !white.KingsideRookMoved {
		sb.WriteByte('K')
	}
	if !white.KingMoved && !white.QueensideRookMoved {
		sb.WriteByte('Q')
	}
	if !black.KingMoved && !black.KingsideRookMoved {
		sb.WriteByte('k')
	}
	if !black.KingMoved && !black.QueensideRookMoved {
		sb.WriteByte('q')
	}
	if sb.Len() == 0 {
		return "-"
	}
	return sb.String()
}
