// Package recovery persists the durable board snapshot used to resume an
// interrupted match. The file is plain JSON with stable field names so a
// human can inspect it and newer builds can still read older snapshots.
package recovery

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/mkarras/robochess/internal/board"
	"github.com/mkarras/robochess/internal/obslog"
)

// PieceRecord describes one occupant in the snapshot. Z is the stacking
// order hint for the rendering surface; Tag is free-form and may be null.
type PieceRecord struct {
	Name    string  `json:"Name"`
	Row     int     `json:"Row"`
	Col     int     `json:"Col"`
	Z       int     `json:"Z"`
	Enabled bool    `json:"Enabled"`
	Tag     *string `json:"Tag"`
}

// Snapshot is the on-disk document.
type Snapshot struct {
	RecoveryNeeded bool                   `json:"RecoveryNeeded"`
	Pieces         map[string]PieceRecord `json:"Pieces"`
}

// Store owns one snapshot file. One store instance per process; the file
// is not locked against external writers.
type Store struct {
	path string
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

// Save overwrites the snapshot with the given occupancy projection and
// needed-flag. The write goes through a temp file and a rename so a crash
// mid-save never leaves a half-written document.
func (s *Store) Save(pieces map[string]PieceRecord, needed bool) error {
	doc := Snapshot{RecoveryNeeded: needed, Pieces: pieces}
	raw, err := json.MarshalIndent(&doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal recovery snapshot: %w", err)
	}
	dir := filepath.Dir(s.path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create recovery dir: %w", err)
		}
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("write recovery snapshot: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace recovery snapshot: %w", err)
	}
	return nil
}

// Load reads the snapshot at startup. A missing, unreadable or unparseable
// file degrades to "no recovery needed": losing a stale snapshot is safer
// than refusing to start.
func (s *Store) Load() (bool, map[string]PieceRecord) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			obslog.L().Warn("recovery_load_failed", zap.String("path", s.path), zap.Error(err))
		}
		return false, nil
	}
	var doc Snapshot
	if err := json.Unmarshal(raw, &doc); err != nil {
		obslog.L().Warn("recovery_parse_failed", zap.String("path", s.path), zap.Error(err))
		return false, nil
	}
	return doc.RecoveryNeeded, doc.Pieces
}

// Clear deletes the snapshot. A file that is already gone counts as
// success; a real delete failure is returned so the orchestration layer
// can log it as a warning instead of it being swallowed.
func (s *Store) Clear() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove recovery snapshot: %w", err)
	}
	return nil
}

// FromBoard projects the live occupancy into snapshot records keyed by
// piece label.
func FromBoard(b *board.Board) map[string]PieceRecord {
	out := make(map[string]PieceRecord, 32)
	for _, o := range b.Pieces() {
		out[o.Label] = PieceRecord{
			Name:    o.Label,
			Row:     o.Square.Row,
			Col:     o.Square.Col,
			Z:       0,
			Enabled: true,
		}
	}
	return out
}
