package recovery

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/mkarras/robochess/internal/board"
)

func tempStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "recovery.json")
	return NewStore(path), path
}

func TestSaveLoadRoundTrip(t *testing.T) {
	store, _ := tempStore(t)
	tag := "promoted"
	pieces := map[string]PieceRecord{
		"wK":  {Name: "wK", Row: 0, Col: 4, Z: 0, Enabled: true},
		"bQ2": {Name: "bQ2", Row: 3, Col: 3, Z: 1, Enabled: true, Tag: &tag},
		"wP4": {Name: "wP4", Row: 1, Col: 3, Enabled: false},
	}
	if err := store.Save(pieces, true); err != nil {
		t.Fatalf("Save: %v", err)
	}

	needed, got := store.Load()
	if !needed {
		t.Errorf("RecoveryNeeded should survive the round trip")
	}
	if len(got) != len(pieces) {
		t.Fatalf("loaded %d records, want %d", len(got), len(pieces))
	}
	for name, want := range pieces {
		rec, ok := got[name]
		if !ok {
			t.Errorf("record %q missing after load", name)
			continue
		}
		if rec.Name != want.Name || rec.Row != want.Row || rec.Col != want.Col ||
			rec.Z != want.Z || rec.Enabled != want.Enabled {
			t.Errorf("record %q changed: %+v", name, rec)
		}
		if (rec.Tag == nil) != (want.Tag == nil) {
			t.Errorf("record %q tag presence changed", name)
		} else if rec.Tag != nil && *rec.Tag != *want.Tag {
			t.Errorf("record %q tag changed: %q", name, *rec.Tag)
		}
	}
}

func TestSaveUsesStableFieldNames(t *testing.T) {
	store, path := tempStore(t)
	if err := store.Save(map[string]PieceRecord{
		"wK": {Name: "wK", Row: 0, Col: 4, Enabled: true},
	}, false); err != nil {
		t.Fatalf("Save: %v", err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read snapshot: %v", err)
	}
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("snapshot is not valid JSON: %v", err)
	}
	for _, key := range []string{"RecoveryNeeded", "Pieces"} {
		if _, ok := doc[key]; !ok {
			t.Errorf("top-level key %q missing from snapshot", key)
		}
	}
	var piece map[string]map[string]json.RawMessage
	if err := json.Unmarshal(doc["Pieces"], &piece); err != nil {
		t.Fatalf("pieces block: %v", err)
	}
	for _, key := range []string{"Name", "Row", "Col", "Z", "Enabled", "Tag"} {
		if _, ok := piece["wK"][key]; !ok {
			t.Errorf("piece key %q missing from snapshot", key)
		}
	}
}

func TestClearRemovesFileAndToleratesAbsentFile(t *testing.T) {
	store, path := tempStore(t)
	if err := store.Save(map[string]PieceRecord{}, true); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := store.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("snapshot file should be gone after Clear")
	}
	if needed, _ := store.Load(); needed {
		t.Errorf("cleared store should report no recovery needed")
	}
	// clearing an already-absent file is not an error
	if err := store.Clear(); err != nil {
		t.Errorf("Clear on an absent file: %v", err)
	}
}

func TestLoadDegradesOnMissingOrCorruptFile(t *testing.T) {
	store, path := tempStore(t)
	if needed, pieces := store.Load(); needed || pieces != nil {
		t.Errorf("missing file should load as no-recovery")
	}
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write corrupt file: %v", err)
	}
	if needed, pieces := store.Load(); needed || pieces != nil {
		t.Errorf("corrupt file should load as no-recovery")
	}
}

func TestSaveLeavesNoTempFileBehind(t *testing.T) {
	store, path := tempStore(t)
	if err := store.Save(map[string]PieceRecord{}, true); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Errorf("temp file should be renamed away")
	}
}

func TestFromBoardProjectsEveryOccupant(t *testing.T) {
	b := board.NewInitial()
	pieces := FromBoard(b)
	if len(pieces) != 32 {
		t.Fatalf("projected %d records from the initial position", len(pieces))
	}
	wk, ok := pieces["wK"]
	if !ok {
		t.Fatalf("white king missing from projection")
	}
	if wk.Row != 0 || wk.Col != 4 || !wk.Enabled || wk.Z != 0 || wk.Tag != nil {
		t.Errorf("white king record: %+v", wk)
	}
	if bp, ok := pieces["bP1"]; !ok || bp.Row != 6 {
		t.Errorf("black pawn record: %+v (present=%v)", bp, ok)
	}
}
