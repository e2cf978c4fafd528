package ledger

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/nsetools/bhavledger"
	"github.com/nsetools/bhavledger/date"
)

func TestMergeKeepsLaterSourcedRow(t *testing.T) {
	s := NewStore(t.TempDir())

	// Old symbol holds one day; new symbol disagrees on it and adds one.
	if _, err := s.Append("OLDCO", []bhavledger.Bar{bar("OLDCO", "2019-01-01", "10")}); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Append("NEWCO", []bhavledger.Bar{
		bar("NEWCO", "2019-01-01", "11"),
		bar("NEWCO", "2020-01-01", "12"),
	}); err != nil {
		t.Fatal(err)
	}

	if err := s.Merge("OLDCO", "NEWCO"); err != nil {
		t.Fatalf("Merge() error: %v", err)
	}

	bars, err := s.ReadAll("NEWCO")
	if err != nil {
		t.Fatal(err)
	}
	if len(bars) != 2 {
		t.Fatalf("merged ledger len = %d want 2", len(bars))
	}
	if bars[0].Date != date.MustParse("2019-01-01") || bars[0].Close != "11" {
		t.Errorf("bars[0] = %v close %q, want 2019-01-01 close 11 (new row wins)", bars[0].Date, bars[0].Close)
	}
	if bars[1].Date != date.MustParse("2020-01-01") || bars[1].Close != "12" {
		t.Errorf("bars[1] = %v close %q, want 2020-01-01 close 12", bars[1].Date, bars[1].Close)
	}

	// The old file must survive as a safety net.
	if _, err := os.Stat(s.Path("OLDCO")); err != nil {
		t.Errorf("old ledger file was removed: %v", err)
	}
}

func TestMergeIntoMissingTarget(t *testing.T) {
	s := NewStore(t.TempDir())
	if _, err := s.Append("OLDCO", []bhavledger.Bar{
		bar("OLDCO", "2018-06-01", "5"),
		bar("OLDCO", "2018-06-02", "6"),
	}); err != nil {
		t.Fatal(err)
	}

	if err := s.Merge("OLDCO", "NEWCO"); err != nil {
		t.Fatalf("Merge() error: %v", err)
	}
	bars, err := s.ReadAll("NEWCO")
	if err != nil {
		t.Fatal(err)
	}
	if len(bars) != 2 {
		t.Errorf("copied ledger len = %d want 2", len(bars))
	}
}

func TestMergeMissingSourceIsNoop(t *testing.T) {
	s := NewStore(t.TempDir())
	if err := s.Merge("GHOST", "NEWCO"); err != nil {
		t.Fatalf("Merge() with missing source: %v", err)
	}
	if _, err := os.Stat(s.Path("NEWCO")); !os.IsNotExist(err) {
		t.Error("Merge() with missing source created a target file")
	}
}

func TestMigrate(t *testing.T) {
	rawDir := t.TempDir()
	adjDir := t.TempDir()
	raw := NewStore(rawDir)
	if _, err := raw.Append("OLDCO", []bhavledger.Bar{bar("OLDCO", "2019-01-01", "10")}); err != nil {
		t.Fatal(err)
	}

	mapPath := filepath.Join(t.TempDir(), "symbol_change_map.json")
	data, _ := json.Marshal(map[string]string{"OLDCO": "NEWCO"})
	if err := os.WriteFile(mapPath, data, 0o644); err != nil {
		t.Fatal(err)
	}

	mapping, err := LoadSymbolMap(mapPath)
	if err != nil {
		t.Fatalf("LoadSymbolMap() error: %v", err)
	}
	// The adjusted folder holds no file for the symbol; migration must
	// not invent one there, only the raw folder changes.
	if err := Migrate(mapping, rawDir, adjDir); err != nil {
		t.Fatalf("Migrate() error: %v", err)
	}

	if _, err := os.Stat(raw.Path("NEWCO")); err != nil {
		t.Errorf("raw NEWCO ledger missing after migration: %v", err)
	}
	if _, err := os.Stat(NewStore(adjDir).Path("NEWCO")); !os.IsNotExist(err) {
		t.Error("adjusted NEWCO ledger created from nothing")
	}
}
