// Package ledger implements the per-symbol append-only bar store.
//
// A store is a folder with one CSV file per symbol. Files grow only by
// appending rows dated after their current maximum date, so a ledger never
// holds two bars for the same day and re-running an ingestion is a no-op.
package ledger

import (
	"encoding/csv"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/nsetools/bhavledger"
	"github.com/nsetools/bhavledger/date"
)

// ErrUnreadableTail reports a ledger file whose last line cannot be parsed
// as a date even though the file clearly holds data. Appending blindly
// could duplicate history, so the symbol is left alone until inspected.
var ErrUnreadableTail = errors.New("ledger tail is unreadable")

// headerThreshold is the size below which a file is assumed to hold at
// most a header and may safely be treated as empty.
const headerThreshold = 100

// Store is a folder of per-symbol ledger files.
type Store struct {
	Dir string
}

// NewStore returns a store rooted at dir. The folder is created lazily on
// first append.
func NewStore(dir string) *Store { return &Store{Dir: dir} }

// Path returns the ledger file for a symbol.
func (s *Store) Path(symbol string) string {
	return filepath.Join(s.Dir, symbol+".csv")
}

// Symbols lists every symbol with a ledger file, in alphabetical order.
func (s *Store) Symbols() ([]string, error) {
	entries, err := os.ReadDir(s.Dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cannot scan ledger folder %q: %w", s.Dir, err)
	}
	var symbols []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".csv") {
			continue
		}
		symbols = append(symbols, strings.TrimSuffix(e.Name(), ".csv"))
	}
	slices.Sort(symbols)
	return symbols, nil
}

// LastDate returns the date of the symbol's most recent bar, reading only
// the tail of the file. A missing or header-only file yields the zero date.
func (s *Store) LastDate(symbol string) (date.Date, error) {
	path := s.Path(symbol)
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return date.Date{}, nil
	}
	if err != nil {
		return date.Date{}, fmt.Errorf("cannot open ledger %q: %w", path, err)
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return date.Date{}, fmt.Errorf("cannot stat ledger %q: %w", path, err)
	}

	line, err := lastLine(f, fi.Size())
	if err != nil {
		return date.Date{}, fmt.Errorf("cannot read tail of %q: %w", path, err)
	}

	cell, _, _ := strings.Cut(line, ",")
	cell = strings.TrimSpace(cell)
	if cell == "" || strings.EqualFold(cell, "date") {
		// Empty file or header only: nothing recorded yet.
		return date.Date{}, nil
	}
	last, err := date.Parse(cell)
	if err != nil {
		if fi.Size() < headerThreshold {
			return date.Date{}, nil
		}
		// Data is present but the tail makes no sense. Guessing a resume
		// point here risks duplicating history.
		return date.Date{}, fmt.Errorf("ledger %q: %w: %v", path, ErrUnreadableTail, err)
	}
	return last, nil
}

// Append writes the bars dated after the symbol's current last date, in
// order, and reports how many were written. Bars at or before the last
// date are skipped silently: that is the expected shape of a re-run.
// The file (and folder) is created with its header on first write.
func (s *Store) Append(symbol string, bars []bhavledger.Bar) (int, error) {
	last, err := s.LastDate(symbol)
	if err != nil {
		return 0, err
	}

	fresh := make([]bhavledger.Bar, 0, len(bars))
	for _, b := range bars {
		if !b.Date.After(last) {
			continue
		}
		fresh = append(fresh, b)
		last = b.Date
	}
	if len(fresh) == 0 {
		return 0, nil
	}

	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return 0, fmt.Errorf("cannot create ledger folder %q: %w", s.Dir, err)
	}

	path := s.Path(symbol)
	_, statErr := os.Stat(path)
	writeHeader := os.IsNotExist(statErr)

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return 0, fmt.Errorf("cannot open ledger %q: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if writeHeader {
		if err := w.Write(bhavledger.Columns); err != nil {
			return 0, fmt.Errorf("cannot write header to %q: %w", path, err)
		}
	}
	for _, b := range fresh {
		if err := w.Write(b.Record()); err != nil {
			return 0, fmt.Errorf("cannot write bar to %q: %w", path, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return 0, fmt.Errorf("cannot flush ledger %q: %w", path, err)
	}
	return len(fresh), nil
}

// ReadAll returns every bar of the symbol's ledger in chronological order.
// Malformed rows are skipped with a log line; they must never fail the
// symbol.
func (s *Store) ReadAll(symbol string) ([]bhavledger.Bar, error) {
	path := s.Path(symbol)
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open ledger %q: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("cannot read ledger %q: %w", path, err)
	}

	bars := make([]bhavledger.Bar, 0, len(records))
	for i, rec := range records {
		if len(rec) == 0 {
			continue
		}
		if i == 0 && strings.EqualFold(strings.TrimSpace(rec[0]), "date") {
			continue // header
		}
		b, err := bhavledger.BarFromRecord(symbol, rec)
		if err != nil {
			log.Printf("skip-row ledger=%q line=%d: %v", path, i+1, err)
			continue
		}
		bars = append(bars, b)
	}
	slices.SortStableFunc(bars, func(a, b bhavledger.Bar) int { return a.Date.Compare(b.Date) })
	return bars, nil
}

// CloseBefore returns the last close price strictly before the given date,
// used as the cum-rights reference price. ok is false when the ledger has
// no usable bar before that day.
func (s *Store) CloseBefore(symbol string, day date.Date) (price float64, on date.Date, ok bool, err error) {
	bars, err := s.ReadAll(symbol)
	if err != nil {
		return 0, date.Date{}, false, err
	}
	for i := len(bars) - 1; i >= 0; i-- {
		if !bars[i].Date.Before(day) {
			continue
		}
		v, err := strconv.ParseFloat(bars[i].Close, 64)
		if err != nil {
			continue
		}
		return v, bars[i].Date, true, nil
	}
	return 0, date.Date{}, false, nil
}
