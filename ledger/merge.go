package ledger

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"slices"

	"github.com/nsetools/bhavledger"
)

// Merge folds the old symbol's ledger into the new symbol's, for use when
// the exchange renames a symbol. Rows are deduplicated by date with the
// new symbol's row winning, then sorted ascending and rewritten under the
// new name. The old file is kept untouched to guard against mapping errors.
//
// When only the old file exists this amounts to a copy; when neither
// exists it is a no-op.
func (s *Store) Merge(oldSymbol, newSymbol string) error {
	if _, err := os.Stat(s.Path(oldSymbol)); os.IsNotExist(err) {
		return nil
	}

	oldBars, err := s.ReadAll(oldSymbol)
	if err != nil {
		return fmt.Errorf("merge %q -> %q: %w", oldSymbol, newSymbol, err)
	}

	var newBars []bhavledger.Bar
	if _, err := os.Stat(s.Path(newSymbol)); err == nil {
		newBars, err = s.ReadAll(newSymbol)
		if err != nil {
			return fmt.Errorf("merge %q -> %q: %w", oldSymbol, newSymbol, err)
		}
	}

	// Old rows first so that the later-sourced (new symbol) row wins on a
	// date collision.
	merged := make([]bhavledger.Bar, 0, len(oldBars)+len(newBars))
	seen := make(map[string]int)
	for _, b := range append(oldBars, newBars...) {
		b.Symbol = newSymbol
		if i, ok := seen[b.Date.String()]; ok {
			merged[i] = b
			continue
		}
		seen[b.Date.String()] = len(merged)
		merged = append(merged, b)
	}
	slices.SortStableFunc(merged, func(a, b bhavledger.Bar) int { return a.Date.Compare(b.Date) })

	return s.Rewrite(newSymbol, merged)
}

// Rewrite replaces a symbol's ledger file wholesale, header included.
func (s *Store) Rewrite(symbol string, bars []bhavledger.Bar) error {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return fmt.Errorf("cannot create ledger folder %q: %w", s.Dir, err)
	}
	path := s.Path(symbol)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("cannot create ledger %q: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(bhavledger.Columns); err != nil {
		return fmt.Errorf("cannot write header to %q: %w", path, err)
	}
	for _, b := range bars {
		if err := w.Write(b.Record()); err != nil {
			return fmt.Errorf("cannot write bar to %q: %w", path, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("cannot flush ledger %q: %w", path, err)
	}
	return nil
}

// LoadSymbolMap reads the old->new symbol rename map from a JSON file.
func LoadSymbolMap(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read symbol map %q: %w", path, err)
	}
	mapping := make(map[string]string)
	if err := json.Unmarshal(data, &mapping); err != nil {
		return nil, fmt.Errorf("cannot parse symbol map %q: %w", path, err)
	}
	return mapping, nil
}

// Migrate applies a symbol rename map across several ledger folders
// (typically the raw and the adjusted stores). Folders that do not exist
// are skipped with a log line.
func Migrate(mapping map[string]string, dirs ...string) error {
	oldSymbols := make([]string, 0, len(mapping))
	for old := range mapping {
		oldSymbols = append(oldSymbols, old)
	}
	slices.Sort(oldSymbols)

	for _, old := range oldSymbols {
		for _, dir := range dirs {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				log.Printf("migrate-skip dir=%q: does not exist", dir)
				continue
			}
			s := NewStore(dir)
			if err := s.Merge(old, mapping[old]); err != nil {
				return err
			}
			log.Printf("migrate symbol=%q new=%q dir=%q", old, mapping[old], dir)
		}
	}
	return nil
}
