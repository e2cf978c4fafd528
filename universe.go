package bhavledger

import (
	"encoding/csv"
	"fmt"
	"os"
	"slices"
	"strings"
)

// Universe is the set of tracked symbols, loaded from the master list.
type Universe map[string]struct{}

// Has reports whether the symbol is tracked.
func (u Universe) Has(symbol string) bool {
	_, ok := u[symbol]
	return ok
}

// Symbols returns the tracked symbols in alphabetical order.
func (u Universe) Symbols() []string {
	symbols := make([]string, 0, len(u))
	for s := range u {
		symbols = append(symbols, s)
	}
	slices.Sort(symbols)
	return symbols
}

// LoadUniverse reads the master symbol list. The file is a CSV with a
// "Symbol" column; lines starting with '#' are comments. The master list is
// the one input the pipeline cannot run without, so failures here are fatal
// to the caller.
func LoadUniverse(path string) (Universe, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open master list %q: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comment = '#'
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("cannot read master list %q: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("master list %q is empty", path)
	}

	col := -1
	for i, name := range records[0] {
		if strings.EqualFold(strings.TrimSpace(name), "symbol") {
			col = i
			break
		}
	}
	if col < 0 {
		return nil, fmt.Errorf("master list %q: missing %q column", path, "Symbol")
	}

	u := make(Universe, len(records)-1)
	for _, rec := range records[1:] {
		if col >= len(rec) {
			continue
		}
		if symbol := strings.TrimSpace(rec[col]); symbol != "" {
			u[symbol] = struct{}{}
		}
	}
	return u, nil
}
