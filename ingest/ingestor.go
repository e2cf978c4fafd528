package ingest

import (
	"errors"
	"fmt"
	"log"
	"slices"

	"github.com/nsetools/bhavledger"
	"github.com/nsetools/bhavledger/date"
	"github.com/nsetools/bhavledger/ledger"
)

// Result reports one ingestion run. The stage counts are per symbol;
// Files/FilesSkipped count the daily inputs.
type Result struct {
	bhavledger.StageResult
	Files        int
	FilesSkipped int
	Rows         int
}

// Ingestor appends daily bhavcopy rows to the per-symbol raw ledgers.
type Ingestor struct {
	Store    *ledger.Store
	Universe bhavledger.Universe
}

// Run processes every daily file in dir, in trading date order, buffering
// rows per symbol and performing one ledger append per symbol at the end.
// Files already covered by all symbols' last dates are skipped, so running
// twice over the same inputs is a no-op.
//
// A malformed daily file is skipped with a warning; a symbol whose ledger
// tail cannot be read is failed in isolation. Neither stops the run.
func (g *Ingestor) Run(dir string, summary *bhavledger.RunSummary) (Result, error) {
	var res Result

	files, err := FindDailyFiles(dir)
	if err != nil {
		return res, err
	}
	if len(files) == 0 {
		log.Printf("ingest dir=%q: no daily files", dir)
		return res, nil
	}

	// Resume point per symbol, read from each ledger tail.
	lastDates := make(map[string]date.Date, len(g.Universe))
	blocked := make(map[string]bool)
	globalMin := date.Date{}
	first := true
	for _, symbol := range g.Universe.Symbols() {
		last, err := g.Store.LastDate(symbol)
		if err != nil {
			if errors.Is(err, ledger.ErrUnreadableTail) {
				res.Failed++
				blocked[symbol] = true
				summary.Problem("ingest %s: %v", symbol, err)
				continue
			}
			return res, err
		}
		lastDates[symbol] = last
		if first || last.Before(globalMin) {
			globalMin = last
			first = false
		}
	}

	// Buffer fresh rows per symbol across all daily files, then append
	// once per symbol. This amortizes the ledger file opens over the whole
	// batch.
	buffer := make(map[string][]bhavledger.Bar)
	for _, df := range files {
		if !globalMin.IsZero() && !df.Date.After(globalMin) {
			res.FilesSkipped++
			continue
		}
		bars, err := ReadDaily(df.Path, g.Universe)
		if err != nil {
			log.Printf("skip-file file=%q: %v", df.Path, err)
			res.FilesSkipped++
			continue
		}
		res.Files++
		for _, b := range bars {
			if blocked[b.Symbol] {
				continue
			}
			if !b.Date.After(lastDates[b.Symbol]) {
				continue
			}
			buffer[b.Symbol] = append(buffer[b.Symbol], b)
			lastDates[b.Symbol] = b.Date
		}
	}

	symbols := make([]string, 0, len(buffer))
	for s := range buffer {
		symbols = append(symbols, s)
	}
	slices.Sort(symbols)

	for _, symbol := range symbols {
		n, err := g.Store.Append(symbol, buffer[symbol])
		if err != nil {
			res.Failed++
			summary.Problem("ingest %s: %v", symbol, err)
			continue
		}
		if n == 0 {
			res.Skipped++
			continue
		}
		res.Updated++
		res.Rows += n
	}
	// Tracked symbols that saw no fresh rows at all are up to date.
	res.Skipped += len(g.Universe) - len(symbols) - len(blocked)

	summary.Stage("ingest").Add(res.StageResult)
	log.Printf("ingest files=%d skipped=%d rows=%d symbols-updated=%d", res.Files, res.FilesSkipped, res.Rows, res.Updated)
	return res, nil
}

// NewIngestor wires an ingestor over a raw ledger store and the tracked
// universe.
func NewIngestor(store *ledger.Store, universe bhavledger.Universe) (*Ingestor, error) {
	if len(universe) == 0 {
		return nil, fmt.Errorf("empty symbol universe")
	}
	return &Ingestor{Store: store, Universe: universe}, nil
}
