// Package ingest turns market-wide daily bhavcopy files into per-symbol
// ledger appends.
package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/nsetools/bhavledger"
	"github.com/nsetools/bhavledger/date"
)

// ErrMissingColumns reports a daily file without the columns the pipeline
// cannot work without. Such a file is skipped, never ingested partially.
var ErrMissingColumns = errors.New("daily file is missing required columns")

// headerAliases maps the header spellings seen across bhavcopy vintages to
// the canonical ledger column names. Headers are upper-cased and trimmed
// before lookup.
var headerAliases = map[string]string{
	"SYMBOL": "symbol",
	"SERIES": "series",

	"DATE1":     "date",
	"TIMESTAMP": "date",

	"OPEN_PRICE":  "open_price",
	"OPEN":        "open_price",
	"HIGH_PRICE":  "high_price",
	"HIGH":        "high_price",
	"LOW_PRICE":   "low_price",
	"LOW":         "low_price",
	"CLOSE_PRICE": "close_price",
	"CLOSE":       "close_price",
	"PREV_CLOSE":  "prev_close",
	"PREVCLOSE":   "prev_close",
	"LAST_PRICE":  "last_price",
	"LAST":        "last_price",
	"AVG_PRICE":   "avg_price",
	"AVG":         "avg_price",

	"TTL_TRD_QNTY":  "ttl_trd_qnty",
	"TOTTRDQTY":     "ttl_trd_qnty",
	"TURNOVER_LACS": "turnover_lacs",
	"TOTTRDVAL":     "turnover_lacs",
	"NO_OF_TRADES":  "no_of_trades",
	"TOTALTRADES":   "no_of_trades",
	"DELIV_QTY":     "deliv_qty",
	"DELIV_PER":     "deliv_per",
}

// DailyFile is one market-wide file and the trading date embedded in its
// name (bhavcopy_20210104.csv).
type DailyFile struct {
	Date date.Date
	Path string
}

// FindDailyFiles walks dir recursively and returns every bhavcopy file in
// trading date order. Files whose name does not carry a parseable date are
// ignored.
func FindDailyFiles(dir string) ([]DailyFile, error) {
	var files []DailyFile
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		name := d.Name()
		if !strings.HasPrefix(name, "bhavcopy_") || !strings.HasSuffix(name, ".csv") {
			return nil
		}
		stamp := strings.TrimSuffix(strings.TrimPrefix(name, "bhavcopy_"), ".csv")
		on, perr := date.Parse(stamp)
		if perr != nil {
			return nil
		}
		files = append(files, DailyFile{Date: on, Path: path})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("cannot scan daily folder %q: %w", dir, err)
	}
	slices.SortFunc(files, func(a, b DailyFile) int { return a.Date.Compare(b.Date) })
	return files, nil
}

// ReadDaily parses one daily file into bars for the tracked symbols.
// Only equity-series rows ("EQ") are kept when the file carries a series
// column. Rows with an unparseable date are skipped with a log line.
func ReadDaily(path string, universe bhavledger.Universe) ([]bhavledger.Bar, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open daily file %q: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("cannot read daily file %q: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("daily file %q: %w", path, ErrMissingColumns)
	}

	// Column index per canonical name. First spelling wins.
	cols := make(map[string]int)
	for i, h := range records[0] {
		if canonical, ok := headerAliases[strings.ToUpper(strings.TrimSpace(h))]; ok {
			if _, dup := cols[canonical]; !dup {
				cols[canonical] = i
			}
		}
	}
	if _, ok := cols["symbol"]; !ok {
		return nil, fmt.Errorf("daily file %q: %w", path, ErrMissingColumns)
	}
	if _, ok := cols["date"]; !ok {
		return nil, fmt.Errorf("daily file %q: %w", path, ErrMissingColumns)
	}
	_, hasSeries := cols["series"]

	cell := func(rec []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	var bars []bhavledger.Bar
	for n, rec := range records[1:] {
		symbol := cell(rec, "symbol")
		if !universe.Has(symbol) {
			continue
		}
		if hasSeries && cell(rec, "series") != "EQ" {
			continue
		}
		on, err := date.Parse(cell(rec, "date"))
		if err != nil {
			log.Printf("skip-row file=%q line=%d symbol=%q: %v", path, n+2, symbol, err)
			continue
		}
		bars = append(bars, bhavledger.Bar{
			Symbol:       symbol,
			Date:         on,
			Open:         cell(rec, "open_price"),
			High:         cell(rec, "high_price"),
			Low:          cell(rec, "low_price"),
			Close:        cell(rec, "close_price"),
			Last:         cell(rec, "last_price"),
			PrevClose:    cell(rec, "prev_close"),
			Avg:          cell(rec, "avg_price"),
			Qty:          cell(rec, "ttl_trd_qnty"),
			Turnover:     cell(rec, "turnover_lacs"),
			Trades:       cell(rec, "no_of_trades"),
			DelivQty:     cell(rec, "deliv_qty"),
			DelivPercent: cell(rec, "deliv_per"),
		})
	}
	return bars, nil
}
