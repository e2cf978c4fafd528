// Package bhavledger maintains corporate-action-adjusted daily price
// history for a universe of exchange symbols, built incrementally from
// market-wide daily bhavcopy files.
//
// The root package holds the shared value types. The pipeline stages live
// in the ledger, ingest, actions and adjust packages, and the command line
// surface in cmd.
package bhavledger

import (
	"fmt"
	"strconv"

	"github.com/nsetools/bhavledger/date"
)

// Columns is the per-symbol ledger schema, in file order. The header is
// written once when a ledger file is created and never rewritten.
var Columns = []string{
	"date",
	"open_price", "high_price", "low_price", "close_price",
	"last_price", "prev_close", "avg_price",
	"ttl_trd_qnty", "turnover_lacs", "no_of_trades", "deliv_qty", "deliv_per",
}

// Bar is one trading day's record for one symbol.
//
// Numeric cells are kept as the strings found in the source file: daily
// files across vintages disagree on which optional columns they carry, and
// a missing cell must survive a round trip as an empty cell rather than
// become a zero. Stages that need numbers parse the cells they touch.
type Bar struct {
	Symbol string // not persisted inside the per-symbol file
	Date   date.Date

	Open, High, Low, Close string
	Last, PrevClose, Avg   string
	Qty, Turnover, Trades  string
	DelivQty, DelivPercent string
}

// Record returns the CSV cells for the bar, matching Columns.
func (b Bar) Record() []string {
	return []string{
		b.Date.String(),
		b.Open, b.High, b.Low, b.Close,
		b.Last, b.PrevClose, b.Avg,
		b.Qty, b.Turnover, b.Trades, b.DelivQty, b.DelivPercent,
	}
}

// BarFromRecord parses one ledger row. Records shorter than the schema are
// padded with empty cells, older files simply carried fewer columns.
func BarFromRecord(symbol string, rec []string) (Bar, error) {
	if len(rec) == 0 {
		return Bar{}, fmt.Errorf("empty record")
	}
	on, err := date.Parse(rec[0])
	if err != nil {
		return Bar{}, fmt.Errorf("ledger row for %q: %w", symbol, err)
	}
	cells := make([]string, len(Columns))
	copy(cells, rec)
	return Bar{
		Symbol: symbol,
		Date:   on,
		Open:   cells[1], High: cells[2], Low: cells[3], Close: cells[4],
		Last: cells[5], PrevClose: cells[6], Avg: cells[7],
		Qty: cells[8], Turnover: cells[9], Trades: cells[10],
		DelivQty: cells[11], DelivPercent: cells[12],
	}, nil
}

// CloseValue parses the close price cell.
func (b Bar) CloseValue() (float64, error) {
	v, err := strconv.ParseFloat(b.Close, 64)
	if err != nil {
		return 0, fmt.Errorf("close price for %s on %s: %w", b.Symbol, b.Date, err)
	}
	return v, nil
}
