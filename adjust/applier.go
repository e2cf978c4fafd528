// Package adjust rewrites the adjusted ledger mirror: every raw bar scaled
// by the corporate-action factors that post-date it.
package adjust

import (
	"fmt"
	"log"
	"slices"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/nsetools/bhavledger"
	"github.com/nsetools/bhavledger/ledger"
)

// Applier regenerates per-symbol adjusted ledgers from the raw store and a
// factor set. Adjusted files are always rebuilt from raw, never patched in
// place, so a re-run with unchanged inputs reproduces the bytes exactly.
type Applier struct {
	Raw      *ledger.Store
	Adjusted *ledger.Store

	// FactorPath, when set, lets the applier skip symbols whose adjusted
	// file is already newer than both the raw ledger and the factor file.
	// Force disables that check.
	FactorPath string
	Force      bool
}

// Run rewrites the adjusted ledger for every symbol in the raw store.
// Symbols without factors are copied through unchanged so the adjusted
// folder stays a complete mirror of the raw universe. One symbol's failure
// never stops the rest.
func (a *Applier) Run(factors []bhavledger.AdjustmentFactor, summary *bhavledger.RunSummary) error {
	res := summary.Stage("adjust")

	bySymbol := make(map[string][]bhavledger.AdjustmentFactor)
	for _, f := range factors {
		bySymbol[f.Symbol] = append(bySymbol[f.Symbol], f)
	}
	for _, fs := range bySymbol {
		slices.SortStableFunc(fs, func(x, y bhavledger.AdjustmentFactor) int {
			return x.ExDate.Compare(y.ExDate)
		})
	}

	symbols, err := a.Raw.Symbols()
	if err != nil {
		return err
	}

	adjusted := 0
	for _, symbol := range symbols {
		if !a.Force && a.FactorPath != "" &&
			Fresh(a.Adjusted.Path(symbol), a.Raw.Path(symbol), a.FactorPath) {
			res.Skipped++
			continue
		}

		bars, err := a.Raw.ReadAll(symbol)
		if err != nil {
			res.Failed++
			summary.Problem("adjust %s: %v", symbol, err)
			continue
		}
		out := ApplyFactors(bars, bySymbol[symbol])
		if err := a.Adjusted.Rewrite(symbol, out); err != nil {
			res.Failed++
			summary.Problem("adjust %s: %v", symbol, err)
			continue
		}
		res.Updated++
		if len(bySymbol[symbol]) > 0 {
			adjusted++
		}
	}

	log.Printf("adjust symbols=%d adjusted=%d skipped=%d failed=%d", len(symbols), adjusted, res.Skipped, res.Failed)
	return nil
}

// ApplyFactors scales each bar by the product of every factor whose
// ex-date is strictly after the bar's date: a bar predating two splits
// carries both multipliers, a bar after the last ex-date is untouched.
// Prices are rounded to 2 decimals after scaling; quantity columns are
// divided by the same multiplier. Bars with an effective multiplier of 1
// pass through cell-for-cell.
func ApplyFactors(bars []bhavledger.Bar, factors []bhavledger.AdjustmentFactor) []bhavledger.Bar {
	out := make([]bhavledger.Bar, 0, len(bars))
	for _, b := range bars {
		m := 1.0
		for _, f := range factors {
			if f.ExDate.After(b.Date) {
				m *= f.PriceMultiplier
			}
		}
		if m == 1.0 {
			out = append(out, b)
			continue
		}
		b.Open = scalePrice(b.Open, m)
		b.High = scalePrice(b.High, m)
		b.Low = scalePrice(b.Low, m)
		b.Close = scalePrice(b.Close, m)
		b.Qty = scaleQty(b.Qty, m)
		b.DelivQty = scaleQty(b.DelivQty, m)
		out = append(out, b)
	}
	return out
}

// scalePrice multiplies a price cell, rounding to 2 decimals. Cells that
// do not parse (empty, "-") pass through unchanged.
func scalePrice(cell string, m float64) string {
	v, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		return cell
	}
	return decimal.NewFromFloat(v * m).Round(2).String()
}

// scaleQty divides a quantity cell by the price multiplier (a split that
// shrinks prices grows the share count). The division happens in floating
// point; integer division would truncate.
func scaleQty(cell string, m float64) string {
	v, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		return cell
	}
	return strconv.FormatFloat(v/m, 'f', -1, 64)
}

// NewApplier wires an applier between a raw and an adjusted store.
func NewApplier(raw, adjusted *ledger.Store) (*Applier, error) {
	if raw.Dir == adjusted.Dir {
		return nil, fmt.Errorf("raw and adjusted stores must differ, both are %q", raw.Dir)
	}
	return &Applier{Raw: raw, Adjusted: adjusted}, nil
}
