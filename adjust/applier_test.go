package adjust

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nsetools/bhavledger"
	"github.com/nsetools/bhavledger/date"
	"github.com/nsetools/bhavledger/ledger"
)

func bar(symbol, day, close string) bhavledger.Bar {
	return bhavledger.Bar{
		Symbol: symbol,
		Date:   date.MustParse(day),
		Open:   close,
		High:   close,
		Low:    close,
		Close:  close,
		Qty:    "1000",
	}
}

func factor(symbol, exDate string, m float64) bhavledger.AdjustmentFactor {
	return bhavledger.AdjustmentFactor{
		Symbol: symbol, Type: bhavledger.Split,
		ExDate: date.MustParse(exDate), Ratio: "1:2", PriceMultiplier: m,
	}
}

func TestApplyFactorsCascade(t *testing.T) {
	bars := []bhavledger.Bar{
		bar("X", "2019-01-01", "100"),
		bar("X", "2020-06-01", "100"),
		bar("X", "2020-12-01", "100"),
	}
	factors := []bhavledger.AdjustmentFactor{
		factor("X", "2020-03-01", 0.5),
		factor("X", "2020-09-01", 0.1),
	}

	out := ApplyFactors(bars, factors)
	if len(out) != 3 {
		t.Fatalf("ApplyFactors() len = %d want 3", len(out))
	}
	// Oldest bar predates both ex-dates and carries the product.
	if out[0].Close != "5" {
		t.Errorf("out[0].Close = %q want 5 (100 * 0.5 * 0.1)", out[0].Close)
	}
	if out[0].Qty != "20000" {
		t.Errorf("out[0].Qty = %q want 20000 (1000 / 0.05)", out[0].Qty)
	}
	// Middle bar only predates the second ex-date.
	if out[1].Close != "10" {
		t.Errorf("out[1].Close = %q want 10", out[1].Close)
	}
	// Latest bar postdates every ex-date and passes through untouched.
	if out[2] != bars[2] {
		t.Errorf("out[2] = %+v want unchanged %+v", out[2], bars[2])
	}
}

func TestApplyFactorsExDateIsStrict(t *testing.T) {
	// A bar dated exactly on the ex-date already trades ex and is untouched.
	bars := []bhavledger.Bar{bar("X", "2020-03-01", "100")}
	out := ApplyFactors(bars, []bhavledger.AdjustmentFactor{factor("X", "2020-03-01", 0.5)})
	if out[0] != bars[0] {
		t.Errorf("ex-date bar was scaled: %+v", out[0])
	}
}

func TestApplyFactorsRounding(t *testing.T) {
	bars := []bhavledger.Bar{bar("X", "2020-01-01", "100.01")}
	out := ApplyFactors(bars, []bhavledger.AdjustmentFactor{factor("X", "2020-03-01", 0.333333)})
	if out[0].Close != "33.34" {
		t.Errorf("Close = %q want 33.34 (scaled price rounds to 2 decimals)", out[0].Close)
	}
}

func TestApplyFactorsKeepsUnparsableCells(t *testing.T) {
	b := bar("X", "2020-01-01", "100")
	b.Low = "-"
	b.DelivQty = ""
	out := ApplyFactors([]bhavledger.Bar{b}, []bhavledger.AdjustmentFactor{factor("X", "2020-03-01", 0.5)})
	if out[0].Low != "-" || out[0].DelivQty != "" {
		t.Errorf("unparsable cells changed: low %q deliv %q", out[0].Low, out[0].DelivQty)
	}
	if out[0].Close != "50" {
		t.Errorf("Close = %q want 50", out[0].Close)
	}
}

func newTestApplier(t *testing.T) (*Applier, *ledger.Store, *ledger.Store) {
	t.Helper()
	raw := ledger.NewStore(t.TempDir())
	adjusted := ledger.NewStore(t.TempDir())
	a, err := NewApplier(raw, adjusted)
	if err != nil {
		t.Fatal(err)
	}
	return a, raw, adjusted
}

func TestApplierRun(t *testing.T) {
	a, raw, adjusted := newTestApplier(t)
	if _, err := raw.Append("RELIANCE", []bhavledger.Bar{
		bar("RELIANCE", "2020-01-01", "100"),
		bar("RELIANCE", "2020-06-01", "50"),
	}); err != nil {
		t.Fatal(err)
	}

	factors := []bhavledger.AdjustmentFactor{factor("RELIANCE", "2020-03-01", 0.5)}
	if err := a.Run(factors, bhavledger.NewRunSummary()); err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	bars, err := adjusted.ReadAll("RELIANCE")
	if err != nil {
		t.Fatal(err)
	}
	if len(bars) != 2 {
		t.Fatalf("adjusted ledger len = %d want 2", len(bars))
	}
	// Pre-split close halves, post-split close stays: a flat adjusted series.
	if bars[0].Close != "50" || bars[1].Close != "50" {
		t.Errorf("adjusted closes = %q, %q want 50, 50", bars[0].Close, bars[1].Close)
	}
}

func TestApplierCopiesThroughWithoutFactors(t *testing.T) {
	a, raw, adjusted := newTestApplier(t)
	if _, err := raw.Append("TCS", []bhavledger.Bar{bar("TCS", "2020-01-01", "2500.5")}); err != nil {
		t.Fatal(err)
	}
	if err := a.Run(nil, bhavledger.NewRunSummary()); err != nil {
		t.Fatal(err)
	}

	rawBytes, err := os.ReadFile(raw.Path("TCS"))
	if err != nil {
		t.Fatal(err)
	}
	adjBytes, err := os.ReadFile(adjusted.Path("TCS"))
	if err != nil {
		t.Fatal(err)
	}
	if string(rawBytes) != string(adjBytes) {
		t.Error("factor-less symbol not mirrored byte for byte")
	}
}

func TestApplierRerunIsByteIdentical(t *testing.T) {
	a, raw, adjusted := newTestApplier(t)
	a.Force = true
	if _, err := raw.Append("RELIANCE", []bhavledger.Bar{
		bar("RELIANCE", "2019-01-01", "333.33"),
		bar("RELIANCE", "2021-01-01", "111.11"),
	}); err != nil {
		t.Fatal(err)
	}
	factors := []bhavledger.AdjustmentFactor{factor("RELIANCE", "2020-03-01", 0.333333)}

	if err := a.Run(factors, bhavledger.NewRunSummary()); err != nil {
		t.Fatal(err)
	}
	first, err := os.ReadFile(adjusted.Path("RELIANCE"))
	if err != nil {
		t.Fatal(err)
	}
	if err := a.Run(factors, bhavledger.NewRunSummary()); err != nil {
		t.Fatal(err)
	}
	second, err := os.ReadFile(adjusted.Path("RELIANCE"))
	if err != nil {
		t.Fatal(err)
	}
	if string(first) != string(second) {
		t.Error("second forced run produced different bytes")
	}
}

func TestApplierSkipsFreshSymbols(t *testing.T) {
	a, raw, _ := newTestApplier(t)
	factorPath := filepath.Join(t.TempDir(), "factors.csv")
	if err := os.WriteFile(factorPath, []byte("symbol\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	a.FactorPath = factorPath
	if _, err := raw.Append("TCS", []bhavledger.Bar{bar("TCS", "2020-01-01", "2500")}); err != nil {
		t.Fatal(err)
	}

	summary := bhavledger.NewRunSummary()
	if err := a.Run(nil, summary); err != nil {
		t.Fatal(err)
	}
	if res := summary.Stage("adjust"); res.Updated != 1 {
		t.Fatalf("first run Updated = %d want 1", res.Updated)
	}

	// Age the inputs so the freshly written output is unambiguously newer.
	old := time.Now().Add(-time.Hour)
	for _, p := range []string{raw.Path("TCS"), factorPath} {
		if err := os.Chtimes(p, old, old); err != nil {
			t.Fatal(err)
		}
	}

	summary = bhavledger.NewRunSummary()
	if err := a.Run(nil, summary); err != nil {
		t.Fatal(err)
	}
	if res := summary.Stage("adjust"); res.Skipped != 1 || res.Updated != 0 {
		t.Errorf("second run updated=%d skipped=%d, want a skip", res.Updated, res.Skipped)
	}
}

func TestNewApplierRejectsSameFolder(t *testing.T) {
	dir := t.TempDir()
	if _, err := NewApplier(ledger.NewStore(dir), ledger.NewStore(dir)); err == nil {
		t.Error("NewApplier() with one folder for both stores: want error")
	}
}
