// Package actions extracts corporate action events from free-text
// disclosures and derives the price adjustment factor for each event.
package actions

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/nsetools/bhavledger"
)

// Adjustment is the outcome of the factor engine for one event.
// PriceMultiplier scales historical prices so they stay comparable with
// post-action prices; QtyMultiplier is the matching holdings scale.
type Adjustment struct {
	Type            bhavledger.ActionType
	PriceMultiplier float64
	QtyMultiplier   float64
	TERP            float64 // RIGHTS only
}

// round6 rounds a multiplier to 6 decimal digits so persisted factors are
// reproducible across runs.
func round6(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(6).Float64()
	return f
}

// CalculateSplit computes the factors for a stock split. The ratio is
// "old:new" share count: a 1:10 split (face value 10 to 1) turns one share
// into ten, so historical prices shrink to a tenth.
func CalculateSplit(ratio string) (Adjustment, error) {
	r, err := bhavledger.ParseRatio(ratio)
	if err != nil {
		return Adjustment{}, fmt.Errorf("split: %w", err)
	}
	return Adjustment{
		Type:            bhavledger.Split,
		PriceMultiplier: round6(r.A / r.B),
		QtyMultiplier:   round6(r.B / r.A),
	}, nil
}

// CalculateBonus computes the factors for a bonus issue. The ratio is
// "bonus:held": a 1:1 bonus doubles the share count, halving historical
// prices.
func CalculateBonus(ratio string) (Adjustment, error) {
	r, err := bhavledger.ParseRatio(ratio)
	if err != nil {
		return Adjustment{}, fmt.Errorf("bonus: %w", err)
	}
	bonus, held := r.A, r.B
	return Adjustment{
		Type:            bhavledger.Bonus,
		PriceMultiplier: round6(held / (held + bonus)),
		QtyMultiplier:   round6((held + bonus) / held),
	}, nil
}

// CalculateRights computes the factors for a rights issue. The ratio is
// "rights:held", issuePrice is the subscription price and marketPrice the
// cum-rights close (last raw close strictly before the ex-date).
//
//	TERP = (held*market + rights*issue) / (held + rights)
//	price multiplier = TERP / market
func CalculateRights(ratio string, issuePrice, marketPrice float64) (Adjustment, error) {
	r, err := bhavledger.ParseRatio(ratio)
	if err != nil {
		return Adjustment{}, fmt.Errorf("rights: %w", err)
	}
	if marketPrice <= 0 {
		return Adjustment{}, fmt.Errorf("rights: market price must be positive, got %v", marketPrice)
	}
	rights, held := r.A, r.B
	terp := (held*marketPrice + rights*issuePrice) / (held + rights)
	return Adjustment{
		Type:            bhavledger.Rights,
		PriceMultiplier: round6(terp / marketPrice),
		QtyMultiplier:   round6((held + rights) / held), // if fully subscribed
		TERP:            terp,
	}, nil
}

// CalculateDemerger returns the no-adjustment factor for a demerger.
// There is no universal demerger price formula, so historical prices are
// left untouched; only the cost basis splits, and that is handled outside
// the price pipeline.
func CalculateDemerger(ratio string) (Adjustment, error) {
	if _, err := bhavledger.ParseRatio(ratio); err != nil {
		return Adjustment{}, fmt.Errorf("demerger: %w", err)
	}
	return Adjustment{
		Type:            bhavledger.Demerger,
		PriceMultiplier: 1.0,
		QtyMultiplier:   1.0,
	}, nil
}
