package actions

import (
	"log"

	"github.com/nsetools/bhavledger"
	"github.com/nsetools/bhavledger/date"
)

// PriceSource supplies the cum-rights reference price: the last raw close
// strictly before a given day. The raw ledger store satisfies it.
type PriceSource interface {
	CloseBefore(symbol string, day date.Date) (price float64, on date.Date, ok bool, err error)
}

// BuildFactors derives one AdjustmentFactor per event. Each factor is
// computed independently; composition across events happens later in the
// applier. A RIGHTS event with no usable reference price is excluded from
// the set and logged as a data gap, never an error.
func BuildFactors(events []bhavledger.ActionEvent, prices PriceSource, summary *bhavledger.RunSummary) []bhavledger.AdjustmentFactor {
	res := summary.Stage("factors")

	factors := make([]bhavledger.AdjustmentFactor, 0, len(events))
	for _, ev := range events {
		adj, ok := compute(ev, prices, summary)
		if !ok {
			res.Skipped++
			continue
		}
		factors = append(factors, bhavledger.AdjustmentFactor{
			Symbol:          ev.Symbol,
			Type:            ev.Type,
			ExDate:          ev.ExDate,
			Ratio:           ev.Ratio,
			PriceMultiplier: adj.PriceMultiplier,
		})
		res.Updated++
	}
	return factors
}

func compute(ev bhavledger.ActionEvent, prices PriceSource, summary *bhavledger.RunSummary) (Adjustment, bool) {
	switch ev.Type {
	case bhavledger.Split:
		adj, err := CalculateSplit(ev.Ratio)
		if err != nil {
			summary.Problem("factor %s %s: %v", ev.Symbol, ev.ExDate, err)
			return Adjustment{}, false
		}
		return adj, true

	case bhavledger.Bonus:
		adj, err := CalculateBonus(ev.Ratio)
		if err != nil {
			summary.Problem("factor %s %s: %v", ev.Symbol, ev.ExDate, err)
			return Adjustment{}, false
		}
		return adj, true

	case bhavledger.Rights:
		if !ev.HasIssue {
			log.Printf("skip-rights symbol=%q ex=%s: no issue price", ev.Symbol, ev.ExDate)
			return Adjustment{}, false
		}
		market, on, ok, err := prices.CloseBefore(ev.Symbol, ev.ExDate)
		if err != nil {
			summary.Problem("factor %s %s: %v", ev.Symbol, ev.ExDate, err)
			return Adjustment{}, false
		}
		if !ok {
			// No raw bar before the ex-date: a data-availability gap, not
			// a failure.
			log.Printf("skip-rights symbol=%q ex=%s: no close before ex-date", ev.Symbol, ev.ExDate)
			return Adjustment{}, false
		}
		log.Printf("cum-rights symbol=%q ex=%s close=%v on=%s", ev.Symbol, ev.ExDate, market, on)
		adj, err := CalculateRights(ev.Ratio, ev.IssuePrice, market)
		if err != nil {
			summary.Problem("factor %s %s: %v", ev.Symbol, ev.ExDate, err)
			return Adjustment{}, false
		}
		return adj, true

	case bhavledger.Demerger:
		adj, err := CalculateDemerger(ev.Ratio)
		if err != nil {
			summary.Problem("factor %s %s: %v", ev.Symbol, ev.ExDate, err)
			return Adjustment{}, false
		}
		return adj, true

	default:
		summary.Problem("factor %s %s: unknown action type %q", ev.Symbol, ev.ExDate, ev.Type)
		return Adjustment{}, false
	}
}
