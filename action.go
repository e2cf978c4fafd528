package bhavledger

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/nsetools/bhavledger/date"
)

// ActionType identifies the kind of corporate action behind an event.
type ActionType string

const (
	Split    ActionType = "SPLIT"
	Bonus    ActionType = "BONUS"
	Rights   ActionType = "RIGHTS"
	Demerger ActionType = "DEMERGER"
)

// ParseActionType reads an action type from its persisted form.
func ParseActionType(s string) (ActionType, error) {
	switch t := ActionType(strings.ToUpper(strings.TrimSpace(s))); t {
	case Split, Bonus, Rights, Demerger:
		return t, nil
	default:
		return "", fmt.Errorf("unknown action type %q", s)
	}
}

// Ratio is a corporate action share ratio "A:B". The meaning of each side
// depends on the action type (see the actions package).
type Ratio struct {
	A, B float64
}

// ParseRatio parses a ratio string like "1:10".
func ParseRatio(s string) (Ratio, error) {
	a, b, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return Ratio{}, fmt.Errorf("invalid ratio %q: want \"A:B\"", s)
	}
	fa, err := strconv.ParseFloat(strings.TrimSpace(a), 64)
	if err != nil {
		return Ratio{}, fmt.Errorf("invalid ratio %q: %w", s, err)
	}
	fb, err := strconv.ParseFloat(strings.TrimSpace(b), 64)
	if err != nil {
		return Ratio{}, fmt.Errorf("invalid ratio %q: %w", s, err)
	}
	if fa <= 0 || fb <= 0 {
		return Ratio{}, fmt.Errorf("invalid ratio %q: both sides must be positive", s)
	}
	return Ratio{A: fa, B: fb}, nil
}

// String formats the ratio in its persisted form, trimming insignificant
// decimals ("1:10", not "1:10.0").
func (r Ratio) String() string {
	return fmt.Sprintf("%g:%g", r.A, r.B)
}

// ActionEvent is one corporate action parsed from a disclosure, keyed by
// symbol and ex-date.
type ActionEvent struct {
	Symbol     string
	ExDate     date.Date
	Type       ActionType
	Ratio      string
	IssuePrice float64 // RIGHTS only
	HasIssue   bool
	Remarks    string
}

// AdjustmentFactor is the price multiplier derived from one ActionEvent.
// Bars dated strictly before ExDate are scaled by PriceMultiplier.
type AdjustmentFactor struct {
	Symbol          string
	Type            ActionType
	ExDate          date.Date
	Ratio           string
	PriceMultiplier float64
}
