package actions

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/nsetools/bhavledger"
	"github.com/nsetools/bhavledger/date"
)

// The two tabular artifacts of this stage: the parsed event master and the
// calculated factor file. Both are rewritten wholesale on every run since
// the disclosure corpus can always be re-fetched in full.

var masterColumns = []string{"symbol", "ex_date", "action_type", "ratio", "issue_price", "remarks"}
var factorColumns = []string{"symbol", "action_type", "ex_date", "ratio", "price_multiplier"}

// WriteMaster persists the parsed ActionEvent set.
func WriteMaster(path string, events []bhavledger.ActionEvent) error {
	records := make([][]string, 0, len(events)+1)
	records = append(records, masterColumns)
	for _, ev := range events {
		issue := ""
		if ev.HasIssue {
			issue = strconv.FormatFloat(ev.IssuePrice, 'f', -1, 64)
		}
		records = append(records, []string{
			ev.Symbol, ev.ExDate.String(), string(ev.Type), ev.Ratio, issue, ev.Remarks,
		})
	}
	return writeCSV(path, records)
}

// ReadMaster loads a previously persisted ActionEvent set.
func ReadMaster(path string) ([]bhavledger.ActionEvent, error) {
	records, err := readCSV(path, len(masterColumns))
	if err != nil {
		return nil, err
	}
	events := make([]bhavledger.ActionEvent, 0, len(records))
	for _, rec := range records {
		on, err := date.Parse(rec[1])
		if err != nil {
			return nil, fmt.Errorf("action master %q: %w", path, err)
		}
		t, err := bhavledger.ParseActionType(rec[2])
		if err != nil {
			return nil, fmt.Errorf("action master %q: %w", path, err)
		}
		ev := bhavledger.ActionEvent{Symbol: rec[0], ExDate: on, Type: t, Ratio: rec[3], Remarks: rec[5]}
		if rec[4] != "" {
			issue, err := strconv.ParseFloat(rec[4], 64)
			if err != nil {
				return nil, fmt.Errorf("action master %q: issue price: %w", path, err)
			}
			ev.IssuePrice, ev.HasIssue = issue, true
		}
		events = append(events, ev)
	}
	return events, nil
}

// WriteFactors persists the AdjustmentFactor set.
func WriteFactors(path string, factors []bhavledger.AdjustmentFactor) error {
	records := make([][]string, 0, len(factors)+1)
	records = append(records, factorColumns)
	for _, f := range factors {
		records = append(records, []string{
			f.Symbol, string(f.Type), f.ExDate.String(), f.Ratio,
			strconv.FormatFloat(f.PriceMultiplier, 'f', -1, 64),
		})
	}
	return writeCSV(path, records)
}

// ReadFactors loads a previously persisted AdjustmentFactor set.
func ReadFactors(path string) ([]bhavledger.AdjustmentFactor, error) {
	records, err := readCSV(path, len(factorColumns))
	if err != nil {
		return nil, err
	}
	factors := make([]bhavledger.AdjustmentFactor, 0, len(records))
	for _, rec := range records {
		t, err := bhavledger.ParseActionType(rec[1])
		if err != nil {
			return nil, fmt.Errorf("factor file %q: %w", path, err)
		}
		on, err := date.Parse(rec[2])
		if err != nil {
			return nil, fmt.Errorf("factor file %q: %w", path, err)
		}
		m, err := strconv.ParseFloat(rec[4], 64)
		if err != nil {
			return nil, fmt.Errorf("factor file %q: multiplier: %w", path, err)
		}
		factors = append(factors, bhavledger.AdjustmentFactor{
			Symbol: rec[0], Type: t, ExDate: on, Ratio: rec[3], PriceMultiplier: m,
		})
	}
	return factors, nil
}

func writeCSV(path string, records [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("cannot create %q: %w", path, err)
	}
	defer f.Close()
	w := csv.NewWriter(f)
	if err := w.WriteAll(records); err != nil {
		return fmt.Errorf("cannot write %q: %w", path, err)
	}
	return nil
}

// readCSV returns the data records of a headed CSV file, comment lines
// ('#') skipped, padded to at least want cells.
func readCSV(path string, want int) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open %q: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comment = '#'
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("cannot read %q: %w", path, err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	out := make([][]string, 0, len(records)-1)
	for i, rec := range records {
		if i == 0 && strings.EqualFold(strings.TrimSpace(rec[0]), "symbol") {
			continue // header
		}
		padded := make([]string, want)
		copy(padded, rec)
		for j := range padded {
			padded[j] = strings.TrimSpace(padded[j])
		}
		out = append(out, padded)
	}
	return out, nil
}
