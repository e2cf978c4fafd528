package actions

import (
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/nsetools/bhavledger"
	"github.com/nsetools/bhavledger/date"
)

// Disclosure is one raw corporate-action announcement for a symbol, as
// published: a free-text subject line plus the ex-date and face value.
type Disclosure struct {
	Symbol    string
	Subject   string
	ExDate    date.Date
	FaceValue float64
}

// The subject line patterns, in priority order. The first match wins and
// the remaining patterns are not tried for that disclosure.
var (
	reBonus  = regexp.MustCompile(`(?i)Bonus\s+(\d+):(\d+)`)
	reSplit  = regexp.MustCompile(`(?i)Split.*From.*?(\d+(?:\.\d+)?).*?To.*?(\d+(?:\.\d+)?)`)
	reRights = regexp.MustCompile(`(?i)Rights.*?(\d+):(\d+).*?Premium.*?(\d+(?:\.\d+)?)`)
)

// Extract parses a symbol's disclosures into typed events, sorted by
// ex-date. A disclosure that matches no pattern yields no event, which is
// not an error. The output depends only on the input, so re-running
// extraction over the same corpus reproduces the same event list.
func Extract(symbol string, disclosures []Disclosure) []bhavledger.ActionEvent {
	var events []bhavledger.ActionEvent
	for _, d := range disclosures {
		if ev, ok := extractOne(symbol, d); ok {
			events = append(events, ev)
		}
	}
	slices.SortStableFunc(events, func(a, b bhavledger.ActionEvent) int {
		return a.ExDate.Compare(b.ExDate)
	})
	return events
}

func extractOne(symbol string, d Disclosure) (bhavledger.ActionEvent, bool) {
	ev := bhavledger.ActionEvent{
		Symbol:  symbol,
		ExDate:  d.ExDate,
		Remarks: d.Subject,
	}

	if m := reBonus.FindStringSubmatch(d.Subject); m != nil {
		ev.Type = bhavledger.Bonus
		ev.Ratio = m[1] + ":" + m[2]
		return ev, true
	}

	if m := reSplit.FindStringSubmatch(d.Subject); m != nil {
		oldFV, err1 := strconv.ParseFloat(m[1], 64)
		newFV, err2 := strconv.ParseFloat(m[2], 64)
		if err1 == nil && err2 == nil && oldFV > 0 && newFV > 0 {
			// A face value split from 10 to 1 turns one share into ten.
			ev.Type = bhavledger.Split
			ev.Ratio = fmt.Sprintf("1:%g", oldFV/newFV)
			return ev, true
		}
	}

	if m := reRights.FindStringSubmatch(d.Subject); m != nil {
		premium, err := strconv.ParseFloat(m[3], 64)
		if err == nil {
			ev.Type = bhavledger.Rights
			ev.Ratio = m[1] + ":" + m[2]
			ev.IssuePrice = premium + d.FaceValue
			ev.HasIssue = true
			return ev, true
		}
	}

	// Demerger subjects carry no parseable ratio; 1:1 is a recorded
	// placeholder and the factor engine applies no price adjustment.
	if strings.Contains(d.Subject, "Demerger") {
		ev.Type = bhavledger.Demerger
		ev.Ratio = "1:1"
		return ev, true
	}

	return bhavledger.ActionEvent{}, false
}

// ReadDisclosures loads a symbol's disclosure file. Expected columns:
// subject, exDate, faceVal (header lookup is case-insensitive); a face
// value of "-" means not published and reads as zero. Rows with an
// unparseable ex-date are skipped with a log line.
func ReadDisclosures(path, symbol string) ([]Disclosure, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open disclosures %q: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("cannot read disclosures %q: %w", path, err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	cols := make(map[string]int)
	for i, h := range records[0] {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	subjectCol, okS := cols["subject"]
	exDateCol, okE := cols["exdate"]
	faceCol, okF := cols["faceval"]
	if !okS || !okE {
		return nil, fmt.Errorf("disclosures %q: missing subject/exDate columns", path)
	}

	cell := func(rec []string, i int) string {
		if i < 0 || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	var out []Disclosure
	for n, rec := range records[1:] {
		on, err := date.Parse(cell(rec, exDateCol))
		if err != nil {
			log.Printf("skip-row file=%q line=%d: %v", path, n+2, err)
			continue
		}
		var face float64
		if okF {
			if v := cell(rec, faceCol); v != "" && v != "-" {
				if fv, err := strconv.ParseFloat(v, 64); err == nil {
					face = fv
				}
			}
		}
		out = append(out, Disclosure{
			Symbol:    symbol,
			Subject:   cell(rec, subjectCol),
			ExDate:    on,
			FaceValue: face,
		})
	}
	return out, nil
}

// ExtractAll runs extraction over the whole universe's disclosure corpus
// (one file per symbol under dir) and returns the events sorted by symbol
// then ex-date. A symbol without a disclosure file simply has no data yet.
// The returned set replaces any previously persisted master wholesale.
func ExtractAll(dir string, universe bhavledger.Universe, summary *bhavledger.RunSummary) []bhavledger.ActionEvent {
	res := summary.Stage("extract")

	var all []bhavledger.ActionEvent
	for _, symbol := range universe.Symbols() {
		path := filepath.Join(dir, symbol+".csv")
		if _, err := os.Stat(path); os.IsNotExist(err) {
			res.Skipped++
			continue
		}
		disclosures, err := ReadDisclosures(path, symbol)
		if err != nil {
			res.Failed++
			summary.Problem("extract %s: %v", symbol, err)
			continue
		}
		events := Extract(symbol, disclosures)
		all = append(all, events...)
		if len(events) > 0 {
			res.Updated++
		} else {
			res.Skipped++
		}
	}
	slices.SortStableFunc(all, func(a, b bhavledger.ActionEvent) int {
		if c := strings.Compare(a.Symbol, b.Symbol); c != 0 {
			return c
		}
		return a.ExDate.Compare(b.ExDate)
	})
	return all
}
