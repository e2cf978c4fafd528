package ingest

import (
	"os"
	"testing"

	"github.com/nsetools/bhavledger"
	"github.com/nsetools/bhavledger/ledger"
)

func newTestIngestor(t *testing.T) (*Ingestor, *ledger.Store, string) {
	t.Helper()
	store := ledger.NewStore(t.TempDir())
	ing, err := NewIngestor(store, universe)
	if err != nil {
		t.Fatal(err)
	}
	return ing, store, t.TempDir()
}

func TestIngestorRun(t *testing.T) {
	ing, store, daily := newTestIngestor(t)

	writeDaily(t, daily, "bhavcopy_20210104.csv",
		"SYMBOL,SERIES,DATE1,CLOSE_PRICE,TTL_TRD_QNTY\n"+
			"RELIANCE,EQ,04-Jan-2021,2000,100\n"+
			"TCS,EQ,04-Jan-2021,3000,200\n")
	writeDaily(t, daily, "bhavcopy_20210105.csv",
		"SYMBOL,SERIES,DATE1,CLOSE_PRICE,TTL_TRD_QNTY\n"+
			"RELIANCE,EQ,05-Jan-2021,2010,110\n")

	summary := bhavledger.NewRunSummary()
	res, err := ing.Run(daily, summary)
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if res.Rows != 3 {
		t.Errorf("Rows = %d want 3", res.Rows)
	}
	if res.Updated != 2 {
		t.Errorf("Updated = %d want 2", res.Updated)
	}

	bars, err := store.ReadAll("RELIANCE")
	if err != nil {
		t.Fatal(err)
	}
	if len(bars) != 2 {
		t.Errorf("RELIANCE ledger len = %d want 2", len(bars))
	}
}

func TestIngestorRerunIsNoop(t *testing.T) {
	ing, store, daily := newTestIngestor(t)
	writeDaily(t, daily, "bhavcopy_20210104.csv",
		"SYMBOL,SERIES,DATE1,CLOSE_PRICE\nRELIANCE,EQ,04-Jan-2021,2000\nTCS,EQ,04-Jan-2021,3000\n")

	if _, err := ing.Run(daily, bhavledger.NewRunSummary()); err != nil {
		t.Fatal(err)
	}
	before, err := os.ReadFile(store.Path("RELIANCE"))
	if err != nil {
		t.Fatal(err)
	}

	res, err := ing.Run(daily, bhavledger.NewRunSummary())
	if err != nil {
		t.Fatal(err)
	}
	if res.Updated != 0 {
		t.Errorf("second run Updated = %d want 0", res.Updated)
	}
	after, err := os.ReadFile(store.Path("RELIANCE"))
	if err != nil {
		t.Fatal(err)
	}
	if string(before) != string(after) {
		t.Error("second run modified the ledger file")
	}
}

func TestIngestorSkipsMalformedFile(t *testing.T) {
	ing, store, daily := newTestIngestor(t)
	writeDaily(t, daily, "bhavcopy_20210104.csv", "OPEN,CLOSE\n1,2\n") // no SYMBOL column
	writeDaily(t, daily, "bhavcopy_20210105.csv",
		"SYMBOL,SERIES,DATE1,CLOSE_PRICE\nTCS,EQ,05-Jan-2021,3000\n")

	summary := bhavledger.NewRunSummary()
	res, err := ing.Run(daily, summary)
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if res.FilesSkipped != 1 || res.Files != 1 {
		t.Errorf("Files = %d FilesSkipped = %d, want 1 and 1", res.Files, res.FilesSkipped)
	}
	if _, err := store.ReadAll("TCS"); err != nil {
		t.Errorf("good file was not ingested: %v", err)
	}
}

func TestIngestorPicksUpOnlyNewDates(t *testing.T) {
	ing, store, daily := newTestIngestor(t)
	writeDaily(t, daily, "bhavcopy_20210104.csv",
		"SYMBOL,SERIES,DATE1,CLOSE_PRICE\nRELIANCE,EQ,04-Jan-2021,2000\nTCS,EQ,04-Jan-2021,3000\n")
	if _, err := ing.Run(daily, bhavledger.NewRunSummary()); err != nil {
		t.Fatal(err)
	}

	// A later file arrives.
	writeDaily(t, daily, "bhavcopy_20210105.csv",
		"SYMBOL,SERIES,DATE1,CLOSE_PRICE\nRELIANCE,EQ,05-Jan-2021,2010\n")
	res, err := ing.Run(daily, bhavledger.NewRunSummary())
	if err != nil {
		t.Fatal(err)
	}
	if res.Rows != 1 {
		t.Errorf("incremental run Rows = %d want 1", res.Rows)
	}

	bars, err := store.ReadAll("RELIANCE")
	if err != nil {
		t.Fatal(err)
	}
	if len(bars) != 2 {
		t.Errorf("RELIANCE ledger len = %d want 2", len(bars))
	}
	tcs, err := store.ReadAll("TCS")
	if err != nil {
		t.Fatal(err)
	}
	if len(tcs) != 1 {
		t.Errorf("TCS ledger len = %d want 1", len(tcs))
	}
}

func TestNewIngestorEmptyUniverse(t *testing.T) {
	if _, err := NewIngestor(ledger.NewStore(t.TempDir()), bhavledger.Universe{}); err == nil {
		t.Error("NewIngestor() with empty universe: want error")
	}
}
