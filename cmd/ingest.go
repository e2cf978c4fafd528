package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/nsetools/bhavledger"
	"github.com/nsetools/bhavledger/ingest"
	"github.com/nsetools/bhavledger/ledger"
)

type ingestCmd struct {
	dailyDir string
}

func (*ingestCmd) Name() string { return "ingest" }
func (*ingestCmd) Synopsis() string {
	return "append new daily bhavcopy rows to the per-symbol raw ledgers"
}
func (*ingestCmd) Usage() string {
	return `bhl ingest [-daily <dir>]

  Processes every daily bhavcopy file in date order and appends the rows
  for tracked symbols to their raw ledgers. Dates already recorded are
  skipped, so re-running over the same files is a no-op.
`
}

func (c *ingestCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.dailyDir, "daily", "", "daily bhavcopy folder (default from config)")
}

func (c *ingestCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	universe, err := bhavledger.LoadUniverse(cfg.MasterListPath())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	dir := c.dailyDir
	if dir == "" {
		dir = cfg.DailyDirPath()
	}

	ing, err := ingest.NewIngestor(ledger.NewStore(cfg.RawDirPath()), universe)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	summary := bhavledger.NewRunSummary()
	res, err := ing.Run(dir, summary)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	fmt.Printf("ingested %d rows across %d symbols (%d files, %d skipped)\n",
		res.Rows, res.Updated, res.Files, res.FilesSkipped)
	for _, p := range summary.Problems {
		fmt.Fprintln(os.Stderr, p)
	}
	return subcommands.ExitSuccess
}
