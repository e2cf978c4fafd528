package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/nsetools/bhavledger"
	"github.com/nsetools/bhavledger/actions"
	"github.com/nsetools/bhavledger/ledger"
)

type actionsCmd struct{}

func (*actionsCmd) Name() string { return "actions" }
func (*actionsCmd) Synopsis() string {
	return "parse corporate action disclosures and compute adjustment factors"
}
func (*actionsCmd) Usage() string {
	return `bhl actions

  Re-extracts the full ActionEvent set from the disclosure corpus, rewrites
  the action master file, then derives one price multiplier per event into
  the factor file. Rights issues read their cum-rights reference price from
  the raw ledgers.
`
}

func (*actionsCmd) SetFlags(f *flag.FlagSet) {}

func (c *actionsCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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

	summary := bhavledger.NewRunSummary()

	events := actions.ExtractAll(cfg.DisclosureDirPath(), universe, summary)
	if err := actions.WriteMaster(cfg.ActionsMasterPath(), events); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	raw := ledger.NewStore(cfg.RawDirPath())
	factors := actions.BuildFactors(events, raw, summary)
	if err := actions.WriteFactors(cfg.FactorFilePath(), factors); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	fmt.Printf("parsed %d events, computed %d factors\n", len(events), len(factors))
	for _, p := range summary.Problems {
		fmt.Fprintln(os.Stderr, p)
	}
	return subcommands.ExitSuccess
}
