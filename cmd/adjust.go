package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/nsetools/bhavledger"
	"github.com/nsetools/bhavledger/actions"
	"github.com/nsetools/bhavledger/adjust"
	"github.com/nsetools/bhavledger/ledger"
)

type adjustCmd struct {
	force bool
}

func (*adjustCmd) Name() string { return "adjust" }
func (*adjustCmd) Synopsis() string {
	return "regenerate the adjusted ledger mirror from raw ledgers and factors"
}
func (*adjustCmd) Usage() string {
	return `bhl adjust [-force]

  Rebuilds every symbol's adjusted ledger by applying the cumulative price
  multipliers to all bars dated before each ex-date. Symbols whose adjusted
  file is already newer than its inputs are skipped unless -force is given.
`
}

func (c *adjustCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.force, "force", false, "rebuild even when outputs look up to date")
}

func (c *adjustCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	factors, err := actions.ReadFactors(cfg.FactorFilePath())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	applier, err := adjust.NewApplier(ledger.NewStore(cfg.RawDirPath()), ledger.NewStore(cfg.AdjustedDirPath()))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	applier.FactorPath = cfg.FactorFilePath()
	applier.Force = c.force

	summary := bhavledger.NewRunSummary()
	if err := applier.Run(factors, summary); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	res := summary.Stage("adjust")
	fmt.Printf("adjusted ledgers: %d written, %d up to date, %d failed\n", res.Updated, res.Skipped, res.Failed)
	for _, p := range summary.Problems {
		fmt.Fprintln(os.Stderr, p)
	}
	return subcommands.ExitSuccess
}
