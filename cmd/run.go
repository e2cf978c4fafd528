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
	"github.com/nsetools/bhavledger/ingest"
	"github.com/nsetools/bhavledger/ledger"
)

type runCmd struct {
	force bool
}

func (*runCmd) Name() string { return "run" }
func (*runCmd) Synopsis() string {
	return "run the whole pipeline: ingest, actions, factors, adjust"
}
func (*runCmd) Usage() string {
	return `bhl run [-force]

  Full pipeline pass over the configured data folders, ending with a
  rendered summary of updated, skipped and failed symbols per stage. The
  actions stage is skipped when its artifacts are newer than the
  disclosure corpus; -force recomputes everything.
`
}

func (c *runCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.force, "force", false, "recompute every stage regardless of timestamps")
}

func (c *runCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	universe, err := bhavledger.LoadUniverse(cfg.MasterListPath())
	if err != nil {
		// The master list is the one input the pipeline cannot run
		// without.
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	summary := bhavledger.NewRunSummary()
	raw := ledger.NewStore(cfg.RawDirPath())

	// Stage 1: daily bars into raw ledgers.
	ing, err := ingest.NewIngestor(raw, universe)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	if _, err := ing.Run(cfg.DailyDirPath(), summary); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	// Stage 2: disclosures into events and factors, unless everything
	// downstream of the corpus is already newer than it.
	var factors []bhavledger.AdjustmentFactor
	fresh := !c.force &&
		adjust.Fresh(cfg.ActionsMasterPath(), cfg.DisclosureDirPath()) &&
		adjust.Fresh(cfg.FactorFilePath(), cfg.ActionsMasterPath(), cfg.RawDirPath())
	if fresh {
		factors, err = actions.ReadFactors(cfg.FactorFilePath())
		if err != nil {
			// Stale or unreadable artifact: fall back to a recompute.
			fresh = false
		}
	}
	if !fresh {
		events := actions.ExtractAll(cfg.DisclosureDirPath(), universe, summary)
		if err := actions.WriteMaster(cfg.ActionsMasterPath(), events); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return subcommands.ExitFailure
		}
		factors = actions.BuildFactors(events, raw, summary)
		if err := actions.WriteFactors(cfg.FactorFilePath(), factors); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return subcommands.ExitFailure
		}
	}

	// Stage 3: adjusted ledger mirror.
	applier, err := adjust.NewApplier(raw, ledger.NewStore(cfg.AdjustedDirPath()))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	applier.FactorPath = cfg.FactorFilePath()
	applier.Force = c.force
	if err := applier.Run(factors, summary); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	printMarkdown(summary.Markdown())
	if n := len(summary.Problems); n > 0 {
		fmt.Fprintf(os.Stderr, "%d symbol(s) reported problems, see summary\n", n)
	}
	return subcommands.ExitSuccess
}
