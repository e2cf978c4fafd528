package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/nsetools/bhavledger/ledger"
)

type migrateCmd struct {
	mapFile string
}

func (*migrateCmd) Name() string { return "migrate" }
func (*migrateCmd) Synopsis() string {
	return "merge ledgers after an exchange symbol rename"
}
func (*migrateCmd) Usage() string {
	return `bhl migrate [-map <file>]

  Applies the old->new symbol map across the raw and adjusted ledger
  folders: rows are merged, deduplicated by date (newer symbol wins) and
  sorted. Old files are kept as a safety net against mapping errors.
`
}

func (c *migrateCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.mapFile, "map", "", "symbol rename map JSON file (default from config)")
}

func (c *migrateCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	mapFile := c.mapFile
	if mapFile == "" {
		mapFile = cfg.SymbolMapPath()
	}
	mapping, err := ledger.LoadSymbolMap(mapFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	if len(mapping) == 0 {
		fmt.Println("symbol map is empty, nothing to migrate")
		return subcommands.ExitSuccess
	}

	if err := ledger.Migrate(mapping, cfg.RawDirPath(), cfg.AdjustedDirPath()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	fmt.Printf("migrated %d symbol(s)\n", len(mapping))
	return subcommands.ExitSuccess
}
