// Package cmd hosts the bhl command line surface, one subcommand per file.
package cmd

import (
	"flag"

	"github.com/google/subcommands"

	"github.com/nsetools/bhavledger"
)

// Commands is the list of registered subcommands, in help order.
var Commands = []subcommands.Command{
	&ingestCmd{},
	&actionsCmd{},
	&adjustCmd{},
	&runCmd{},
	&migrateCmd{},
}

var configPath = flag.String("config", "bhavledger.yaml", "path to the pipeline config file (defaults apply when absent)")

// loadConfig is the central place commands read the pipeline config from.
func loadConfig() (bhavledger.Config, error) {
	return bhavledger.LoadConfig(*configPath)
}
