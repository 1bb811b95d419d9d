// Command drylab is the CLI entrypoint for the event ledger and reactor
// pipeline: publish, cat, tail, new-run, and serve subcommands.
package main

import (
	"os"

	"github.com/drylab/drylab/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		os.Exit(cli.GetExitCode(err))
	}
}
