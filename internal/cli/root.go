package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"

	Database  string // path to the ledger's SQLite file
	SchemaDir string // directory schema documents are resolved from
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the drylab CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "drylab",
		Short: "drylab - content-addressed event ledger and reactor pipeline",
		Long:  "A content-addressed, append-only event ledger with a reactive dataflow layer built on top of it.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.Database, "db", "drylab.db", "path to the ledger's SQLite database")
	cmd.PersistentFlags().StringVar(&opts.SchemaDir, "schema-dir", "schemas", "directory schema documents are resolved from")

	cmd.AddCommand(NewPublishCommand(opts))
	cmd.AddCommand(NewCatCommand(opts))
	cmd.AddCommand(NewTailCommand(opts))
	cmd.AddCommand(NewNewRunCommand(opts))
	cmd.AddCommand(NewServeCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
