package cli

import (
	"io"

	"github.com/drylab/drylab/internal/ledger"
	"github.com/drylab/drylab/internal/schemaregistry"
)

// openLedger opens the ledger at opts.Database, validating against schema
// documents in opts.SchemaDir. Shared by every subcommand that touches
// the ledger.
func openLedger(opts *RootOptions) (*ledger.Ledger, error) {
	registry := schemaregistry.New(opts.SchemaDir)
	return ledger.Open(opts.Database, registry)
}

func newFormatter(opts *RootOptions, out, errOut io.Writer) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    out,
		ErrWriter: errOut,
		Verbose:   opts.Verbose,
	}
}
