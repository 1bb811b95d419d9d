package cli

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/drylab/drylab/internal/ledger"
	"github.com/drylab/drylab/internal/types"
)

// PublishOptions holds flags for the publish command.
type PublishOptions struct {
	*RootOptions
	RunID  string
	Schema string
	File   string
}

// NewPublishCommand creates the publish command.
func NewPublishCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PublishOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Publish a blob to a run under a schema",
		Long: `Validate a blob against a schema and append it as the next event in a run.

Reads the blob from --file, or from stdin if --file is omitted.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPublish(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.RunID, "run", "", "run to publish into (required)")
	cmd.Flags().StringVar(&opts.Schema, "schema", "", "schema ID, NAME@VERSION (required)")
	cmd.Flags().StringVar(&opts.File, "file", "", "path to the blob to publish (default: stdin)")
	_ = cmd.MarkFlagRequired("run")
	_ = cmd.MarkFlagRequired("schema")

	return cmd
}

func runPublish(opts *PublishOptions, cmd *cobra.Command) error {
	f := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	var reader io.Reader = cmd.InOrStdin()
	if opts.File != "" {
		file, err := os.Open(opts.File)
		if err != nil {
			return WrapExitError(ExitCommandError, "opening blob file", err)
		}
		defer file.Close()
		reader = file
	}

	blob, err := io.ReadAll(reader)
	if err != nil {
		return WrapExitError(ExitCommandError, "reading blob", err)
	}

	l, err := openLedger(opts.RootOptions)
	if err != nil {
		return WrapExitError(ExitCommandError, "opening ledger", err)
	}
	defer l.Close()

	outcome, header, err := l.Publish(cmd.Context(), opts.RunID, opts.Schema, types.Blob(blob))
	if err != nil {
		if ledger.IsRejected(err) {
			return f.Error("REJECTED", err.Error(), nil)
		}
		return WrapExitError(ExitFailure, "publish failed", err)
	}

	return f.Success(map[string]any{
		"outcome": outcome.String(),
		"id":      string(header.ID),
		"schema":  string(header.Schema),
		"ts":      int64(header.Ts),
	})
}
