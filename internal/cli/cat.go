package cli

import (
	"github.com/spf13/cobra"
)

// CatOptions holds flags for the cat command.
type CatOptions struct {
	*RootOptions
	RunID    string
	FromSeq  int64
	ShowBlob bool
}

// NewCatCommand creates the cat command.
func NewCatCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CatOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:           "cat",
		Short:         "Print a snapshot of a run's events",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCat(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.RunID, "run", "", "run to read (required)")
	cmd.Flags().Int64Var(&opts.FromSeq, "from", 0, "seq to resume after (exclusive)")
	cmd.Flags().BoolVar(&opts.ShowBlob, "show-blob", false, "include raw blob bytes in text output")
	_ = cmd.MarkFlagRequired("run")

	return cmd
}

func runCat(opts *CatOptions, cmd *cobra.Command) error {
	f := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	l, err := openLedger(opts.RootOptions)
	if err != nil {
		return WrapExitError(ExitCommandError, "opening ledger", err)
	}
	defer l.Close()

	rows, err := l.Cat(cmd.Context(), opts.RunID, opts.FromSeq)
	if err != nil {
		return WrapExitError(ExitFailure, "cat failed", err)
	}

	type jsonRow struct {
		Seq    int64  `json:"seq"`
		ID     string `json:"id"`
		Schema string `json:"schema"`
		Ts     int64  `json:"ts"`
		Blob   string `json:"blob,omitempty"`
	}
	out := make([]jsonRow, len(rows))
	for i, row := range rows {
		jr := jsonRow{Seq: row.Seq, ID: string(row.Header.ID), Schema: string(row.Header.Schema), Ts: int64(row.Header.Ts)}
		if opts.ShowBlob {
			jr.Blob = string(row.Blob)
		}
		out[i] = jr
	}

	return f.Success(out)
}
