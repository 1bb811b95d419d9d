package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/drylab/drylab/internal/types"
)

// TailOptions holds flags for the tail command.
type TailOptions struct {
	*RootOptions
	RunID   string
	FromSeq int64
}

// NewTailCommand creates the tail command, the CLI's live counterpart to
// cat: it subscribes and prints events as they are published, instead of
// printing a point-in-time snapshot.
func NewTailCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TailOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:           "tail",
		Short:         "Follow a run, printing events as they are published",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTail(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.RunID, "run", "", "run to follow (required)")
	cmd.Flags().Int64Var(&opts.FromSeq, "from", 0, "seq to resume after (exclusive)")
	_ = cmd.MarkFlagRequired("run")

	return cmd
}

func runTail(opts *TailOptions, cmd *cobra.Command) error {
	l, err := openLedger(opts.RootOptions)
	if err != nil {
		return WrapExitError(ExitCommandError, "opening ledger", err)
	}
	defer l.Close()

	out := cmd.OutOrStdout()
	err = l.Subscribe(cmd.Context(), opts.RunID, opts.FromSeq, func(row types.EventRow) error {
		if opts.Format == "json" {
			enc := json.NewEncoder(out)
			return enc.Encode(map[string]any{
				"seq":    row.Seq,
				"id":     string(row.Header.ID),
				"schema": string(row.Header.Schema),
				"ts":     int64(row.Header.Ts),
			})
		}
		_, werr := fmt.Fprintf(out, "%d\t%s\t%s\t%d\n", row.Seq, row.Header.Schema, row.Header.ID, row.Header.Ts)
		return werr
	})
	if err != nil {
		return WrapExitError(ExitFailure, "tail failed", err)
	}
	return nil
}
