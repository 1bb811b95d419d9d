package cli

import (
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// NewNewRunCommand creates the new-run command, which mints a fresh run_id.
// A run needs no explicit creation in the ledger itself — the first
// publish to an unseen run_id brings it into existence — but a stable,
// collision-free identifier still has to come from somewhere.
func NewNewRunCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "new-run",
		Short:         "Mint a new, collision-free run_id",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := newFormatter(rootOpts, cmd.OutOrStdout(), cmd.ErrOrStderr())
			return f.Success(map[string]any{"run_id": uuid.NewString()})
		},
	}
	return cmd
}
