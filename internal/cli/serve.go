package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/drylab/drylab/internal/pipeline"
	"github.com/drylab/drylab/internal/reactor"
	"github.com/drylab/drylab/internal/types"
)

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	Config string
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run a pipeline of reactors against the ledger",
		Long: `Start a pipeline: open the ledger, register the configured reactors, and
run them until a signal is received or the pipeline goes idle.

Example:
  drylab serve --db ./drylab.db --config ./pipeline.yaml`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Config, "config", "", "path to a pipeline YAML config (optional)")

	return cmd
}

func runServe(opts *ServeOptions, cmd *cobra.Command) error {
	logLevel := slog.LevelInfo
	if opts.Verbose {
		logLevel = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})
	log := slog.New(handler)
	slog.SetDefault(log)

	var cfg *pipeline.Config
	if opts.Config != "" {
		loaded, err := pipeline.LoadConfig(opts.Config)
		if err != nil {
			return WrapExitError(ExitCommandError, "loading pipeline config", err)
		}
		cfg = loaded
	}

	dbPath := opts.Database
	schemaDir := opts.SchemaDir
	if cfg != nil {
		if cfg.LedgerPath != "" {
			dbPath = cfg.LedgerPath
		}
		if cfg.SchemaDir != "" {
			schemaDir = cfg.SchemaDir
		}
	}
	effectiveOpts := &RootOptions{Database: dbPath, SchemaDir: schemaDir}

	log.Info("opening ledger", "path", dbPath)
	l, err := openLedger(effectiveOpts)
	if err != nil {
		return WrapExitError(ExitCommandError, "opening ledger", err)
	}
	defer func() {
		if closeErr := l.Close(); closeErr != nil {
			log.Error("error closing ledger", "error", closeErr)
		}
	}()

	var pipelineOpts []pipeline.Option
	pipelineOpts = append(pipelineOpts, pipeline.WithLogger(log))
	if cfg != nil {
		pipelineOpts = append(pipelineOpts, pipeline.WithIdleTimeout(cfg.IdleTimeout()))
	}
	p := pipeline.New(l, pipelineOpts...)

	if cfg != nil {
		for _, runID := range cfg.Runs {
			p.Add(runID, types.Pattern{}, reactor.PassthroughHandler{OutputSchema: runID + ".echo@1"}, 0)
		}
	}

	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, cancel := context.WithCancel(parentCtx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case sig := <-sigChan:
			log.Info("received signal, shutting down", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	fmt.Fprintln(cmd.OutOrStdout(), "Pipeline started. Press Ctrl-C to stop.")
	log.Info("pipeline starting", "db", dbPath)

	if err := p.RunForever(ctx); err != nil && err != context.Canceled {
		return WrapExitError(ExitFailure, "pipeline error", err)
	}

	log.Info("pipeline stopped gracefully")
	return nil
}
