package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"todosync/internal/watch"
)

// watchCmd re-runs reconciliation whenever the source tree changes
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the source tree and reconcile on change",
	Long: `Runs one reconciliation pass, then watches the scan root and re-runs
after changes settle. Bursts of filesystem events collapse into a single
run per debounce interval.`,
	RunE: watchTree,
}

func watchTree(cmd *cobra.Command, args []string) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	r, err := buildRunner(ctx)
	if err != nil {
		return err
	}

	reconcileOnce := func(ctx context.Context) {
		report, err := r.Run(ctx)
		if err != nil {
			logger.Error("run failed", zap.Error(err))
			return
		}
		if report.Failed() {
			logger.Warn("run finished with errors",
				zap.Int("file_errors", len(report.FileErrors)),
				zap.Int("key_errors", len(report.KeyErrors)))
		}
	}

	// Initial pass before watching.
	reconcileOnce(ctx)

	w, err := watch.New(cfg.Scan.Root, cfg.GetDebounce(), logger, reconcileOnce)
	if err != nil {
		return fmt.Errorf("starting watcher: %w", err)
	}
	if err := w.Start(ctx); err != nil {
		return fmt.Errorf("starting watcher: %w", err)
	}
	defer w.Stop()

	fmt.Printf("watching %s (debounce %s); Ctrl-C to stop\n", cfg.Scan.Root, cfg.GetDebounce())
	<-ctx.Done()
	return nil
}
