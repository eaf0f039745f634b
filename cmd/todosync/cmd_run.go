package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"todosync/internal/generate"
	"todosync/internal/reconcile"
	"todosync/internal/runner"
	"todosync/internal/tracker"
)

var dryRun bool

// runCmd performs one full reconciliation run
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one reconciliation pass against the tracker",
	Long: `Scans the source tree, fetches existing tracker issues, and applies the
resulting create/update/close actions. With --dry-run the plan is printed
and nothing is sent to the tracker.`,
	RunE: runOnce,
}

func init() {
	runCmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the plan without touching the tracker")
}

func runOnce(cmd *cobra.Command, args []string) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	r, err := buildRunner(ctx)
	if err != nil {
		return err
	}

	if dryRun {
		plan, fileErrs, err := r.Plan(ctx)
		if err != nil {
			return err
		}
		printPlan(plan, fileErrs)
		return nil
	}

	report, err := r.Run(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("run %s: %d files, %d annotations; created %d, updated %d, closed %d\n",
		report.RunID, report.FilesScanned, report.Annotations,
		report.Created, report.Updated, report.Closed)
	if report.Failed() {
		for _, fe := range report.FileErrors {
			fmt.Fprintf(os.Stderr, "file error: %v\n", fe)
		}
		for _, ke := range report.KeyErrors {
			fmt.Fprintf(os.Stderr, "key error: %v\n", ke)
		}
		return fmt.Errorf("%d file errors, %d key errors", len(report.FileErrors), len(report.KeyErrors))
	}
	return nil
}

// buildRunner wires gateway and generator from config.
func buildRunner(ctx context.Context) (*runner.Runner, error) {
	gw := tracker.NewGitHubGateway(tracker.GitHubConfig{
		BaseURL: cfg.Tracker.BaseURL,
		Token:   cfg.Tracker.Token,
		Owner:   cfg.Tracker.Owner,
		Repo:    cfg.Tracker.Repo,
		Label:   cfg.Tracker.Label,
		Timeout: cfg.GetTrackerTimeout(),
	}, logger)

	var gen generate.Generator
	switch cfg.Generator.Mode {
	case "gemini":
		g, err := generate.NewGeminiGenerator(ctx, cfg.Generator.APIKey, cfg.Generator.Model)
		if err != nil {
			return nil, err
		}
		gen = g
	default:
		gen = generate.NewTemplateGenerator()
	}

	return runner.New(cfg, gw, gen, logger), nil
}

// signalContext returns a context cancelled on SIGINT/SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			logger.Info("received shutdown signal")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()
	return ctx, cancel
}

func printPlan(plan reconcile.Plan, fileErrs []runner.FileError) {
	for _, ann := range plan.Creates {
		fmt.Printf("create  %s:%d  %s: %s\n", ann.File, ann.Line, ann.Type, ann.Content)
	}
	for _, m := range plan.Updates {
		fmt.Printf("update  #%d  %s:%d  %s: %s\n",
			m.Issue.ID, m.Annotation.File, m.Annotation.Line, m.Annotation.Type, m.Annotation.Content)
	}
	for _, issue := range plan.Closes {
		fmt.Printf("close   #%d  %s\n", issue.ID, issue.Title)
	}
	for _, fe := range fileErrs {
		fmt.Fprintf(os.Stderr, "file error: %v\n", fe)
	}
	if plan.Empty() {
		fmt.Println("nothing to do")
	}
}
