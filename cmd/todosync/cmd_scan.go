package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"todosync/internal/annotation"
	"todosync/internal/runner"
)

// scanCmd extracts annotations without touching the tracker
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan the source tree and print the annotations found",
	Long: `Runs extraction only. Useful for checking prefixes and extension filters
before pointing todosync at a real tracker; no credentials are needed.`,
	RunE: scanTree,
}

func scanTree(cmd *cobra.Command, args []string) error {
	if err := cfg.ValidateScan(); err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	// Scan needs no gateway or generator.
	r := runner.New(cfg, nil, nil, logger)
	result, err := r.Scan(ctx)
	if err != nil {
		return err
	}

	for _, ann := range result.Annotations {
		printAnnotation(ann)
	}
	fmt.Printf("%d annotations in %d files\n", len(result.Annotations), result.Files)
	for _, fe := range result.Errors {
		fmt.Fprintf(os.Stderr, "file error: %v\n", fe)
	}
	if len(result.Errors) > 0 {
		return fmt.Errorf("%d files could not be scanned", len(result.Errors))
	}
	return nil
}

func printAnnotation(ann annotation.Annotation) {
	fmt.Printf("%s:%d  %s: %s\n", ann.File, ann.Line, ann.Type, ann.Content)
}
