// Package runner orchestrates one reconciliation run: walk the source tree,
// extract annotations, fetch tracker issues, diff, and dispatch actions.
package runner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"todosync/internal/annotation"
	"todosync/internal/config"
	"todosync/internal/generate"
	"todosync/internal/reconcile"
	"todosync/internal/tracker"
)

// FileError records a file that could not be read or scanned. It aborts
// processing of that file only, never the run.
type FileError struct {
	File string
	Err  error
}

func (e FileError) Error() string {
	return fmt.Sprintf("%s: %v", e.File, e.Err)
}

// KeyError records a failed tracker action for one key. Failures are
// isolated per key: one failed create does not stop the remaining actions.
type KeyError struct {
	Key string
	Op  string // create, update, close
	Err error
}

func (e KeyError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Key, e.Err)
}

// Report aggregates the outcome of one run.
type Report struct {
	RunID        string
	Duration     time.Duration
	FilesScanned int
	Annotations  int
	Created      int
	Updated      int
	Closed       int
	FileErrors   []FileError
	KeyErrors    []KeyError
}

// Failed reports whether any per-file or per-key error occurred.
func (r *Report) Failed() bool {
	return len(r.FileErrors) > 0 || len(r.KeyErrors) > 0
}

// Err returns the aggregate of all per-file and per-key errors, or nil.
func (r *Report) Err() error {
	var errs []error
	for _, e := range r.FileErrors {
		errs = append(errs, e)
	}
	for _, e := range r.KeyErrors {
		errs = append(errs, e)
	}
	return errors.Join(errs...)
}

// Runner drives extraction and reconciliation. All collaborators and
// configuration are injected at construction.
type Runner struct {
	root       string
	extensions map[string]bool
	workers    int
	genTimeout time.Duration

	extractor *annotation.Extractor
	gateway   tracker.Gateway
	gen       generate.Generator
	logger    *zap.Logger
}

// New creates a Runner from explicit configuration and collaborators.
func New(cfg *config.Config, gw tracker.Gateway, gen generate.Generator, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	var exts map[string]bool
	if len(cfg.Scan.Extensions) > 0 {
		exts = make(map[string]bool, len(cfg.Scan.Extensions))
		for _, e := range cfg.Scan.Extensions {
			if !strings.HasPrefix(e, ".") {
				e = "." + e
			}
			exts[e] = true
		}
	}
	return &Runner{
		root:       cfg.Scan.Root,
		extensions: exts,
		workers:    cfg.GetWorkers(),
		genTimeout: cfg.GetGeneratorTimeout(),
		extractor:  annotation.NewExtractor(cfg.Scan.Prefixes),
		gateway:    gw,
		gen:        gen,
		logger:     logger,
	}
}

// ScanResult holds the outcome of tree extraction.
type ScanResult struct {
	Annotations []annotation.Annotation
	Files       int // files scanned, including ones that failed to read
	Errors      []FileError
}

// Scan walks the source tree and extracts every annotation. Unreadable
// files are recorded as FileErrors and skipped; only an unwalkable root is
// fatal. Results are ordered by file path, then position within the file.
func (r *Runner) Scan(ctx context.Context) (*ScanResult, error) {
	files, fileErrs, err := r.listFiles()
	if err != nil {
		return nil, err
	}

	results := make([][]annotation.Annotation, len(files))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for i, path := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			lines, err := readLines(path)
			if err != nil {
				mu.Lock()
				fileErrs = append(fileErrs, FileError{File: path, Err: err})
				mu.Unlock()
				return nil
			}
			rel := r.relPath(path)
			results[i] = r.extractor.Extract(rel, lines)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var anns []annotation.Annotation
	for _, batch := range results {
		anns = append(anns, batch...)
	}
	sort.Slice(fileErrs, func(i, j int) bool { return fileErrs[i].File < fileErrs[j].File })
	return &ScanResult{Annotations: anns, Files: len(files), Errors: fileErrs}, nil
}

// Plan computes the reconciliation plan without dispatching any action.
// A fetch-all failure is fatal: no diff is possible without the baseline
// issue set.
func (r *Runner) Plan(ctx context.Context) (reconcile.Plan, []FileError, error) {
	scan, err := r.Scan(ctx)
	if err != nil {
		return reconcile.Plan{}, nil, err
	}
	issues, err := r.gateway.FetchAll(ctx)
	if err != nil {
		return reconcile.Plan{}, nil, fmt.Errorf("fetching tracker issues: %w", err)
	}
	return reconcile.Build(scan.Annotations, issues), scan.Errors, nil
}

// Run executes one full reconciliation. The returned error is non-nil only
// for fatal conditions (unwalkable root, failed issue fetch); per-file and
// per-key failures land in the Report.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	start := time.Now()
	report := &Report{RunID: uuid.NewString()}
	log := r.logger.With(zap.String("run_id", report.RunID))

	scan, err := r.Scan(ctx)
	if err != nil {
		return nil, err
	}
	report.FilesScanned = scan.Files
	report.FileErrors = scan.Errors
	report.Annotations = len(scan.Annotations)

	issues, err := r.gateway.FetchAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching tracker issues: %w", err)
	}

	plan := reconcile.Build(scan.Annotations, issues)
	log.Info("reconciliation plan",
		zap.Int("annotations", len(scan.Annotations)),
		zap.Int("issues", len(issues)),
		zap.Int("creates", len(plan.Creates)),
		zap.Int("updates", len(plan.Updates)),
		zap.Int("closes", len(plan.Closes)))

	r.dispatch(ctx, plan, report, log)

	report.Duration = time.Since(start)
	log.Info("run finished",
		zap.Int("created", report.Created),
		zap.Int("updated", report.Updated),
		zap.Int("closed", report.Closed),
		zap.Int("file_errors", len(report.FileErrors)),
		zap.Int("key_errors", len(report.KeyErrors)),
		zap.Duration("duration", report.Duration))
	return report, nil
}

// dispatch applies the plan with a bounded worker pool. Every action is
// independent; errors are captured per key instead of cancelling the group.
func (r *Runner) dispatch(ctx context.Context, plan reconcile.Plan, report *Report, log *zap.Logger) {
	var mu sync.Mutex
	record := func(key, op string, err error) {
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			report.KeyErrors = append(report.KeyErrors, KeyError{Key: key, Op: op, Err: err})
			log.Warn("tracker action failed", zap.String("op", op), zap.String("key", key), zap.Error(err))
			return
		}
		switch op {
		case "create":
			report.Created++
		case "update":
			report.Updated++
		case "close":
			report.Closed++
		}
	}

	var g errgroup.Group
	g.SetLimit(r.workers)

	for _, ann := range plan.Creates {
		g.Go(func() error {
			content, err := r.generate(ctx, ann)
			if err == nil {
				_, err = r.gateway.Create(ctx, content.Title, content.Body)
			}
			record(ann.Key, "create", err)
			return nil
		})
	}
	for _, m := range plan.Updates {
		g.Go(func() error {
			content, err := r.generate(ctx, m.Annotation)
			if err == nil {
				err = r.gateway.Update(ctx, m.Issue.ID, content.Title, content.Body)
			}
			record(m.Annotation.Key, "update", err)
			return nil
		})
	}
	for _, issue := range plan.Closes {
		g.Go(func() error {
			record(issue.Key, "close", r.gateway.Close(ctx, issue.ID))
			return nil
		})
	}
	_ = g.Wait()
}

func (r *Runner) generate(ctx context.Context, ann annotation.Annotation) (generate.Content, error) {
	ctx, cancel := context.WithTimeout(ctx, r.genTimeout)
	defer cancel()
	return r.gen.Generate(ctx, ann)
}

// listFiles walks the root and returns candidate file paths in lexical
// order. Hidden directories are skipped; per-entry walk errors are recorded
// and skipped rather than aborting the walk.
func (r *Runner) listFiles() ([]string, []FileError, error) {
	var files []string
	var fileErrs []FileError

	err := filepath.Walk(r.root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			if path == r.root {
				return err
			}
			fileErrs = append(fileErrs, FileError{File: path, Err: err})
			if info != nil && info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if info.IsDir() {
			name := info.Name()
			if strings.HasPrefix(name, ".") && path != r.root {
				return filepath.SkipDir
			}
			return nil
		}
		if r.extensions != nil && !r.extensions[filepath.Ext(path)] {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, nil, fmt.Errorf("walking %s: %w", r.root, err)
	}
	return files, fileErrs, nil
}

// relPath makes annotation file identifiers (and therefore keys)
// independent of where the tool was invoked from.
func (r *Runner) relPath(path string) string {
	rel, err := filepath.Rel(r.root, path)
	if err != nil {
		return path
	}
	return filepath.ToSlash(rel)
}

func readLines(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	lines := strings.Split(string(data), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	// A trailing newline produces one phantom empty line; drop it.
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}
	return lines, nil
}
