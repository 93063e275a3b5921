/*
Package app provides the application container for wcnt. It wires the
counting pipeline together: rule loading, log discovery, warning
extraction, aggregation, limit evaluation, reporting, and optional limit
rewriting. It also owns component lifecycle and graceful shutdown.

Usage:

	application := app.New(cfg)
	defer application.Shutdown()
	err := application.Run(&app.RunOptions{Start: "."})
*/
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime/debug"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/spf13/afero"

	"github.com/silven/wcnt/internal/config"
	"github.com/silven/wcnt/pkg/intern"
	"github.com/silven/wcnt/pkg/limits"
	"github.com/silven/wcnt/pkg/logger"
	"github.com/silven/wcnt/pkg/progress"
	"github.com/silven/wcnt/pkg/report"
	"github.com/silven/wcnt/pkg/rules"
	"github.com/silven/wcnt/pkg/scan"
	"github.com/silven/wcnt/pkg/tally"
)

// ErrLimitsExceeded reports that at least one limit was violated during a
// run. The violation summary is written to stderr before it is returned.
var ErrLimitsExceeded = errors.New("limits exceeded")

// RunOptions defines the options for a counting run
type RunOptions struct {
	// Directory to scan for log files
	Start string

	// Rule file path (empty for <start>/Wcnt.toml)
	RuleFile string

	// Warning kinds to restrict the run to (empty for all)
	Only []string

	// Lower limits above the observed counts to match them
	UpdateLimits bool

	// Collapse uniform per-category limits while updating
	Prune bool
}

// App represents the main application container
type App struct {
	config *config.Config
	log    logger.Logger
	fs     afero.Fs

	progress progress.Progress

	stdout io.Writer
	stderr io.Writer

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
	mu     sync.Mutex
}

// New creates a new application instance
func New(cfg *config.Config) *App {
	ctx, cancel := context.WithCancel(context.Background())

	app := &App{
		config: cfg,
		fs:     afero.NewOsFs(),
		stdout: os.Stdout,
		stderr: os.Stderr,
		done:   make(chan struct{}),
		ctx:    ctx,
		cancel: cancel,
	}

	app.initLogger()
	app.initComponents()
	app.setupSignalHandling()

	app.log.WithFields(logger.Fields{
		"workers": cfg.Workers,
		"verbose": cfg.Verbose,
	}).Debug("Application initialized")

	return app
}

// Run executes a counting run with the given options. It returns
// ErrLimitsExceeded when the counts break any limit.
func (a *App) Run(opts *RunOptions) error {
	defer func() {
		if r := recover(); r != nil {
			a.log.WithFields(logger.Fields{
				"panic": r,
				"stack": string(debug.Stack()),
			}).Error("Recovered from panic")
		}
	}()

	start, err := a.resolveStart(opts.Start)
	if err != nil {
		return err
	}

	ruleFile := opts.RuleFile
	if ruleFile == "" {
		ruleFile = filepath.Join(start, config.DefaultRuleFileName)
	}

	allKinds, err := rules.Load(a.fs, ruleFile)
	if err != nil {
		return err
	}
	set := allKinds
	if len(opts.Only) > 0 {
		set, err = set.Restrict(opts.Only)
		if err != nil {
			return err
		}
	}

	a.log.WithFields(logger.Fields{
		"start": start,
		"rules": ruleFile,
		"kinds": set.Names(),
	}).Info("Starting run")

	ctx, cancel := context.WithTimeout(a.ctx, 1*time.Hour)
	defer cancel()

	showProgress := !a.config.NoProgress && a.progress.IsSupportedTerminal()
	if showProgress {
		a.progress.Start("Discovering log files...")
	}

	in := intern.New()

	// The resolver validates limit files against every configured kind:
	// a --only run must not report declarations for excluded kinds as
	// unknown, nor skip their locations when ratcheting.
	resolver := limits.NewResolver(a.fs, start, allKinds, a.log)

	discovery, err := a.discover(ctx, start, set, showProgress)
	if err != nil {
		if showProgress {
			a.progress.Stop()
		}
		return fmt.Errorf("discovery failed: %w", err)
	}
	for _, path := range discovery.LimitFiles {
		resolver.Register(path)
	}

	scanner := scan.NewScanner(scan.Config{
		Workers:   a.config.Workers,
		RateLimit: a.config.RateLimit,
	}, a.fs, in, a.log)

	watchDone := a.watchStats(scanner.Stats(), showProgress)
	result, err := scanner.Scan(ctx, discovery.LogFiles)
	watchDone()
	if showProgress {
		a.progress.Stop()
	}
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	// A cancelled scan yields partial counts: workers drop queued tasks
	// on cancellation. Evaluating or ratcheting against those counts
	// would tighten limits off an incomplete run, so bail out instead.
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("run interrupted: %w", err)
	}

	aggregator := tally.NewAggregator(in, resolver, a.log)
	aggregator.AddAll(result.Warnings)

	run := tally.Evaluate(aggregator, set)
	a.reportRunErrors(discovery, result, run)

	output, err := a.formatter().Format(run)
	if err != nil {
		return fmt.Errorf("report formatting failed: %w", err)
	}
	if err := a.writeReport(output); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	if opts.UpdateLimits {
		updated, err := tally.UpdateLimitFiles(a.fs, run, resolver, set, opts.Prune)
		if err != nil {
			return fmt.Errorf("failed to update limit files: %w", err)
		}
		for _, path := range updated {
			fmt.Fprintf(a.stdout, "Updating `%s`\n", path)
		}
	}

	a.log.WithFields(logger.Fields{
		"filesScanned": scanner.Stats().FilesScanned(),
		"distinct":     aggregator.Distinct(),
		"violations":   run.Violations,
		"errors":       len(run.Errors),
	}).Info("Run completed")

	if !run.Success() {
		fmt.Fprintf(a.stderr, "Found %d violations against specified limits.\n", run.Violations)
		return ErrLimitsExceeded
	}

	return nil
}

// Shutdown performs a graceful shutdown of the application
func (a *App) Shutdown() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	select {
	case <-a.done:
		return nil
	default:
	}

	a.log.Debug("Shutting down")

	a.cancel()
	a.progress.Stop()
	close(a.done)

	return nil
}

// initLogger initializes the application logger
func (a *App) initLogger() {
	a.log = logger.NewLogger(logger.Config{
		Verbosity: a.config.Verbose,
	})
}

// initComponents initializes all application components
func (a *App) initComponents() {
	a.progress = progress.New(progress.Config{
		NoColor:     a.config.NoColor,
		RefreshRate: 100 * time.Millisecond,
	}, a.log)
}

// formatter builds the report formatter for the configured output format
func (a *App) formatter() report.Formatter {
	return report.NewFormatter(report.Config{
		Format:     report.Format(a.config.Output),
		Verbosity:  a.config.Verbose,
		WithColors: !a.config.NoColor,
	}, a.log)
}

// resolveStart validates the scan root and makes it absolute
func (a *App) resolveStart(start string) (string, error) {
	if start == "" {
		start = "."
	}

	abs, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("failed to resolve start directory: %w", err)
	}

	info, err := a.fs.Stat(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("start directory does not exist: %s", abs)
		}
		return "", fmt.Errorf("failed to access start directory: %w", err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("start path is not a directory: %s", abs)
	}

	return abs, nil
}

// discover walks the tree under start and classifies log and limit files
func (a *App) discover(ctx context.Context, start string, set *rules.Set, showProgress bool) (scan.Discovery, error) {
	walker := scan.NewWalker(a.fs, a.config.IgnorePatterns, a.log)

	if showProgress {
		var found atomic.Int64
		walker.OnFound(func() {
			a.progress.Update(progress.Status{
				FilesFound: found.Add(1),
			})
		})
	}

	return walker.Walk(ctx, start, set)
}

// watchStats feeds the scanner's counters to the progress display until the
// returned function is called
func (a *App) watchStats(stats *scan.Stats, showProgress bool) func() {
	if !showProgress {
		return func() {}
	}

	stop := make(chan struct{})
	go func() {
		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				a.progress.Update(progress.Status{
					FilesFound:   stats.FilesFound(),
					FilesScanned: stats.FilesScanned(),
					WarningsSeen: stats.WarningsSeen(),
					BytesRead:    stats.BytesRead(),
				})
			}
		}
	}()

	return func() { close(stop) }
}

// reportRunErrors writes discovery and extraction failures to stderr and
// folds them into the run result so structured reports carry them too
func (a *App) reportRunErrors(d scan.Discovery, result scan.Result, run *tally.RunResult) {
	paths := make([]string, 0, len(d.Errors))
	for path := range d.Errors {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	for _, path := range paths {
		run.Errors = append(run.Errors, fmt.Errorf("%s: %w", path, d.Errors[path]))
	}
	run.Errors = append(run.Errors, result.Errors...)

	for _, err := range run.Errors {
		fmt.Fprintln(a.stderr, err)
	}
}

// writeReport writes the formatted report to stdout or the configured file
func (a *App) writeReport(content string) error {
	if content != "" && !strings.HasSuffix(content, "\n") {
		content += "\n"
	}

	if a.config.OutputFile == "" {
		if content == "" {
			return nil
		}
		_, err := fmt.Fprint(a.stdout, content)
		return err
	}

	if err := afero.WriteFile(a.fs, a.config.OutputFile, []byte(content), 0o644); err != nil {
		a.log.WithFields(logger.Fields{
			"error": err,
			"path":  a.config.OutputFile,
		}).Error("Failed to write report file")
		return err
	}

	a.log.WithFields(logger.Fields{
		"path": a.config.OutputFile,
	}).Info("Report written")

	return nil
}
