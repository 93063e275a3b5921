/*
Package scan discovers files of interest in a directory tree and extracts
warning occurrences from log files.

Discovery (the Walker) classifies the tree into Limits.toml files and log
files matched by some kind's globs. Extraction (the Scanner) then applies
each matching kind's pattern to each log file on a bounded worker pool and
emits deduplicatable Warning values. Emission order is not guaranteed and
must not matter; deduplication and counting downstream are order
independent.
*/
package scan

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/afero"

	"github.com/silven/wcnt/pkg/intern"
	"github.com/silven/wcnt/pkg/logger"
	"github.com/silven/wcnt/pkg/rules"
	"github.com/silven/wcnt/pkg/worker"
)

// Scanner extracts warnings from log files using a bounded worker pool.
// Workers share only the interner and the pool's output channel.
type Scanner struct {
	config Config
	fs     afero.Fs
	in     *intern.Interner
	log    logger.Logger
	stats  Stats
}

// NewScanner creates a scanner. The interner is shared with the aggregation
// stage so handles stay comparable across the whole run.
func NewScanner(config Config, fs afero.Fs, in *intern.Interner, log logger.Logger) *Scanner {
	return &Scanner{
		config: config,
		fs:     fs,
		in:     in,
		log:    log,
	}
}

// Stats returns the scanner's live progress counters.
func (s *Scanner) Stats() *Stats {
	return &s.stats
}

// Scan pattern-matches every log file against each of its kinds and returns
// the extracted warnings. Per-file and per-match failures are collected;
// only a broken worker pool is fatal.
func (s *Scanner) Scan(ctx context.Context, files []LogFile) (Result, error) {
	result := Result{}
	if len(files) == 0 {
		return result, nil
	}
	s.stats.filesFound.Store(int64(len(files)))

	s.log.WithFields(logger.Fields{
		"files":   len(files),
		"workers": s.config.Workers,
	}).Info("Starting log scan")

	pool, err := worker.NewPool(worker.Config{
		Workers:   s.config.Workers,
		RateLimit: s.config.RateLimit,
	})
	if err != nil {
		return result, fmt.Errorf("failed to create worker pool: %w", err)
	}
	if err := pool.Start(ctx); err != nil {
		return result, fmt.Errorf("failed to start worker pool: %w", err)
	}
	defer func() {
		if err := pool.Stop(); err != nil {
			s.log.WithFields(logger.Fields{"error": err}).Warn("Error stopping worker pool")
		}
	}()

	for i, lf := range files {
		lf := lf
		task := worker.Task{
			ID: i,
			Execute: func(ctx context.Context) (worker.Result, error) {
				return worker.Result{ID: i, Data: s.scanFile(ctx, lf)}, nil
			},
		}
		if err := pool.Submit(task); err != nil {
			result.Errors = append(result.Errors,
				fmt.Errorf("failed to submit scan task for %s: %w", lf.Path, err))
		}
	}

	taskResults, err := pool.Wait()
	if err != nil {
		return result, fmt.Errorf("error waiting for scan workers: %w", err)
	}

	for _, tr := range taskResults {
		fr, ok := tr.Data.(fileResult)
		if !ok {
			continue
		}
		result.Warnings = append(result.Warnings, fr.warnings...)
		result.Errors = append(result.Errors, fr.errs...)
	}

	s.log.WithFields(logger.Fields{
		"warnings": len(result.Warnings),
		"errors":   len(result.Errors),
	}).Info("Log scan completed")

	return result, nil
}

// scanFile reads one log file and applies every matching kind's pattern to
// its full contents.
func (s *Scanner) scanFile(ctx context.Context, lf LogFile) fileResult {
	fr := fileResult{path: lf.Path}

	select {
	case <-ctx.Done():
		return fr
	default:
	}

	data, err := afero.ReadFile(s.fs, lf.Path)
	if err != nil {
		s.log.WithFields(logger.Fields{
			"path":  lf.Path,
			"error": err,
		}).Warn("Could not read log file")
		fr.errs = append(fr.errs, fmt.Errorf("could not read log file %s: %w", lf.Path, err))
		return fr
	}
	s.stats.bytesRead.Add(int64(len(data)))

	contents := string(data)
	for _, kind := range lf.Kinds {
		fr.warnings, fr.errs = s.matchKind(kind, lf.Path, contents, fr.warnings, fr.errs)
	}

	s.stats.filesScanned.Add(1)
	return fr
}

// matchKind runs one kind's pattern over the file contents. A match with an
// empty file group is a configuration error, surfaced once per kind and
// file, never silently dropped.
func (s *Scanner) matchKind(kind *rules.Kind, logPath, contents string, warnings []Warning, errs []error) ([]Warning, []error) {
	kindHandle := s.in.Intern(kind.Name)
	missingFile := false

	for _, m := range kind.Pattern.FindAllStringSubmatch(contents, -1) {
		culprit := m[kind.FileIdx]
		if culprit == "" {
			if !missingFile {
				errs = append(errs, fmt.Errorf(
					"kind %q matched in %s without capturing the required `file` group", kind.Name, logPath))
				missingFile = true
			}
			continue
		}

		w := Warning{
			Kind: kindHandle,
			File: s.in.Intern(normalizePath(culprit)),
			Line: group(m, kind.LineIdx),
			Col:  group(m, kind.ColIdx),
		}
		if kind.CatIdx >= 0 && m[kind.CatIdx] != "" {
			w.Category = s.in.Intern(m[kind.CatIdx])
		}
		if kind.DescIdx >= 0 && m[kind.DescIdx] != "" {
			w.Desc = s.in.Intern(m[kind.DescIdx])
		}

		warnings = append(warnings, w)
		s.stats.warningsSeen.Add(1)
	}
	return warnings, errs
}

// group parses an optional positional capture as a positive integer;
// 0 means unset.
func group(m []string, idx int) int {
	if idx < 0 || m[idx] == "" {
		return 0
	}
	n, err := strconv.Atoi(m[idx])
	if err != nil || n <= 0 {
		return 0
	}
	return n
}

// normalizePath converts a culprit path from log output to slashed form so
// identical diagnostics compare equal regardless of the emitting tool's
// separator convention.
func normalizePath(p string) string {
	return strings.ReplaceAll(p, "\\", "/")
}
