package scan

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/silven/wcnt/pkg/limits"
	"github.com/silven/wcnt/pkg/logger"
	"github.com/silven/wcnt/pkg/rules"
)

// Walker enumerates a directory tree and classifies files of interest:
// Limits.toml files and log files matching some kind's globs.
type Walker struct {
	fs      afero.Fs
	log     logger.Logger
	ignore  []string
	onFound func()
}

// NewWalker creates a walker. Ignore patterns are matched against base
// names and slashed paths.
func NewWalker(fs afero.Fs, ignorePatterns []string, log logger.Logger) *Walker {
	return &Walker{fs: fs, log: log, ignore: ignorePatterns}
}

// OnFound registers a callback invoked for every classified file, used for
// progress reporting.
func (w *Walker) OnFound(fn func()) {
	w.onFound = fn
}

// Walk classifies the tree under root. Per-path failures are collected in
// the Discovery; only an unreadable root is fatal.
func (w *Walker) Walk(ctx context.Context, root string, set *rules.Set) (Discovery, error) {
	d := Discovery{Errors: make(map[string]error)}

	info, err := w.fs.Stat(root)
	if err != nil {
		return d, fmt.Errorf("failed to stat scan root %s: %w", root, err)
	}
	if !info.IsDir() {
		return d, fmt.Errorf("scan root is not a directory: %s", root)
	}

	w.log.WithFields(logger.Fields{
		"root":     root,
		"patterns": w.ignore,
	}).Info("Starting discovery walk")

	err = afero.Walk(w.fs, root, func(path string, info os.FileInfo, err error) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err != nil {
			w.log.WithFields(logger.Fields{
				"path":  path,
				"error": err,
			}).Warn("Failed to access path during walk")
			d.Errors[path] = err
			return nil
		}

		if w.shouldIgnore(path) {
			w.log.WithFields(logger.Fields{"path": path}).Debug("Ignoring path")
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if info.IsDir() {
			return nil
		}

		w.classify(&d, set, path)
		return nil
	})
	if err != nil {
		return d, err
	}

	w.log.WithFields(logger.Fields{
		"logFiles":   len(d.LogFiles),
		"limitFiles": len(d.LimitFiles),
		"errors":     len(d.Errors),
	}).Info("Discovery walk completed")

	return d, nil
}

func (w *Walker) classify(d *Discovery, set *rules.Set, path string) {
	if filepath.Base(path) == limits.FileName {
		d.LimitFiles = append(d.LimitFiles, path)
		if w.onFound != nil {
			w.onFound()
		}
		return
	}

	matched := set.Matching(path)
	if len(matched) == 0 {
		return
	}

	d.LogFiles = append(d.LogFiles, LogFile{Path: path, Kinds: matched})
	if w.onFound != nil {
		w.onFound()
	}
}

// shouldIgnore checks a path against the ignore patterns: base-name
// matches, directory patterns ending in "/", "**/"-prefixed patterns, and
// patterns containing path separators.
func (w *Walker) shouldIgnore(path string) bool {
	base := filepath.Base(path)
	relPath := filepath.ToSlash(path)

	for _, pattern := range w.ignore {
		pattern = filepath.ToSlash(pattern)

		if matched, _ := filepath.Match(pattern, base); matched {
			return true
		}

		if strings.HasSuffix(pattern, "/") {
			dirPattern := strings.TrimSuffix(pattern, "/")
			if strings.Contains(relPath, "/"+dirPattern+"/") || base == dirPattern {
				return true
			}
		}

		if strings.Contains(pattern, "/") {
			if matched, _ := filepath.Match(pattern, relPath); matched {
				return true
			}
			if suffix, ok := strings.CutPrefix(pattern, "**/"); ok {
				if matched, _ := filepath.Match(suffix, base); matched {
					return true
				}
			}
		}
	}
	return false
}
