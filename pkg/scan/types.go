package scan

import (
	"sync/atomic"

	"github.com/silven/wcnt/pkg/intern"
	"github.com/silven/wcnt/pkg/rules"
)

// LogFile is a file on disk identified as relevant to scan. One log file may
// be searched once per matching kind, each with its own pattern: a build
// system may funnel several tools into one log.
type LogFile struct {
	Path  string
	Kinds []*rules.Kind
}

// Discovery is the classification of the scanned tree: the log files to
// search, grouped with the kinds whose globs matched them, and the
// Limits.toml files found along the way.
type Discovery struct {
	LogFiles   []LogFile
	LimitFiles []string

	// Errors holds per-path walk failures. They do not stop the walk.
	Errors map[string]error
}

// Warning is one extracted warning occurrence. All text fields are interned;
// the struct itself is the dedup identity: two warnings with equal fields
// count once, even when found through different log files or kinds' patterns
// matching the same diagnostic.
type Warning struct {
	Kind     intern.Handle
	File     intern.Handle
	Line     int
	Col      int
	Category intern.Handle
	Desc     intern.Handle
}

// Result is the outcome of scanning all log files.
type Result struct {
	Warnings []Warning

	// Errors holds extraction errors: one per kind whose pattern matched
	// without capturing the required file group, plus per-file read
	// failures. They do not stop the batch.
	Errors []error
}

// Config holds scanner configuration.
type Config struct {
	// Workers is the number of concurrent scan workers.
	Workers int

	// RateLimit caps file operations per second (0 for unlimited).
	RateLimit int
}

// Stats carries the scanner's progress counters, updated atomically by the
// workers and read by the progress display.
type Stats struct {
	filesFound   atomic.Int64
	filesScanned atomic.Int64
	warningsSeen atomic.Int64
	bytesRead    atomic.Int64
}

func (s *Stats) FilesFound() int64   { return s.filesFound.Load() }
func (s *Stats) FilesScanned() int64 { return s.filesScanned.Load() }
func (s *Stats) WarningsSeen() int64 { return s.warningsSeen.Load() }
func (s *Stats) BytesRead() int64    { return s.bytesRead.Load() }

// fileResult is the per-task payload handed back through the worker pool.
type fileResult struct {
	path     string
	warnings []Warning
	errs     []error
}
