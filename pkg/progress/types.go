package progress

import "time"

// Config holds the configuration for progress reporting
type Config struct {
	// NoColor disables colored output
	NoColor bool

	// RefreshRate defines how often the status line updates
	RefreshRate time.Duration

	// Width is the maximum line width (0 = auto-detect)
	Width int
}

// Status represents the current run state shown on the status line
type Status struct {
	// Files discovered so far
	FilesFound int64

	// Log files scanned so far
	FilesScanned int64

	// Warnings extracted so far, before deduplication
	WarningsSeen int64

	// Bytes of log data read
	BytesRead int64
}

// Progress defines the interface for run progress reporting
type Progress interface {
	// Start begins the status line with an initial message
	Start(message string)

	// Update updates the displayed counters
	Update(status Status)

	// Complete replaces the status line with a final message
	Complete(message string)

	// Stop clears the status line
	Stop()

	// IsSupportedTerminal checks if the terminal supports the status line
	IsSupportedTerminal() bool
}
