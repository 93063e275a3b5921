package progress

import (
	"fmt"
	"strings"
	"time"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// line builds the status line from the current state. Callers hold p.mu.
func (p *progress) line() string {
	spinner := spinnerFrames[p.frame]
	if !p.config.NoColor {
		spinner = fmt.Sprintf("\033[36m%s\033[0m", spinner) // Cyan
	}

	var b strings.Builder
	fmt.Fprintf(&b, "\r%s %s", spinner, p.message)
	fmt.Fprintf(&b, " | %d/%d files", p.status.FilesScanned, p.status.FilesFound)
	if p.status.WarningsSeen > 0 {
		fmt.Fprintf(&b, " | %d warnings", p.status.WarningsSeen)
	}
	if p.status.BytesRead > 0 {
		fmt.Fprintf(&b, " | %s", formatSize(p.status.BytesRead))
	}
	if elapsed := time.Since(p.startTime); elapsed > time.Second {
		fmt.Fprintf(&b, " | %s", formatDuration(elapsed))
	}

	line := b.String()
	if p.width > 0 && len(line) > p.width {
		line = line[:p.width]
	}
	return line
}

// Helper functions

func formatDuration(d time.Duration) string {
	if d <= 0 {
		return "0s"
	}
	d = d.Round(time.Second)
	if d < time.Minute {
		return fmt.Sprintf("%.0fs", d.Seconds())
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm%ds",
			int(d.Minutes()),
			int(d.Seconds())%60)
	}
	return fmt.Sprintf("%dh%dm%ds",
		int(d.Hours()),
		int(d.Minutes())%60,
		int(d.Seconds())%60)
}

func formatSize(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
