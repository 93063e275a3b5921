/*
wcnt counts warnings in build and lint logs and checks the counts against
per-directory limits.

The root command runs a full count: it loads the Wcnt.toml rule file,
discovers log files under the start directory, extracts and deduplicates
warnings, and compares the totals against the nearest Limits.toml of each
offending source file. With --update-limits the limit files are ratcheted
down to the observed counts.

Usage:

	wcnt [flags]
	wcnt version [--full]

Exit status is 1 when any limit is violated or the run fails.
*/
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/silven/wcnt/cmd/wcnt/app"
	"github.com/silven/wcnt/cmd/wcnt/commands"
)

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		// The violation summary is already on stderr; anything else is a
		// genuine failure worth printing.
		if !errors.Is(err, app.ErrLimitsExceeded) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}
