// Package version exposes the build identity of the wcnt binary. Version
// is set by the linker on release builds; commit and build date come from
// the VCS stamps the Go toolchain embeds.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"
)

// Version is overridden at build time via -ldflags "-X".
var Version = "dev"

// BuildInfo is the resolved build identity of the running binary.
type BuildInfo struct {
	Version   string
	Commit    string
	Modified  bool
	BuildDate string
	GoVersion string
	Platform  string
}

// Get resolves the build identity from the embedded build information.
// Fields without a stamp report "unknown".
func Get() BuildInfo {
	info := BuildInfo{
		Version:   Version,
		Commit:    "unknown",
		BuildDate: "unknown",
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}

	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			info.Commit = s.Value
		case "vcs.time":
			info.BuildDate = s.Value
		case "vcs.modified":
			info.Modified = s.Value == "true"
		}
	}
	return info
}

// FullVersion renders the build identity for `wcnt version --full`.
func FullVersion() string {
	info := Get()

	commit := info.Commit
	if len(commit) > 12 {
		commit = commit[:12]
	}
	if info.Modified {
		commit += " (modified)"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "wcnt %s\n", info.Version)
	fmt.Fprintf(&b, "  commit:     %s\n", commit)
	fmt.Fprintf(&b, "  built:      %s\n", info.BuildDate)
	fmt.Fprintf(&b, "  go version: %s\n", info.GoVersion)
	fmt.Fprintf(&b, "  platform:   %s\n", info.Platform)
	return b.String()
}
