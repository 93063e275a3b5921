package app

import (
	"bytes"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/silven/wcnt/internal/config"
	"github.com/silven/wcnt/pkg/logger"
)

const ruleFile = `
[gcc]
regex = '^(?P<file>[^:]+):(?P<line>\d+): warning: (?P<description>.+) \[(?P<category>.+)\]$'
files = ["*.log"]
`

// newTestApp builds an app against an in-memory tree with captured output
// streams.
func newTestApp(t *testing.T, cfg *config.Config, fs afero.Fs) (*App, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()

	a := New(cfg)
	var out, errOut bytes.Buffer
	a.fs = fs
	a.stdout = &out
	a.stderr = &errOut
	a.log = logger.NewLogger(logger.Config{Output: io.Discard})
	t.Cleanup(func() { _ = a.Shutdown() })

	return a, &out, &errOut
}

func testConfig() *config.Config {
	return &config.Config{
		Workers:    2,
		Output:     "text",
		Verbose:    1,
		NoProgress: true,
		NoColor:    true,
	}
}

func projectFs(t *testing.T, limitsContent, logContent string) afero.Fs {
	t.Helper()

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/project/Wcnt.toml", []byte(ruleFile), 0644))
	if limitsContent != "" {
		require.NoError(t, afero.WriteFile(fs, "/project/Limits.toml", []byte(limitsContent), 0644))
	}
	require.NoError(t, afero.WriteFile(fs, "/project/build.log", []byte(logContent), 0644))

	return fs
}

func TestRunReportsViolations(t *testing.T) {
	fs := projectFs(t, "[gcc]\n-Wpedantic = 1\n",
		"/project/src/a.c:10: warning: pedantry one [-Wpedantic]\n"+
			"/project/src/a.c:11: warning: pedantry two [-Wpedantic]\n")

	a, out, errOut := newTestApp(t, testConfig(), fs)

	err := a.Run(&RunOptions{Start: "/project"})
	require.ErrorIs(t, err, ErrLimitsExceeded)

	assert.Contains(t, out.String(), "/project/Limits.toml:[gcc/-Wpedantic] (2 > 1)")
	assert.Contains(t, errOut.String(), "Found 1 violations against specified limits.")
}

func TestRunSucceedsWithinLimits(t *testing.T) {
	fs := projectFs(t, "[gcc]\n-Wpedantic = 5\n",
		"/project/src/a.c:10: warning: pedantry one [-Wpedantic]\n")

	a, _, errOut := newTestApp(t, testConfig(), fs)

	err := a.Run(&RunOptions{Start: "/project"})
	require.NoError(t, err)
	assert.Empty(t, errOut.String())
}

func TestRunDeduplicatesIdenticalWarnings(t *testing.T) {
	line := "/project/src/a.c:10: warning: pedantry [-Wpedantic]\n"
	fs := projectFs(t, "[gcc]\n-Wpedantic = 1\n", line+line+line)

	// Verbosity 2 so the clean entry is rendered at all.
	cfg := testConfig()
	cfg.Verbose = 2
	a, out, _ := newTestApp(t, cfg, fs)

	err := a.Run(&RunOptions{Start: "/project"})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "(1 <= 1)")
}

func TestRunUpdateLimitsRatchetsDown(t *testing.T) {
	fs := projectFs(t, "[gcc]\n-Wpedantic = 5\n",
		"/project/src/a.c:10: warning: pedantry one [-Wpedantic]\n"+
			"/project/src/a.c:11: warning: pedantry two [-Wpedantic]\n")

	a, out, _ := newTestApp(t, testConfig(), fs)

	err := a.Run(&RunOptions{Start: "/project", UpdateLimits: true})
	require.NoError(t, err)

	assert.Contains(t, out.String(), "Updating `/project/Limits.toml`")

	rewritten, err := afero.ReadFile(fs, "/project/Limits.toml")
	require.NoError(t, err)
	assert.Equal(t, "[gcc]\n-Wpedantic = 2\n", string(rewritten))
}

func TestRunUpdateLimitsSkipsViolatedKind(t *testing.T) {
	fs := projectFs(t, "[gcc]\n-Wpedantic = 1\n",
		"/project/src/a.c:10: warning: pedantry one [-Wpedantic]\n"+
			"/project/src/a.c:11: warning: pedantry two [-Wpedantic]\n")

	a, out, _ := newTestApp(t, testConfig(), fs)

	err := a.Run(&RunOptions{Start: "/project", UpdateLimits: true})
	require.ErrorIs(t, err, ErrLimitsExceeded)

	assert.NotContains(t, out.String(), "Updating")

	unchanged, readErr := afero.ReadFile(fs, "/project/Limits.toml")
	require.NoError(t, readErr)
	assert.Equal(t, "[gcc]\n-Wpedantic = 1\n", string(unchanged))
}

func TestRunNoLimitFileFailsClosed(t *testing.T) {
	fs := projectFs(t, "",
		"/project/src/a.c:10: warning: pedantry [-Wpedantic]\n")

	a, out, errOut := newTestApp(t, testConfig(), fs)

	err := a.Run(&RunOptions{Start: "/project"})
	require.ErrorIs(t, err, ErrLimitsExceeded)

	assert.Contains(t, out.String(), "_:[gcc/-Wpedantic] (1 > 0)")
	assert.Contains(t, errOut.String(), "Found 1 violations")
}

func TestRunMissingRuleFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/project", 0755))

	a, _, _ := newTestApp(t, testConfig(), fs)

	err := a.Run(&RunOptions{Start: "/project"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrLimitsExceeded)
}

func TestRunMissingStartDirectory(t *testing.T) {
	a, _, _ := newTestApp(t, testConfig(), afero.NewMemMapFs())

	err := a.Run(&RunOptions{Start: "/nowhere"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not exist")
}

func TestRunOnlyRestrictsKinds(t *testing.T) {
	fs := projectFs(t, "[gcc]\n-Wpedantic = 0\n",
		"/project/src/a.c:10: warning: pedantry [-Wpedantic]\n")

	a, _, _ := newTestApp(t, testConfig(), fs)

	err := a.Run(&RunOptions{Start: "/project", Only: []string{"clang"}})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrLimitsExceeded)
}

func TestRunWritesReportFile(t *testing.T) {
	fs := projectFs(t, "[gcc]\n-Wpedantic = 1\n",
		"/project/src/a.c:10: warning: pedantry one [-Wpedantic]\n"+
			"/project/src/a.c:11: warning: pedantry two [-Wpedantic]\n")

	cfg := testConfig()
	cfg.OutputFile = "/project/report.txt"
	a, out, _ := newTestApp(t, cfg, fs)

	err := a.Run(&RunOptions{Start: "/project"})
	require.ErrorIs(t, err, ErrLimitsExceeded)

	assert.Empty(t, out.String())

	written, readErr := afero.ReadFile(fs, "/project/report.txt")
	require.NoError(t, readErr)
	assert.Contains(t, string(written), "(2 > 1)")
}

const twoKindRules = `
[gcc]
regex = '^(?P<file>[^:]+):(?P<line>\d+): warning: (?P<description>.+) \[(?P<category>.+)\]$'
files = ["*.log"]

[flake8]
regex = '^(?P<file>[^:]+):(?P<line>\d+): (?P<category>[A-Z]\d+) (?P<description>.+)$'
files = ["*.txt"]
`

func TestRunOnlyStillRatchetsSharedLocations(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/project/Wcnt.toml", []byte(twoKindRules), 0644))
	require.NoError(t, afero.WriteFile(fs, "/project/Limits.toml",
		[]byte("flake8 = 100\n\n[gcc]\n-Wpedantic = 5\n"), 0644))
	require.NoError(t, afero.WriteFile(fs, "/project/build.log",
		[]byte("/project/src/a.c:10: warning: pedantry [-Wpedantic]\n"), 0644))

	a, out, errOut := newTestApp(t, testConfig(), fs)

	err := a.Run(&RunOptions{Start: "/project", Only: []string{"gcc"}, UpdateLimits: true})
	require.NoError(t, err)

	// Declarations for the excluded kind are valid configuration, not
	// errors, and must not block ratcheting the included kind here.
	assert.NotContains(t, errOut.String(), "not configured")
	assert.Contains(t, out.String(), "Updating `/project/Limits.toml`")

	rewritten, readErr := afero.ReadFile(fs, "/project/Limits.toml")
	require.NoError(t, readErr)
	assert.Equal(t, "flake8 = 100\n\n[gcc]\n-Wpedantic = 1\n", string(rewritten))
}

// cancelOnOpenFs cancels the run the first time a file with the given
// suffix is opened, simulating an interrupt mid-scan.
type cancelOnOpenFs struct {
	afero.Fs
	suffix string
	cancel func()
	once   sync.Once
}

func (c *cancelOnOpenFs) Open(name string) (afero.File, error) {
	if strings.HasSuffix(name, c.suffix) {
		c.once.Do(c.cancel)
	}
	return c.Fs.Open(name)
}

func TestRunInterruptedScanDoesNotRatchet(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/project/Wcnt.toml", []byte(ruleFile), 0644))
	require.NoError(t, afero.WriteFile(fs, "/project/Limits.toml",
		[]byte("[gcc]\n-Wpedantic = 10\n"), 0644))
	require.NoError(t, afero.WriteFile(fs, "/project/a.log",
		[]byte("/project/src/a.c:10: warning: one [-Wpedantic]\n"), 0644))
	require.NoError(t, afero.WriteFile(fs, "/project/b.log",
		[]byte("/project/src/b.c:20: warning: two [-Wpedantic]\n"), 0644))

	cfg := testConfig()
	cfg.Workers = 1
	a, _, _ := newTestApp(t, cfg, fs)
	a.fs = &cancelOnOpenFs{Fs: fs, suffix: ".log", cancel: a.cancel}

	err := a.Run(&RunOptions{Start: "/project", UpdateLimits: true})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrLimitsExceeded)

	// The partial count must not tighten the limit.
	content, readErr := afero.ReadFile(fs, "/project/Limits.toml")
	require.NoError(t, readErr)
	assert.Equal(t, "[gcc]\n-Wpedantic = 10\n", string(content))
}

func TestShutdownIsIdempotent(t *testing.T) {
	a, _, _ := newTestApp(t, testConfig(), afero.NewMemMapFs())

	require.NoError(t, a.Shutdown())
	require.NoError(t, a.Shutdown())
}
