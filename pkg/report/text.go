package report

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/fatih/color"

	"github.com/silven/wcnt/pkg/tally"
)

// formatText renders the verdicts as display lines. Verbosity 1 prints the
// violated entries; verbosity 2 adds the clean entries and the individual
// warnings behind each violation.
func (f *formatter) formatText(r *tally.RunResult) (string, error) {
	f.log.Debug("Formatting text report")

	var builder strings.Builder

	if f.config.Verbosity >= 2 {
		for _, v := range r.Verdicts {
			if !v.Violated {
				builder.WriteString(f.entryLine(v))
				builder.WriteByte('\n')
			}
		}
	}
	if f.config.Verbosity >= 1 {
		for _, v := range r.Verdicts {
			if !v.Violated {
				continue
			}
			builder.WriteString(f.entryLine(v))
			builder.WriteByte('\n')
			if f.config.Verbosity >= 2 {
				for _, d := range r.Details(v) {
					builder.WriteString("  => ")
					builder.WriteString(detailLine(d))
					builder.WriteByte('\n')
				}
			}
		}
	}

	return builder.String(), nil
}

// entryLine renders one verdict as `location:[kind/category] (N cmp M)`.
// The no-limits location renders as `_`, long locations keep their last
// four path components.
func (f *formatter) entryLine(v tally.Verdict) string {
	entry := fmt.Sprintf("%s:[%s/%s]", displayLocation(v.Location), v.Kind, v.Category)

	var count string
	switch {
	case v.Limit.IsInfinite():
		count = fmt.Sprintf("(%d < inf)", v.Observed)
	case v.Violated:
		count = fmt.Sprintf("(%d > %d)", v.Observed, v.Limit.Value())
	default:
		count = fmt.Sprintf("(%d <= %d)", v.Observed, v.Limit.Value())
	}

	if f.config.WithColors {
		if v.Violated {
			count = color.New(color.FgRed, color.Bold).Sprint(count)
		} else {
			count = color.New(color.FgGreen).Sprint(count)
		}
	}

	return entry + " " + count
}

// detailLine renders one occurrence as `culprit:line:col: desc [category]`,
// with `?` standing in for an uncaptured line or column.
func detailLine(d tally.Detail) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s:%s:%s", d.File, optional(d.Line), optional(d.Col))
	if d.Desc != "" {
		fmt.Fprintf(&b, ": %s", d.Desc)
	}
	if d.Category != "" {
		fmt.Fprintf(&b, " [%s]", d.Category)
	}
	return b.String()
}

func optional(n int) string {
	if n == 0 {
		return "?"
	}
	return strconv.Itoa(n)
}

func displayLocation(loc string) string {
	if loc == "" {
		return "_"
	}
	parts := strings.Split(loc, "/")
	if len(parts) > 5 {
		return ".../" + strings.Join(parts[len(parts)-4:], "/")
	}
	return loc
}
