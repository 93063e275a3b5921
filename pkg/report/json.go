package report

import (
	"encoding/json"

	"github.com/silven/wcnt/pkg/logger"
	"github.com/silven/wcnt/pkg/tally"
)

// jsonVerdict represents one verdict in machine-readable output
type jsonVerdict struct {
	Location string        `json:"location,omitempty"`
	Kind     string        `json:"kind"`
	Category string        `json:"category"`
	Observed int           `json:"observed"`
	Limit    string        `json:"limit"`
	Violated bool          `json:"violated"`
	Warnings []jsonWarning `json:"warnings,omitempty"`
}

// jsonWarning represents one occurrence behind a violated verdict
type jsonWarning struct {
	File        string `json:"file"`
	Line        int    `json:"line,omitempty"`
	Column      int    `json:"column,omitempty"`
	Category    string `json:"category,omitempty"`
	Description string `json:"description,omitempty"`
}

// jsonReport represents the complete machine-readable output
type jsonReport struct {
	Verdicts   []jsonVerdict `json:"verdicts"`
	Violations int           `json:"violations"`
	Errors     []string      `json:"errors,omitempty"`
}

func (f *formatter) formatJSON(r *tally.RunResult) (string, error) {
	f.log.Debug("Formatting JSON report")

	bytes, err := json.MarshalIndent(f.convertToReport(r), "", "  ")
	if err != nil {
		f.log.WithFields(logger.Fields{
			"error": err,
		}).Error("Failed to marshal JSON")
		return "", err
	}

	return string(bytes), nil
}

// convertToReport flattens a run result into the serializable shape shared
// by the JSON and YAML renderers. Occurrence details ride along only for
// violated verdicts at verbosity 2, mirroring the text report.
func (f *formatter) convertToReport(r *tally.RunResult) *jsonReport {
	out := &jsonReport{
		Verdicts:   make([]jsonVerdict, 0, len(r.Verdicts)),
		Violations: r.Violations,
	}
	for _, v := range r.Verdicts {
		jv := jsonVerdict{
			Location: v.Location,
			Kind:     v.Kind,
			Category: v.Category,
			Observed: v.Observed,
			Limit:    v.Limit.String(),
			Violated: v.Violated,
		}
		if v.Violated && f.config.Verbosity >= 2 {
			for _, d := range r.Details(v) {
				jv.Warnings = append(jv.Warnings, jsonWarning{
					File:        d.File,
					Line:        d.Line,
					Column:      d.Col,
					Category:    d.Category,
					Description: d.Desc,
				})
			}
		}
		out.Verdicts = append(out.Verdicts, jv)
	}
	for _, err := range r.Errors {
		out.Errors = append(out.Errors, err.Error())
	}
	return out
}
