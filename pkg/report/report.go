/*
Package report renders run verdicts in various formats including colored
text, JSON, and YAML.

Basic usage:

	formatter := report.NewFormatter(report.Config{
		Format:     report.FormatText,
		Verbosity:  1,
		WithColors: true,
	}, log)

	out, err := formatter.Format(result)
*/
package report

import (
	"fmt"

	"github.com/silven/wcnt/pkg/logger"
	"github.com/silven/wcnt/pkg/tally"
)

// Format represents the report format type
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Config holds formatter configuration
type Config struct {
	Format     Format
	Verbosity  int
	WithColors bool
}

// Formatter defines the interface for verdict formatting
type Formatter interface {
	Format(*tally.RunResult) (string, error)
}

type formatter struct {
	config Config
	log    logger.Logger
}

// NewFormatter creates a new formatter instance
func NewFormatter(config Config, log logger.Logger) Formatter {
	return &formatter{
		config: config,
		log:    log,
	}
}

// Format renders the run result according to the configured format
func (f *formatter) Format(r *tally.RunResult) (string, error) {
	if r == nil {
		msg := "nil run result provided for formatting"
		f.log.Error(msg)
		return "", fmt.Errorf(msg)
	}

	f.log.WithFields(logger.Fields{
		"format":    f.config.Format,
		"verbosity": f.config.Verbosity,
		"verdicts":  len(r.Verdicts),
	}).Debug("Starting format operation")

	switch f.config.Format {
	case FormatText:
		return f.formatText(r)
	case FormatJSON:
		return f.formatJSON(r)
	case FormatYAML:
		return f.formatYAML(r)
	default:
		msg := fmt.Sprintf("unsupported format: %s", f.config.Format)
		f.log.Error(msg)
		return "", fmt.Errorf(msg)
	}
}
