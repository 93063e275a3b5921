package report

import (
	"gopkg.in/yaml.v3"

	"github.com/silven/wcnt/pkg/logger"
	"github.com/silven/wcnt/pkg/tally"
)

func (f *formatter) formatYAML(r *tally.RunResult) (string, error) {
	f.log.Debug("Formatting YAML report")

	// Reuse the JSON structure for YAML output
	bytes, err := yaml.Marshal(f.convertToReport(r))
	if err != nil {
		f.log.WithFields(logger.Fields{
			"error": err,
		}).Error("Failed to marshal YAML")
		return "", err
	}

	return string(bytes), nil
}
