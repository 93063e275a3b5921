package config

// OutputFormat represents the supported report formats
type OutputFormat string

const (
	// OutputFormatText represents the human-readable text report
	OutputFormatText OutputFormat = "text"

	// OutputFormatJSON represents the JSON report format
	OutputFormatJSON OutputFormat = "json"

	// OutputFormatYAML represents the YAML report format
	OutputFormatYAML OutputFormat = "yaml"
)

// Constants for configuration limits and defaults
const (
	// MaxWorkerMultiplier is the maximum multiple of CPU cores for worker count
	MaxWorkerMultiplier = 4

	// DefaultRuleFileName is the rule file looked up under the scan root
	// when no --config flag is given
	DefaultRuleFileName = "Wcnt.toml"
)
