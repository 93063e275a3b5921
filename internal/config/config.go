/*
Package config provides configuration management for the wcnt application.
It handles both environment variables and validation of all configuration parameters.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Environment Variables:

	WCNT_WORKERS          Number of concurrent scan workers
	WCNT_RATE_LIMIT       Rate limit for file operations
	WCNT_IGNORE           Comma-separated ignore patterns
	WCNT_OUTPUT           Report format: text|json|yaml
	WCNT_OUTPUT_FILE      Report file path
	WCNT_NO_PROGRESS      Disable progress reporting
	WCNT_NO_COLOR         Disable colored output
	WCNT_VERBOSE          Verbosity level (number of 'v's)

Default Values:

	Workers:    Number of CPU cores
	Output:     "text"
	RateLimit:  0 (unlimited)
*/
package config

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration parameters for the application
type Config struct {
	// Workers is the number of concurrent workers for log scanning
	Workers int

	// IgnorePatterns is a list of patterns to skip during discovery
	IgnorePatterns []string

	// Output specifies the report format (text, json, or yaml)
	Output string

	// OutputFile is the path to write the report (empty for stdout)
	OutputFile string

	// RateLimit is the maximum number of file operations per second (0 for unlimited)
	RateLimit int

	// NoProgress disables progress reporting
	NoProgress bool

	// NoColor disables colored output
	NoColor bool

	// Verbose sets the verbosity level
	Verbose int
}

// validOutputFormats contains the list of supported report formats
var validOutputFormats = map[string]bool{
	"text": true,
	"json": true,
	"yaml": true,
}

// Load reads configuration from environment variables and validates it
func Load() (Config, error) {
	v := viper.New()

	// Set default values
	v.SetDefault("workers", runtime.NumCPU())
	v.SetDefault("output", "text")
	v.SetDefault("rate_limit", 0)
	v.SetDefault("no_progress", false)
	v.SetDefault("no_color", false)
	v.SetDefault("verbose", 0)

	// Configure environment variables
	v.SetEnvPrefix("WCNT")
	v.AutomaticEnv()

	// Map environment variables to config fields
	v.BindEnv("workers")
	v.BindEnv("ignore")
	v.BindEnv("output")
	v.BindEnv("output_file")
	v.BindEnv("rate_limit")
	v.BindEnv("no_progress")
	v.BindEnv("no_color")
	v.BindEnv("verbose")

	// Process verbosity level from string of 'v's
	if verboseStr := v.GetString("verbose"); verboseStr != "" {
		v.Set("verbose", strings.Count(verboseStr, "v"))
	}

	// Create config instance
	cfg := Config{
		Workers:    v.GetInt("workers"),
		Output:     v.GetString("output"),
		OutputFile: v.GetString("output_file"),
		RateLimit:  v.GetInt("rate_limit"),
		NoProgress: v.GetBool("no_progress"),
		NoColor:    v.GetBool("no_color"),
		Verbose:    v.GetInt("verbose"),
	}

	// Handle special case for workers=0
	if cfg.Workers == 0 {
		cfg.Workers = runtime.NumCPU()
	}

	// Process ignore patterns
	if ignoreStr := v.GetString("ignore"); ignoreStr != "" {
		patterns := strings.Split(ignoreStr, ",")
		cfg.IgnorePatterns = make([]string, 0, len(patterns))
		for _, p := range patterns {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				cfg.IgnorePatterns = append(cfg.IgnorePatterns, trimmed)
			}
		}
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate checks if the configuration is valid
func (c Config) Validate() error {
	// Validate workers count
	if c.Workers < 0 {
		return fmt.Errorf("workers count must be positive")
	}
	maxWorkers := runtime.NumCPU() * MaxWorkerMultiplier
	if c.Workers > maxWorkers {
		return fmt.Errorf("workers count cannot exceed system CPU count * %d", MaxWorkerMultiplier)
	}

	// Validate report format
	if !validOutputFormats[c.Output] {
		return fmt.Errorf("invalid output format: must be one of [text json yaml]")
	}

	// Validate rate limit
	if c.RateLimit < 0 {
		return fmt.Errorf("rate limit must be non-negative")
	}

	return nil
}

// String returns a string representation of the configuration
func (c Config) String() string {
	return fmt.Sprintf(
		"Config{Workers: %d, Output: %s, RateLimit: %d, NoProgress: %v, "+
			"NoColor: %v, Verbose: %d, IgnorePatterns: %v, OutputFile: %s}",
		c.Workers, c.Output, c.RateLimit, c.NoProgress,
		c.NoColor, c.Verbose, c.IgnorePatterns, c.OutputFile,
	)
}
