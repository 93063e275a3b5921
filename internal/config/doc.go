// Package config provides configuration management for the wcnt application.
// It handles environment variables, command-line flags, and validation of all
// configuration parameters.
//
// # Configuration Loading
//
// To load the configuration:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// # Environment Variables
//
// The following environment variables are supported:
//
//	WCNT_WORKERS      Number of concurrent scan workers (default: CPU cores)
//	WCNT_RATE_LIMIT   Rate limit for file operations (0 for unlimited)
//	WCNT_IGNORE       Comma-separated ignore patterns
//	WCNT_OUTPUT       Report format: text|json|yaml
//	WCNT_OUTPUT_FILE  Report file path (empty for stdout)
//	WCNT_NO_PROGRESS  Disable progress reporting (true/false)
//	WCNT_NO_COLOR     Disable colored output (true/false)
//	WCNT_VERBOSE      Verbosity level (number of 'v's)
//
// Command-line flags take precedence over environment variables.
//
// # Example Usage
//
// Basic usage with default configuration:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("Using %d workers\n", cfg.Workers)
//
// Setting environment variables:
//
//	os.Setenv("WCNT_WORKERS", "4")
//	os.Setenv("WCNT_IGNORE", "node_modules,.git,*.tmp")
//
//	cfg, err := config.Load()
//	// ...
//
// # Configuration Validation
//
// The package performs validation on all configuration values:
//   - Workers must be positive and not exceed CPU cores * 4
//   - Output format must be one of: text, json, yaml
//   - RateLimit must be non-negative
//
// # Ignore Patterns
//
// The WCNT_IGNORE environment variable supports various pattern types:
//
// Directory Patterns:
//   - "node_modules"     - Ignore specific directory
//   - "node_modules/"    - Trailing slash explicitly indicates directory
//   - "**/node_modules"  - Ignore in any subdirectory
//
// File Patterns:
//   - "*.tmp"           - Ignore temporary files
//   - "test/*.log"      - Ignore log files in a specific directory
//
// Multiple patterns can be combined using commas:
//
//	WCNT_IGNORE="node_modules,.git,*.tmp,dist"
//
// # Thread Safety
//
// The configuration is immutable after loading and is safe for concurrent access
// across multiple goroutines.
package config
