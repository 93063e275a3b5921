/*
Package commands implements the CLI command structure for wcnt. The root
command runs a full warning count; subcommands cover version reporting.
*/
package commands

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/silven/wcnt/cmd/wcnt/app"
	"github.com/silven/wcnt/internal/config"
	"github.com/silven/wcnt/pkg/logger"
)

// Options holds command-line options shared across commands
type Options struct {
	Config *config.Config

	Start        string
	RuleFile     string
	Only         []string
	UpdateLimits bool
	Prune        bool

	Verbose    int
	Workers    int
	RateLimit  int
	Output     string
	OutputFile string
	Ignore     []string
	NoProgress bool
	NoColor    bool
}

// NewRootCommand creates the root command for the application
func NewRootCommand() *cobra.Command {
	opts := &Options{
		Config: &config.Config{
			Workers: runtime.NumCPU(),
		},
	}

	rootCmd := &cobra.Command{
		Use:   "wcnt [flags]",
		Short: "Count warnings in build logs against per-directory limits",
		Long: `wcnt scans a directory tree for log files, extracts warnings with the
regular expressions declared in Wcnt.toml, and checks the deduplicated
counts against the nearest Limits.toml of each offending source file.

With --update-limits, limits above the observed counts are lowered to
match, so the allowed warning count only ever ratchets down.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initializeCommand(cmd, opts)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRoot(opts)
		},
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.Flags()
	flags.StringVar(&opts.Start, "start", ".", "directory to scan for log files")
	flags.StringVar(&opts.RuleFile, "config", "",
		"rule file to use (default <start>/"+config.DefaultRuleFileName+")")
	flags.StringArrayVar(&opts.Only, "only", nil,
		"restrict the run to the named warning kinds (repeatable)")
	flags.BoolVar(&opts.UpdateLimits, "update-limits", false,
		"lower limits above the observed counts to match them")
	flags.BoolVar(&opts.Prune, "prune", false,
		"collapse uniform per-category limits while updating (requires --update-limits)")
	flags.IntVarP(&opts.Workers, "workers", "w", 0,
		"number of concurrent scan workers (default number of CPUs)")
	flags.IntVarP(&opts.RateLimit, "rate-limit", "r", 0,
		"maximum file operations per second (0 for unlimited)")
	flags.StringVarP(&opts.Output, "output", "o", "",
		"report format: text, json, or yaml")
	flags.StringVarP(&opts.OutputFile, "output-file", "f", "",
		"write the report to a file instead of stdout")
	flags.StringArrayVarP(&opts.Ignore, "ignore", "i", nil,
		"pattern to skip during discovery (repeatable)")

	persistent := rootCmd.PersistentFlags()
	persistent.CountVarP(&opts.Verbose, "verbose", "v",
		"increase verbosity (repeatable)")
	persistent.BoolVar(&opts.NoProgress, "no-progress", false,
		"disable progress reporting")
	persistent.BoolVar(&opts.NoColor, "no-color", false,
		"disable colored output")

	rootCmd.AddCommand(
		newVersionCommand(opts),
	)

	return rootCmd
}

// initializeCommand loads the environment configuration and layers the
// command-line flags on top of it
func initializeCommand(cmd *cobra.Command, opts *Options) error {
	log := logger.NewLogger(logger.Config{
		Verbosity: opts.Verbose,
	})

	log.WithFields(logger.Fields{
		"verbosity": opts.Verbose,
		"command":   cmd.Name(),
	}).Debug("Initializing command")

	cfg, err := config.Load()
	if err != nil {
		log.WithFields(logger.Fields{
			"error": err,
		}).Error("Failed to load configuration")
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Flags win over environment, but only when actually given.
	flags := cmd.Flags()
	if flags.Changed("workers") {
		cfg.Workers = opts.Workers
	}
	if cfg.Workers == 0 {
		cfg.Workers = runtime.NumCPU()
	}
	if flags.Changed("rate-limit") {
		cfg.RateLimit = opts.RateLimit
	}
	if flags.Changed("output") {
		cfg.Output = opts.Output
	}
	if flags.Changed("output-file") {
		cfg.OutputFile = opts.OutputFile
	}
	if opts.Verbose > 0 {
		cfg.Verbose = opts.Verbose
	}
	if opts.NoProgress {
		cfg.NoProgress = true
	}
	if opts.NoColor {
		cfg.NoColor = true
	}
	cfg.IgnorePatterns = append(cfg.IgnorePatterns, opts.Ignore...)

	if err := cfg.Validate(); err != nil {
		return err
	}

	opts.Config = &cfg

	return nil
}

// runRoot executes a full warning count with the resolved options
func runRoot(opts *Options) error {
	if opts.Prune && !opts.UpdateLimits {
		return fmt.Errorf("--prune requires --update-limits")
	}

	application := app.New(opts.Config)
	defer application.Shutdown()

	return application.Run(&app.RunOptions{
		Start:        opts.Start,
		RuleFile:     opts.RuleFile,
		Only:         opts.Only,
		UpdateLimits: opts.UpdateLimits,
		Prune:        opts.Prune,
	})
}
