// Package cli implements the activityquery command line.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/activityquery/internal/activity"
	"github.com/roach88/activityquery/internal/config"
	"github.com/roach88/activityquery/internal/log"
	"github.com/roach88/activityquery/internal/querysql"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose     bool
	Format      string // "json" | "text"
	ConfigPath  string
	LookupsFile string // overrides the configured lookup source
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "activityquery",
		Short: "Compose activity search SQL",
		Long: `Compose the activity part of a contact or activity search.

Request files list search criteria in YAML or CUE. activityquery turns them
into a SELECT statement and a human-readable description of each criterion.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "config file (default ./activityquery.yaml)")
	cmd.PersistentFlags().StringVar(&opts.LookupsFile, "lookups", "", "lookup tables YAML file, overriding the configured source")

	cmd.AddCommand(NewBuildCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewFieldsCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))
	cmd.AddCommand(NewLookupsCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

func newFormatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
}

// loadConfig resolves the config and applies flag overrides.
func loadConfig(opts *RootOptions) (*config.Config, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	if opts.LookupsFile != "" {
		cfg.Lookup = config.LookupConfig{Driver: config.DriverFile, File: opts.LookupsFile}
	}
	if opts.Verbose {
		cfg.Log.Level = "debug"
	}
	return cfg, nil
}

// pipeline is the resolver and compiler a command builds requests with.
type pipeline struct {
	resolver *activity.Resolver
	compiler *querysql.Compiler
	logger   log.ZapLogger
}

// newPipeline wires config, lookups, translator and logger. Failures are
// reported through f and returned as command errors.
func newPipeline(ctx context.Context, opts *RootOptions, f *OutputFormatter) (*pipeline, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, f.Fail(ExitCommandError, ErrCodeConfig, "loading config", err)
	}

	logger, err := cfg.NewLogger(log.WithOutput(f.GetErrWriter()))
	if err != nil {
		return nil, f.Fail(ExitCommandError, ErrCodeConfig, "building logger", err)
	}

	tr, err := cfg.NewTranslator()
	if err != nil {
		return nil, f.Fail(ExitCommandError, ErrCodeConfig, "loading translator", err)
	}

	tables, err := cfg.LoadLookups(ctx)
	if err != nil {
		return nil, f.Fail(ExitCommandError, ErrCodeLookups, "loading lookup tables", err)
	}
	f.VerboseLog("Loaded lookups via %s driver", cfg.Lookup.Driver)

	r := activity.New(tables, activity.WithTranslator(tr), activity.WithLogger(logger))
	c := querysql.NewCompiler(r,
		querysql.WithJoinSide(cfg.JoinSide()),
		querysql.WithLogger(logger))
	return &pipeline{resolver: r, compiler: c, logger: logger}, nil
}
