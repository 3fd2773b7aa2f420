package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/roach88/activityquery/internal/lookup"
)

// LookupSummary counts the entries of a lookup snapshot.
type LookupSummary struct {
	Groups    map[string]int `json:"groups"`
	Tags      int            `json:"tags"`
	Surveys   int            `json:"surveys"`
	Campaigns int            `json:"campaigns"`
}

func summarize(t *lookup.Tables) LookupSummary {
	s := LookupSummary{
		Groups:    make(map[string]int, len(t.Groups)),
		Tags:      len(t.Tags),
		Surveys:   len(t.Surveys),
		Campaigns: len(t.Campaigns),
	}
	for g, opts := range t.Groups {
		s.Groups[g] = len(opts)
	}
	return s
}

// NewLookupsCommand creates the lookups command group.
func NewLookupsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lookups",
		Short: "Manage lookup tables",
		Long: `Move lookup tables between a YAML snapshot and the configured database.

The database is selected by lookup.driver and lookup.dsn in the config file or
the ACTIVITYQUERY_LOOKUP_DRIVER and ACTIVITYQUERY_LOOKUP_DSN variables.`,
	}
	cmd.AddCommand(newLookupsImportCommand(rootOpts))
	cmd.AddCommand(newLookupsExportCommand(rootOpts))
	return cmd
}

func newLookupsImportCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "import <lookups.yaml>",
		Short:         "Write a YAML snapshot into the lookup database",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := newFormatter(rootOpts, cmd)
			ctx := cmd.Context()

			tables, err := lookup.LoadFile(args[0])
			if err != nil {
				return f.Fail(ExitCommandError, ErrCodeLookups, "reading lookup snapshot", err)
			}

			cfg, err := loadConfig(&RootOptions{ConfigPath: rootOpts.ConfigPath})
			if err != nil {
				return f.Fail(ExitCommandError, ErrCodeConfig, "loading config", err)
			}
			store, err := cfg.OpenStore(ctx)
			if err != nil {
				return f.Fail(ExitCommandError, ErrCodeLookups, "opening lookup database", err)
			}
			defer store.Close()

			if err := store.Import(ctx, tables); err != nil {
				return f.Fail(ExitFailure, ErrCodeLookups, "importing lookups", err)
			}
			f.VerboseLog("Imported %s into %s", args[0], cfg.Lookup.Driver)

			summary := summarize(tables)
			if f.JSON() {
				return f.Success(summary)
			}
			okColor.Fprintf(f.Writer, "✓ imported %d option group(s), %d tag(s), %d survey(s), %d campaign(s)\n",
				len(summary.Groups), summary.Tags, summary.Surveys, summary.Campaigns)
			return nil
		},
	}
}

func newLookupsExportCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "export",
		Short:         "Print the configured lookup tables as YAML",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := newFormatter(rootOpts, cmd)

			cfg, err := loadConfig(rootOpts)
			if err != nil {
				return f.Fail(ExitCommandError, ErrCodeConfig, "loading config", err)
			}
			tables, err := cfg.LoadLookups(cmd.Context())
			if err != nil {
				return f.Fail(ExitCommandError, ErrCodeLookups, "loading lookup tables", err)
			}

			if f.JSON() {
				return f.Success(tables)
			}
			data, err := yaml.Marshal(tables)
			if err != nil {
				return f.Fail(ExitFailure, ErrCodeGeneric, "encoding lookups", err)
			}
			_, err = fmt.Fprint(f.Writer, string(data))
			return err
		},
	}
}
