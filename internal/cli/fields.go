package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/activityquery/internal/activity"
	"github.com/roach88/activityquery/internal/search"
)

// FieldsOutput lists the fields the activity resolver understands.
type FieldsOutput struct {
	Mode     string   `json:"mode"`
	Select   []string `json:"select"`
	Where    []string `json:"where"`
	Defaults []string `json:"defaults"`
}

// NewFieldsCommand creates the fields command.
func NewFieldsCommand(rootOpts *RootOptions) *cobra.Command {
	var mode string

	cmd := &cobra.Command{
		Use:   "fields",
		Short: "List return fields and criteria names",
		Long: `List the output columns a request may return, the criteria names it may
use, and the columns returned by default in the given search mode.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFields(rootOpts, mode, cmd)
		},
	}

	cmd.Flags().StringVar(&mode, "mode", "activity", "search mode for default columns")
	return cmd
}

func runFields(opts *RootOptions, modeName string, cmd *cobra.Command) error {
	f := newFormatter(opts, cmd)

	mode, err := search.ParseMode(modeName)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeGeneric, "parsing mode", err)
	}

	out := FieldsOutput{
		Mode:     strings.ToLower(modeName),
		Select:   activity.SelectFields(),
		Where:    activity.WhereFields(),
		Defaults: activity.DefaultReturnProperties(mode),
	}
	if out.Defaults == nil {
		out.Defaults = []string{}
	}

	if f.JSON() {
		return f.Success(out)
	}

	writeList := func(title string, names []string) {
		titleColor.Fprintln(f.Writer, title)
		if len(names) == 0 {
			fmt.Fprintln(f.Writer, "  (none)")
		}
		for _, n := range names {
			fmt.Fprintf(f.Writer, "  %s\n", n)
		}
	}
	writeList("Return fields:", out.Select)
	writeList("Criteria:", out.Where)
	writeList(fmt.Sprintf("Default return fields (%s):", out.Mode), out.Defaults)
	return nil
}
