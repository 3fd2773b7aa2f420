package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/activityquery/internal/criteria"
)

// BuildOutput is the JSON payload of the build command.
type BuildOutput struct {
	Name                string   `json:"name"`
	RequestID           string   `json:"request_id"`
	SQL                 string   `json:"sql"`
	Qill                []string `json:"qill"`
	Tables              []string `json:"tables"`
	ComponentActivities bool     `json:"component_activities"`
	ActivityRole        string   `json:"activity_role,omitempty"`
	Warnings            []string `json:"warnings,omitempty"`
}

func newBuildOutput(res *criteria.Result) BuildOutput {
	qill := res.Statement.Qill
	if qill == nil {
		qill = []string{}
	}
	tables := res.Statement.Tables
	if tables == nil {
		tables = []string{}
	}
	return BuildOutput{
		Name:                res.Name,
		RequestID:           res.Query.RequestID,
		SQL:                 res.Statement.SQL,
		Qill:                qill,
		Tables:              tables,
		ComponentActivities: res.Effects.ConsiderComponentActivities,
		ActivityRole:        res.Effects.ActivityRole,
		Warnings:            res.Warnings,
	}
}

// NewBuildCommand creates the build command.
func NewBuildCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build <request-file>",
		Short: "Print the SQL and descriptions for a request",
		Long: `Build one request file into a SELECT statement.

Text output prints the statement followed by one "-- " line per criterion
description. JSON output also carries the joined tables and the effects the
criteria had on other search components.

Examples:
  activityquery build requests/meetings.yaml
  activityquery build requests/meetings.cue --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runBuild(opts *RootOptions, path string, cmd *cobra.Command) error {
	f := newFormatter(opts, cmd)

	req, err := loadRequest(path, f)
	if err != nil {
		return err
	}

	p, err := newPipeline(cmd.Context(), opts, f)
	if err != nil {
		return err
	}
	defer p.logger.Sync()

	res, err := criteria.Build(req, p.resolver, p.compiler)
	if err != nil {
		return f.Fail(ExitFailure, ErrCodeBuild, fmt.Sprintf("building %s", req.Name), err)
	}
	f.VerboseLog("Built %s with request id %s", req.Name, res.Query.RequestID)

	if f.JSON() {
		return f.Success(newBuildOutput(res))
	}
	writeStatementText(f.Writer, res)
	return nil
}

// loadRequest decodes a request file, mapping failures to command errors.
func loadRequest(path string, f *OutputFormatter) (*criteria.Request, error) {
	req, err := criteria.LoadFile(path)
	if err == nil {
		return req, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return nil, f.Fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("request file not found: %s", path), err)
	}
	return nil, f.Fail(ExitCommandError, ErrCodeDecode, "decoding request", err)
}

// writeStatementText prints the statement, its descriptions in colour and
// any alias warnings.
func writeStatementText(w io.Writer, res *criteria.Result) {
	fmt.Fprintln(w, res.Statement.SQL)
	for _, q := range res.Statement.Qill {
		qillColor.Fprintf(w, "-- %s\n", q)
	}
	for _, warning := range res.Warnings {
		warnColor.Fprintf(w, "warning: %s\n", warning)
	}
}
