package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/activityquery/internal/criteria"
)

// RequestValidation is the validation outcome of one request file.
type RequestValidation struct {
	File     string   `json:"file"`
	Name     string   `json:"name,omitempty"`
	Valid    bool     `json:"valid"`
	Warnings []string `json:"warnings,omitempty"`
	Error    string   `json:"error,omitempty"`
}

// ValidationResult holds validation results for every file.
type ValidationResult struct {
	Valid    bool                `json:"valid"`
	Requests []RequestValidation `json:"requests"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <request-file>...",
		Short: "Check request files without printing SQL",
		Long: `Decode, build and check request files.

A request is valid when it decodes, every criterion builds, and every alias
referenced by the generated select columns and predicates has a join.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args, cmd)
		},
	}
	return cmd
}

func runValidate(opts *RootOptions, paths []string, cmd *cobra.Command) error {
	f := newFormatter(opts, cmd)

	p, err := newPipeline(cmd.Context(), opts, f)
	if err != nil {
		return err
	}
	defer p.logger.Sync()

	result := ValidationResult{Valid: true, Requests: make([]RequestValidation, 0, len(paths))}
	for _, path := range paths {
		rv := validateRequest(path, p, f)
		result.Valid = result.Valid && rv.Valid
		result.Requests = append(result.Requests, rv)
	}

	if f.JSON() {
		if err := f.Success(result); err != nil {
			return err
		}
	} else {
		for _, rv := range result.Requests {
			writeValidationText(f, rv)
		}
	}

	if !result.Valid {
		return NewExitError(ExitFailure, "validation failed")
	}
	return nil
}

func validateRequest(path string, p *pipeline, f *OutputFormatter) RequestValidation {
	rv := RequestValidation{File: path}

	req, err := criteria.LoadFile(path)
	if err != nil {
		rv.Error = err.Error()
		return rv
	}
	rv.Name = req.Name

	res, err := criteria.Build(req, p.resolver, p.compiler)
	if err != nil {
		rv.Error = err.Error()
		return rv
	}
	f.VerboseLog("Validated %s: %d where fragment(s), %d join(s)",
		req.Name, res.Query.Where.Len(), len(res.Statement.Tables))

	rv.Warnings = res.Warnings
	rv.Valid = len(res.Warnings) == 0
	return rv
}

func writeValidationText(f *OutputFormatter, rv RequestValidation) {
	label := rv.Name
	if label == "" {
		label = rv.File
	}
	if rv.Valid {
		okColor.Fprintf(f.Writer, "✓ %s\n", label)
		return
	}
	failColor.Fprintf(f.Writer, "✗ %s\n", label)
	if rv.Error != "" {
		fmt.Fprintf(f.Writer, "  %s\n", rv.Error)
	}
	for _, w := range rv.Warnings {
		warnColor.Fprintf(f.Writer, "  %s\n", w)
	}
}
