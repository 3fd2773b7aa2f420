package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/activityquery/internal/criteria"
)

// TestOptions holds flags for the test command.
type TestOptions struct {
	*RootOptions
	Update bool   // regenerate golden files
	Filter string // request filter (glob pattern on the file name)
}

// RequestResult holds the result of a single request file.
type RequestResult struct {
	Name   string   `json:"name"`
	Pass   bool     `json:"pass"`
	Errors []string `json:"errors,omitempty"`
}

// TestResult holds the overall test result.
type TestResult struct {
	Requests []RequestResult `json:"requests"`
	Passed   int             `json:"passed"`
	Failed   int             `json:"failed"`
	Total    int             `json:"total"`
}

// NewTestCommand creates the test command.
func NewTestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TestOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "test <requests-dir>",
		Short: "Check request files against their expectations",
		Long: `Build every request file in a directory and check its expect block.

When golden/<name>.golden exists next to a request, the statement text must
match it byte for byte.

Exit codes:
  0 - All requests passed
  1 - One or more requests failed
  2 - Command error (invalid paths, config, lookups)

Examples:
  activityquery test ./requests
  activityquery test ./requests --filter "tag*"
  activityquery test ./requests --update`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTests(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Update, "update", false, "regenerate golden files")
	cmd.Flags().StringVar(&opts.Filter, "filter", "", "filter requests by glob pattern")

	return cmd
}

func runTests(opts *TestOptions, dir string, cmd *cobra.Command) error {
	f := newFormatter(opts.RootOptions, cmd)

	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return f.Fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("requests directory not found: %s", dir), nil)
	}

	files, err := findRequestFiles(dir, opts.Filter)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeGeneric, "finding requests", err)
	}

	if len(files) == 0 {
		if f.JSON() {
			return outputTestJSON(cmd, TestResult{Requests: []RequestResult{}})
		}
		fmt.Fprintln(f.Writer, "No requests found.")
		return nil
	}

	p, err := newPipeline(cmd.Context(), opts.RootOptions, f)
	if err != nil {
		return err
	}
	defer p.logger.Sync()

	result := TestResult{
		Requests: make([]RequestResult, 0, len(files)),
		Total:    len(files),
	}
	for _, path := range files {
		rr := runRequest(path, p, opts)
		if !f.JSON() {
			writeRequestResult(f, rr)
		}
		result.Requests = append(result.Requests, rr)
		if rr.Pass {
			result.Passed++
		} else {
			result.Failed++
		}
	}

	if f.JSON() {
		return outputTestJSON(cmd, result)
	}
	fmt.Fprintf(f.Writer, "\n%d passed, %d failed, %d total\n", result.Passed, result.Failed, result.Total)
	if result.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d request(s) failed", result.Failed))
	}
	return nil
}

// findRequestFiles lists request files in dir whose name matches filter.
func findRequestFiles(dir, filter string) ([]string, error) {
	files, err := criteria.FindFiles(dir)
	if err != nil {
		return nil, err
	}
	if filter == "" {
		return files, nil
	}

	var matched []string
	for _, path := range files {
		base := filepath.Base(path)
		ok, err := filepath.Match(filter, strings.TrimSuffix(base, filepath.Ext(base)))
		if err != nil {
			return nil, fmt.Errorf("invalid filter pattern: %w", err)
		}
		if ok {
			matched = append(matched, path)
		}
	}
	return matched, nil
}

// runRequest builds one request, checks its expectations and compares or
// updates its golden file.
func runRequest(path string, p *pipeline, opts *TestOptions) RequestResult {
	base := filepath.Base(path)
	name := strings.TrimSuffix(base, filepath.Ext(base))

	req, err := criteria.LoadFile(path)
	if err != nil {
		return RequestResult{Name: name, Errors: []string{err.Error()}}
	}
	name = req.Name

	res, err := criteria.Run(req, p.resolver, p.compiler)
	if err != nil {
		var ee *criteria.ExpectationError
		if errors.As(err, &ee) {
			return RequestResult{Name: name, Errors: ee.Failures}
		}
		return RequestResult{Name: name, Errors: []string{err.Error()}}
	}
	if res == nil {
		// The request was expected to fail and did.
		return RequestResult{Name: name, Pass: true}
	}

	golden := goldenFilePath(path)
	text := res.Statement.Text()

	if opts.Update {
		if err := writeGolden(golden, text); err != nil {
			return RequestResult{Name: name, Errors: []string{err.Error()}}
		}
		return RequestResult{Name: name, Pass: true}
	}

	want, err := os.ReadFile(golden)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return RequestResult{Name: name, Pass: true}
	case err != nil:
		return RequestResult{Name: name, Errors: []string{fmt.Sprintf("read golden file: %v", err)}}
	case string(want) != text:
		return RequestResult{Name: name, Errors: []string{"statement does not match golden file (run with --update to regenerate)"}}
	}
	return RequestResult{Name: name, Pass: true}
}

// goldenFilePath returns the golden file for a request file.
func goldenFilePath(requestFile string) string {
	base := filepath.Base(requestFile)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(filepath.Dir(requestFile), "golden", name+".golden")
}

func writeGolden(path, text string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create golden directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return fmt.Errorf("write golden file: %w", err)
	}
	return nil
}

func writeRequestResult(f *OutputFormatter, rr RequestResult) {
	if rr.Pass {
		okColor.Fprintf(f.Writer, "✓ %s\n", rr.Name)
		return
	}
	failColor.Fprintf(f.Writer, "✗ %s\n", rr.Name)
	for _, e := range rr.Errors {
		fmt.Fprintf(f.Writer, "  %s\n", e)
	}
}

// outputTestJSON writes the test result as JSON.
func outputTestJSON(cmd *cobra.Command, result TestResult) error {
	response := CLIResponse{Status: "ok", Data: result}
	if result.Failed > 0 {
		response.Status = "error"
		response.Error = &CLIError{
			Code:    ErrCodeValidation,
			Message: fmt.Sprintf("%d request(s) failed", result.Failed),
		}
	}

	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(response); err != nil {
		return err
	}

	if result.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d request(s) failed", result.Failed))
	}
	return nil
}
