package criteria

import (
	"fmt"
	"strings"

	"github.com/roach88/activityquery/internal/activity"
	"github.com/roach88/activityquery/internal/querysql"
	"github.com/roach88/activityquery/internal/search"
)

// Contributor adds select columns and where predicates to a query.
type Contributor interface {
	Select(q *search.Query)
	Where(q *search.Query) (activity.Effects, error)
}

// StatementCompiler turns a filled query into a statement.
type StatementCompiler interface {
	Compile(q *search.Query) (querysql.Statement, error)
}

// Result is a built request.
type Result struct {
	Name      string
	Query     *search.Query
	Statement querysql.Statement
	Effects   activity.Effects
	// Warnings lists fragments referencing unregistered aliases.
	Warnings []string
}

// Build runs the request through the contributor and compiles the result.
func Build(req *Request, c Contributor, comp StatementCompiler) (*Result, error) {
	q, err := req.Query()
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", req.Name, err)
	}

	c.Select(q)
	eff, err := c.Where(q)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", req.Name, err)
	}

	stmt, err := comp.Compile(q)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", req.Name, err)
	}

	return &Result{
		Name:      req.Name,
		Query:     q,
		Statement: stmt,
		Effects:   eff,
		Warnings:  search.Validate(q).Warnings,
	}, nil
}

// Expect lists what a built request must satisfy. Unset fields are not
// checked.
type Expect struct {
	// Error, when set, means Build must fail with a message containing it.
	Error string `mapstructure:"error"`

	SQLContains    []string `mapstructure:"sql_contains"`
	SQLNotContains []string `mapstructure:"sql_not_contains"`

	// Qill is the exact description list.
	Qill         []string `mapstructure:"qill"`
	QillContains []string `mapstructure:"qill_contains"`

	// Tables is the exact joined alias list.
	Tables []string `mapstructure:"tables"`

	ComponentActivities *bool  `mapstructure:"component_activities"`
	ActivityRole        string `mapstructure:"activity_role"`
	Distinct            *bool  `mapstructure:"distinct"`
}

// ExpectationError lists every failed expectation of one request.
type ExpectationError struct {
	Request  string
	Failures []string
}

func (e *ExpectationError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "request %s: %d expectation(s) failed", e.Request, len(e.Failures))
	for _, f := range e.Failures {
		fmt.Fprintf(&b, "\n  - %s", f)
	}
	return b.String()
}

// Run builds req and checks it against req.Expect. A request without
// expectations passes if it builds.
func Run(req *Request, c Contributor, comp StatementCompiler) (*Result, error) {
	res, err := Build(req, c, comp)
	if req.Expect != nil && req.Expect.Error != "" {
		switch {
		case err == nil:
			return res, &ExpectationError{Request: req.Name, Failures: []string{
				fmt.Sprintf("expected error containing %q, build succeeded", req.Expect.Error),
			}}
		case !strings.Contains(err.Error(), req.Expect.Error):
			return nil, &ExpectationError{Request: req.Name, Failures: []string{
				fmt.Sprintf("expected error containing %q, got %q", req.Expect.Error, err.Error()),
			}}
		default:
			return nil, nil
		}
	}
	if err != nil {
		return nil, err
	}
	if req.Expect == nil {
		return res, nil
	}
	return res, Check(req.Name, res, *req.Expect)
}

// Check compares a result with expectations.
func Check(name string, res *Result, exp Expect) error {
	var failures []string
	fail := func(format string, args ...any) {
		failures = append(failures, fmt.Sprintf(format, args...))
	}

	sql := res.Statement.SQL
	for _, s := range exp.SQLContains {
		if !strings.Contains(sql, s) {
			fail("sql does not contain %q", s)
		}
	}
	for _, s := range exp.SQLNotContains {
		if strings.Contains(sql, s) {
			fail("sql contains %q", s)
		}
	}

	if exp.Qill != nil && !equalStrings(exp.Qill, res.Statement.Qill) {
		fail("qill = %q, want %q", res.Statement.Qill, exp.Qill)
	}
	for _, s := range exp.QillContains {
		if !anyContains(res.Statement.Qill, s) {
			fail("no qill line contains %q", s)
		}
	}

	if exp.Tables != nil && !equalStrings(exp.Tables, res.Statement.Tables) {
		fail("tables = %q, want %q", res.Statement.Tables, exp.Tables)
	}

	if exp.ComponentActivities != nil && *exp.ComponentActivities != res.Effects.ConsiderComponentActivities {
		fail("component activities = %t, want %t", res.Effects.ConsiderComponentActivities, *exp.ComponentActivities)
	}
	if exp.ActivityRole != "" && exp.ActivityRole != res.Effects.ActivityRole {
		fail("activity role = %q, want %q", res.Effects.ActivityRole, exp.ActivityRole)
	}
	if exp.Distinct != nil && *exp.Distinct != res.Query.UseDistinct {
		fail("distinct = %t, want %t", res.Query.UseDistinct, *exp.Distinct)
	}

	if len(failures) > 0 {
		return &ExpectationError{Request: name, Failures: failures}
	}
	return nil
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func anyContains(lines []string, s string) bool {
	for _, l := range lines {
		if strings.Contains(l, s) {
			return true
		}
	}
	return false
}
