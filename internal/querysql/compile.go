// Package querysql assembles the contributions collected in a search.Query
// into one SELECT statement over the contact table.
package querysql

import (
	"fmt"
	"sort"
	"strings"

	"github.com/roach88/activityquery/internal/log"
	"github.com/roach88/activityquery/internal/search"
)

// JoinProvider supplies the join text for aliases a contributor registers.
type JoinProvider interface {
	// From returns the join for name, or "" if the provider has none.
	From(name string, mode search.Mode, side search.JoinSide) (string, error)
	// JoinOrder lists known aliases in the order their joins must appear.
	JoinOrder() []string
	// JoinDependencies lists aliases that must be joined before name.
	JoinDependencies(name string) []string
}

// Statement is a compiled search.
type Statement struct {
	SQL string
	// Qill is every description in grouping order.
	Qill []string
	// Tables are the joined aliases in join order.
	Tables []string
}

// Compiler turns a Query into a Statement.
//
// CRITICAL: every statement carries ORDER BY contact_a.id so paging over the
// result is deterministic.
type Compiler struct {
	joins  JoinProvider
	side   search.JoinSide
	logger log.Logger
}

// Option configures a Compiler.
type Option func(*Compiler)

// WithJoinSide sets the join keyword for optional lookups. Default LEFT.
func WithJoinSide(side search.JoinSide) Option {
	return func(c *Compiler) {
		c.side = side
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l log.Logger) Option {
	return func(c *Compiler) {
		c.logger = l
	}
}

// NewCompiler creates a Compiler resolving joins through joins.
func NewCompiler(joins JoinProvider, opts ...Option) *Compiler {
	c := &Compiler{
		joins:  joins,
		side:   search.JoinLeft,
		logger: log.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compile renders q as
//
//	SELECT [DISTINCT] contact_a.id AS contact_id, <selects>
//	FROM civicrm_contact contact_a <joins>
//	WHERE <conditions> ORDER BY contact_a.id ASC
//
// Fragments of one grouping are ANDed; groupings are combined with
// q.Operator.
func (c *Compiler) Compile(q *search.Query) (Statement, error) {
	if q == nil {
		return Statement{}, fmt.Errorf("cannot compile nil query")
	}
	if q.Operator != search.OperatorAND && q.Operator != search.OperatorOR {
		return Statement{}, fmt.Errorf("unsupported operator %q", q.Operator)
	}

	tables := c.resolveTables(q)
	var joins strings.Builder
	var joined []string
	for _, name := range tables {
		text, err := c.joins.From(name, q.Mode, c.side)
		if err != nil {
			return Statement{}, fmt.Errorf("compile joins: %w", err)
		}
		if text == "" {
			c.logger.Debug("no join text for alias", "alias", name, "request_id", q.RequestID)
			continue
		}
		joins.WriteString(text)
		joined = append(joined, name)
	}

	distinct := ""
	if q.UseDistinct {
		distinct = "DISTINCT "
	}

	sql := fmt.Sprintf("SELECT %s%s FROM civicrm_contact %s%s WHERE %s ORDER BY %s.id ASC",
		distinct,
		c.compileSelect(q),
		search.BaseAlias,
		joins.String(),
		c.compileWhere(q),
		search.BaseAlias)

	c.logger.Debug("compiled search",
		"request_id", q.RequestID,
		"tables", joined,
		"where_fragments", q.Where.Len())

	return Statement{SQL: sql, Qill: q.Qill.All(), Tables: joined}, nil
}

// compileSelect lists the base contact id followed by the registered
// expressions in registration order.
func (c *Compiler) compileSelect(q *search.Query) string {
	parts := []string{search.BaseAlias + ".id AS contact_id"}
	for _, field := range q.Select.Fields() {
		expr, _ := q.Select.Get(field)
		parts = append(parts, expr)
	}
	return strings.Join(parts, ", ")
}

// compileWhere combines the soft-delete filter with the grouped fragments.
func (c *Compiler) compileWhere(q *search.Query) string {
	var conds []string
	if !q.SkipDeleteClause {
		conds = append(conds, search.BaseAlias+".is_deleted = 0")
	}

	var groups []string
	for _, g := range q.Where.Groups() {
		groups = append(groups, "( "+strings.Join(q.Where.Group(g), " AND ")+" )")
	}
	switch len(groups) {
	case 0:
	case 1:
		conds = append(conds, groups[0])
	default:
		conds = append(conds, "( "+strings.Join(groups, " "+q.Operator+" ")+" )")
	}

	if len(conds) == 0 {
		return "1 = 1"
	}
	return strings.Join(conds, " AND ")
}

// resolveTables returns every registered alias plus its dependencies, in the
// provider's join order. Aliases the provider does not order follow, sorted
// for deterministic output.
func (c *Compiler) resolveTables(q *search.Query) []string {
	needed := make(map[string]bool)
	var visit func(name string)
	visit = func(name string) {
		if name == search.BaseAlias || needed[name] {
			return
		}
		needed[name] = true
		for _, dep := range c.joins.JoinDependencies(name) {
			visit(dep)
		}
	}
	for _, name := range q.Tables.Names() {
		visit(name)
	}
	for _, name := range q.WhereTables.Names() {
		visit(name)
	}

	var ordered []string
	for _, name := range c.joins.JoinOrder() {
		if needed[name] {
			ordered = append(ordered, name)
			delete(needed, name)
		}
	}

	rest := make([]string, 0, len(needed))
	for name := range needed {
		rest = append(rest, name)
	}
	sort.Strings(rest)
	return append(ordered, rest...)
}

// Text renders the statement followed by one "-- " comment line per
// description.
func (s Statement) Text() string {
	var b strings.Builder
	b.WriteString(s.SQL)
	b.WriteString("\n")
	for _, q := range s.Qill {
		b.WriteString("-- ")
		b.WriteString(q)
		b.WriteString("\n")
	}
	return b.String()
}
