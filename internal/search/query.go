package search

import (
	"fmt"
	"strings"
)

// Mode is the bit set describing what kind of search a Query serves.
// Values match the ones stored in saved searches.
type Mode int

const (
	ModeContacts   Mode = 1
	ModeContribute Mode = 2
	ModeMember     Mode = 4
	ModeEvent      Mode = 8
	ModeGrant      Mode = 16
	ModePledge     Mode = 64
	ModeCase       Mode = 256
	ModeActivity   Mode = 1024
	ModeCampaign   Mode = 2048
	ModeMailing    Mode = 4096
)

var modeNames = map[string]Mode{
	"contacts":   ModeContacts,
	"contribute": ModeContribute,
	"member":     ModeMember,
	"event":      ModeEvent,
	"grant":      ModeGrant,
	"pledge":     ModePledge,
	"case":       ModeCase,
	"activity":   ModeActivity,
	"campaign":   ModeCampaign,
	"mailing":    ModeMailing,
}

// Has reports whether every bit of f is set in m.
func (m Mode) Has(f Mode) bool {
	return m&f == f
}

// ParseMode resolves a mode name ("contacts", "activity", ...). An empty name
// is ModeContacts.
func ParseMode(name string) (Mode, error) {
	if name == "" {
		return ModeContacts, nil
	}
	m, ok := modeNames[strings.ToLower(name)]
	if !ok {
		return 0, fmt.Errorf("unknown search mode %q", name)
	}
	return m, nil
}

// Combination operators between where groupings.
const (
	OperatorAND = "AND"
	OperatorOR  = "OR"
)

// JoinSide selects the join keyword a contributor emits for optional tables.
type JoinSide string

const (
	JoinInner JoinSide = "INNER"
	JoinLeft  JoinSide = "LEFT"
)

// BaseAlias is the alias of the contact table every statement selects from.
const BaseAlias = "contact_a"

// TableSet is an insertion-ordered set of table aliases.
// The zero value is ready to use.
type TableSet struct {
	names []string
	seen  map[string]struct{}
}

// Add registers aliases, ignoring ones already present.
func (s *TableSet) Add(names ...string) {
	if s.seen == nil {
		s.seen = make(map[string]struct{})
	}
	for _, n := range names {
		if _, ok := s.seen[n]; ok {
			continue
		}
		s.seen[n] = struct{}{}
		s.names = append(s.names, n)
	}
}

// Has reports whether the alias is registered.
func (s *TableSet) Has(name string) bool {
	_, ok := s.seen[name]
	return ok
}

// Names returns the aliases in registration order.
func (s *TableSet) Names() []string {
	cp := make([]string, len(s.names))
	copy(cp, s.names)
	return cp
}

// Len returns the number of aliases.
func (s *TableSet) Len() int {
	return len(s.names)
}

// Columns is an insertion-ordered map of output field to select expression.
type Columns struct {
	fields []string
	exprs  map[string]string
}

// Set registers or replaces the expression for field. Replacing keeps the
// original position.
func (c *Columns) Set(field, expr string) {
	if c.exprs == nil {
		c.exprs = make(map[string]string)
	}
	if _, ok := c.exprs[field]; !ok {
		c.fields = append(c.fields, field)
	}
	c.exprs[field] = expr
}

// Get returns the expression for field.
func (c *Columns) Get(field string) (string, bool) {
	e, ok := c.exprs[field]
	return e, ok
}

// Fields returns the registered fields in order.
func (c *Columns) Fields() []string {
	cp := make([]string, len(c.fields))
	copy(cp, c.fields)
	return cp
}

// Len returns the number of registered fields.
func (c *Columns) Len() int {
	return len(c.fields)
}

// Clauses maps a grouping id to its ordered fragments. Groupings keep the
// order in which they first received a fragment.
type Clauses struct {
	groups []string
	items  map[string][]string
}

// Add appends fragment to grouping.
func (c *Clauses) Add(grouping, fragment string) {
	if c.items == nil {
		c.items = make(map[string][]string)
	}
	if _, ok := c.items[grouping]; !ok {
		c.groups = append(c.groups, grouping)
	}
	c.items[grouping] = append(c.items[grouping], fragment)
}

// Group returns the fragments of one grouping.
func (c *Clauses) Group(grouping string) []string {
	frags := c.items[grouping]
	cp := make([]string, len(frags))
	copy(cp, frags)
	return cp
}

// Groups returns grouping ids in first-use order.
func (c *Clauses) Groups() []string {
	cp := make([]string, len(c.groups))
	copy(cp, c.groups)
	return cp
}

// All returns every fragment, grouping by grouping.
func (c *Clauses) All() []string {
	var all []string
	for _, g := range c.groups {
		all = append(all, c.items[g]...)
	}
	return all
}

// Len returns the total number of fragments.
func (c *Clauses) Len() int {
	n := 0
	for _, frags := range c.items {
		n += len(frags)
	}
	return n
}

// Query accumulates the SQL contributions of one search request.
type Query struct {
	RequestID        string
	Mode             Mode
	Operator         string
	ReturnProperties map[string]bool
	Params           []Criterion

	Select      Columns
	Element     map[string]bool
	Tables      TableSet
	WhereTables TableSet
	Where       Clauses
	Qill        Clauses

	// SkipDeleteClause drops the blanket contact soft-delete filter.
	SkipDeleteClause bool
	UseDistinct      bool

	rangeCache map[string]bool
}

// QueryOption configures a Query at construction.
type QueryOption func(*Query)

// WithMode sets the search mode.
func WithMode(m Mode) QueryOption {
	return func(q *Query) {
		q.Mode = m
	}
}

// WithOperator sets how groupings combine ("AND" or "OR").
func WithOperator(op string) QueryOption {
	return func(q *Query) {
		q.Operator = strings.ToUpper(op)
	}
}

// WithParams sets the criteria of the request.
func WithParams(params ...Criterion) QueryOption {
	return func(q *Query) {
		q.Params = append(q.Params, params...)
	}
}

// WithReturnProperties marks output fields as requested.
func WithReturnProperties(fields ...string) QueryOption {
	return func(q *Query) {
		for _, f := range fields {
			q.ReturnProperties[f] = true
		}
	}
}

// WithRequestIDs overrides the request id generator.
func WithRequestIDs(gen RequestIDGenerator) QueryOption {
	return func(q *Query) {
		q.RequestID = gen.Generate()
	}
}

// NewQuery creates an empty accumulator. Defaults: contacts mode, AND
// operator, a UUIDv7 request id.
func NewQuery(opts ...QueryOption) *Query {
	q := &Query{
		Mode:             ModeContacts,
		Operator:         OperatorAND,
		ReturnProperties: make(map[string]bool),
		Element:          make(map[string]bool),
		rangeCache:       make(map[string]bool),
	}
	for _, opt := range opts {
		opt(q)
	}
	if q.RequestID == "" {
		q.RequestID = UUIDv7Generator{}.Generate()
	}
	return q
}

// Returns reports whether the caller asked for field in the result rows.
func (q *Query) Returns(field string) bool {
	return q.ReturnProperties[field]
}

// RequireTables registers aliases both as general and where-clause tables.
func (q *Query) RequireTables(names ...string) {
	q.Tables.Add(names...)
	q.WhereTables.Add(names...)
}

// AddWhere appends a predicate to a grouping.
func (q *Query) AddWhere(grouping, fragment string) {
	q.Where.Add(grouping, fragment)
}

// AddQill appends a description to a grouping.
func (q *Query) AddQill(grouping, text string) {
	q.Qill.Add(grouping, text)
}

// WhereValues finds the criterion named name in the same grouping.
func (q *Query) WhereValues(name, grouping string) (Criterion, bool) {
	for _, c := range q.Params {
		if c.Name == name && c.Grouping == grouping {
			return c, true
		}
	}
	return Criterion{}, false
}

// MarkRange records that the range predicate for field has been emitted.
// It returns false if it already was.
func (q *Query) MarkRange(field string) bool {
	if q.rangeCache == nil {
		q.rangeCache = make(map[string]bool)
	}
	if q.rangeCache[field] {
		return false
	}
	q.rangeCache[field] = true
	return true
}
