package clause

import (
	"fmt"
	"strings"
	"time"

	"github.com/roach88/activityquery/internal/i18n"
	"github.com/roach88/activityquery/internal/search"
)

// DateField describes a family of date criteria: <Name>, <Name>_low and
// <Name>_high all filter Table.Column.
type DateField struct {
	Table  string
	Name   string
	Column string
	// Title is the already translated label used in descriptions.
	Title string
}

// Stored timestamp format, and the layouts accepted from the form layer.
const storedLayout = "20060102150405"

var inputLayouts = []struct {
	layout   string
	dateOnly bool
}{
	{"2006-01-02 15:04:05", false},
	{"2006-01-02T15:04:05", false},
	{"2006-01-02 15:04", false},
	{"2006-01-02", true},
	{storedLayout, false},
	{"200601021504", false},
	{"20060102", true},
	{"01/02/2006 15:04:05", false},
	{"01/02/2006 15:04", false},
	{"01/02/2006", true},
}

const endOfDay = 23*time.Hour + 59*time.Minute + 59*time.Second

// DateRange appends the predicate and description for one date criterion.
//
// A _low or _high criterion looks up its sibling in the same grouping and
// both are emitted as a single predicate; the second of the pair is then a
// no-op. A _high value without a time of day is extended to the end of that
// day.
// Falsy values emit nothing.
func DateRange(q *search.Query, c search.Criterion, f DateField, tr *i18n.Translator) error {
	switch c.Name {
	case f.Name + "_low", f.Name + "_high":
		return dateBounds(q, c, f, tr)
	case f.Name:
		return dateExact(q, c, f)
	default:
		return fmt.Errorf("date criterion %q does not belong to %s", c.Name, f.Name)
	}
}

type bound struct {
	op     string
	phrase string
	date   time.Time
}

func dateBounds(q *search.Query, c search.Criterion, f DateField, tr *i18n.Translator) error {
	value := c.Value.String()
	if !search.Truthy(value) || !q.MarkRange(f.Name) {
		return nil
	}

	low := func(v string) (bound, error) {
		d, err := ParseDate(v)
		return bound{op: ">=", phrase: tr.T("greater than or equal to"), date: d}, err
	}
	high := func(v string) (bound, error) {
		d, dateOnly, err := parseInput(v)
		if dateOnly {
			d = d.Add(endOfDay)
		}
		return bound{op: "<=", phrase: tr.T("less than or equal to"), date: d}, err
	}

	firstOf, secondOf, sibling := low, high, f.Name+"_high"
	if c.Name == f.Name+"_high" {
		firstOf, secondOf, sibling = high, low, f.Name+"_low"
	}

	first, err := firstOf(value)
	if err != nil {
		return fmt.Errorf("%s: %w", c.Name, err)
	}

	column := f.Table + "." + f.Column
	where := fmt.Sprintf("%s %s '%s'", column, first.op, first.date.Format(storedLayout))
	qill := fmt.Sprintf("%s - %s \"%s\"", f.Title, first.phrase, DisplayDate(first.date))

	if other, ok := q.WhereValues(sibling, c.Grouping); ok && search.Truthy(other.Value.String()) {
		second, err := secondOf(other.Value.String())
		if err != nil {
			return fmt.Errorf("%s: %w", sibling, err)
		}
		where = fmt.Sprintf("( %s ) AND ( %s %s '%s' )", where, column, second.op, second.date.Format(storedLayout))
		qill = fmt.Sprintf("%s %s %s \"%s\"", qill, tr.T("AND"), second.phrase, DisplayDate(second.date))
	}

	q.AddWhere(c.Grouping, where)
	q.AddQill(c.Grouping, qill)
	q.RequireTables(f.Table)
	return nil
}

func dateExact(q *search.Query, c search.Criterion, f DateField) error {
	op, ok := NormalizeOp(c.Op)
	if !ok || op == OpIn || op == OpNotIn {
		return fmt.Errorf("%s: unsupported date operator %q", c.Name, c.Op)
	}
	column := f.Table + "." + f.Column

	if op == OpIsNull || op == OpIsNotNull {
		q.AddWhere(c.Grouping, fmt.Sprintf("%s %s", column, op))
		q.AddQill(c.Grouping, fmt.Sprintf("%s %s", f.Title, op))
		q.RequireTables(f.Table)
		return nil
	}

	value := c.Value.String()
	if !search.Truthy(value) {
		return nil
	}
	d, err := ParseDate(value)
	if err != nil {
		return fmt.Errorf("%s: %w", c.Name, err)
	}

	q.AddWhere(c.Grouping, fmt.Sprintf("%s %s '%s'", column, op, d.Format(storedLayout)))
	q.AddQill(c.Grouping, fmt.Sprintf("%s %s \"%s\"", f.Title, op, DisplayDate(d)))
	q.RequireTables(f.Table)
	return nil
}

// ParseDate reads a date as entered in search forms or as stored.
func ParseDate(value string) (time.Time, error) {
	t, _, err := parseInput(value)
	return t, err
}

// parseInput also reports whether the matching layout carries no time of day.
func parseInput(value string) (time.Time, bool, error) {
	v := strings.TrimSpace(value)
	for _, in := range inputLayouts {
		if t, err := time.Parse(in.layout, v); err == nil {
			return t, in.dateOnly, nil
		}
	}
	return time.Time{}, false, fmt.Errorf("unrecognised date %q", value)
}

// DisplayDate renders t the way descriptions show dates:
// "January 2nd, 2013 3:04 PM".
func DisplayDate(t time.Time) string {
	return fmt.Sprintf("%s %d%s, %d %s",
		t.Month(), t.Day(), ordinal(t.Day()), t.Year(), t.Format("3:04 PM"))
}

func ordinal(day int) string {
	if day%100 >= 11 && day%100 <= 13 {
		return "th"
	}
	switch day % 10 {
	case 1:
		return "st"
	case 2:
		return "nd"
	case 3:
		return "rd"
	default:
		return "th"
	}
}
