// Package clause holds the predicate builders shared by search contributors:
// typed comparisons, date ranges and campaign membership.
package clause

import (
	"fmt"
	"strings"

	"github.com/roach88/activityquery/internal/sqltype"
)

// Comparison operators accepted by Build.
const (
	OpEqual     = "="
	OpIn        = "IN"
	OpNotIn     = "NOT IN"
	OpLike      = "LIKE"
	OpIsNull    = "IS NULL"
	OpIsNotNull = "IS NOT NULL"
)

var operators = map[string]bool{
	"=": true, "!=": true, "<>": true,
	"<": true, ">": true, "<=": true, ">=": true,
	"LIKE": true, "NOT LIKE": true, "RLIKE": true,
	OpIn: true, OpNotIn: true,
	OpIsNull: true, OpIsNotNull: true,
}

// NormalizeOp upper-cases op and collapses inner whitespace. An empty op is
// "=". The second result is false for operators Build does not accept.
func NormalizeOp(op string) (string, bool) {
	op = strings.ToUpper(strings.Join(strings.Fields(op), " "))
	if op == "" {
		return OpEqual, true
	}
	return op, operators[op]
}

// Build returns "field op value" with value escaped as t. String values are
// quoted. IN and NOT IN take a comma-separated list, optionally wrapped in
// parentheses; IS NULL and IS NOT NULL ignore value.
func Build(field, op, value string, t sqltype.Type) (string, error) {
	norm, ok := NormalizeOp(op)
	if !ok {
		return "", fmt.Errorf("build clause for %s: unsupported operator %q", field, op)
	}

	switch norm {
	case OpIsNull, OpIsNotNull:
		return fmt.Sprintf("%s %s", field, norm), nil

	case OpIn, OpNotIn:
		list := strings.TrimSuffix(strings.TrimPrefix(strings.TrimSpace(value), "("), ")")
		var parts []string
		for _, v := range strings.Split(list, ",") {
			lit, err := literal(strings.TrimSpace(v), t)
			if err != nil {
				return "", fmt.Errorf("build clause for %s: %w", field, err)
			}
			parts = append(parts, lit)
		}
		return fmt.Sprintf("%s %s (%s)", field, norm, strings.Join(parts, ",")), nil

	default:
		lit, err := literal(value, t)
		if err != nil {
			return "", fmt.Errorf("build clause for %s: %w", field, err)
		}
		return fmt.Sprintf("%s %s %s", field, norm, lit), nil
	}
}

func literal(value string, t sqltype.Type) (string, error) {
	escaped, err := sqltype.Escape(value, t)
	if err != nil {
		return "", err
	}
	if t == sqltype.String {
		return "'" + escaped + "'", nil
	}
	return escaped, nil
}
