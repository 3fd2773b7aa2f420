// Package sqltype validates and escapes values before they are concatenated
// into SQL text. Every user-supplied value that ends up in a fragment passes
// through Escape with the type the column expects.
package sqltype

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Type is the declared SQL type of a value.
type Type int

const (
	Integer Type = iota + 1
	String
	Boolean
)

func (t Type) String() string {
	switch t {
	case Integer:
		return "Integer"
	case String:
		return "String"
	case Boolean:
		return "Boolean"
	default:
		return fmt.Sprintf("Type(%d)", int(t))
	}
}

// EscapeError reports a value that cannot be coerced to its declared type.
type EscapeError struct {
	Type  Type
	Value string
}

func (e *EscapeError) Error() string {
	return fmt.Sprintf("%q is not a valid %s", e.Value, e.Type)
}

// IsEscapeError reports whether err wraps an *EscapeError.
func IsEscapeError(err error) bool {
	var ee *EscapeError
	return errors.As(err, &ee)
}

var (
	integerPattern = regexp.MustCompile(`^[+-]?[0-9]+$`)
	numericPattern = regexp.MustCompile(`^\s*[+-]?([0-9]+(\.[0-9]*)?|\.[0-9]+)([eE][+-]?[0-9]+)?\s*$`)
)

// mysql_real_escape_string semantics.
var stringEscaper = strings.NewReplacer(
	`\`, `\\`,
	`'`, `\'`,
	`"`, `\"`,
	"\x00", `\0`,
	"\n", `\n`,
	"\r", `\r`,
	"\x1a", `\Z`,
)

// Escape validates value against t and returns the literal to splice into SQL.
// String literals are escaped but not quoted.
func Escape(value string, t Type) (string, error) {
	switch t {
	case Integer:
		v := strings.TrimSpace(value)
		if !integerPattern.MatchString(v) {
			return "", &EscapeError{Type: t, Value: value}
		}
		return strings.TrimPrefix(v, "+"), nil
	case String:
		return EscapeString(value), nil
	case Boolean:
		switch strings.ToLower(strings.TrimSpace(value)) {
		case "1", "true", "yes", "on":
			return "1", nil
		case "", "0", "false", "no", "off":
			return "0", nil
		}
		return "", &EscapeError{Type: t, Value: value}
	default:
		return "", fmt.Errorf("escape %q: unsupported type %s", value, t)
	}
}

// EscapeAll escapes every value with the same type, stopping at the first
// failure.
func EscapeAll(values []string, t Type) ([]string, error) {
	out := make([]string, 0, len(values))
	for _, v := range values {
		e, err := Escape(v, t)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

// EscapeString backslash-escapes characters that terminate or corrupt a
// single-quoted literal.
func EscapeString(s string) string {
	return stringEscaper.Replace(s)
}

// Quote escapes s and wraps it in single quotes.
func Quote(s string) string {
	return "'" + EscapeString(s) + "'"
}

// IsNumeric reports whether s is a decimal number, allowing surrounding
// whitespace, a sign, a fraction and an exponent.
func IsNumeric(s string) bool {
	return numericPattern.MatchString(s)
}
