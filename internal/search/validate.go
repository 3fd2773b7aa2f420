package search

import (
	"fmt"
	"regexp"
)

// ValidationResult reports alias-registration problems in a Query.
type ValidationResult struct {
	// Valid is true when every referenced alias is registered.
	Valid bool

	// Warnings lists each unregistered alias with the fragment using it.
	Warnings []string
}

var (
	quotedLiteral = regexp.MustCompile(`'(?:[^'\\]|\\.)*'`)
	aliasRef      = regexp.MustCompile(`\b([A-Za-z_][A-Za-z0-9_]*)\.[A-Za-z_]`)
)

// Validate checks that every alias referenced by a select expression or a
// where fragment is registered in Tables or WhereTables. BaseAlias and any
// extra aliases are always allowed.
//
// Validate is a pure function with no side effects.
func Validate(q *Query, extra ...string) ValidationResult {
	v := &validator{
		allowed:  map[string]bool{BaseAlias: true},
		warnings: []string{},
	}
	for _, a := range extra {
		v.allowed[a] = true
	}

	if q == nil {
		v.addWarning("nil query")
		return v.result()
	}

	for _, t := range q.Tables.Names() {
		v.allowed[t] = true
	}
	for _, t := range q.WhereTables.Names() {
		v.allowed[t] = true
	}

	for _, field := range q.Select.Fields() {
		expr, _ := q.Select.Get(field)
		v.checkFragment("select "+field, expr)
	}
	for _, g := range q.Where.Groups() {
		for _, frag := range q.Where.Group(g) {
			v.checkFragment("where group "+g, frag)
		}
	}

	return v.result()
}

type validator struct {
	allowed  map[string]bool
	warnings []string
}

func (v *validator) addWarning(format string, args ...any) {
	v.warnings = append(v.warnings, fmt.Sprintf(format, args...))
}

func (v *validator) checkFragment(where, frag string) {
	stripped := quotedLiteral.ReplaceAllString(frag, "''")
	reported := make(map[string]bool)
	for _, m := range aliasRef.FindAllStringSubmatch(stripped, -1) {
		alias := m[1]
		if v.allowed[alias] || reported[alias] {
			continue
		}
		reported[alias] = true
		v.addWarning("%s references unregistered table %q: %s", where, alias, frag)
	}
}

func (v *validator) result() ValidationResult {
	return ValidationResult{
		Valid:    len(v.warnings) == 0,
		Warnings: v.warnings,
	}
}
