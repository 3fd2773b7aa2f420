// Package search holds the request-scoped state shared by every per-entity
// query contributor: the criteria a user entered and the Query accumulator
// those contributors write SQL fragments into.
//
// ARCHITECTURE:
//
//	[form values] → []Criterion → contributors (activity, ...) → *Query → [querysql]
//
// A Query is built once per search request, mutated by each contributor in
// turn and handed to the statement compiler. It is never shared between
// requests and is not safe for concurrent use.
//
// INVARIANTS:
//
//   - Every alias referenced by a select or where fragment is registered in
//     Tables / WhereTables before the statement is compiled. Validate reports
//     violations.
//   - Contributors append to the grouping supplied by the criterion; they
//     never choose grouping semantics themselves.
//   - Values reach SQL text only after passing through package sqltype.
package search
