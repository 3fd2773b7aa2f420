package activity

import (
	"fmt"
	"strings"

	"github.com/roach88/activityquery/internal/search"
	"github.com/roach88/activityquery/internal/sqltype"
)

// NormalizeTagList flattens the tag-list widget encoding, a set of
// comma-separated id strings, into distinct tag ids in first-seen order.
// Blank and non-numeric entries are dropped.
func NormalizeTagList(v search.Value) []string {
	raw := v.Values()
	if !v.IsSet() {
		raw = []string{v.String()}
	}

	var ids []string
	seen := make(map[string]bool)
	for _, entry := range raw {
		if !search.Truthy(entry) {
			continue
		}
		for _, id := range strings.Split(entry, ",") {
			id = strings.TrimSpace(id)
			if !sqltype.IsNumeric(id) || seen[id] {
				continue
			}
			seen[id] = true
			ids = append(ids, id)
		}
	}
	return ids
}

func (r *Resolver) whereTagList(q *search.Query, c search.Criterion) (Effects, error) {
	return Effects{}, r.tagClause(q, c, NormalizeTagList(c.Value))
}

func (r *Resolver) whereTags(q *search.Query, c search.Criterion) (Effects, error) {
	return Effects{}, r.tagClause(q, c, c.Value.Selected())
}

// tagClause filters on activities tagged with any of ids.
func (r *Resolver) tagClause(q *search.Query, c search.Criterion, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	escaped, err := sqltype.EscapeAll(ids, sqltype.Integer)
	if err != nil {
		return err
	}

	var names []string
	for _, id := range escaped {
		if name, ok := r.lookups.TagName(id); ok {
			names = append(names, name)
		}
	}

	op := strings.ToUpper(strings.TrimSpace(c.Op))
	if op == "" {
		op = "IN"
	}
	q.AddWhere(c.Grouping, fmt.Sprintf("civicrm_activity_tag.tag_id IN (%s)", strings.Join(escaped, ",")))
	q.AddQill(c.Grouping, describe(r.tr.T("Activity Tag %s", op), names, r.tr.T("OR")))
	q.RequireTables(TableActivityTag)
	return nil
}
