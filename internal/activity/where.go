package activity

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/roach88/activityquery/internal/clause"
	"github.com/roach88/activityquery/internal/lookup"
	"github.com/roach88/activityquery/internal/search"
	"github.com/roach88/activityquery/internal/sqltype"
)

type whereFunc func(r *Resolver, q *search.Query, c search.Criterion) (Effects, error)

type whereField struct {
	name string
	fn   whereFunc
}

// whereFields maps each criterion name to its predicate builder.
var whereFields = []whereField{
	{"activity_type_id", (*Resolver).whereType},
	{"activity_survey_id", (*Resolver).whereSurvey},
	{"activity_engagement_level", (*Resolver).whereEngagementLevel},
	{"activity_role", (*Resolver).whereRole},
	{"activity_status", (*Resolver).whereStatus},
	{"activity_subject", (*Resolver).whereSubject},
	{"activity_test", (*Resolver).whereTest},
	{"activity_date", (*Resolver).whereDate},
	{"activity_date_low", (*Resolver).whereDate},
	{"activity_date_high", (*Resolver).whereDate},
	{"activity_id", (*Resolver).whereID},
	{"activity_taglist", (*Resolver).whereTagList},
	{"activity_tags", (*Resolver).whereTags},
	{"activity_campaign_id", (*Resolver).whereCampaign},
}

var whereByName = func() map[string]whereFunc {
	m := make(map[string]whereFunc, len(whereFields))
	for _, f := range whereFields {
		m[f.name] = f.fn
	}
	return m
}()

// WhereFields lists the criterion names WhereClauseSingle understands.
func WhereFields() []string {
	names := make([]string, len(whereFields))
	for i, f := range whereFields {
		names[i] = f.name
	}
	return names
}

// Where applies every activity_* criterion of q. A plain contact search that
// filters on activities needs DISTINCT rows, since each contact joins once per
// activity.
func (r *Resolver) Where(q *search.Query) (Effects, error) {
	var eff Effects
	for _, c := range q.Params {
		if !strings.HasPrefix(c.Name, FieldPrefix) {
			continue
		}
		if q.Mode == search.ModeContacts {
			q.UseDistinct = true
		}
		e, err := r.WhereClauseSingle(q, c)
		if err != nil {
			return eff, err
		}
		eff.merge(e)
	}
	return eff, nil
}

// WhereClauseSingle appends the predicate and description for one criterion.
//
// The activity table is always registered, even for names no builder
// handles; those are otherwise ignored. Activity-mode searches filter deleted
// activities in the join, so the contact soft-delete filter is dropped.
func (r *Resolver) WhereClauseSingle(q *search.Query, c search.Criterion) (Effects, error) {
	q.RequireTables(TableActivity)
	if q.Mode.Has(search.ModeActivity) {
		q.SkipDeleteClause = true
	}

	fn, ok := whereByName[c.Name]
	if !ok {
		r.logger.Debug("ignoring unhandled activity criterion", "name", c.Name, "request_id", q.RequestID)
		return Effects{}, nil
	}

	eff, err := fn(r, q, c)
	if err != nil {
		return Effects{}, fmt.Errorf("%s: %w", c.Name, err)
	}
	return eff, nil
}

func (r *Resolver) whereType(q *search.Query, c search.Criterion) (Effects, error) {
	var eff Effects
	sel := c.Value.Selection()
	if len(sel) == 0 {
		return eff, nil
	}

	escaped, err := sqltype.EscapeAll(selectionKeys(sel), sqltype.Integer)
	if err != nil {
		return eff, err
	}

	// Every supplied id is filtered on; only checked, known ones are described.
	var labels []string
	for i, it := range sel {
		if !search.Truthy(it.Value) {
			continue
		}
		id := escaped[i]
		label, ok := r.lookups.ActivityTypeLabel(id)
		if !ok {
			r.logger.Debug("unknown activity type", "id", id, "request_id", q.RequestID)
			continue
		}
		labels = append(labels, sqltype.Quote(label))
		if r.lookups.IsComponentActivityType(id) {
			eff.ConsiderComponentActivities = true
		}
	}

	q.AddWhere(c.Grouping, fmt.Sprintf("civicrm_activity.activity_type_id IN (%s)", strings.Join(escaped, ",")))
	q.AddQill(c.Grouping, describe(r.tr.T("Activity Type"), labels, r.tr.T("or")))
	return eff, nil
}

func (r *Resolver) whereSurvey(q *search.Query, c search.Criterion) (Effects, error) {
	if c.Value.Empty() {
		return Effects{}, nil
	}
	id, err := sqltype.Escape(c.Value.String(), sqltype.Integer)
	if err != nil {
		return Effects{}, err
	}

	title, ok := r.lookups.SurveyTitle(id)
	if !ok {
		title = id
	}
	q.AddWhere(c.Grouping, "civicrm_activity.source_record_id = "+id)
	q.AddQill(c.Grouping, r.tr.T("Survey")+" - "+title)
	return Effects{}, nil
}

func (r *Resolver) whereEngagementLevel(q *search.Query, c search.Criterion) (Effects, error) {
	if c.Value.Empty() {
		return Effects{}, nil
	}
	level, err := sqltype.Escape(c.Value.String(), sqltype.Integer)
	if err != nil {
		return Effects{}, err
	}

	label, ok := r.lookups.OptionLabel(lookup.GroupEngagementIndex, level)
	if !ok {
		label = level
	}
	q.AddWhere(c.Grouping, "civicrm_activity.engagement_level = "+level)
	q.AddQill(c.Grouping, r.tr.T("Engagement Index")+" - "+label)
	return Effects{}, nil
}

var roles = map[string]struct {
	name string
	qill string
}{
	RoleCodeSource:   {lookup.RoleSource, "Activity created by"},
	RoleCodeAssignee: {lookup.RoleAssignees, "Activity assigned to"},
	RoleCodeTarget:   {lookup.RoleTargets, "Activity targeted to"},
}

func (r *Resolver) whereRole(q *search.Query, c search.Criterion) (Effects, error) {
	code := c.Value.String()
	eff := Effects{ActivityRole: code}
	if !search.Truthy(code) {
		return eff, nil
	}

	q.RequireTables(TableActivityContact)
	role, ok := roles[code]
	if !ok {
		return eff, nil
	}

	id, err := r.recordTypeID(role.name)
	if err != nil {
		return eff, err
	}
	q.AddWhere(c.Grouping, "civicrm_activity_contact.record_type_id = "+id)
	q.AddQill(c.Grouping, r.tr.T(role.qill))
	return eff, nil
}

// recordTypeID resolves an activity-contact role name to its escaped id.
func (r *Resolver) recordTypeID(name string) (string, error) {
	id, ok := r.lookups.OptionValueByName(lookup.GroupActivityContacts, name)
	if !ok {
		return "", fmt.Errorf("record type %q: %w", name, lookup.ErrNotFound)
	}
	return sqltype.Escape(id, sqltype.Integer)
}

func (r *Resolver) whereStatus(q *search.Query, c search.Criterion) (Effects, error) {
	sel := c.Value.Selection()
	if len(sel) == 0 {
		return Effects{}, nil
	}

	escaped, err := sqltype.EscapeAll(selectionKeys(sel), sqltype.Integer)
	if err != nil {
		return Effects{}, err
	}

	var labels []string
	for _, id := range escaped {
		if !search.Truthy(id) {
			continue
		}
		if label, ok := r.lookups.ActivityStatusLabel(id); ok {
			labels = append(labels, sqltype.Quote(label))
		}
	}

	q.AddWhere(c.Grouping, fmt.Sprintf("civicrm_activity.status_id IN (%s)", strings.Join(escaped, ",")))
	q.AddQill(c.Grouping, describe(r.tr.T("Activity Status")+" -", labels, r.tr.T("or")))
	return Effects{}, nil
}

var subjectOperators = map[string]bool{
	"=": true, "!=": true, "<>": true, "LIKE": true, "NOT LIKE": true,
}

func (r *Resolver) whereSubject(q *search.Query, c search.Criterion) (Effects, error) {
	op, ok := clause.NormalizeOp(c.Op)
	if !ok || !subjectOperators[op] {
		return Effects{}, fmt.Errorf("unsupported operator %q", c.Op)
	}

	subject := strings.TrimSpace(c.Value.String())
	value := sqltype.EscapeString(cases.Lower(language.Und).String(subject))
	if c.Wildcard {
		if !strings.Contains(value, "%") {
			value = "%" + value + "%"
		}
		op = clause.OpLike
	}

	column := "LOWER(civicrm_activity.subject)"
	if op == clause.OpLike {
		column = "civicrm_activity.subject"
	}
	q.AddWhere(c.Grouping, fmt.Sprintf("%s %s '%s'", column, op, value))
	q.AddQill(c.Grouping, fmt.Sprintf("%s %s - '%s'", r.tr.T("Subject"), op, subject))
	return Effects{}, nil
}

func (r *Resolver) whereTest(q *search.Query, c search.Criterion) (Effects, error) {
	flag, err := sqltype.Escape(c.Value.String(), sqltype.Boolean)
	if err != nil {
		return Effects{}, err
	}
	// Under OR, "not a test" would match nearly every row.
	if flag == "0" && q.Operator == search.OperatorOR {
		return Effects{}, nil
	}

	where, err := clause.Build("civicrm_activity.is_test", c.Op, flag, sqltype.Boolean)
	if err != nil {
		return Effects{}, err
	}
	q.AddWhere(c.Grouping, where)
	if flag == "1" {
		q.AddQill(c.Grouping, r.tr.T("Activity is a Test"))
	}
	return Effects{}, nil
}

func (r *Resolver) whereDate(q *search.Query, c search.Criterion) (Effects, error) {
	err := clause.DateRange(q, c, clause.DateField{
		Table:  TableActivity,
		Name:   "activity_date",
		Column: "activity_date_time",
		Title:  r.tr.T("Activity Date"),
	}, r.tr)
	return Effects{}, err
}

func (r *Resolver) whereID(q *search.Query, c search.Criterion) (Effects, error) {
	if c.Value.Empty() {
		return Effects{}, nil
	}
	ids, err := sqltype.EscapeAll(c.Value.Selected(), sqltype.Integer)
	if err != nil {
		return Effects{}, err
	}

	q.AddWhere(c.Grouping, fmt.Sprintf("civicrm_activity.id IN (%s)", strings.Join(ids, ",")))
	q.AddQill(c.Grouping, r.tr.T("Activity Id(s) %s", strings.Join(ids, ", ")))
	return Effects{}, nil
}

func (r *Resolver) whereCampaign(q *search.Query, c search.Criterion) (Effects, error) {
	err := clause.CampaignSearch(q, clause.CampaignParams{
		Op:        c.Op,
		Campaign:  c.Value,
		Grouping:  c.Grouping,
		TableName: TableActivity,
	}, r.lookups, r.tr)
	return Effects{}, err
}

func selectionKeys(sel []search.Item) []string {
	keys := make([]string, len(sel))
	for i, it := range sel {
		keys[i] = it.Key
	}
	return keys
}

// describe renders "title a sep b"; just the title when nothing resolved.
func describe(title string, parts []string, sep string) string {
	if len(parts) == 0 {
		return title
	}
	return title + " " + strings.Join(parts, " "+sep+" ")
}
