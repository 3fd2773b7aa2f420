package activity

import (
	"github.com/roach88/activityquery/internal/search"
)

type selectField struct {
	name   string
	expr   string
	tables []string
}

// selectFields is the ordered list of output columns this package can add.
var selectFields = []selectField{
	{"activity_id", "civicrm_activity.id as activity_id", []string{TableActivity}},
	{"activity_type_id", "activity_type.id as activity_type_id", []string{TableActivity, TableActivityType}},
	{"activity_type", "activity_type.label as activity_type", []string{TableActivity, TableActivityType}},
	{"activity_subject", "civicrm_activity.subject as activity_subject", []string{TableActivity}},
	{"activity_date_time", "civicrm_activity.activity_date_time as activity_date_time", []string{TableActivity}},
	{"activity_status_id", "activity_status.value as activity_status_id", []string{TableActivity, TableActivityStatus}},
	{"activity_status", "activity_status.label as activity_status", []string{TableActivity, TableActivityStatus}},
	{"activity_duration", "civicrm_activity.duration as activity_duration", []string{TableActivity}},
	{"activity_location", "civicrm_activity.location as activity_location", []string{TableActivity}},
	{"activity_details", "civicrm_activity.details as activity_details", []string{TableActivity}},
	{"source_record_id", "civicrm_activity.source_record_id as source_record_id", []string{TableActivity}},
	{"activity_is_test", "civicrm_activity.is_test as activity_is_test", []string{TableActivity}},
	{"activity_campaign_id", "civicrm_activity.campaign_id as activity_campaign_id", []string{TableActivity}},
	{"activity_engagement_level", "civicrm_activity.engagement_level as activity_engagement_level", []string{TableActivity}},
	{"source_contact", "source_contact.sort_name as source_contact", []string{TableSourceContact}},
}

// Select registers the requested activity columns. Fields the caller did not
// ask for are skipped.
func (r *Resolver) Select(q *search.Query) {
	for _, f := range selectFields {
		if !q.Returns(f.name) {
			continue
		}
		q.Select.Set(f.name, f.expr)
		q.Element[f.name] = true
		q.RequireTables(f.tables...)
	}
}

// SelectFields lists every column Select knows, in registration order.
func SelectFields() []string {
	names := make([]string, len(selectFields))
	for i, f := range selectFields {
		names[i] = f.name
	}
	return names
}

var defaultActivityProperties = []string{
	"activity_id",
	"contact_type",
	"contact_sub_type",
	"sort_name",
	"display_name",
	"activity_type",
	"activity_subject",
	"activity_date_time",
	"activity_duration",
	"activity_location",
	"activity_details",
	"activity_status",
	"source_contact",
	"source_record_id",
	"activity_is_test",
	"activity_campaign_id",
	"activity_engagement_level",
}

// DefaultReturnProperties returns the columns an activity-mode search shows
// when the caller requested none. Other modes get nil.
func DefaultReturnProperties(mode search.Mode) []string {
	if !mode.Has(search.ModeActivity) {
		return nil
	}
	out := make([]string, len(defaultActivityProperties))
	copy(out, defaultActivityProperties)
	return out
}
