package activity

import (
	"fmt"

	"github.com/roach88/activityquery/internal/lookup"
	"github.com/roach88/activityquery/internal/search"
)

var joinOrder = []string{
	TableActivity,
	TableActivityContact,
	TableActivityType,
	TableActivityStatus,
	TableActivityTag,
	TableSourceContact,
}

var joinDependencies = map[string][]string{
	TableActivityContact: {TableActivity},
	TableActivityType:    {TableActivity},
	TableActivityStatus:  {TableActivity},
	TableActivityTag:     {TableActivity},
	TableSourceContact:   {TableActivity},
}

// JoinOrder lists the aliases From knows, each after the ones it joins on.
func (r *Resolver) JoinOrder() []string {
	out := make([]string, len(joinOrder))
	copy(out, joinOrder)
	return out
}

// JoinDependencies returns the aliases whose joins name must follow.
func (r *Resolver) JoinDependencies(name string) []string {
	return joinDependencies[name]
}

// From returns the join text for the alias name, with a leading space so it
// can be appended after the base table. It returns "" for aliases this package
// does not join, and for civicrm_activity_contact, which the civicrm_activity
// join brings in.
//
// The activity join itself is always INNER; optional lookups use side, LEFT
// when empty.
func (r *Resolver) From(name string, mode search.Mode, side search.JoinSide) (string, error) {
	if side == "" {
		side = search.JoinLeft
	}
	if side != search.JoinLeft && side != search.JoinInner {
		return "", fmt.Errorf("unsupported join side %q", side)
	}

	switch name {
	case TableActivity:
		return " INNER JOIN civicrm_activity_contact" +
			" ON ( civicrm_activity_contact.contact_id = contact_a.id )" +
			" INNER JOIN civicrm_activity" +
			" ON ( civicrm_activity.id = civicrm_activity_contact.activity_id" +
			" AND civicrm_activity.is_deleted = 0 AND civicrm_activity.is_current_revision = 1 )", nil

	case TableActivityStatus:
		return optionJoin(side, lookup.GroupActivityStatus, "status_id"), nil

	case TableActivityType:
		return optionJoin(side, lookup.GroupActivityType, "activity_type_id"), nil

	case TableActivityTag:
		return fmt.Sprintf(" %s JOIN civicrm_entity_tag as civicrm_activity_tag"+
			" ON ( civicrm_activity_tag.entity_table = 'civicrm_activity'"+
			" AND civicrm_activity_tag.entity_id = civicrm_activity.id )", side), nil

	case TableSourceContact:
		sourceID, err := r.recordTypeID(lookup.RoleSource)
		if err != nil {
			r.logger.Warn("cannot join source contact", "mode", int(mode), "error", err)
			return "", fmt.Errorf("join %s: %w", name, err)
		}
		return " LEFT JOIN civicrm_activity_contact ac" +
			" ON ( ac.activity_id = civicrm_activity_contact.activity_id AND ac.record_type_id = " + sourceID + " )" +
			" INNER JOIN civicrm_contact source_contact ON ( ac.contact_id = source_contact.id )", nil
	}
	return "", nil
}

// optionJoin joins an option value of group, aliased as the group name, on
// civicrm_activity.column.
func optionJoin(side search.JoinSide, group, column string) string {
	og := "option_group_" + group
	return fmt.Sprintf(" %[1]s JOIN civicrm_option_group %[2]s ON (%[2]s.name = '%[3]s')"+
		" %[1]s JOIN civicrm_option_value %[3]s ON (civicrm_activity.%[4]s = %[3]s.value"+
		" AND %[2]s.id = %[3]s.option_group_id )", side, og, group, column)
}
