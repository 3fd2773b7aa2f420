package testutil

import "github.com/roach88/activityquery/internal/lookup"

// Lookups returns the lookup snapshot shared by package tests. It mirrors
// testdata/lookups.yaml at the repository root.
//
// Activity types 5 and 13 are component-linked. Role record-type ids follow
// the stock install: assignees 1, source 2, targets 3.
func Lookups() *lookup.Tables {
	t := lookup.NewTables()

	t.Groups[lookup.GroupActivityType] = []lookup.Option{
		{Value: "1", Label: "Meeting", Name: "Meeting"},
		{Value: "2", Label: "Phone Call", Name: "Phone Call"},
		{Value: "3", Label: "Email", Name: "Email"},
		{Value: "5", Label: "Event Registration", Name: "Event Registration", Component: true},
		{Value: "9", Label: "Tell a Friend", Name: "Tell a Friend"},
		{Value: "13", Label: "Open Case", Name: "Open Case", Component: true},
	}
	t.Groups[lookup.GroupActivityStatus] = []lookup.Option{
		{Value: "1", Label: "Scheduled", Name: "Scheduled"},
		{Value: "2", Label: "Completed", Name: "Completed"},
		{Value: "3", Label: "Cancelled", Name: "Cancelled"},
		{Value: "4", Label: "Left Message", Name: "Left Message"},
	}
	t.Groups[lookup.GroupEngagementIndex] = []lookup.Option{
		{Value: "1", Label: "Low", Name: "1"},
		{Value: "2", Label: "Medium", Name: "2"},
		{Value: "3", Label: "High", Name: "3"},
	}
	t.Groups[lookup.GroupActivityContacts] = []lookup.Option{
		{Value: "1", Label: "Activity Assignees", Name: lookup.RoleAssignees},
		{Value: "2", Label: "Activity Source", Name: lookup.RoleSource},
		{Value: "3", Label: "Activity Targets", Name: lookup.RoleTargets},
	}

	t.Tags["1"] = "Urgent"
	t.Tags["2"] = "Follow Up"
	t.Tags["3"] = "Donor"

	t.Surveys["4"] = "Volunteer Interest 2013"

	t.Campaigns["10"] = "Spring Appeal"
	t.Campaigns["11"] = "Fall Gala"

	return t
}
