package lookup_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/activityquery/internal/lookup"
	"github.com/roach88/activityquery/internal/testutil"
)

func TestLoadFile_MatchesFixture(t *testing.T) {
	tables, err := lookup.LoadFile(filepath.Join("testdata", "lookups.yaml"))
	require.NoError(t, err)

	assert.Equal(t, testutil.Lookups(), tables)
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := lookup.LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestParse_PartialFixture(t *testing.T) {
	tables, err := lookup.Parse([]byte(`
tags:
  "7": VIP
`))
	require.NoError(t, err)

	name, ok := tables.TagName("7")
	require.True(t, ok)
	assert.Equal(t, "VIP", name)

	_, ok = tables.SurveyTitle("1")
	assert.False(t, ok)
	assert.NotNil(t, tables.Groups)
	assert.NotNil(t, tables.Campaigns)
}

func TestParse_Invalid(t *testing.T) {
	_, err := lookup.Parse([]byte("option_groups: [not, a, map"))
	assert.Error(t, err)
}

func TestTables_Lookups(t *testing.T) {
	tables := testutil.Lookups()

	label, ok := tables.ActivityTypeLabel("2")
	require.True(t, ok)
	assert.Equal(t, "Phone Call", label)

	_, ok = tables.ActivityTypeLabel("7")
	assert.False(t, ok)

	assert.True(t, tables.IsComponentActivityType("5"))
	assert.False(t, tables.IsComponentActivityType("1"))
	assert.False(t, tables.IsComponentActivityType("404"))

	status, ok := tables.ActivityStatusLabel("2")
	require.True(t, ok)
	assert.Equal(t, "Completed", status)

	level, ok := tables.OptionLabel(lookup.GroupEngagementIndex, "3")
	require.True(t, ok)
	assert.Equal(t, "High", level)

	source, ok := tables.OptionValueByName(lookup.GroupActivityContacts, lookup.RoleSource)
	require.True(t, ok)
	assert.Equal(t, "2", source)

	_, ok = tables.OptionValueByName(lookup.GroupActivityContacts, "Activity Watchers")
	assert.False(t, ok)

	survey, ok := tables.SurveyTitle("4")
	require.True(t, ok)
	assert.Equal(t, "Volunteer Interest 2013", survey)

	campaign, ok := tables.CampaignTitle("11")
	require.True(t, ok)
	assert.Equal(t, "Fall Gala", campaign)
}

func TestTables_FixtureFilesInSync(t *testing.T) {
	local, err := os.ReadFile(filepath.Join("testdata", "lookups.yaml"))
	require.NoError(t, err)
	root, err := os.ReadFile(filepath.Join("..", "..", "testdata", "lookups.yaml"))
	require.NoError(t, err)

	assert.Equal(t, string(root), string(local))
}
