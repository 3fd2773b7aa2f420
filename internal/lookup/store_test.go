package lookup_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/activityquery/internal/lookup"
	"github.com/roach88/activityquery/internal/testutil"
)

func openTestStore(t *testing.T) (*lookup.Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "lookups.db")
	st, err := lookup.Open(context.Background(), lookup.DriverSQLite, path)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st, path
}

func TestStore_ImportLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	st, _ := openTestStore(t)

	require.NoError(t, st.Import(ctx, testutil.Lookups()))

	loaded, err := st.Load(ctx)
	require.NoError(t, err)

	assert.Equal(t, testutil.Lookups(), loaded)
}

func TestStore_ImportIsIdempotent(t *testing.T) {
	ctx := context.Background()
	st, _ := openTestStore(t)

	require.NoError(t, st.Import(ctx, testutil.Lookups()))
	require.NoError(t, st.Import(ctx, testutil.Lookups()))

	var count int
	require.NoError(t, st.DB().GetContext(ctx, &count, "SELECT COUNT(*) FROM civicrm_option_value"))
	assert.Equal(t, 16, count)
}

func TestStore_ImportUpdatesLabels(t *testing.T) {
	ctx := context.Background()
	st, _ := openTestStore(t)
	require.NoError(t, st.Import(ctx, testutil.Lookups()))

	changed := testutil.Lookups()
	changed.Tags["1"] = "Very Urgent"
	changed.Groups[lookup.GroupActivityType][0].Label = "In-person Meeting"
	require.NoError(t, st.Import(ctx, changed))

	loaded, err := st.Load(ctx)
	require.NoError(t, err)

	tag, _ := loaded.TagName("1")
	assert.Equal(t, "Very Urgent", tag)
	label, _ := loaded.ActivityTypeLabel("1")
	assert.Equal(t, "In-person Meeting", label)
}

func TestStore_LoadEmpty(t *testing.T) {
	st, _ := openTestStore(t)

	loaded, err := st.Load(context.Background())
	require.NoError(t, err)

	assert.Empty(t, loaded.Groups)
	assert.Empty(t, loaded.Tags)
}

func TestStore_ReopenKeepsData(t *testing.T) {
	ctx := context.Background()
	st, path := openTestStore(t)
	require.NoError(t, st.Import(ctx, testutil.Lookups()))
	require.NoError(t, st.Close())

	reopened, err := lookup.Open(ctx, lookup.DriverSQLite, path)
	require.NoError(t, err)
	defer reopened.Close()

	var version int
	require.NoError(t, reopened.DB().GetContext(ctx, &version, "PRAGMA user_version"))
	assert.Equal(t, 1, version)

	loaded, err := reopened.Load(ctx)
	require.NoError(t, err)
	title, ok := loaded.CampaignTitle("10")
	require.True(t, ok)
	assert.Equal(t, "Spring Appeal", title)
}

func TestStore_ImportRejectsNonNumericIDs(t *testing.T) {
	st, _ := openTestStore(t)
	tables := lookup.NewTables()
	tables.Tags["urgent"] = "Urgent"

	err := st.Import(context.Background(), tables)
	assert.Error(t, err)
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := lookup.Open(context.Background(), "mysql", "dsn")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported lookup driver")
}
