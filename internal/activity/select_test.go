package activity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/activityquery/internal/search"
	"github.com/roach88/activityquery/internal/testutil"
)

func newTestResolver(opts ...Option) *Resolver {
	return New(testutil.Lookups(), opts...)
}

func TestSelect_NothingRequested(t *testing.T) {
	q := search.NewQuery()
	newTestResolver().Select(q)

	assert.Equal(t, 0, q.Select.Len())
	assert.Empty(t, q.Element)
	assert.Equal(t, 0, q.Tables.Len())
}

func TestSelect_SparseRegistration(t *testing.T) {
	q := search.NewQuery(search.WithReturnProperties("source_contact", "activity_type", "sort_name"))
	newTestResolver().Select(q)

	assert.Equal(t, []string{"activity_type", "source_contact"}, q.Select.Fields())

	expr, ok := q.Select.Get("activity_type")
	require.True(t, ok)
	assert.Equal(t, "activity_type.label as activity_type", expr)

	expr, ok = q.Select.Get("source_contact")
	require.True(t, ok)
	assert.Equal(t, "source_contact.sort_name as source_contact", expr)

	assert.Equal(t, map[string]bool{"activity_type": true, "source_contact": true}, q.Element)
	assert.Equal(t, []string{"civicrm_activity", "activity_type", "source_contact"}, q.Tables.Names())
	assert.Equal(t, q.Tables.Names(), q.WhereTables.Names())
}

func TestSelect_EveryFieldRegistersItsAliases(t *testing.T) {
	for _, field := range SelectFields() {
		t.Run(field, func(t *testing.T) {
			q := search.NewQuery(search.WithReturnProperties(field))
			newTestResolver().Select(q)

			require.Equal(t, []string{field}, q.Select.Fields())
			assert.True(t, q.Element[field])

			result := search.Validate(q)
			assert.True(t, result.Valid, "warnings: %v", result.Warnings)
		})
	}
}

func TestSelect_AllFieldsInOrder(t *testing.T) {
	q := search.NewQuery(search.WithReturnProperties(SelectFields()...))
	newTestResolver().Select(q)

	assert.Equal(t, SelectFields(), q.Select.Fields())
	assert.Equal(t, []string{"civicrm_activity", "activity_type", "activity_status", "source_contact"}, q.Tables.Names())
}

func TestDefaultReturnProperties(t *testing.T) {
	props := DefaultReturnProperties(search.ModeActivity)
	require.Len(t, props, 17)
	assert.Equal(t, "activity_id", props[0])
	assert.Contains(t, props, "source_contact")
	assert.NotContains(t, props, "activity_type_id")

	assert.NotNil(t, DefaultReturnProperties(search.ModeActivity|search.ModeCase))
	assert.Nil(t, DefaultReturnProperties(search.ModeContacts))

	props[0] = "mutated"
	assert.Equal(t, "activity_id", DefaultReturnProperties(search.ModeActivity)[0])
}
