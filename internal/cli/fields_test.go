package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFieldsText(t *testing.T) {
	out, _, err := execute(t, NewFieldsCommand(testOptions("text")))
	require.NoError(t, err)

	assert.Contains(t, out, "Return fields:\n  activity_id\n")
	assert.Contains(t, out, "Criteria:\n  activity_type_id\n")
	assert.Contains(t, out, "Default return fields (activity):\n  activity_id\n  contact_type\n")
}

func TestFieldsJSON(t *testing.T) {
	out, _, err := execute(t, NewFieldsCommand(testOptions("json")), "--mode", "contacts")
	require.NoError(t, err)

	var resp struct {
		Data FieldsOutput `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "contacts", resp.Data.Mode)
	assert.Len(t, resp.Data.Select, 15)
	assert.Contains(t, resp.Data.Where, "activity_taglist")
	assert.Empty(t, resp.Data.Defaults)
}

func TestFieldsUnknownMode(t *testing.T) {
	_, _, err := execute(t, NewFieldsCommand(testOptions("text")), "--mode", "sideways")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
