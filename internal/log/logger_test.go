package log

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestZapLogger_KeyValues(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := NewZapLogger(zap.New(core))

	l.Debug("clause skipped", "field", "activity_survey_id", "reason", "empty")
	l.Warn("missing label", "id", "7")

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "clause skipped", entries[0].Message)
	assert.Equal(t, "activity_survey_id", entries[0].ContextMap()["field"])
	assert.Equal(t, zap.WarnLevel, entries[1].Level)
}

func TestNew_Levels(t *testing.T) {
	_, err := New("info", false)
	require.NoError(t, err)

	_, err = New("debug", true)
	require.NoError(t, err)

	_, err = New("loud", false)
	assert.Error(t, err)
}

func TestNew_WithOutputHonoursLevel(t *testing.T) {
	var buf bytes.Buffer
	l, err := New("warn", false, WithOutput(&buf))
	require.NoError(t, err)

	l.Info("dropped")
	l.Warn("kept", "field", "activity_tags")

	assert.NotContains(t, buf.String(), "dropped")
	assert.Contains(t, buf.String(), `"msg":"kept"`)
	assert.Contains(t, buf.String(), `"field":"activity_tags"`)
}

func TestNewNop(t *testing.T) {
	l := NewNop()
	assert.NotPanics(t, func() {
		l.Info("ignored", "k", "v")
	})
}

var _ Logger = ZapLogger{}
