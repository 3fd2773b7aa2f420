package config

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/roach88/activityquery/internal/log"
	"github.com/roach88/activityquery/internal/lookup"
	"github.com/roach88/activityquery/internal/search"
	"github.com/roach88/activityquery/internal/testutil"
)

func writeConfig(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	prevWD, wdErr := os.Getwd()
	require.NoError(t, wdErr)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(prevWD) })

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, DriverFile, cfg.Lookup.Driver)
	assert.Equal(t, "lookups.yaml", cfg.Lookup.File)
	assert.Empty(t, cfg.Lookup.DSN)
	assert.Equal(t, search.JoinLeft, cfg.JoinSide())
	assert.Equal(t, "info", cfg.Log.Level)
	assert.False(t, cfg.Log.Development)
	assert.Equal(t, "en", cfg.Locale)
}

func TestLoad_ExplicitFile(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "custom.yaml", `
lookup:
  driver: SQLite3
  dsn: /tmp/lookups.db
query:
  join_side: inner
log:
  level: DEBUG
  development: true
locale: fr
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, lookup.DriverSQLite, cfg.Lookup.Driver)
	assert.Equal(t, "/tmp/lookups.db", cfg.Lookup.DSN)
	assert.Equal(t, search.JoinInner, cfg.JoinSide())
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.Log.Development)
	assert.Equal(t, "fr", cfg.Locale)
}

func TestLoad_DiscoversFileInWorkingDirectory(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "activityquery.yaml", "locale: fr-CA\n")
	prevWD, wdErr := os.Getwd()
	require.NoError(t, wdErr)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prevWD) })

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "fr-CA", cfg.Locale)
}

func TestLoad_EnvironmentOverridesFile(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "activityquery.yaml", "query:\n  join_side: LEFT\n")
	t.Setenv("ACTIVITYQUERY_QUERY_JOIN_SIDE", "INNER")
	t.Setenv("ACTIVITYQUERY_LOOKUP_FILE", "other.yaml")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, search.JoinInner, cfg.JoinSide())
	assert.Equal(t, "other.yaml", cfg.Lookup.File)
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()
	testCases := []struct {
		name string
		path string
	}{
		{"missing explicit file", filepath.Join(dir, "missing.yaml")},
		{"malformed yaml", writeConfig(t, dir, "broken.yaml", "lookup: [\n")},
		{"unknown driver", writeConfig(t, dir, "driver.yaml", "lookup:\n  driver: mysql\n  dsn: x\n")},
		{"database without dsn", writeConfig(t, dir, "dsn.yaml", "lookup:\n  driver: postgres\n")},
		{"bad join side", writeConfig(t, dir, "side.yaml", "query:\n  join_side: OUTER\n")},
		{"bad level", writeConfig(t, dir, "level.yaml", "log:\n  level: loud\n")},
		{"empty locale", writeConfig(t, dir, "locale.yaml", "locale: \"\"\n")},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(tc.path)
			assert.Error(t, err)
		})
	}
}

func TestConfig_NewTranslatorAndLogger(t *testing.T) {
	cfg := &Config{Locale: "fr", Log: LogConfig{Level: "warn"}}

	tr, err := cfg.NewTranslator()
	require.NoError(t, err)
	assert.Equal(t, language.French, tr.Tag())

	var logs bytes.Buffer
	logger, err := cfg.NewLogger(log.WithOutput(&logs))
	require.NoError(t, err)
	logger.Info("below level")
	logger.Warn("at level")
	assert.NotContains(t, logs.String(), "below level")
	assert.Contains(t, logs.String(), "at level")

	_, err = (&Config{Locale: "not a locale!"}).NewTranslator()
	assert.Error(t, err)
}

func TestConfig_LoadLookupsFromFile(t *testing.T) {
	cfg := &Config{Lookup: LookupConfig{Driver: DriverFile, File: filepath.Join("..", "..", "testdata", "lookups.yaml")}}

	tables, err := cfg.LoadLookups(context.Background())
	require.NoError(t, err)
	assert.Equal(t, testutil.Lookups(), tables)

	_, err = cfg.OpenStore(context.Background())
	assert.Error(t, err)
}

func TestConfig_LoadLookupsFromSQLite(t *testing.T) {
	ctx := context.Background()
	dsn := filepath.Join(t.TempDir(), "lookups.db")
	cfg := &Config{Lookup: LookupConfig{Driver: lookup.DriverSQLite, DSN: dsn}}

	st, err := cfg.OpenStore(ctx)
	require.NoError(t, err)
	require.NoError(t, st.Import(ctx, testutil.Lookups()))
	require.NoError(t, st.Close())

	tables, err := cfg.LoadLookups(ctx)
	require.NoError(t, err)
	assert.Equal(t, testutil.Lookups(), tables)
}
