// Package config loads runtime settings from an optional activityquery.yaml,
// ACTIVITYQUERY_* environment variables and built-in defaults, in that order
// of precedence from lowest to highest: defaults, file, environment.
package config

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/roach88/activityquery/internal/i18n"
	"github.com/roach88/activityquery/internal/log"
	"github.com/roach88/activityquery/internal/lookup"
	"github.com/roach88/activityquery/internal/search"
)

const (
	// EnvPrefix prefixes every environment override, e.g.
	// ACTIVITYQUERY_LOOKUP_DRIVER.
	EnvPrefix = "ACTIVITYQUERY"

	// FileName is the config file searched for in the working directory.
	FileName = "activityquery"

	// DriverFile reads lookups from a YAML snapshot instead of a database.
	DriverFile = "file"
)

// Config is the resolved runtime configuration.
type Config struct {
	Lookup LookupConfig `mapstructure:"lookup"`
	Query  QueryConfig  `mapstructure:"query"`
	Log    LogConfig    `mapstructure:"log"`
	Locale string       `mapstructure:"locale" validate:"required"`
}

// LookupConfig selects where lookup tables come from.
type LookupConfig struct {
	Driver string `mapstructure:"driver" validate:"oneof=file sqlite3 postgres"`
	DSN    string `mapstructure:"dsn" validate:"required_unless=Driver file"`
	File   string `mapstructure:"file" validate:"required_if=Driver file"`
}

type QueryConfig struct {
	JoinSide string `mapstructure:"join_side" validate:"oneof=LEFT INNER"`
}

type LogConfig struct {
	Level       string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Development bool   `mapstructure:"development"`
}

var validate = validator.New()

func setDefaults(v *viper.Viper) {
	v.SetDefault("lookup.driver", DriverFile)
	v.SetDefault("lookup.dsn", "")
	v.SetDefault("lookup.file", "lookups.yaml")
	v.SetDefault("query.join_side", string(search.JoinLeft))
	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)
	v.SetDefault("locale", "en")
}

// Load resolves the configuration. With an empty path, activityquery.yaml is
// looked up in the working directory and skipped if absent; an explicit path
// must exist.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName(FileName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.normalize()

	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) normalize() {
	c.Lookup.Driver = strings.ToLower(strings.TrimSpace(c.Lookup.Driver))
	c.Query.JoinSide = strings.ToUpper(strings.TrimSpace(c.Query.JoinSide))
	c.Log.Level = strings.ToLower(strings.TrimSpace(c.Log.Level))
	c.Locale = strings.TrimSpace(c.Locale)
}

// JoinSide returns the configured join keyword for optional tables.
func (c *Config) JoinSide() search.JoinSide {
	return search.JoinSide(c.Query.JoinSide)
}

// NewLogger builds the zap logger the settings describe.
func (c *Config) NewLogger(opts ...log.Option) (log.ZapLogger, error) {
	return log.New(c.Log.Level, c.Log.Development, opts...)
}

// NewTranslator builds the label translator for the configured locale.
func (c *Config) NewTranslator() (*i18n.Translator, error) {
	return i18n.Parse(c.Locale)
}

// LoadLookups reads the lookup snapshot from the configured source.
func (c *Config) LoadLookups(ctx context.Context) (*lookup.Tables, error) {
	if c.Lookup.Driver == DriverFile {
		return lookup.LoadFile(c.Lookup.File)
	}

	store, err := lookup.Open(ctx, c.Lookup.Driver, c.Lookup.DSN)
	if err != nil {
		return nil, err
	}
	defer store.Close()
	return store.Load(ctx)
}

// OpenStore opens the configured lookup database. The file driver has no
// database.
func (c *Config) OpenStore(ctx context.Context) (*lookup.Store, error) {
	if c.Lookup.Driver == DriverFile {
		return nil, fmt.Errorf("lookup driver %q has no database; set lookup.driver to %s or %s",
			c.Lookup.Driver, lookup.DriverSQLite, lookup.DriverPostgres)
	}
	return lookup.Open(ctx, c.Lookup.Driver, c.Lookup.DSN)
}
