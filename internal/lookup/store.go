package lookup

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"sort"
	"strconv"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// Supported database drivers.
const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

// Schema version tracking:
// 0 - Initial schema
// 1 - Added index on civicrm_option_value(option_group_id, weight)
const currentSchemaVersion = 1

// loadedGroups are the option groups the activity contributors consult.
var loadedGroups = []string{
	GroupActivityContacts,
	GroupActivityStatus,
	GroupActivityType,
	GroupEngagementIndex,
}

// Store reads lookup tables from a CRM database.
//
// SQLite databases are treated as local fixtures: the schema is created and
// migrated on Open. Postgres databases are assumed to carry the CRM schema
// already.
type Store struct {
	db     *sqlx.DB
	driver string
}

// Open connects to the database and, for SQLite, applies pragmas and the
// embedded schema. Safe to call repeatedly on the same SQLite file.
func Open(ctx context.Context, driver, dsn string) (*Store, error) {
	if driver != DriverSQLite && driver != DriverPostgres {
		return nil, fmt.Errorf("unsupported lookup driver %q", driver)
	}

	db, err := sqlx.ConnectContext(ctx, driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", driver, err)
	}

	if driver == DriverSQLite {
		// SQLite only supports one writer at a time
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)

		if err := applyPragmas(ctx, db); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to apply pragmas: %w", err)
		}
		if err := applySchema(ctx, db); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to apply schema: %w", err)
		}
	}

	return &Store{db: db, driver: driver}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// DB returns the underlying connection.
func (s *Store) DB() *sqlx.DB {
	return s.db
}

func applyPragmas(ctx context.Context, db *sqlx.DB) error {
	pragmas := []string{
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}

	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}
	return nil
}

func applySchema(ctx context.Context, db *sqlx.DB) error {
	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}

	var version int
	if err := db.GetContext(ctx, &version, "PRAGMA user_version"); err != nil {
		return fmt.Errorf("get user_version: %w", err)
	}

	if version < 1 {
		_, err := db.ExecContext(ctx, `
			CREATE INDEX IF NOT EXISTS idx_option_value_group_weight
			ON civicrm_option_value(option_group_id, weight)
		`)
		if err != nil {
			return fmt.Errorf("migrate to v1: %w", err)
		}
	}

	if _, err := db.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}
	return nil
}

type optionRow struct {
	GroupName string `db:"group_name"`
	Option
}

type namedRow struct {
	ID   int64  `db:"id"`
	Name string `db:"name"`
}

// Load reads the option groups, tags, surveys and campaigns into a snapshot.
func (s *Store) Load(ctx context.Context) (*Tables, error) {
	t := NewTables()

	query, args, err := sqlx.In(`
		SELECT g.name AS group_name, v.value, v.label,
		       COALESCE(v.name, '') AS name,
		       v.component_id IS NOT NULL AS component
		FROM civicrm_option_value v
		INNER JOIN civicrm_option_group g ON g.id = v.option_group_id
		WHERE g.name IN (?)
		ORDER BY g.name, v.weight, v.id`, loadedGroups)
	if err != nil {
		return nil, fmt.Errorf("build option query: %w", err)
	}

	var options []optionRow
	if err := sqlx.SelectContext(ctx, s.db, &options, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("load option values: %w", err)
	}
	for _, o := range options {
		t.Groups[o.GroupName] = append(t.Groups[o.GroupName], o.Option)
	}

	named := []struct {
		query string
		dest  map[string]string
	}{
		{"SELECT id, name FROM civicrm_tag ORDER BY id", t.Tags},
		{"SELECT id, title AS name FROM civicrm_survey ORDER BY id", t.Surveys},
		{"SELECT id, title AS name FROM civicrm_campaign ORDER BY id", t.Campaigns},
	}
	for _, n := range named {
		var rows []namedRow
		if err := sqlx.SelectContext(ctx, s.db, &rows, n.query); err != nil {
			return nil, fmt.Errorf("load %q: %w", n.query, err)
		}
		for _, r := range rows {
			n.dest[strconv.FormatInt(r.ID, 10)] = r.Name
		}
	}

	return t, nil
}

// Import writes a snapshot into the database, replacing labels of existing
// rows. Option order within a group becomes its weight.
func (s *Store) Import(ctx context.Context, t *Tables) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin import: %w", err)
	}
	defer tx.Rollback()

	groups := make([]string, 0, len(t.Groups))
	for g := range t.Groups {
		groups = append(groups, g)
	}
	sort.Strings(groups)

	for _, g := range groups {
		if _, err := tx.ExecContext(ctx,
			tx.Rebind(`INSERT INTO civicrm_option_group (name) VALUES (?) ON CONFLICT (name) DO NOTHING`), g); err != nil {
			return fmt.Errorf("insert option group %q: %w", g, err)
		}
		var groupID int64
		if err := tx.GetContext(ctx, &groupID,
			tx.Rebind(`SELECT id FROM civicrm_option_group WHERE name = ?`), g); err != nil {
			return fmt.Errorf("resolve option group %q: %w", g, err)
		}

		for i, o := range t.Groups[g] {
			var component sql.NullInt64
			if o.Component {
				component = sql.NullInt64{Int64: 1, Valid: true}
			}
			name := sql.NullString{String: o.Name, Valid: o.Name != ""}
			_, err := tx.ExecContext(ctx, tx.Rebind(`
				INSERT INTO civicrm_option_value (option_group_id, label, value, name, weight, component_id)
				VALUES (?, ?, ?, ?, ?, ?)
				ON CONFLICT (option_group_id, value) DO UPDATE SET
					label = excluded.label,
					name = excluded.name,
					weight = excluded.weight,
					component_id = excluded.component_id`),
				groupID, o.Label, o.Value, name, i+1, component)
			if err != nil {
				return fmt.Errorf("insert option %s/%s: %w", g, o.Value, err)
			}
		}
	}

	named := []struct {
		table  string
		column string
		rows   map[string]string
	}{
		{"civicrm_tag", "name", t.Tags},
		{"civicrm_survey", "title", t.Surveys},
		{"civicrm_campaign", "title", t.Campaigns},
	}
	for _, n := range named {
		stmt := tx.Rebind(fmt.Sprintf(
			`INSERT INTO %s (id, %s) VALUES (?, ?) ON CONFLICT (id) DO UPDATE SET %s = excluded.%s`,
			n.table, n.column, n.column, n.column))
		for id, label := range n.rows {
			numericID, err := strconv.ParseInt(id, 10, 64)
			if err != nil {
				return fmt.Errorf("%s id %q: %w", n.table, id, err)
			}
			if _, err := tx.ExecContext(ctx, stmt, numericID, label); err != nil {
				return fmt.Errorf("insert %s %q: %w", n.table, id, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit import: %w", err)
	}
	return nil
}
