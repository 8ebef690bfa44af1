package migrations

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/pocketbase/dbx"
)

// ColumnTypes holds the dialect specific column types used by migrations.
type ColumnTypes struct {
	JSON      string
	TextArray string
	Timestamp string
	Bool      string
}

var (
	postgresTypes = ColumnTypes{JSON: "JSONB", TextArray: "TEXT[]", Timestamp: "TIMESTAMPTZ", Bool: "BOOLEAN"}
	sqliteTypes   = ColumnTypes{JSON: "TEXT", TextArray: "TEXT", Timestamp: "TIMESTAMP", Bool: "BOOLEAN"}
)

// TypesFor returns the column types for a dbx driver name.
func TypesFor(driver string) ColumnTypes {
	switch driver {
	case "sqlite", "sqlite3":
		return sqliteTypes
	default:
		return postgresTypes
	}
}

type Migration struct {
	Version int64
	Name    string
	Up      func(db dbx.Builder, t ColumnTypes) error
}

var registry []Migration

// Register adds a migration. It is called from the init function of each
// migration file.
func Register(version int64, name string, up func(db dbx.Builder, t ColumnTypes) error) {
	registry = append(registry, Migration{Version: version, Name: name, Up: up})
}

// All returns the registered migrations ordered by version.
func All() []Migration {
	list := make([]Migration, len(registry))
	copy(list, registry)
	sort.Slice(list, func(i, j int) bool { return list[i].Version < list[j].Version })
	return list
}

// Apply runs every migration that has not been recorded in schema_migrations
// yet and returns the names of the applied ones.
func Apply(ctx context.Context, db *dbx.DB) ([]string, error) {
	types := TypesFor(db.DriverName())

	_, err := db.NewQuery(fmt.Sprintf(`CREATE TABLE IF NOT EXISTS schema_migrations (
		version BIGINT PRIMARY KEY,
		name TEXT NOT NULL,
		applied_at %s NOT NULL
	)`, types.Timestamp)).WithContext(ctx).Execute()
	if err != nil {
		return nil, fmt.Errorf("create schema_migrations: %w", err)
	}

	var versions []int64
	if err := db.Select("version").From("schema_migrations").WithContext(ctx).Column(&versions); err != nil {
		return nil, fmt.Errorf("read applied migrations: %w", err)
	}
	done := make(map[int64]bool, len(versions))
	for _, v := range versions {
		done[v] = true
	}

	var applied []string
	for _, mig := range All() {
		if done[mig.Version] {
			continue
		}

		err := db.TransactionalContext(ctx, nil, func(tx *dbx.Tx) error {
			if err := mig.Up(tx, types); err != nil {
				return err
			}
			_, err := tx.Insert("schema_migrations", dbx.Params{
				"version":    mig.Version,
				"name":       mig.Name,
				"applied_at": time.Now().UTC(),
			}).Execute()
			return err
		})
		if err != nil {
			return applied, fmt.Errorf("migration %d_%s: %w", mig.Version, mig.Name, err)
		}

		slog.Info("Applied migration", "version", mig.Version, "name", mig.Name)
		applied = append(applied, mig.Name)
	}

	return applied, nil
}

func exec(db dbx.Builder, sql string) error {
	_, err := db.NewQuery(sql).Execute()
	return err
}
