package migrations

import (
	"fmt"

	"github.com/pocketbase/dbx"
)

func init() {
	Register(1760000100, "created_event_instances", func(db dbx.Builder, t ColumnTypes) error {
		return exec(db, fmt.Sprintf(`CREATE TABLE IF NOT EXISTS event_instances (
			id TEXT PRIMARY KEY,
			event_id TEXT NOT NULL REFERENCES events(id) ON DELETE CASCADE,
			date TEXT NOT NULL,
			time TEXT,
			notes TEXT,
			created_at %s NOT NULL
		)`, t.Timestamp))
	})
}
