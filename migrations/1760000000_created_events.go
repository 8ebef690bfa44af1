package migrations

import (
	"fmt"

	"github.com/pocketbase/dbx"
)

func init() {
	Register(1760000000, "created_events", func(db dbx.Builder, t ColumnTypes) error {
		return exec(db, fmt.Sprintf(`CREATE TABLE IF NOT EXISTS events (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			date TEXT NOT NULL,
			time TEXT,
			artist TEXT,
			summary TEXT,
			url TEXT,
			year INTEGER,
			metadata %s NOT NULL DEFAULT '{}',
			created_at %s NOT NULL,
			updated_at %s NOT NULL
		)`, t.JSON, t.Timestamp, t.Timestamp))
	})
}
