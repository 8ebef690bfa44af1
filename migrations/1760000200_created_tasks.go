package migrations

import (
	"fmt"

	"github.com/pocketbase/dbx"
)

func init() {
	Register(1760000200, "created_tasks", func(db dbx.Builder, t ColumnTypes) error {
		return exec(db, fmt.Sprintf(`CREATE TABLE IF NOT EXISTS tasks (
			id TEXT PRIMARY KEY,
			event_id TEXT NOT NULL REFERENCES events(id) ON DELETE CASCADE,
			title TEXT NOT NULL,
			channel TEXT NOT NULL DEFAULT 'other',
			due_date TEXT NOT NULL,
			due_time TEXT,
			completed %s NOT NULL DEFAULT FALSE,
			assignee TEXT,
			content TEXT,
			notes TEXT,
			created_at %s NOT NULL,
			updated_at %s NOT NULL
		)`, t.Bool, t.Timestamp, t.Timestamp))
	})
}
