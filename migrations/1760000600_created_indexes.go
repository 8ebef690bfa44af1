package migrations

import (
	"github.com/pocketbase/dbx"
)

func init() {
	Register(1760000600, "created_indexes", func(db dbx.Builder, t ColumnTypes) error {
		// events(date, title) is intentionally not unique, duplicates are
		// resolved by the dedupe command.
		stmts := []string{
			`CREATE INDEX IF NOT EXISTS idx_events_date_title ON events (date, title)`,
			`CREATE INDEX IF NOT EXISTS idx_event_instances_event ON event_instances (event_id, date)`,
			`CREATE INDEX IF NOT EXISTS idx_tasks_event_due ON tasks (event_id, due_date)`,
			`CREATE INDEX IF NOT EXISTS idx_historical_content_channel ON historical_content (channel, created_at)`,
			`CREATE UNIQUE INDEX IF NOT EXISTS idx_historical_content_external ON historical_content (external_id)`,
		}
		for _, stmt := range stmts {
			if err := exec(db, stmt); err != nil {
				return err
			}
		}
		return nil
	})
}
