package migrations

import (
	"fmt"

	"github.com/pocketbase/dbx"
)

func init() {
	Register(1760000300, "created_team_members", func(db dbx.Builder, t ColumnTypes) error {
		return exec(db, fmt.Sprintf(`CREATE TABLE IF NOT EXISTS team_members (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			email TEXT,
			role TEXT NOT NULL DEFAULT 'member',
			channels %s NOT NULL DEFAULT '{}',
			created_at %s NOT NULL
		)`, t.TextArray, t.Timestamp))
	})
}
