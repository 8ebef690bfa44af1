package migrations

import (
	"fmt"

	"github.com/pocketbase/dbx"
)

func init() {
	Register(1760000400, "created_user_profiles", func(db dbx.Builder, t ColumnTypes) error {
		return exec(db, fmt.Sprintf(`CREATE TABLE IF NOT EXISTS user_profiles (
			id TEXT PRIMARY KEY,
			email TEXT NOT NULL,
			full_name TEXT,
			role TEXT NOT NULL DEFAULT 'member',
			created_at %s NOT NULL,
			updated_at %s NOT NULL
		)`, t.Timestamp, t.Timestamp))
	})
}
