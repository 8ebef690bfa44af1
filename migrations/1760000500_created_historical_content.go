package migrations

import (
	"fmt"

	"github.com/pocketbase/dbx"
)

func init() {
	Register(1760000500, "created_historical_content", func(db dbx.Builder, t ColumnTypes) error {
		return exec(db, fmt.Sprintf(`CREATE TABLE IF NOT EXISTS historical_content (
			id TEXT PRIMARY KEY,
			channel TEXT NOT NULL,
			content TEXT NOT NULL,
			source TEXT NOT NULL DEFAULT 'manual',
			external_id TEXT,
			permalink TEXT,
			likes INTEGER NOT NULL DEFAULT 0,
			comments INTEGER NOT NULL DEFAULT 0,
			published_at %s,
			created_at %s NOT NULL
		)`, t.Timestamp, t.Timestamp))
	})
}
