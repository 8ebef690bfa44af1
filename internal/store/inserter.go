package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"marketing-ops/models"
	"marketing-ops/monitoring"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pocketbase/dbx"
)

// MaxDroppedColumns bounds how many columns a single insert may shed before
// giving up.
const MaxDroppedColumns = 8

var ErrTooManyMissingColumns = errors.New("too many missing columns")

// undefined_column
const pgUndefinedColumn = "42703"

var missingColumnPatterns = []*regexp.Regexp{
	// postgres
	regexp.MustCompile(`column "([^"]+)"(?: of relation "[^"]+")? does not exist`),
	// postgrest schema cache
	regexp.MustCompile(`Could not find the '([^']+)' column of '[^']+'`),
	// sqlite
	regexp.MustCompile(`has no column named ([A-Za-z0-9_]+)`),
	regexp.MustCompile(`no such column: ([A-Za-z0-9_.]+)`),
}

// MissingColumn extracts the column name from a "column does not exist" style
// database error.
func MissingColumn(err error) (string, bool) {
	if err == nil {
		return "", false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUndefinedColumn {
		if column, ok := matchMissingColumn(pgErr.Message); ok {
			return column, true
		}
		if pgErr.ColumnName != "" {
			return pgErr.ColumnName, true
		}
	}

	return matchMissingColumn(err.Error())
}

func matchMissingColumn(msg string) (string, bool) {
	for _, re := range missingColumnPatterns {
		if m := re.FindStringSubmatch(msg); m != nil {
			column := m[1]
			// sqlite reports qualified names such as events.summary
			if i := strings.LastIndex(column, "."); i >= 0 {
				column = column[i+1:]
			}
			return column, column != ""
		}
	}
	return "", false
}

type InsertResult struct {
	Rows    []models.Record `json:"rows,omitempty"`
	Dropped []string        `json:"dropped,omitempty"`
}

type insertFunc func(ctx context.Context, table string, records []models.Record, returnRows bool) ([]models.Record, error)

// Insert writes one record, dropping columns the table does not have.
func (s *Store) Insert(ctx context.Context, table string, record models.Record, returnRows bool) (*InsertResult, error) {
	return s.InsertMany(ctx, table, []models.Record{record}, returnRows)
}

// InsertMany writes all records in one transaction. When the database reports
// a missing column, the column is removed from every record and the insert is
// retried, up to MaxDroppedColumns times. Any other error is returned as is.
func (s *Store) InsertMany(ctx context.Context, table string, records []models.Record, returnRows bool) (*InsertResult, error) {
	result := &InsertResult{}
	if len(records) == 0 {
		return result, nil
	}

	pending := make([]models.Record, len(records))
	for i, rec := range records {
		pending[i] = make(models.Record, len(rec))
		for k, v := range rec {
			pending[i][k] = v
		}
	}

	for attempt := 0; ; attempt++ {
		rows, err := s.insert(ctx, table, pending, returnRows)
		if err == nil {
			result.Rows = rows
			return result, nil
		}

		column, ok := MissingColumn(err)
		if !ok {
			return nil, err
		}
		if attempt >= MaxDroppedColumns {
			return nil, fmt.Errorf("%w for table %s", ErrTooManyMissingColumns, table)
		}

		removed := false
		for _, rec := range pending {
			if _, exists := rec[column]; exists {
				delete(rec, column)
				removed = true
			}
		}
		if removed {
			result.Dropped = append(result.Dropped, column)
		}

		slog.Warn("column dropped", "table", table, "column", column, "attempt", attempt+1, "present", removed)
		monitoring.TrackDroppedColumn(table, column)

		for _, rec := range pending {
			if len(rec) == 0 {
				return nil, fmt.Errorf("no insertable columns left for table %s", table)
			}
		}
	}
}

func (s *Store) execInsert(ctx context.Context, table string, records []models.Record, returnRows bool) ([]models.Record, error) {
	if len(records) == 1 {
		return insertRecord(ctx, s.db, table, records[0], returnRows)
	}

	var out []models.Record
	err := s.db.TransactionalContext(ctx, nil, func(tx *dbx.Tx) error {
		for _, rec := range records {
			rows, err := insertRecord(ctx, tx, table, rec, returnRows)
			if err != nil {
				return err
			}
			out = append(out, rows...)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func insertRecord(ctx context.Context, b dbx.Builder, table string, rec models.Record, returnRows bool) ([]models.Record, error) {
	q := b.Insert(table, dbx.Params(rec)).WithContext(ctx)
	if !returnRows {
		_, err := q.Execute()
		return nil, err
	}

	var rows []dbx.NullStringMap
	err := b.NewQuery(q.SQL() + " RETURNING *").
		Bind(q.Params()).
		WithContext(ctx).
		All(&rows)
	if err != nil {
		return nil, err
	}

	out := make([]models.Record, 0, len(rows))
	for _, row := range rows {
		rec := make(models.Record, len(row))
		for k, v := range row {
			if v.Valid {
				rec[k] = v.String
			} else {
				rec[k] = nil
			}
		}
		out = append(out, rec)
	}
	return out, nil
}
