package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"marketing-ops/config"
	"marketing-ops/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pocketbase/dbx"
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a row looked up by id does not exist.
var ErrNotFound = errors.New("record not found")

// Tables lists every application table, in dependency order.
var Tables = []string{
	"events",
	"event_instances",
	"tasks",
	"team_members",
	"user_profiles",
	"historical_content",
}

type Store struct {
	db     *dbx.DB
	pool   *pgxpool.Pool
	insert insertFunc
}

// New wraps an existing dbx connection.
func New(db *dbx.DB) *Store {
	s := &Store{db: db}
	s.insert = s.execInsert
	return s
}

// Open connects to the configured database.
func Open(ctx context.Context, cfg config.DatabaseConfig) (*Store, error) {
	switch cfg.Driver {
	case "postgres":
		return openPostgres(ctx, cfg)
	case "sqlite":
		return OpenSQLite(cfg.Path)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

func openPostgres(ctx context.Context, cfg config.DatabaseConfig) (*Store, error) {
	if cfg.URL == "" {
		return nil, errors.New("DATABASE_URL not configured")
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("error parsing database url: %w", err)
	}

	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = int32(cfg.MaxConns)
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = int32(cfg.MinConns)
	}
	// Works behind transaction poolers that reject prepared statements.
	poolCfg.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("error creating connection pool: %w", err)
	}

	s := New(dbx.NewFromDB(stdlib.OpenDBFromPool(pool), "postgres"))
	s.pool = pool
	return s, nil
}

// OpenSQLite opens a modernc sqlite database. ":memory:" is accepted.
func OpenSQLite(path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("DATABASE_PATH not configured")
	}

	dsn := path
	if path != ":memory:" {
		dsn = "file:" + path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	}

	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("error opening sqlite database: %w", err)
	}
	// Every connection to :memory: is a separate database.
	sqlDB.SetMaxOpenConns(1)

	if _, err := sqlDB.Exec("PRAGMA foreign_keys = ON"); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("error enabling foreign keys: %w", err)
	}

	return New(dbx.NewFromDB(sqlDB, "sqlite")), nil
}

func (s *Store) DB() *dbx.DB {
	return s.db
}

func (s *Store) Driver() string {
	return s.db.DriverName()
}

func (s *Store) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := s.db.DB().PingContext(ctx); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	err := s.db.Close()
	if s.pool != nil {
		s.pool.Close()
	}
	return err
}

// TableCounts returns the row count of every application table. A table that
// cannot be counted (for example because it is missing) is reported as -1.
func (s *Store) TableCounts(ctx context.Context) map[string]int64 {
	counts := make(map[string]int64, len(Tables))
	for _, table := range Tables {
		var n int64
		err := s.db.Select("COUNT(*)").From(table).WithContext(ctx).Row(&n)
		if err != nil {
			n = -1
		}
		counts[table] = n
	}
	return counts
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func (s *Store) updateByID(ctx context.Context, table, id string, rec models.Record) error {
	res, err := s.db.Update(table, dbx.Params(rec), dbx.HashExp{"id": id}).WithContext(ctx).Execute()
	if err != nil {
		return fmt.Errorf("update %s: %w", table, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) deleteByID(ctx context.Context, table, id string) error {
	res, err := s.db.Delete(table, dbx.HashExp{"id": id}).WithContext(ctx).Execute()
	if err != nil {
		return fmt.Errorf("delete %s: %w", table, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}
