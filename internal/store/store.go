package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"speechcrawler/internal/config"
)

// ErrNotFound reports that a watermark or status write matched no row. The
// caller's accounting has diverged from persisted state; treat it as fatal.
var ErrNotFound = errors.New("store: row not found")

// Store manages crawl state backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the job database and verifies the schema.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}
	return OpenPath(cfg.DatabasePath())
}

// OpenPath opens the job database at an explicit location.
func OpenPath(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// Stats returns per-status row counts for every entity kind.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	stats := Stats{
		Queries:  make(map[Status]int),
		Channels: make(map[Status]int),
		Media:    make(map[Status]int),
	}

	tables := []struct {
		name string
		dest map[Status]int
	}{
		{"search_queries", stats.Queries},
		{"channels", stats.Channels},
		{"media_items", stats.Media},
	}
	for _, table := range tables {
		rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(1) FROM `+table.name+` GROUP BY status`)
		if err != nil {
			return Stats{}, fmt.Errorf("stats for %s: %w", table.name, err)
		}
		for rows.Next() {
			var status Status
			var count int
			if err := rows.Scan(&status, &count); err != nil {
				rows.Close()
				return Stats{}, err
			}
			table.dest[status] = count
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return Stats{}, err
		}
		rows.Close()
	}

	row := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM captions`)
	if err := row.Scan(&stats.Captions); err != nil {
		return Stats{}, fmt.Errorf("count captions: %w", err)
	}
	return stats, nil
}

// markRow runs an update that must target exactly one existing row. A result
// that matched no rows triggers an existence probe so an idempotent replay
// (for example a watermark that is already past the value being written) is
// distinguished from a genuinely missing key.
func (s *Store) markRow(ctx context.Context, update, probe string, updateArgs []any, probeArgs []any) error {
	res, err := s.db.ExecContext(ctx, update, updateArgs...)
	if err != nil {
		return fmt.Errorf("update row: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 1 {
		return nil
	}

	var exists int
	row := s.db.QueryRowContext(ctx, probe, probeArgs...)
	if err := row.Scan(&exists); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("probe row: %w", err)
	}
	return nil
}

func timestamp() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullableTime(value *time.Time) any {
	if value == nil {
		return nil
	}
	return value.UTC().Format(time.RFC3339Nano)
}
