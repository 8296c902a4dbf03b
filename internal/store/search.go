package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// AddSearchQuery inserts a new seed query and reports whether a row was
// actually created. Re-inserting a known query is a no-op so seed files can
// be replayed across runs.
func (s *Store) AddSearchQuery(ctx context.Context, query string) (bool, error) {
	now := timestamp()
	result, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO search_queries (query, status, created_at, updated_at)
         VALUES (?, ?, ?, ?)`,
		query, StatusNew, now, now,
	)
	if err != nil {
		return false, fmt.Errorf("insert search query: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert search query: %w", err)
	}
	return affected > 0, nil
}

// NewSearchQueries lists queries still being enumerated, ordered by query
// text. The ordering is what makes restart behavior deterministic.
func (s *Store) NewSearchQueries(ctx context.Context) ([]*SearchQuery, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT query, status, watermark, created_at, updated_at
         FROM search_queries WHERE status = ? ORDER BY query ASC`,
		StatusNew,
	)
	if err != nil {
		return nil, fmt.Errorf("list new queries: %w", err)
	}
	defer rows.Close()

	var queries []*SearchQuery
	for rows.Next() {
		q, err := scanSearchQuery(rows)
		if err != nil {
			return nil, err
		}
		queries = append(queries, q)
	}
	return queries, rows.Err()
}

// GetSearchQuery fetches one query row, or nil when absent.
func (s *Store) GetSearchQuery(ctx context.Context, query string) (*SearchQuery, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT query, status, watermark, created_at, updated_at
         FROM search_queries WHERE query = ?`,
		query,
	)
	q, err := scanSearchQuery(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get search query: %w", err)
	}
	return q, nil
}

// SetQueryWatermark records the last fully processed result page for a query.
// Watermarks only move forward; replaying an already-recorded page is a no-op.
// A missing row returns ErrNotFound.
func (s *Store) SetQueryWatermark(ctx context.Context, query string, page int) error {
	return s.markRow(ctx,
		`UPDATE search_queries SET watermark = ?, updated_at = ?
         WHERE query = ? AND (watermark IS NULL OR watermark < ?)`,
		`SELECT 1 FROM search_queries WHERE query = ?`,
		[]any{page, timestamp(), query, page},
		[]any{query},
	)
}

// SetQueryDone transitions a query to its terminal state. A missing row
// returns ErrNotFound.
func (s *Store) SetQueryDone(ctx context.Context, query string) error {
	return s.markRow(ctx,
		`UPDATE search_queries SET status = ?, updated_at = ? WHERE query = ?`,
		`SELECT 1 FROM search_queries WHERE query = ?`,
		[]any{StatusDone, timestamp(), query},
		[]any{query},
	)
}

func scanSearchQuery(scanner interface{ Scan(dest ...any) error }) (*SearchQuery, error) {
	var (
		query      string
		statusStr  string
		watermark  sql.NullInt64
		createdRaw string
		updatedRaw string
	)
	if err := scanner.Scan(&query, &statusStr, &watermark, &createdRaw, &updatedRaw); err != nil {
		return nil, err
	}

	q := &SearchQuery{Query: query, Status: Status(statusStr)}
	if watermark.Valid {
		value := int(watermark.Int64)
		q.Watermark = &value
	}
	if created, err := parseTimeString(createdRaw); err == nil {
		q.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw); err == nil {
		q.UpdatedAt = updated
	}
	return q, nil
}
