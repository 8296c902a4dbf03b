package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// AddChannel records a discovered channel with its declared item count.
// Re-inserting a known channel is a no-op.
func (s *Store) AddChannel(ctx context.Context, channelID string, size int) error {
	now := timestamp()
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO channels (channel_id, status, size, created_at, updated_at)
         VALUES (?, ?, ?, ?, ?)`,
		channelID, StatusNew, size, now, now,
	)
	if err != nil {
		return fmt.Errorf("insert channel: %w", err)
	}
	return nil
}

// NewChannels lists channels still being enumerated, ordered by channel id.
func (s *Store) NewChannels(ctx context.Context) ([]*Channel, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT channel_id, status, watermark, size, num_checked, num_valid, created_at, updated_at
         FROM channels WHERE status = ? ORDER BY channel_id ASC`,
		StatusNew,
	)
	if err != nil {
		return nil, fmt.Errorf("list new channels: %w", err)
	}
	defer rows.Close()

	var channels []*Channel
	for rows.Next() {
		ch, err := scanChannel(rows)
		if err != nil {
			return nil, err
		}
		channels = append(channels, ch)
	}
	return channels, rows.Err()
}

// GetChannel fetches one channel row, or nil when absent.
func (s *Store) GetChannel(ctx context.Context, channelID string) (*Channel, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT channel_id, status, watermark, size, num_checked, num_valid, created_at, updated_at
         FROM channels WHERE channel_id = ?`,
		channelID,
	)
	ch, err := scanChannel(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get channel: %w", err)
	}
	return ch, nil
}

// SetChannelWatermark records the last fully processed item index for a
// channel. Watermarks only move forward. A missing row returns ErrNotFound.
func (s *Store) SetChannelWatermark(ctx context.Context, channelID string, index int) error {
	return s.markRow(ctx,
		`UPDATE channels SET watermark = ?, updated_at = ?
         WHERE channel_id = ? AND (watermark IS NULL OR watermark < ?)`,
		`SELECT 1 FROM channels WHERE channel_id = ?`,
		[]any{index, timestamp(), channelID, index},
		[]any{channelID},
	)
}

// SetChannelDone transitions a channel to its terminal state. A missing row
// returns ErrNotFound.
func (s *Store) SetChannelDone(ctx context.Context, channelID string) error {
	return s.markRow(ctx,
		`UPDATE channels SET status = ?, updated_at = ? WHERE channel_id = ?`,
		`SELECT 1 FROM channels WHERE channel_id = ?`,
		[]any{StatusDone, timestamp(), channelID},
		[]any{channelID},
	)
}

// BumpChannelCounters adds to the checked/valid item tallies for a channel.
// A missing row returns ErrNotFound.
func (s *Store) BumpChannelCounters(ctx context.Context, channelID string, checked, valid int) error {
	return s.markRow(ctx,
		`UPDATE channels SET num_checked = num_checked + ?, num_valid = num_valid + ?, updated_at = ?
         WHERE channel_id = ?`,
		`SELECT 1 FROM channels WHERE channel_id = ?`,
		[]any{checked, valid, timestamp(), channelID},
		[]any{channelID},
	)
}

func scanChannel(scanner interface{ Scan(dest ...any) error }) (*Channel, error) {
	var (
		channelID  string
		statusStr  string
		watermark  sql.NullInt64
		size       sql.NullInt64
		numChecked int
		numValid   int
		createdRaw string
		updatedRaw string
	)
	if err := scanner.Scan(&channelID, &statusStr, &watermark, &size, &numChecked, &numValid, &createdRaw, &updatedRaw); err != nil {
		return nil, err
	}

	ch := &Channel{
		ChannelID:  channelID,
		Status:     Status(statusStr),
		Size:       int(size.Int64),
		NumChecked: numChecked,
		NumValid:   numValid,
	}
	if watermark.Valid {
		value := int(watermark.Int64)
		ch.Watermark = &value
	}
	if created, err := parseTimeString(createdRaw); err == nil {
		ch.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw); err == nil {
		ch.UpdatedAt = updated
	}
	return ch, nil
}
