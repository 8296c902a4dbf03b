package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// AddMediaItem records a discovered media item. Media identity is a natural
// key; inserting a known id is a no-op so discovery can overlap across
// search pages and channels.
func (s *Store) AddMediaItem(ctx context.Context, mediaID, channelID string, publishTime *time.Time) error {
	now := timestamp()
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO media_items (media_id, channel_id, status, publish_time, created_at, updated_at)
         VALUES (?, ?, ?, ?, ?, ?)`,
		mediaID, nullableString(channelID), StatusNew, nullableTime(publishTime), now, now,
	)
	if err != nil {
		return fmt.Errorf("insert media item: %w", err)
	}
	return nil
}

// NewMediaItems lists unprocessed media in creation order.
func (s *Store) NewMediaItems(ctx context.Context) ([]*MediaItem, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+mediaColumns+` FROM media_items WHERE status = ? ORDER BY rowid ASC`,
		StatusNew,
	)
	if err != nil {
		return nil, fmt.Errorf("list new media items: %w", err)
	}
	defer rows.Close()

	var items []*MediaItem
	for rows.Next() {
		item, err := scanMediaItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// GetMediaItem fetches one media row, or nil when absent.
func (s *Store) GetMediaItem(ctx context.Context, mediaID string) (*MediaItem, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+mediaColumns+` FROM media_items WHERE media_id = ?`,
		mediaID,
	)
	item, err := scanMediaItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get media item: %w", err)
	}
	return item, nil
}

// SetMediaStatus records a media item's processing outcome as a single atomic
// step. A missing row returns ErrNotFound.
func (s *Store) SetMediaStatus(ctx context.Context, mediaID string, status Status) error {
	return s.markRow(ctx,
		`UPDATE media_items SET status = ?, updated_at = ? WHERE media_id = ?`,
		`SELECT 1 FROM media_items WHERE media_id = ?`,
		[]any{status, timestamp(), mediaID},
		[]any{mediaID},
	)
}

// SetMediaFile records where the downloaded media landed on disk.
func (s *Store) SetMediaFile(ctx context.Context, mediaID, path string) error {
	return s.markRow(ctx,
		`UPDATE media_items SET media_file = ?, updated_at = ? WHERE media_id = ?`,
		`SELECT 1 FROM media_items WHERE media_id = ?`,
		[]any{nullableString(path), timestamp(), mediaID},
		[]any{mediaID},
	)
}

// SetMediaLength records the decoded audio duration for a media item.
func (s *Store) SetMediaLength(ctx context.Context, mediaID string, lengthMS int64) error {
	return s.markRow(ctx,
		`UPDATE media_items SET length_ms = ?, updated_at = ? WHERE media_id = ?`,
		`SELECT 1 FROM media_items WHERE media_id = ?`,
		[]any{lengthMS, timestamp(), mediaID},
		[]any{mediaID},
	)
}

// DeleteMediaItem removes a media row; owned captions cascade.
func (s *Store) DeleteMediaItem(ctx context.Context, mediaID string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM media_items WHERE media_id = ?`, mediaID)
	if err != nil {
		return false, fmt.Errorf("delete media item: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

const mediaColumns = "media_id, channel_id, status, media_file, length_ms, publish_time, created_at, updated_at"

func scanMediaItem(scanner interface{ Scan(dest ...any) error }) (*MediaItem, error) {
	var (
		mediaID    string
		channelID  sql.NullString
		statusStr  string
		mediaFile  sql.NullString
		lengthMS   sql.NullInt64
		publishRaw sql.NullString
		createdRaw string
		updatedRaw string
	)
	if err := scanner.Scan(&mediaID, &channelID, &statusStr, &mediaFile, &lengthMS, &publishRaw, &createdRaw, &updatedRaw); err != nil {
		return nil, err
	}

	item := &MediaItem{
		MediaID:   mediaID,
		ChannelID: channelID.String,
		Status:    Status(statusStr),
		MediaFile: mediaFile.String,
	}
	if lengthMS.Valid {
		value := lengthMS.Int64
		item.LengthMS = &value
	}
	if publishRaw.Valid {
		if published, err := parseTimeString(publishRaw.String); err == nil {
			item.PublishTime = &published
		}
	}
	if created, err := parseTimeString(createdRaw); err == nil {
		item.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw); err == nil {
		item.UpdatedAt = updated
	}
	return item, nil
}
