package store

import (
	"context"
	"fmt"
)

// NewCaption is a cue accepted by the pipeline, ready to persist.
type NewCaption struct {
	StartMS int64
	EndMS   int64
	Text    string
}

// ReplaceCaptions atomically swaps the caption set for a media item. The
// delete-then-insert shape is what makes the fix-data mode idempotent: a
// re-derive for an existing media id replaces its cues instead of piling up
// duplicates. Every cue must satisfy start < end.
func (s *Store) ReplaceCaptions(ctx context.Context, mediaID string, cues []NewCaption) error {
	for _, cue := range cues {
		if cue.StartMS >= cue.EndMS {
			return fmt.Errorf("caption for %s has invalid range [%d, %d)", mediaID, cue.StartMS, cue.EndMS)
		}
	}

	item, err := s.GetMediaItem(ctx, mediaID)
	if err != nil {
		return err
	}
	if item == nil {
		return ErrNotFound
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin captions tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM captions WHERE media_id = ?`, mediaID); err != nil {
		return fmt.Errorf("clear captions: %w", err)
	}

	now := timestamp()
	for _, cue := range cues {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO captions (media_id, start_ms, end_ms, text, created_at)
             VALUES (?, ?, ?, ?, ?)`,
			mediaID, cue.StartMS, cue.EndMS, cue.Text, now,
		); err != nil {
			return fmt.Errorf("insert caption: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit captions: %w", err)
	}
	return nil
}

// CaptionsForMedia lists a media item's captions in time order.
func (s *Store) CaptionsForMedia(ctx context.Context, mediaID string) ([]*Caption, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, media_id, start_ms, end_ms, text, created_at
         FROM captions WHERE media_id = ? ORDER BY start_ms ASC, id ASC`,
		mediaID,
	)
	if err != nil {
		return nil, fmt.Errorf("list captions: %w", err)
	}
	defer rows.Close()

	var captions []*Caption
	for rows.Next() {
		var (
			caption    Caption
			createdRaw string
		)
		if err := rows.Scan(&caption.ID, &caption.MediaID, &caption.StartMS, &caption.EndMS, &caption.Text, &createdRaw); err != nil {
			return nil, err
		}
		if created, err := parseTimeString(createdRaw); err == nil {
			caption.CreatedAt = created
		}
		captions = append(captions, &caption)
	}
	return captions, rows.Err()
}
