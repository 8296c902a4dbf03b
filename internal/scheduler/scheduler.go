package scheduler

import (
	"context"
	"fmt"

	"speechcrawler/internal/store"
)

// Limits bounds the two resumable enumeration queues.
type Limits struct {
	// SearchPageLimit is the number of result pages enumerated per query.
	SearchPageLimit int
	// MaxChannelSize caps how many items are enumerated per channel
	// regardless of the channel's declared size.
	MaxChannelSize int
}

// SearchJob identifies one result page of one query.
type SearchJob struct {
	Query string
	Page  int
}

// ChannelJob identifies one item index of one channel.
type ChannelJob struct {
	ChannelID string
	Index     int
}

// MediaJob identifies one unprocessed media item.
type MediaJob struct {
	MediaID   string
	ChannelID string
}

// Scheduler turns store state into a reproducible sequence of work units for
// three independent queues and records progress as units complete. It is
// iterator-like: callers drain one queue's jobs sequentially and report each
// completion before the key is handed out again.
type Scheduler struct {
	store  *store.Store
	limits Limits
}

// New builds a scheduler over an explicit store handle.
func New(st *store.Store, limits Limits) *Scheduler {
	if limits.SearchPageLimit <= 0 {
		limits.SearchPageLimit = 30
	}
	if limits.MaxChannelSize <= 0 {
		limits.MaxChannelSize = 100
	}
	return &Scheduler{store: st, limits: limits}
}

// SearchJobs expands every in-progress query into its remaining pages, in
// page order per query and query order across queries. A query whose
// watermark is nil starts at page 1.
func (s *Scheduler) SearchJobs(ctx context.Context) ([]SearchJob, error) {
	queries, err := s.store.NewSearchQueries(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch new queries: %w", err)
	}

	var jobs []SearchJob
	for _, q := range queries {
		start := 0
		if q.Watermark != nil {
			start = *q.Watermark
		}
		for page := start + 1; page <= s.limits.SearchPageLimit; page++ {
			jobs = append(jobs, SearchJob{Query: q.Query, Page: page})
		}
	}
	return jobs, nil
}

// CompleteSearchJob records a finished page. Completing the final page
// transitions the query to done so it is never re-issued.
func (s *Scheduler) CompleteSearchJob(ctx context.Context, job SearchJob) error {
	if err := s.store.SetQueryWatermark(ctx, job.Query, job.Page); err != nil {
		return fmt.Errorf("mark search job %q page %d: %w", job.Query, job.Page, err)
	}
	if job.Page >= s.limits.SearchPageLimit {
		if err := s.store.SetQueryDone(ctx, job.Query); err != nil {
			return fmt.Errorf("finish query %q: %w", job.Query, err)
		}
	}
	return nil
}

// ChannelJobs expands every in-progress channel into its remaining item
// indices. The channel's declared size is capped by MaxChannelSize.
func (s *Scheduler) ChannelJobs(ctx context.Context) ([]ChannelJob, error) {
	channels, err := s.store.NewChannels(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch new channels: %w", err)
	}

	var jobs []ChannelJob
	for _, ch := range channels {
		size := ch.Size
		if size > s.limits.MaxChannelSize {
			size = s.limits.MaxChannelSize
		}
		start := 0
		if ch.Watermark != nil {
			start = *ch.Watermark
		}
		for index := start + 1; index <= size; index++ {
			jobs = append(jobs, ChannelJob{ChannelID: ch.ChannelID, Index: index})
		}
	}
	return jobs, nil
}

// CompleteChannelJob records a finished item index. Completing the final
// index transitions the channel to done.
func (s *Scheduler) CompleteChannelJob(ctx context.Context, job ChannelJob) error {
	if err := s.store.SetChannelWatermark(ctx, job.ChannelID, job.Index); err != nil {
		return fmt.Errorf("mark channel job %s item %d: %w", job.ChannelID, job.Index, err)
	}

	ch, err := s.store.GetChannel(ctx, job.ChannelID)
	if err != nil {
		return err
	}
	if ch == nil {
		return fmt.Errorf("finish channel %s: %w", job.ChannelID, store.ErrNotFound)
	}
	size := ch.Size
	if size > s.limits.MaxChannelSize {
		size = s.limits.MaxChannelSize
	}
	if job.Index >= size {
		if err := s.store.SetChannelDone(ctx, job.ChannelID); err != nil {
			return fmt.Errorf("finish channel %s: %w", job.ChannelID, err)
		}
	}
	return nil
}

// MediaJobs lists unprocessed media in creation order. There is no
// intermediate watermark for this queue; each item completes atomically.
func (s *Scheduler) MediaJobs(ctx context.Context) ([]MediaJob, error) {
	items, err := s.store.NewMediaItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch new media: %w", err)
	}

	jobs := make([]MediaJob, 0, len(items))
	for _, item := range items {
		jobs = append(jobs, MediaJob{MediaID: item.MediaID, ChannelID: item.ChannelID})
	}
	return jobs, nil
}

// CompleteMediaJob records a media item's outcome as a single atomic step.
func (s *Scheduler) CompleteMediaJob(ctx context.Context, job MediaJob, status store.Status) error {
	if err := s.store.SetMediaStatus(ctx, job.MediaID, status); err != nil {
		return fmt.Errorf("mark media job %s: %w", job.MediaID, err)
	}
	return nil
}

// HasWork reports whether the enumeration queues still hold unfinished keys.
// Media jobs are deliberately excluded; the crawl loop drains them once more
// after this predicate goes false.
func (s *Scheduler) HasWork(ctx context.Context) (bool, error) {
	queries, err := s.store.NewSearchQueries(ctx)
	if err != nil {
		return false, err
	}
	if len(queries) > 0 {
		return true, nil
	}
	channels, err := s.store.NewChannels(ctx)
	if err != nil {
		return false, err
	}
	return len(channels) > 0, nil
}
