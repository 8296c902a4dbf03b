// Package crawler drives the enumeration loop: it drains the search,
// channel, and media work queues produced by the scheduler, hands each unit
// to the external downloader, ingests whatever landed on disk, and records
// completion so a restart resumes exactly where the last run stopped.
package crawler

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"speechcrawler/internal/config"
	"speechcrawler/internal/fetch"
	"speechcrawler/internal/ingest"
	"speechcrawler/internal/logging"
	"speechcrawler/internal/scheduler"
	"speechcrawler/internal/store"
)

// Loop runs the crawl until every queue is drained or the context ends.
type Loop struct {
	cfg        *config.Config
	store      *store.Store
	sched      *scheduler.Scheduler
	downloader fetch.Downloader
	processor  *ingest.Processor
	logger     *slog.Logger
}

// Options collects the loop's collaborators.
type Options struct {
	Config     *config.Config
	Store      *store.Store
	Scheduler  *scheduler.Scheduler
	Downloader fetch.Downloader
	Processor  *ingest.Processor
	Logger     *slog.Logger
}

// New wires a crawl loop.
func New(opts Options) *Loop {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Loop{
		cfg:        opts.Config,
		store:      opts.Store,
		sched:      opts.Scheduler,
		downloader: opts.Downloader,
		processor:  opts.Processor,
		logger:     logging.NewComponentLogger(logger, "crawler"),
	}
}

// Run drains the three work queues. Queries and channels decide liveness;
// once both are exhausted a final pass drains any media backlog so the run
// does not terminate with processing work outstanding. Failed work units are
// re-issued on the next pass, but two consecutive passes without a single
// completion abort the run instead of spinning.
func (l *Loop) Run(ctx context.Context) error {
	stalledPasses := 0
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		hasWork, err := l.sched.HasWork(ctx)
		if err != nil {
			return err
		}
		if !hasWork {
			break
		}

		completed := 0
		n, err := l.runSearchQueue(ctx)
		if err != nil {
			return err
		}
		completed += n
		n, err = l.runChannelQueue(ctx)
		if err != nil {
			return err
		}
		completed += n
		n, err = l.runMediaQueue(ctx)
		if err != nil {
			return err
		}
		completed += n

		if completed == 0 {
			stalledPasses++
			if stalledPasses >= 2 {
				return errors.New("crawl stalled: outstanding work completed nothing on two passes")
			}
		} else {
			stalledPasses = 0
		}
	}

	_, err := l.runMediaQueue(ctx)
	return err
}

// runSearchQueue downloads one results page per job and returns how many
// jobs completed. A failed download is logged and the watermark left alone
// so the page is re-issued next pass.
func (l *Loop) runSearchQueue(ctx context.Context) (int, error) {
	jobs, err := l.sched.SearchJobs(ctx)
	if err != nil {
		return 0, err
	}
	completed := 0
	// A failed page cannot be skipped: advancing the watermark past it would
	// lose the page forever, so the query's remaining pages wait for the
	// next pass.
	stalled := make(map[string]bool)
	for _, job := range jobs {
		if stalled[job.Query] {
			continue
		}
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		log := l.logger.With(
			logging.String(logging.FieldQuery, job.Query),
			logging.Int(logging.FieldPage, job.Page))
		log.Info("downloading search results page")

		if err := l.downloader.Download(ctx, fetch.SearchURL(job.Query, job.Page)); err != nil {
			log.Warn("search page download failed", logging.Error(err))
			stalled[job.Query] = true
			continue
		}
		if _, _, err := l.ingestNewDownloads(ctx); err != nil {
			return completed, err
		}
		if err := l.sched.CompleteSearchJob(ctx, job); err != nil {
			return completed, err
		}
		completed++
	}
	return completed, nil
}

// runChannelQueue fetches one channel listing item per job, tracks the
// checked/valid counters on the channel row, and returns how many jobs
// completed.
func (l *Loop) runChannelQueue(ctx context.Context) (int, error) {
	jobs, err := l.sched.ChannelJobs(ctx)
	if err != nil {
		return 0, err
	}
	completed := 0
	stalled := make(map[string]bool)
	for _, job := range jobs {
		if stalled[job.ChannelID] {
			continue
		}
		if err := ctx.Err(); err != nil {
			return completed, err
		}
		log := l.logger.With(
			logging.String(logging.FieldChannelID, job.ChannelID),
			logging.Int("item", job.Index))
		log.Info("downloading channel item")

		if err := l.downloader.DownloadItem(ctx, fetch.ChannelURL(job.ChannelID), job.Index); err != nil {
			log.Warn("channel item download failed", logging.Error(err))
			stalled[job.ChannelID] = true
			continue
		}
		checked, valid, err := l.ingestNewDownloads(ctx)
		if err != nil {
			return completed, err
		}
		if err := l.store.BumpChannelCounters(ctx, job.ChannelID, checked, valid); err != nil {
			return completed, err
		}
		if err := l.sched.CompleteChannelJob(ctx, job); err != nil {
			return completed, err
		}
		completed++
	}
	return completed, nil
}

// runMediaQueue re-fetches and ingests media items that were discovered but
// never finished processing, returning how many jobs completed.
func (l *Loop) runMediaQueue(ctx context.Context) (int, error) {
	jobs, err := l.sched.MediaJobs(ctx)
	if err != nil {
		return 0, err
	}
	completed := 0
	for _, job := range jobs {
		if err := ctx.Err(); err != nil {
			return completed, err
		}
		log := l.logger.With(logging.String(logging.FieldMediaID, job.MediaID))
		log.Info("downloading media item")

		if err := l.downloader.Download(ctx, fetch.WatchURL(job.MediaID)); err != nil {
			log.Warn("media download failed", logging.Error(err))
			continue
		}

		mediaPath, err := l.findMediaFile(job.MediaID)
		if err != nil {
			return completed, err
		}
		if mediaPath == "" {
			log.Warn("media file absent after download")
			if err := l.sched.CompleteMediaJob(ctx, job, store.StatusUnknownError); err != nil {
				return completed, err
			}
			completed++
			continue
		}

		status, err := l.processor.Process(ctx, mediaPath)
		if err != nil {
			log.Warn("media processing failed", logging.Error(err))
			continue
		}
		if err := l.sched.CompleteMediaJob(ctx, job, status); err != nil {
			return completed, err
		}
		completed++
	}
	return completed, nil
}

// ingestNewDownloads walks the intermediate directory and processes every
// media file whose store row is still pending. It returns how many items
// were checked and how many produced captions. Per-item failures are logged
// and the item left pending for a later pass.
func (l *Loop) ingestNewDownloads(ctx context.Context) (checked, valid int, err error) {
	intermediate := l.cfg.IntermediateDir()
	walkErr := filepath.WalkDir(intermediate, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return filepath.SkipAll
			}
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".m4a") {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		mediaID := ingest.MediaIDFromPath(path)
		item, err := l.store.GetMediaItem(ctx, mediaID)
		if err != nil {
			return err
		}
		if item != nil && item.Status != store.StatusNew {
			return nil
		}

		if err := l.registerChannel(ctx, ingest.ChannelIDFromPath(path)); err != nil {
			return err
		}

		checked++
		status, err := l.processor.Process(ctx, path)
		if err != nil {
			l.logger.Warn("ingest failed",
				logging.String(logging.FieldMediaID, mediaID),
				logging.Error(err))
			return nil
		}
		if status == store.StatusDone {
			valid++
		}
		return l.store.SetMediaStatus(ctx, mediaID, status)
	})
	if walkErr != nil {
		return checked, valid, walkErr
	}
	return checked, valid, nil
}

// registerChannel records a newly discovered channel so its uploads get
// enumerated. The declared size ceiling is the configured maximum; the
// scheduler caps enumeration there regardless.
func (l *Loop) registerChannel(ctx context.Context, channelID string) error {
	if channelID == "" || channelID == "NA" {
		return nil
	}
	return l.store.AddChannel(ctx, channelID, l.cfg.Crawl.MaxChannelSize)
}

// findMediaFile locates the downloaded file for a media id under the
// intermediate directory. Returns empty when nothing matches.
func (l *Loop) findMediaFile(mediaID string) (string, error) {
	var found string
	err := filepath.WalkDir(l.cfg.IntermediateDir(), func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return filepath.SkipAll
			}
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".m4a") {
			return nil
		}
		if ingest.MediaIDFromPath(path) == mediaID {
			found = path
			return filepath.SkipAll
		}
		return nil
	})
	return found, err
}
