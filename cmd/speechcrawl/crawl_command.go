package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"speechcrawler/internal/crawler"
	"speechcrawler/internal/logging"
	"speechcrawler/internal/scheduler"
	"speechcrawler/internal/services"
	"speechcrawler/internal/store"
)

func newCrawlCommand(ctx *commandContext) *cobra.Command {
	var queryFile string

	cmd := &cobra.Command{
		Use:   "crawl",
		Short: "Run the enumeration loop until every work queue is drained",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.newLogger(cfg)
			if err != nil {
				return err
			}

			lock := flock.New(filepath.Join(cfg.Paths.DestDir, "speechcrawl.lock"))
			ok, err := lock.TryLock()
			if err != nil {
				return fmt.Errorf("acquire lock: %w", err)
			}
			if !ok {
				return errors.New("another speechcrawl instance is already running")
			}
			defer func() { _ = lock.Unlock() }()

			st, err := store.Open(cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			if queryFile != "" {
				added, err := seedFromFile(cmd.Context(), st, queryFile)
				if err != nil {
					return err
				}
				logger.Info("seeded search queries",
					logging.Int("added", added),
					logging.String("file", queryFile))
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			runID := uuid.NewString()
			runCtx = services.WithRequestID(runCtx, runID)
			logger = logger.With(logging.String(logging.FieldCorrelationID, runID))

			processor, err := ctx.newProcessor(cfg, st, logger)
			if err != nil {
				return err
			}
			sched := scheduler.New(st, scheduler.Limits{
				SearchPageLimit: cfg.Crawl.SearchPageLimit,
				MaxChannelSize:  cfg.Crawl.MaxChannelSize,
			})
			loop := crawler.New(crawler.Options{
				Config:     cfg,
				Store:      st,
				Scheduler:  sched,
				Downloader: ctx.newDownloader(cfg),
				Processor:  processor,
				Logger:     logger,
			})

			logger.Info("crawl starting", logging.String("database", st.Path()))
			if err := loop.Run(runCtx); err != nil {
				return err
			}
			logger.Info("crawl complete")
			return nil
		},
	}

	cmd.Flags().StringVarP(&queryFile, "query-file", "q", "", "Seed search queries from a newline-delimited file before crawling")
	return cmd
}
