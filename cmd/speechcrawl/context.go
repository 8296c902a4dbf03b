package main

import (
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"speechcrawler/internal/align"
	"speechcrawler/internal/audio"
	"speechcrawler/internal/captions"
	"speechcrawler/internal/config"
	"speechcrawler/internal/fetch"
	"speechcrawler/internal/ingest"
	"speechcrawler/internal/logging"
	"speechcrawler/internal/store"
	"speechcrawler/internal/transcode"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) newLogger(cfg *config.Config) (*slog.Logger, error) {
	return logging.New(logging.Options{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		OutputPaths: []string{"stdout", filepath.Join(cfg.Paths.LogDir, "speechcrawl.log")},
	})
}

// newProcessor wires the per-media ingest stage from configuration.
func (c *commandContext) newProcessor(cfg *config.Config, st *store.Store, logger *slog.Logger) (*ingest.Processor, error) {
	pipeline, err := captions.FromConfig(cfg.Pipeline)
	if err != nil {
		return nil, err
	}
	format := audio.Format{
		SampleRate:  cfg.Audio.SampleRate,
		SampleWidth: cfg.Audio.SampleWidth,
	}

	var adjuster ingest.Adjuster
	if cfg.Crawl.ForcedAlign {
		client := align.NewHTTPClient(cfg.Aligner.URL,
			align.WithTimeout(cfg.Aligner.RequestTimeoutDuration()))
		adjuster = align.NewAdjuster(client)
	}

	return ingest.NewProcessor(ingest.Options{
		Store:        st,
		Transcoder:   transcode.NewFFmpeg(cfg.Tools.FFmpeg, format),
		Pipeline:     pipeline,
		Adjuster:     adjuster,
		Format:       format,
		SubtitleLang: cfg.Crawl.SubtitleLang,
		Logger:       logging.NewComponentLogger(logger, "ingest"),
	}), nil
}

func (c *commandContext) newDownloader(cfg *config.Config) fetch.Downloader {
	return fetch.NewCommandDownloader(cfg)
}
