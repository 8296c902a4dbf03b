package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeCrawl()
	c.normalizePipeline()
	c.normalizeAudio()
	c.normalizeAligner()
	c.normalizeTools()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.DestDir, err = expandPath(c.Paths.DestDir); err != nil {
		return fmt.Errorf("paths.dest_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeCrawl() {
	if c.Crawl.SearchPageLimit <= 0 {
		c.Crawl.SearchPageLimit = defaultSearchPageLimit
	}
	if c.Crawl.MaxChannelSize <= 0 {
		c.Crawl.MaxChannelSize = defaultMaxChannelSize
	}
	c.Crawl.SubtitleLang = strings.TrimSpace(c.Crawl.SubtitleLang)
	if c.Crawl.SubtitleLang == "" {
		c.Crawl.SubtitleLang = defaultSubtitleLang
	}
}

func (c *Config) normalizePipeline() {
	if c.Pipeline.MinWords <= 0 {
		c.Pipeline.MinWords = defaultMinWords
	}
	if c.Pipeline.MergeGapMS <= 0 {
		c.Pipeline.MergeGapMS = defaultMergeGapMS
	}
	if c.Pipeline.MaxMergedMS <= 0 {
		c.Pipeline.MaxMergedMS = defaultMaxMergedMS
	}
	if c.Pipeline.MinDurationMS <= 0 {
		c.Pipeline.MinDurationMS = defaultMinDurationMS
	}
	if c.Pipeline.MaxDurationMS <= 0 {
		c.Pipeline.MaxDurationMS = defaultMaxDurationMS
	}
	if len(c.Pipeline.BlacklistGlyphs) == 0 {
		c.Pipeline.BlacklistGlyphs = defaultBlacklistGlyphs()
	}
	c.Pipeline.AllowedPattern = strings.TrimSpace(c.Pipeline.AllowedPattern)
	if c.Pipeline.AllowedPattern == "" {
		c.Pipeline.AllowedPattern = defaultAllowedPattern
	}
}

func (c *Config) normalizeAudio() {
	if c.Audio.SampleRate <= 0 {
		c.Audio.SampleRate = defaultSampleRate
	}
	if c.Audio.SampleWidth <= 0 {
		c.Audio.SampleWidth = defaultSampleWidth
	}
}

func (c *Config) normalizeAligner() {
	c.Aligner.URL = strings.TrimRight(strings.TrimSpace(c.Aligner.URL), "/")
	if c.Aligner.URL == "" {
		c.Aligner.URL = defaultAlignerURL
	}
	if c.Aligner.RequestTimeout <= 0 {
		c.Aligner.RequestTimeout = defaultAlignerTimeout
	}
}

func (c *Config) normalizeTools() {
	c.Tools.Downloader = strings.TrimSpace(c.Tools.Downloader)
	if c.Tools.Downloader == "" {
		c.Tools.Downloader = defaultDownloader
	}
	c.Tools.FFmpeg = strings.TrimSpace(c.Tools.FFmpeg)
	if c.Tools.FFmpeg == "" {
		c.Tools.FFmpeg = defaultFFmpeg
	}
	if c.Tools.SocketTimeout <= 0 {
		c.Tools.SocketTimeout = defaultSocketTimeout
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
