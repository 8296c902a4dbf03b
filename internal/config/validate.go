package config

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateCrawl(); err != nil {
		return err
	}
	if err := c.validatePipeline(); err != nil {
		return err
	}
	if err := c.validateAudio(); err != nil {
		return err
	}
	if err := c.validateAligner(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if c.Paths.DestDir == "" {
		return errors.New("paths.dest_dir must be set")
	}
	if c.Paths.LogDir == "" {
		return errors.New("paths.log_dir must be set")
	}
	return nil
}

func (c *Config) validateCrawl() error {
	if c.Crawl.SearchPageLimit <= 0 {
		return errors.New("crawl.search_page_limit must be positive")
	}
	if c.Crawl.MaxChannelSize <= 0 {
		return errors.New("crawl.max_channel_size must be positive")
	}
	return nil
}

func (c *Config) validatePipeline() error {
	if c.Pipeline.MinDurationMS >= c.Pipeline.MaxDurationMS {
		return errors.New("pipeline.min_duration_ms must be below pipeline.max_duration_ms")
	}
	if _, err := regexp.Compile(c.Pipeline.AllowedPattern); err != nil {
		return fmt.Errorf("pipeline.allowed_pattern: %w", err)
	}
	return nil
}

func (c *Config) validateAudio() error {
	// Millisecond offsets only map cleanly onto whole sample counts when the
	// rate divides by 1000; the segmenter rejects anything else.
	if c.Audio.SampleRate <= 0 || c.Audio.SampleRate%1000 != 0 {
		return errors.New("audio.sample_rate must be a positive multiple of 1000")
	}
	if c.Audio.SampleWidth != 1 && c.Audio.SampleWidth != 2 {
		return errors.New("audio.sample_width must be 1 or 2 bytes")
	}
	return nil
}

func (c *Config) validateAligner() error {
	parsed, err := url.Parse(c.Aligner.URL)
	if err != nil {
		return fmt.Errorf("aligner.url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return errors.New("aligner.url must be an http or https URL")
	}
	return nil
}
