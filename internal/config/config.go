package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	DestDir string `toml:"dest_dir"`
	LogDir  string `toml:"log_dir"`
}

// Crawl contains enumeration limits and crawl behavior.
type Crawl struct {
	SearchPageLimit int    `toml:"search_page_limit"`
	MaxChannelSize  int    `toml:"max_channel_size"`
	SubtitleLang    string `toml:"subtitle_lang"`
	ForcedAlign     bool   `toml:"forced_align"`
	DryRun          bool   `toml:"dry_run"`
}

// Pipeline contains caption filtering thresholds.
type Pipeline struct {
	MinWords        int      `toml:"min_words"`
	MergeGapMS      int64    `toml:"merge_gap_ms"`
	MaxMergedMS     int64    `toml:"max_merged_ms"`
	MinDurationMS   int64    `toml:"min_duration_ms"`
	MaxDurationMS   int64    `toml:"max_duration_ms"`
	BlacklistGlyphs []string `toml:"blacklist_glyphs"`
	AllowedPattern  string   `toml:"allowed_pattern"`
}

// Audio contains the PCM format produced by the transcode step.
type Audio struct {
	SampleRate  int `toml:"sample_rate"`
	SampleWidth int `toml:"sample_width"`
}

// Aligner contains configuration for the forced-alignment HTTP service.
type Aligner struct {
	URL            string `toml:"url"`
	RequestTimeout int    `toml:"request_timeout"`
}

// RequestTimeoutDuration converts the configured timeout seconds.
func (a Aligner) RequestTimeoutDuration() time.Duration {
	return time.Duration(a.RequestTimeout) * time.Second
}

// Tools contains paths to external binaries.
type Tools struct {
	Downloader    string `toml:"downloader"`
	FFmpeg        string `toml:"ffmpeg"`
	SocketTimeout int    `toml:"socket_timeout"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for the crawler.
//
// Configuration sections by subsystem:
//   - Paths: destination and log directories
//   - Crawl: enumeration page/item limits and subtitle language
//   - Pipeline: caption filter thresholds
//   - Audio: PCM format the transcode step produces
//   - Aligner: forced-alignment service endpoint
//   - Tools: external binary paths (downloader, ffmpeg)
//   - Logging: log format and level
type Config struct {
	Paths    Paths    `toml:"paths"`
	Crawl    Crawl    `toml:"crawl"`
	Pipeline Pipeline `toml:"pipeline"`
	Audio    Audio    `toml:"audio"`
	Aligner  Aligner  `toml:"aligner"`
	Tools    Tools    `toml:"tools"`
	Logging  Logging  `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/speechcrawler/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("speechcrawler.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories the crawler writes into.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DestDir, c.IntermediateDir(), c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// DatabasePath returns the location of the job store database.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.Paths.DestDir, "db.sqlite3")
}

// IntermediateDir returns the directory downloaded media lands in.
func (c *Config) IntermediateDir() string {
	return filepath.Join(c.Paths.DestDir, "intermediate")
}

// ArchivePath returns the downloader's dedup archive file.
func (c *Config) ArchivePath() string {
	return filepath.Join(c.Paths.DestDir, "downloaded.txt")
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
