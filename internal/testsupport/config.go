package testsupport

import (
	"path/filepath"
	"testing"

	"speechcrawler/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DestDir = filepath.Join(base, "corpus")
	cfg.Paths.LogDir = filepath.Join(base, "logs")

	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}

// WithForcedAlign enables the forced-alignment step on the test config.
func WithForcedAlign() ConfigOption {
	return func(c *config.Config) {
		c.Crawl.ForcedAlign = true
	}
}

// WithSearchPageLimit overrides the query-page ceiling on the test config.
func WithSearchPageLimit(limit int) ConfigOption {
	return func(c *config.Config) {
		c.Crawl.SearchPageLimit = limit
	}
}
