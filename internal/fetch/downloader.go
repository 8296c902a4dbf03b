package fetch

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"speechcrawler/internal/config"
	"speechcrawler/internal/services"
)

// Downloader retrieves one URL's media and caption files into the
// intermediate directory. Implementations own their own timeout policy and
// report failure instead of hanging.
type Downloader interface {
	Download(ctx context.Context, url string) error
	// DownloadItem restricts a listing URL to a single 1-based item index.
	DownloadItem(ctx context.Context, url string, index int) error
}

// outputTemplate keys downloaded files by channel id and media id so the
// ingest step can recover both from the path alone.
const outputTemplate = "%(channel_id)s/%(id)s#%(title)s.%(ext)s"

// CommandDownloader shells out to a yt-dlp compatible binary.
type CommandDownloader struct {
	binary        string
	destDir       string
	subtitleLang  string
	socketTimeout int
	dryRun        bool
}

// NewCommandDownloader builds a downloader from configuration. An empty
// binary path falls back to "yt-dlp" on PATH.
func NewCommandDownloader(cfg *config.Config) *CommandDownloader {
	binary := strings.TrimSpace(cfg.Tools.Downloader)
	if binary == "" {
		binary = "yt-dlp"
	}
	return &CommandDownloader{
		binary:        binary,
		destDir:       cfg.Paths.DestDir,
		subtitleLang:  cfg.Crawl.SubtitleLang,
		socketTimeout: cfg.Tools.SocketTimeout,
		dryRun:        cfg.Crawl.DryRun,
	}
}

// Download fetches the best audio-only stream plus the manually authored
// subtitle track for every item behind the URL. Already-archived items are
// skipped via the download archive, and per-item extraction errors inside a
// listing are tolerated so one broken item does not fail the page.
func (d *CommandDownloader) Download(ctx context.Context, url string) error {
	return d.run(ctx, url, 0)
}

// DownloadItem fetches one 1-based item from a listing URL.
func (d *CommandDownloader) DownloadItem(ctx context.Context, url string, index int) error {
	if index < 1 {
		return fmt.Errorf("download item: invalid index %d", index)
	}
	return d.run(ctx, url, index)
}

func (d *CommandDownloader) run(ctx context.Context, url string, item int) error {
	intermediate := filepath.Join(d.destDir, "intermediate")
	if err := os.MkdirAll(intermediate, 0o755); err != nil {
		return fmt.Errorf("create intermediate dir: %w", err)
	}

	args := []string{
		"--no-overwrites",
		"--format", "bestaudio[ext=m4a]",
		"--restrict-filenames",
		"--write-info-json",
		"--write-subs",
		"--no-write-auto-subs",
		"--sub-langs", d.subtitleLang,
		"--sub-format", "ttml",
		"--convert-subs", "vtt",
		"--socket-timeout", fmt.Sprintf("%d", d.socketTimeout),
		"--download-archive", filepath.Join(d.destDir, "downloaded.txt"),
		"--ignore-errors",
		"--continue",
		"--keep-video",
		"--output", filepath.Join(intermediate, outputTemplate),
	}
	if item > 0 {
		args = append(args, "--playlist-items", fmt.Sprintf("%d", item))
	}
	if d.dryRun {
		args = append(args, "--skip-download")
	}
	args = append(args, url)

	cmd := exec.CommandContext(ctx, d.binary, args...) //nolint:gosec
	if output, err := cmd.CombinedOutput(); err != nil {
		return services.Wrap(services.ErrExternalTool, "fetch", "download",
			strings.TrimSpace(string(output)), err)
	}
	return nil
}
