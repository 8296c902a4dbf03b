package fetch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"speechcrawler/internal/services"
	"speechcrawler/internal/testsupport"
)

func TestSearchURL(t *testing.T) {
	got := SearchURL("test query", 3)
	want := "https://www.youtube.com/results?sp=EgQIBCgB&q=test+query&p=3"
	if got != want {
		t.Errorf("SearchURL = %q, want %q", got, want)
	}
}

func TestWatchURL(t *testing.T) {
	got := WatchURL("abc_123-xyz")
	want := "https://www.youtube.com/watch?v=abc_123-xyz"
	if got != want {
		t.Errorf("WatchURL = %q, want %q", got, want)
	}
}

func TestChannelURL(t *testing.T) {
	got := ChannelURL("UCxyz")
	want := "https://www.youtube.com/channel/UCxyz/videos"
	if got != want {
		t.Errorf("ChannelURL = %q, want %q", got, want)
	}
}

func TestCommandDownloaderArgs(t *testing.T) {
	cfg := testsupport.NewConfig(t)

	dir := t.TempDir()
	argsFile := filepath.Join(dir, "args.txt")
	stub := filepath.Join(dir, "yt-dlp")
	script := "#!/bin/sh\nprintf '%s\\n' \"$@\" > " + argsFile + "\n"
	if err := os.WriteFile(stub, []byte(script), 0o755); err != nil {
		t.Fatal(err)
	}
	cfg.Tools.Downloader = stub
	cfg.Crawl.SubtitleLang = "en"

	downloader := NewCommandDownloader(cfg)
	url := SearchURL("hello", 1)
	if err := downloader.Download(context.Background(), url); err != nil {
		t.Fatalf("Download: %v", err)
	}

	recorded, err := os.ReadFile(argsFile)
	if err != nil {
		t.Fatal(err)
	}
	args := strings.Split(strings.TrimSpace(string(recorded)), "\n")
	last := args[len(args)-1]
	if last != url {
		t.Errorf("last arg = %q, want the URL", last)
	}
	joined := string(recorded)
	for _, want := range []string{"--write-subs", "--sub-langs", "en", "--convert-subs", "vtt", "--download-archive"} {
		if !strings.Contains(joined, want) {
			t.Errorf("args missing %q", want)
		}
	}
	if strings.Contains(joined, "--skip-download") {
		t.Error("--skip-download present without dry run")
	}

	intermediate := filepath.Join(cfg.Paths.DestDir, "intermediate")
	if _, err := os.Stat(intermediate); err != nil {
		t.Errorf("intermediate dir not created: %v", err)
	}
}

func TestCommandDownloaderDryRun(t *testing.T) {
	cfg := testsupport.NewConfig(t)

	dir := t.TempDir()
	argsFile := filepath.Join(dir, "args.txt")
	stub := filepath.Join(dir, "yt-dlp")
	script := "#!/bin/sh\nprintf '%s\\n' \"$@\" > " + argsFile + "\n"
	if err := os.WriteFile(stub, []byte(script), 0o755); err != nil {
		t.Fatal(err)
	}
	cfg.Tools.Downloader = stub
	cfg.Crawl.DryRun = true

	downloader := NewCommandDownloader(cfg)
	if err := downloader.Download(context.Background(), WatchURL("abc")); err != nil {
		t.Fatalf("Download: %v", err)
	}
	recorded, err := os.ReadFile(argsFile)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(recorded), "--skip-download") {
		t.Error("--skip-download missing in dry run")
	}
}

func TestCommandDownloaderItemIndex(t *testing.T) {
	cfg := testsupport.NewConfig(t)

	dir := t.TempDir()
	argsFile := filepath.Join(dir, "args.txt")
	stub := filepath.Join(dir, "yt-dlp")
	script := "#!/bin/sh\nprintf '%s\\n' \"$@\" > " + argsFile + "\n"
	if err := os.WriteFile(stub, []byte(script), 0o755); err != nil {
		t.Fatal(err)
	}
	cfg.Tools.Downloader = stub

	downloader := NewCommandDownloader(cfg)
	if err := downloader.DownloadItem(context.Background(), ChannelURL("UCxyz"), 7); err != nil {
		t.Fatalf("DownloadItem: %v", err)
	}
	recorded, err := os.ReadFile(argsFile)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(recorded), "--playlist-items\n7") {
		t.Errorf("playlist item args missing: %s", recorded)
	}

	if err := downloader.DownloadItem(context.Background(), ChannelURL("UCxyz"), 0); err == nil {
		t.Error("expected error for index 0")
	}
}

func TestCommandDownloaderFailure(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Tools.Downloader = filepath.Join(t.TempDir(), "missing-yt-dlp")

	downloader := NewCommandDownloader(cfg)
	err := downloader.Download(context.Background(), WatchURL("abc"))
	if err == nil {
		t.Fatal("expected error for missing binary")
	}
	if !errors.Is(err, services.ErrExternalTool) {
		t.Errorf("err = %v, want ErrExternalTool", err)
	}
}
