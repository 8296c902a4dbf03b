package transcode

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"speechcrawler/internal/audio"
	"speechcrawler/internal/services"
)

func testFormat() audio.Format {
	return audio.Format{SampleRate: 16000, SampleWidth: 2}
}

// fakeFFmpeg writes a stub binary that touches its final argument, the way
// ffmpeg creates its output file.
func fakeFFmpeg(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ffmpeg")
	script := "#!/bin/sh\nfor last; do :; done\n: > \"$last\"\n"
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestToPCMProducesWAVPath(t *testing.T) {
	destDir := t.TempDir()
	ffmpeg := NewFFmpeg(fakeFFmpeg(t), testFormat())

	out, err := ffmpeg.ToPCM(context.Background(), "/media/abc123#Some_Title.m4a", destDir)
	if err != nil {
		t.Fatalf("ToPCM: %v", err)
	}
	if want := filepath.Join(destDir, "abc123#Some_Title.wav"); out != want {
		t.Errorf("output path = %q, want %q", out, want)
	}
	if _, err := os.Stat(out); err != nil {
		t.Errorf("output file missing: %v", err)
	}
}

func TestToPCMFailureIsExternalToolError(t *testing.T) {
	ffmpeg := NewFFmpeg(filepath.Join(t.TempDir(), "missing-ffmpeg"), testFormat())

	_, err := ffmpeg.ToPCM(context.Background(), "in.m4a", t.TempDir())
	if err == nil {
		t.Fatal("expected error for missing binary")
	}
	if !errors.Is(err, services.ErrExternalTool) {
		t.Errorf("err = %v, want ErrExternalTool", err)
	}
}

func TestNewFFmpegDefaultBinary(t *testing.T) {
	ffmpeg := NewFFmpeg("  ", testFormat())
	if ffmpeg.binary != "ffmpeg" {
		t.Errorf("binary = %q, want ffmpeg", ffmpeg.binary)
	}
}

func TestSampleFormat(t *testing.T) {
	cases := []struct {
		width int
		want  string
	}{
		{1, "u8"},
		{2, "s16"},
		{4, "s32"},
	}
	for _, tc := range cases {
		if got := sampleFormat(tc.width); got != tc.want {
			t.Errorf("sampleFormat(%d) = %q, want %q", tc.width, got, tc.want)
		}
	}
}

func TestToPCMSampleRateArgs(t *testing.T) {
	// The stub records its arguments so the invocation can be checked.
	dir := t.TempDir()
	argsFile := filepath.Join(dir, "args.txt")
	path := filepath.Join(dir, "ffmpeg")
	script := "#!/bin/sh\nprintf '%s\\n' \"$@\" > " + argsFile + "\nfor last; do :; done\n: > \"$last\"\n"
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatal(err)
	}

	ffmpeg := NewFFmpeg(path, audio.Format{SampleRate: 8000, SampleWidth: 2})
	if _, err := ffmpeg.ToPCM(context.Background(), "in.m4a", t.TempDir()); err != nil {
		t.Fatalf("ToPCM: %v", err)
	}
	recorded, err := os.ReadFile(argsFile)
	if err != nil {
		t.Fatal(err)
	}
	args := string(recorded)
	for _, want := range []string{"-ac", "8000", "-sample_fmt", "s16"} {
		if !strings.Contains(args, want) {
			t.Errorf("args missing %q: %s", want, args)
		}
	}
}
