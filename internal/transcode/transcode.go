// Package transcode converts downloaded media containers into the raw mono
// PCM format the segmenter and aligner consume, by shelling out to ffmpeg.
package transcode

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	"speechcrawler/internal/audio"
	"speechcrawler/internal/services"
)

// Transcoder produces a WAV file from a media container.
type Transcoder interface {
	ToPCM(ctx context.Context, source, destDir string) (string, error)
}

// FFmpeg invokes an ffmpeg binary to decode media into mono PCM.
type FFmpeg struct {
	binary string
	format audio.Format
}

// NewFFmpeg builds a transcoder around the given binary path. An empty path
// falls back to "ffmpeg" on PATH.
func NewFFmpeg(binary string, format audio.Format) *FFmpeg {
	if strings.TrimSpace(binary) == "" {
		binary = "ffmpeg"
	}
	return &FFmpeg{binary: binary, format: format}
}

// ToPCM decodes the source file into a single-channel WAV in destDir and
// returns the output path. A non-zero ffmpeg exit is reported as an external
// tool failure, fatal for this media item.
func (f *FFmpeg) ToPCM(ctx context.Context, source, destDir string) (string, error) {
	base := filepath.Base(source)
	if ext := filepath.Ext(base); ext != "" {
		base = strings.TrimSuffix(base, ext)
	}
	dest := filepath.Join(destDir, base+".wav")

	args := []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-i", source,
		"-vn",
		"-ac", "1",
		"-ar", fmt.Sprintf("%d", f.format.SampleRate),
		"-sample_fmt", sampleFormat(f.format.SampleWidth),
		dest,
	}
	cmd := exec.CommandContext(ctx, f.binary, args...) //nolint:gosec
	if output, err := cmd.CombinedOutput(); err != nil {
		return "", services.Wrap(services.ErrExternalTool, "transcode", "ffmpeg",
			strings.TrimSpace(string(output)), err)
	}
	return dest, nil
}

func sampleFormat(width int) string {
	switch width {
	case 1:
		return "u8"
	case 4:
		return "s32"
	default:
		return "s16"
	}
}
