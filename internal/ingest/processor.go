// Package ingest turns one downloaded media file into persisted captions:
// it locates the caption track, cleans it through the pipeline, transcodes
// the audio, optionally refines cue timing via forced alignment, and writes
// the surviving cues to the store.
package ingest

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"speechcrawler/internal/align"
	"speechcrawler/internal/audio"
	"speechcrawler/internal/captions"
	"speechcrawler/internal/logging"
	"speechcrawler/internal/services"
	"speechcrawler/internal/store"
	"speechcrawler/internal/transcode"
)

// Adjuster refines one cue's timing against the audio. Satisfied by
// *align.Adjuster.
type Adjuster interface {
	Adjust(ctx context.Context, buf *audio.Buffer, cue captions.Cue) (captions.Cue, error)
}

// Processor derives captions for a single downloaded media file.
type Processor struct {
	store        *store.Store
	transcoder   transcode.Transcoder
	pipeline     *captions.Pipeline
	adjuster     Adjuster // nil disables forced alignment
	format       audio.Format
	subtitleLang string
	logger       *slog.Logger
}

// Options collects the processor's collaborators.
type Options struct {
	Store        *store.Store
	Transcoder   transcode.Transcoder
	Pipeline     *captions.Pipeline
	Adjuster     Adjuster
	Format       audio.Format
	SubtitleLang string
	Logger       *slog.Logger
}

// NewProcessor wires a processor from its collaborators.
func NewProcessor(opts Options) *Processor {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Processor{
		store:        opts.Store,
		transcoder:   opts.Transcoder,
		pipeline:     opts.Pipeline,
		adjuster:     opts.Adjuster,
		format:       opts.Format,
		subtitleLang: opts.SubtitleLang,
		logger:       logger,
	}
}

// MediaIDFromPath recovers the media identifier from a downloaded file name.
// The download template names files `<id>#<title>.<ext>`, so the id is the
// base name up to the first '#' or '.'.
func MediaIDFromPath(path string) string {
	base := filepath.Base(path)
	if cut := strings.IndexAny(base, "#."); cut >= 0 {
		base = base[:cut]
	}
	return base
}

// ChannelIDFromPath recovers the channel identifier, which the download
// template uses as the file's parent directory name.
func ChannelIDFromPath(path string) string {
	return filepath.Base(filepath.Dir(path))
}

// Process ingests one downloaded media file. It registers the media row if
// absent, then returns the item's terminal classification: StatusDone when
// captions were persisted, StatusSubtitlesMissing or StatusSubtitlesInvalid
// for terminal content classifications. A non-nil error means a retryable
// failure; no classification applies and the caller must not mark the item.
func (p *Processor) Process(ctx context.Context, mediaPath string) (store.Status, error) {
	mediaID := MediaIDFromPath(mediaPath)
	channelID := ChannelIDFromPath(mediaPath)
	ctx = services.WithMediaID(ctx, mediaID)
	log := logging.WithContext(ctx, p.logger)

	if err := p.store.AddMediaItem(ctx, mediaID, channelID, nil); err != nil {
		return "", err
	}
	if err := p.store.SetMediaFile(ctx, mediaID, mediaPath); err != nil {
		return "", err
	}

	subtitlePath := subtitleSibling(mediaPath, p.subtitleLang)
	if _, err := os.Stat(subtitlePath); err != nil {
		if !os.IsNotExist(err) {
			return "", err
		}
		log.Info("caption track absent", logging.String("path", subtitlePath))
		return store.StatusSubtitlesMissing, nil
	}

	raw, err := captions.LoadWebVTT(subtitlePath)
	if err != nil {
		log.Warn("caption track unreadable", logging.Error(err))
		return store.StatusSubtitlesInvalid, nil
	}
	cues := p.pipeline.Run(raw)
	if len(cues) == 0 {
		log.Info("no cues survived cleanup", logging.Int("raw_cues", len(raw)))
		return store.StatusSubtitlesInvalid, nil
	}

	ctx = services.WithStage(ctx, "transcode")
	wavPath, err := p.transcoder.ToPCM(ctx, mediaPath, filepath.Dir(mediaPath))
	if err != nil {
		return "", err
	}
	buf, err := audio.ReadWAVFile(wavPath, p.format)
	if err != nil {
		return "", err
	}
	if err := p.store.SetMediaLength(ctx, mediaID, buf.DurationMS()); err != nil {
		return "", err
	}

	if p.adjuster != nil {
		cues, err = p.alignCues(services.WithStage(ctx, "align"), log, buf, cues)
		if err != nil {
			return "", err
		}
		if len(cues) == 0 {
			log.Info("every cue rejected by alignment")
			return store.StatusSubtitlesInvalid, nil
		}
	}

	persisted := make([]store.NewCaption, 0, len(cues))
	for _, cue := range cues {
		if cue.StartMS >= cue.EndMS {
			continue
		}
		persisted = append(persisted, store.NewCaption{
			StartMS: cue.StartMS,
			EndMS:   cue.EndMS,
			Text:    cue.Text,
		})
	}
	if len(persisted) == 0 {
		return store.StatusSubtitlesInvalid, nil
	}
	if err := p.store.ReplaceCaptions(ctx, mediaID, persisted); err != nil {
		return "", err
	}

	log.Info("captions persisted",
		logging.Int("cues", len(persisted)),
		logging.Int64("length_ms", buf.DurationMS()))
	return store.StatusDone, nil
}

// alignCues refines each cue and drops the ones the aligner rejects.
// Service errors abort the whole item so it can be retried later.
func (p *Processor) alignCues(ctx context.Context, log *slog.Logger, buf *audio.Buffer, cues []captions.Cue) ([]captions.Cue, error) {
	kept := make([]captions.Cue, 0, len(cues))
	for _, cue := range cues {
		adjusted, err := p.adjuster.Adjust(ctx, buf, cue)
		if errors.Is(err, align.ErrRejected) {
			log.Debug("cue rejected by alignment",
				logging.Int64("start_ms", cue.StartMS),
				logging.Int64("end_ms", cue.EndMS))
			continue
		}
		if err != nil {
			return nil, err
		}
		kept = append(kept, adjusted)
	}
	return kept, nil
}

func subtitleSibling(mediaPath, lang string) string {
	stem := strings.TrimSuffix(mediaPath, filepath.Ext(mediaPath))
	return stem + "." + lang + ".vtt"
}
