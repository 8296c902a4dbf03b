package align

import (
	"context"
	"errors"
	"math"

	"speechcrawler/internal/audio"
	"speechcrawler/internal/captions"
)

const (
	// contextWindowMS pads the audio window around a cue so the aligner
	// sees the utterance with surrounding context.
	contextWindowMS int64 = 1000
	// boundaryPadMS absorbs aligner jitter at utterance boundaries.
	boundaryPadMS int64 = 10
	// minSuccessRatio is the fraction of words that must align for the
	// cue to be accepted.
	minSuccessRatio = 0.8
)

// ErrRejected reports that the aligner could not place the cue's words
// confidently enough to refine its timestamps.
var ErrRejected = errors.New("alignment rejected")

// Adjuster refines cue timestamps against the actual audio using a
// word-level alignment service.
type Adjuster struct {
	client Client
}

// NewAdjuster wraps an alignment client.
func NewAdjuster(client Client) *Adjuster {
	return &Adjuster{client: client}
}

// Adjust submits the audio window around the cue to the alignment service
// and returns the cue with refined timestamps. The window extends the cue
// range by one second on each side, clamped to the start of the buffer.
// Returns ErrRejected when fewer than 80% of the words align, or when the
// first or last word fails to align.
func (a *Adjuster) Adjust(ctx context.Context, buf *audio.Buffer, cue captions.Cue) (captions.Cue, error) {
	winStart := cue.StartMS - contextWindowMS
	if winStart < 0 {
		winStart = 0
	}
	winEnd := cue.EndMS + contextWindowMS

	segment := buf.Export(winStart, winEnd)
	resp, err := a.client.Align(ctx, Request{
		Audio:      audio.WAVBytes(buf.Format(), segment),
		Transcript: cue.Text,
	})
	if err != nil {
		return captions.Cue{}, err
	}

	words := resp.Words
	if len(words) == 0 {
		return captions.Cue{}, ErrRejected
	}
	successes := 0
	for _, word := range words {
		if word.Success() {
			successes++
		}
	}
	if float64(successes)/float64(len(words)) < minSuccessRatio {
		return captions.Cue{}, ErrRejected
	}
	first, last := words[0], words[len(words)-1]
	if !first.Success() || !last.Success() {
		return captions.Cue{}, ErrRejected
	}

	newStart := int64(math.Floor(first.Start*1000)) + winStart - boundaryPadMS
	if newStart < 0 {
		newStart = 0
	}
	newEnd := int64(math.Ceil(last.End*1000)) + winStart + boundaryPadMS
	return captions.Cue{StartMS: newStart, EndMS: newEnd, Text: cue.Text}, nil
}
