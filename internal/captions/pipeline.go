package captions

import (
	"fmt"
	"html"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"speechcrawler/internal/config"
)

// Stage transforms the full cue list for one media item. Stages compose
// strictly left to right; a later stage always sees the output of the one
// before it.
type Stage func([]Cue) []Cue

// Pipeline applies an ordered list of stages.
type Pipeline struct {
	stages []Stage
}

// NewPipeline composes stages in the given order.
func NewPipeline(stages ...Stage) *Pipeline {
	return &Pipeline{stages: stages}
}

// Run feeds cues through every stage in order.
func (p *Pipeline) Run(cues []Cue) []Cue {
	result := cues
	for _, stage := range p.stages {
		result = stage(result)
	}
	return result
}

// FromConfig builds the standard cleanup pipeline with configured thresholds.
func FromConfig(cfg config.Pipeline) (*Pipeline, error) {
	allowed, err := regexp.Compile("(?i)" + cfg.AllowedPattern)
	if err != nil {
		return nil, fmt.Errorf("allowed pattern: %w", err)
	}
	return NewPipeline(
		RemoveOverlaps(),
		DropBlacklisted(cfg.BlacklistGlyphs),
		Normalize(),
		MatchAllowed(allowed),
		MinWords(cfg.MinWords),
		StripNonAlphanumeric(),
		Merge(cfg.MergeGapMS, cfg.MaxMergedMS),
		DurationBounds(cfg.MinDurationMS, cfg.MaxDurationMS),
	), nil
}

// RemoveOverlaps resolves overlapping time ranges so no two surviving cues
// overlap. The earlier-starting cue wins the contested interval: the later
// cue's start is pushed forward and the cue is dropped if nothing remains.
func RemoveOverlaps() Stage {
	return func(cues []Cue) []Cue {
		out := make([]Cue, 0, len(cues))
		for _, cue := range cues {
			if len(out) > 0 {
				prev := out[len(out)-1]
				if cue.StartMS < prev.EndMS {
					cue.StartMS = prev.EndMS
				}
			}
			if cue.StartMS < cue.EndMS {
				out = append(out, cue)
			}
		}
		return out
	}
}

// DropBlacklisted removes cues whose text contains any forbidden glyph.
// The defaults mark non-speech audio in broadcast captions.
func DropBlacklisted(glyphs []string) Stage {
	return func(cues []Cue) []Cue {
		out := cues[:0]
		for _, cue := range cues {
			blacklisted := false
			for _, glyph := range glyphs {
				if strings.Contains(cue.Text, glyph) {
					blacklisted = true
					break
				}
			}
			if !blacklisted {
				out = append(out, cue)
			}
		}
		return out
	}
}

var (
	markupTagPattern  = regexp.MustCompile(`<[^>]*>`)
	speakerDashPrefix = regexp.MustCompile(`^\s*-\s*`)
	whitespaceRun     = regexp.MustCompile(`\s+`)
)

// Normalize canonicalizes cue text: NFKC unicode normalization, markup and
// entity removal, whitespace collapse.
func Normalize() Stage {
	return func(cues []Cue) []Cue {
		for i := range cues {
			text := norm.NFKC.String(cues[i].Text)
			text = html.UnescapeString(text)
			text = markupTagPattern.ReplaceAllString(text, " ")
			text = speakerDashPrefix.ReplaceAllString(text, "")
			text = whitespaceRun.ReplaceAllString(text, " ")
			cues[i].Text = strings.TrimSpace(text)
		}
		return cues
	}
}

// MatchAllowed drops cues whose text does not fully match the safe
// character-set pattern. This guards against residual markup and
// non-target-language text.
func MatchAllowed(pattern *regexp.Regexp) Stage {
	return func(cues []Cue) []Cue {
		out := cues[:0]
		for _, cue := range cues {
			match := pattern.FindString(cue.Text)
			if match == cue.Text && cue.Text != "" {
				out = append(out, cue)
			}
		}
		return out
	}
}

// MinWords drops cues with fewer words than the threshold.
func MinWords(threshold int) Stage {
	return func(cues []Cue) []Cue {
		out := cues[:0]
		for _, cue := range cues {
			if len(strings.Fields(cue.Text)) >= threshold {
				out = append(out, cue)
			}
		}
		return out
	}
}

// StripNonAlphanumeric removes everything but letters, digits, and spaces
// from cue text. Final text normalization before export.
func StripNonAlphanumeric() Stage {
	return func(cues []Cue) []Cue {
		for i := range cues {
			stripped := strings.Map(func(r rune) rune {
				if unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ' {
					return r
				}
				return -1
			}, cues[i].Text)
			cues[i].Text = strings.TrimSpace(whitespaceRun.ReplaceAllString(stripped, " "))
		}
		return cues
	}
}

// Merge joins temporally adjacent cues when the gap between them is below
// gapMS, accumulating merged duration up to maxMergedMS. Merged endpoints
// are the min/max of the constituents and text is space-joined.
func Merge(gapMS, maxMergedMS int64) Stage {
	return func(cues []Cue) []Cue {
		if len(cues) == 0 {
			return cues
		}
		out := make([]Cue, 0, len(cues))
		current := cues[0]
		for _, cue := range cues[1:] {
			gap := cue.StartMS - current.EndMS
			merged := cue.EndMS - current.StartMS
			if gap < gapMS && merged <= maxMergedMS {
				if cue.EndMS > current.EndMS {
					current.EndMS = cue.EndMS
				}
				current.Text = current.Text + " " + cue.Text
				continue
			}
			out = append(out, current)
			current = cue
		}
		return append(out, current)
	}
}

// DurationBounds drops cues whose duration falls outside [minMS, maxMS].
func DurationBounds(minMS, maxMS int64) Stage {
	return func(cues []Cue) []Cue {
		out := cues[:0]
		for _, cue := range cues {
			duration := cue.DurationMS()
			if duration >= minMS && duration <= maxMS {
				out = append(out, cue)
			}
		}
		return out
	}
}
