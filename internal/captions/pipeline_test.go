package captions

import (
	"reflect"
	"regexp"
	"testing"

	"speechcrawler/internal/config"
)

func TestRemoveOverlaps(t *testing.T) {
	stage := RemoveOverlaps()
	got := stage([]Cue{
		{StartMS: 0, EndMS: 2000, Text: "first"},
		{StartMS: 1500, EndMS: 3000, Text: "second"},
		{StartMS: 2500, EndMS: 2900, Text: "swallowed"},
		{StartMS: 4000, EndMS: 5000, Text: "clear"},
	})
	want := []Cue{
		{StartMS: 0, EndMS: 2000, Text: "first"},
		{StartMS: 2000, EndMS: 3000, Text: "second"},
		{StartMS: 4000, EndMS: 5000, Text: "clear"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestDropBlacklisted(t *testing.T) {
	stage := DropBlacklisted([]string{"♪", "♬", "♫"})
	got := stage([]Cue{
		{StartMS: 0, EndMS: 1000, Text: "plain speech"},
		{StartMS: 1000, EndMS: 2000, Text: "♪ humming ♪"},
		{StartMS: 2000, EndMS: 3000, Text: "more speech"},
	})
	if len(got) != 2 || got[0].Text != "plain speech" || got[1].Text != "more speech" {
		t.Fatalf("got %+v", got)
	}
}

func TestNormalize(t *testing.T) {
	stage := Normalize()
	got := stage([]Cue{
		{Text: "- Hello   there"},
		{Text: "left <i>emphasis</i> right"},
		{Text: "ﬁve &amp; six"},
	})
	if got[0].Text != "Hello there" {
		t.Errorf("dash prefix: %q", got[0].Text)
	}
	if got[1].Text != "left emphasis right" {
		t.Errorf("markup: %q", got[1].Text)
	}
	if got[2].Text != "five & six" {
		t.Errorf("nfkc/entities: %q", got[2].Text)
	}
}

func TestMatchAllowed(t *testing.T) {
	pattern := regexp.MustCompile(`(?i)^[A-Za-z0-9,.\-?"'!\s;:/\\]+$`)
	stage := MatchAllowed(pattern)
	got := stage([]Cue{
		{Text: "plain english text, fine."},
		{Text: "contains <leftover> markup"},
		{Text: "кириллица"},
		{Text: ""},
	})
	if len(got) != 1 || got[0].Text != "plain english text, fine." {
		t.Fatalf("got %+v", got)
	}
}

func TestMinWords(t *testing.T) {
	stage := MinWords(5)
	got := stage([]Cue{
		{Text: "one two three four"},
		{Text: "one two three four five"},
	})
	if len(got) != 1 || got[0].Text != "one two three four five" {
		t.Fatalf("got %+v", got)
	}
}

func TestStripNonAlphanumeric(t *testing.T) {
	stage := StripNonAlphanumeric()
	got := stage([]Cue{{Text: "well, it's done - finally!"}})
	if got[0].Text != "well its done finally" {
		t.Fatalf("got %q", got[0].Text)
	}
}

func TestMergeGapThreshold(t *testing.T) {
	input := []Cue{
		{StartMS: 0, EndMS: 2000, Text: "a b c d e"},
		{StartMS: 2100, EndMS: 4000, Text: "f g"},
	}

	merged := Merge(200, 10000)(append([]Cue(nil), input...))
	if len(merged) != 1 {
		t.Fatalf("gap 200: got %d cues, want 1", len(merged))
	}
	if merged[0].StartMS != 0 || merged[0].EndMS != 4000 {
		t.Errorf("merged range = [%d,%d], want [0,4000]", merged[0].StartMS, merged[0].EndMS)
	}
	if merged[0].Text != "a b c d e f g" {
		t.Errorf("merged text = %q", merged[0].Text)
	}

	kept := Merge(50, 10000)(append([]Cue(nil), input...))
	if len(kept) != 2 {
		t.Fatalf("gap 50: got %d cues, want 2", len(kept))
	}
}

func TestMergeMaxDuration(t *testing.T) {
	input := []Cue{
		{StartMS: 0, EndMS: 6000, Text: "first long stretch"},
		{StartMS: 6100, EndMS: 12000, Text: "second long stretch"},
	}
	got := Merge(200, 10000)(input)
	if len(got) != 2 {
		t.Fatalf("got %d cues, want 2 (merged duration would exceed cap)", len(got))
	}
}

func TestDurationBounds(t *testing.T) {
	stage := DurationBounds(1000, 20000)
	got := stage([]Cue{
		{StartMS: 0, EndMS: 500, Text: "too short"},
		{StartMS: 0, EndMS: 1000, Text: "at minimum"},
		{StartMS: 0, EndMS: 25000, Text: "too long"},
	})
	if len(got) != 1 || got[0].Text != "at minimum" {
		t.Fatalf("got %+v", got)
	}
}

func TestPipelineFromConfig(t *testing.T) {
	pipeline, err := FromConfig(config.Default().Pipeline)
	if err != nil {
		t.Fatalf("FromConfig: %v", err)
	}
	got := pipeline.Run([]Cue{
		{StartMS: 0, EndMS: 2000, Text: "this is a <i>clean</i> sentence, truly"},
		{StartMS: 2100, EndMS: 4000, Text: "and another one follows right here"},
		{StartMS: 5500, EndMS: 6000, Text: "♪ theme music ♪"},
		{StartMS: 7000, EndMS: 8000, Text: "too few"},
	})
	if len(got) != 1 {
		t.Fatalf("got %d cues, want 1: %+v", len(got), got)
	}
	if got[0].StartMS != 0 || got[0].EndMS != 4000 {
		t.Errorf("range = [%d,%d], want [0,4000]", got[0].StartMS, got[0].EndMS)
	}
	if got[0].Text != "this is a clean sentence truly and another one follows right here" {
		t.Errorf("text = %q", got[0].Text)
	}
}

func TestPipelineBlacklistIndependence(t *testing.T) {
	// For inputs with no blacklisted glyphs, removing the blacklist stage
	// must not change merge results.
	input := []Cue{
		{StartMS: 0, EndMS: 2000, Text: "alpha beta gamma delta epsilon"},
		{StartMS: 2100, EndMS: 4000, Text: "zeta eta theta iota kappa"},
	}
	cfg := config.Default().Pipeline

	full, err := FromConfig(cfg)
	if err != nil {
		t.Fatal(err)
	}
	allowed := regexp.MustCompile("(?i)" + cfg.AllowedPattern)
	without := NewPipeline(
		RemoveOverlaps(),
		Normalize(),
		MatchAllowed(allowed),
		MinWords(cfg.MinWords),
		StripNonAlphanumeric(),
		Merge(cfg.MergeGapMS, cfg.MaxMergedMS),
		DurationBounds(cfg.MinDurationMS, cfg.MaxDurationMS),
	)

	a := full.Run(append([]Cue(nil), input...))
	b := without.Run(append([]Cue(nil), input...))
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("pipelines diverged: %+v vs %+v", a, b)
	}
}
