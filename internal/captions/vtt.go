package captions

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// ParseWebVTT extracts cues from WebVTT subtitle data. Header, NOTE, and
// STYLE blocks are skipped; inline markup (voice spans, timed word tags) is
// stripped so cue text is plain. Cues whose end does not exceed their start
// are dropped.
func ParseWebVTT(data []byte) ([]Cue, error) {
	normalized := strings.ReplaceAll(string(data), "\r\n", "\n")
	normalized = strings.TrimPrefix(normalized, "\uFEFF")
	blocks := strings.Split(strings.TrimSpace(normalized), "\n\n")

	var cues []Cue
	for _, block := range blocks {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}
		first := strings.SplitN(block, "\n", 2)[0]
		if strings.HasPrefix(first, "WEBVTT") || strings.HasPrefix(first, "NOTE") || strings.HasPrefix(first, "STYLE") || strings.HasPrefix(first, "REGION") {
			continue
		}

		cue, ok, err := parseCueBlock(block)
		if err != nil {
			return nil, err
		}
		if ok {
			cues = append(cues, cue)
		}
	}
	return cues, nil
}

// LoadWebVTT reads and parses a WebVTT file.
func LoadWebVTT(path string) ([]Cue, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read vtt: %w", err)
	}
	return ParseWebVTT(data)
}

func parseCueBlock(block string) (Cue, bool, error) {
	lines := strings.Split(block, "\n")
	idx := 0
	// Optional cue identifier line before the timing line.
	if idx < len(lines) && !strings.Contains(lines[idx], "-->") {
		idx++
	}
	if idx >= len(lines) || !strings.Contains(lines[idx], "-->") {
		return Cue{}, false, nil
	}

	timing := lines[idx]
	idx++
	parts := strings.SplitN(timing, "-->", 2)
	if len(parts) != 2 {
		return Cue{}, false, nil
	}
	startMS, err := parseVTTTimestamp(strings.TrimSpace(parts[0]))
	if err != nil {
		return Cue{}, false, fmt.Errorf("cue timing %q: %w", timing, err)
	}
	// Cue settings (position, alignment) follow the end timestamp.
	endText := strings.TrimSpace(parts[1])
	if cut := strings.IndexAny(endText, " \t"); cut >= 0 {
		endText = endText[:cut]
	}
	endMS, err := parseVTTTimestamp(endText)
	if err != nil {
		return Cue{}, false, fmt.Errorf("cue timing %q: %w", timing, err)
	}

	var textLines []string
	for ; idx < len(lines); idx++ {
		line := stripMarkup(lines[idx])
		if line != "" {
			textLines = append(textLines, line)
		}
	}
	if len(textLines) == 0 || endMS <= startMS {
		return Cue{}, false, nil
	}
	return Cue{StartMS: startMS, EndMS: endMS, Text: strings.Join(textLines, " ")}, true, nil
}

func parseVTTTimestamp(value string) (int64, error) {
	if value == "" {
		return 0, fmt.Errorf("empty timestamp")
	}
	main, millisText, ok := strings.Cut(value, ".")
	if !ok {
		main, millisText, ok = strings.Cut(value, ",")
		if !ok {
			return 0, fmt.Errorf("invalid timestamp %q", value)
		}
	}
	fields := strings.Split(main, ":")
	if len(fields) != 2 && len(fields) != 3 {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}

	total := int64(0)
	for _, field := range fields {
		part, err := strconv.Atoi(field)
		if err != nil {
			return 0, fmt.Errorf("invalid timestamp %q", value)
		}
		total = total*60 + int64(part)
	}
	millis, err := strconv.Atoi(millisText)
	if err != nil {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	return total*1000 + int64(millis), nil
}

// stripMarkup removes WebVTT inline tags: voice spans, class spans,
// per-word timestamps, and any other angle-bracketed markup.
func stripMarkup(line string) string {
	var b strings.Builder
	b.Grow(len(line))
	depth := 0
	for _, r := range line {
		switch {
		case r == '<':
			depth++
		case r == '>':
			if depth > 0 {
				depth--
			}
		case depth == 0:
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}
