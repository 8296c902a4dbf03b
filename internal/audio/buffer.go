package audio

import "fmt"

// Format describes raw single-channel PCM audio.
type Format struct {
	SampleRate  int // samples per second
	SampleWidth int // bytes per sample
}

// BytesPerMS returns how many bytes one millisecond of audio occupies.
func (f Format) BytesPerMS() int {
	return f.SampleRate / 1000 * f.SampleWidth
}

func (f Format) validate() error {
	if f.SampleRate <= 0 || f.SampleRate%1000 != 0 {
		return fmt.Errorf("sample rate %d must be a positive multiple of 1000", f.SampleRate)
	}
	if f.SampleWidth <= 0 {
		return fmt.Errorf("sample width %d must be positive", f.SampleWidth)
	}
	return nil
}

// Buffer holds one media item's raw PCM data plus its format.
type Buffer struct {
	format Format
	data   []byte
}

// NewBuffer wraps raw PCM bytes. The byte slice is retained, not copied.
func NewBuffer(format Format, data []byte) (*Buffer, error) {
	if err := format.validate(); err != nil {
		return nil, err
	}
	return &Buffer{format: format, data: data}, nil
}

// Format returns the buffer's PCM format.
func (b *Buffer) Format() Format { return b.format }

// Len returns the buffer length in bytes.
func (b *Buffer) Len() int { return len(b.data) }

// DurationMS returns the buffer duration in whole milliseconds.
func (b *Buffer) DurationMS() int64 {
	samples := len(b.data) / b.format.SampleWidth
	return int64(samples / (b.format.SampleRate / 1000))
}

// Export returns the byte range covering [startMS, endMS). Offsets beyond
// the buffer clamp to its length rather than erroring, so callers may pass
// caption end times that slightly overrun the audio.
func (b *Buffer) Export(startMS, endMS int64) []byte {
	start := b.offset(startMS)
	end := b.offset(endMS)
	if end < start {
		end = start
	}
	return b.data[start:end]
}

func (b *Buffer) offset(ms int64) int {
	if ms < 0 {
		return 0
	}
	off := int(ms*int64(b.format.SampleRate)/1000) * b.format.SampleWidth
	if off > len(b.data) {
		return len(b.data)
	}
	return off
}
