package audio

import (
	"bytes"
	"path/filepath"
	"testing"
)

func testFormat() Format {
	return Format{SampleRate: 16000, SampleWidth: 2}
}

func makePCM(t *testing.T, format Format, durationMS int64) []byte {
	t.Helper()
	n := int(durationMS) * format.BytesPerMS()
	data := make([]byte, n)
	for i := range data {
		data[i] = byte(i % 251)
	}
	return data
}

func TestBufferDurationMS(t *testing.T) {
	format := testFormat()
	buf, err := NewBuffer(format, makePCM(t, format, 2500))
	if err != nil {
		t.Fatal(err)
	}
	if got := buf.DurationMS(); got != 2500 {
		t.Fatalf("DurationMS = %d, want 2500", got)
	}
}

func TestExportFullBuffer(t *testing.T) {
	format := testFormat()
	pcm := makePCM(t, format, 1000)
	buf, err := NewBuffer(format, pcm)
	if err != nil {
		t.Fatal(err)
	}
	if got := buf.Export(0, buf.DurationMS()); !bytes.Equal(got, pcm) {
		t.Fatalf("Export(0, duration) returned %d bytes, want %d", len(got), len(pcm))
	}
}

func TestExportEmptyRange(t *testing.T) {
	format := testFormat()
	buf, err := NewBuffer(format, makePCM(t, format, 1000))
	if err != nil {
		t.Fatal(err)
	}
	for _, x := range []int64{0, 1, 500, 999, 1000} {
		if got := buf.Export(x, x); len(got) != 0 {
			t.Errorf("Export(%d, %d) = %d bytes, want 0", x, x, len(got))
		}
	}
}

func TestExportClampsPastEnd(t *testing.T) {
	format := testFormat()
	pcm := makePCM(t, format, 1000)
	buf, err := NewBuffer(format, pcm)
	if err != nil {
		t.Fatal(err)
	}
	got := buf.Export(500, 99999)
	want := pcm[500*int64(format.BytesPerMS()):]
	if !bytes.Equal(got, want) {
		t.Fatalf("clamped export returned %d bytes, want %d", len(got), len(want))
	}
}

func TestExportByteOffsets(t *testing.T) {
	// 8 kHz keeps the math visible at another rate.
	format := Format{SampleRate: 8000, SampleWidth: 2}
	pcm := makePCM(t, format, 100)
	buf, err := NewBuffer(format, pcm)
	if err != nil {
		t.Fatal(err)
	}
	got := buf.Export(10, 20)
	want := pcm[10*8*2 : 20*8*2]
	if !bytes.Equal(got, want) {
		t.Fatalf("Export(10,20) mismatch: %d bytes, want %d", len(got), len(want))
	}
}

func TestNewBufferRejectsBadFormat(t *testing.T) {
	if _, err := NewBuffer(Format{SampleRate: 44100, SampleWidth: 2}, nil); err == nil {
		t.Error("expected error for non-millisecond-aligned rate")
	}
	if _, err := NewBuffer(Format{SampleRate: 16000, SampleWidth: 0}, nil); err == nil {
		t.Error("expected error for zero sample width")
	}
}

func TestWAVRoundTrip(t *testing.T) {
	format := testFormat()
	pcm := makePCM(t, format, 750)
	path := filepath.Join(t.TempDir(), "segment.wav")
	if err := WriteWAVFile(path, format, pcm); err != nil {
		t.Fatal(err)
	}
	buf, err := ReadWAVFile(path, format)
	if err != nil {
		t.Fatal(err)
	}
	if buf.DurationMS() != 750 {
		t.Errorf("DurationMS = %d, want 750", buf.DurationMS())
	}
	if !bytes.Equal(buf.Export(0, buf.DurationMS()), pcm) {
		t.Error("round-tripped PCM differs from input")
	}
}

func TestReadWAVFileFormatMismatch(t *testing.T) {
	format := testFormat()
	path := filepath.Join(t.TempDir(), "wrong.wav")
	if err := WriteWAVFile(path, Format{SampleRate: 8000, SampleWidth: 2}, makePCM(t, Format{SampleRate: 8000, SampleWidth: 2}, 100)); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadWAVFile(path, format); err == nil {
		t.Fatal("expected sample rate mismatch error")
	}
}
