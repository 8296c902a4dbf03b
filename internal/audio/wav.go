package audio

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
)

const wavHeaderSize = 44

// WAVBytes wraps raw PCM data in a minimal single-channel RIFF/WAVE
// container matching the given format.
func WAVBytes(format Format, pcm []byte) []byte {
	var buf bytes.Buffer
	buf.Grow(wavHeaderSize + len(pcm))

	byteRate := format.SampleRate * format.SampleWidth
	blockAlign := format.SampleWidth
	bitsPerSample := format.SampleWidth * 8

	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(36+len(pcm)))
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	binary.Write(&buf, binary.LittleEndian, uint16(1)) // PCM
	binary.Write(&buf, binary.LittleEndian, uint16(1)) // mono
	binary.Write(&buf, binary.LittleEndian, uint32(format.SampleRate))
	binary.Write(&buf, binary.LittleEndian, uint32(byteRate))
	binary.Write(&buf, binary.LittleEndian, uint16(blockAlign))
	binary.Write(&buf, binary.LittleEndian, uint16(bitsPerSample))

	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, uint32(len(pcm)))
	buf.Write(pcm)

	return buf.Bytes()
}

// WriteWAVFile writes a segment as a standalone WAV file.
func WriteWAVFile(path string, format Format, pcm []byte) error {
	if err := os.WriteFile(path, WAVBytes(format, pcm), 0o644); err != nil {
		return fmt.Errorf("write wav: %w", err)
	}
	return nil
}

// ReadWAVFile loads a transcoded WAV file into a Buffer, verifying the
// container matches the expected format. Only canonical 44-byte-header
// PCM files are accepted, which is what the transcode step produces.
func ReadWAVFile(path string, format Format) (*Buffer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read wav: %w", err)
	}
	pcm, err := parseWAV(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return NewBuffer(format, pcm)
}

func parseWAV(data []byte, format Format) ([]byte, error) {
	if len(data) < wavHeaderSize {
		return nil, fmt.Errorf("wav too short: %d bytes", len(data))
	}
	if string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return nil, fmt.Errorf("not a RIFF/WAVE file")
	}

	// Walk chunks to find fmt and data; ffmpeg sometimes emits a LIST
	// chunk between them.
	var pcm []byte
	sawFmt := false
	for off := 12; off+8 <= len(data); {
		id := string(data[off : off+4])
		size := int(binary.LittleEndian.Uint32(data[off+4 : off+8]))
		body := off + 8
		if body+size > len(data) {
			size = len(data) - body
		}
		switch id {
		case "fmt ":
			if size < 16 {
				return nil, fmt.Errorf("fmt chunk too short")
			}
			channels := binary.LittleEndian.Uint16(data[body+2 : body+4])
			rate := binary.LittleEndian.Uint32(data[body+4 : body+8])
			bits := binary.LittleEndian.Uint16(data[body+14 : body+16])
			if channels != 1 {
				return nil, fmt.Errorf("expected mono, got %d channels", channels)
			}
			if int(rate) != format.SampleRate {
				return nil, fmt.Errorf("sample rate %d, expected %d", rate, format.SampleRate)
			}
			if int(bits) != format.SampleWidth*8 {
				return nil, fmt.Errorf("sample depth %d bits, expected %d", bits, format.SampleWidth*8)
			}
			sawFmt = true
		case "data":
			pcm = data[body : body+size]
		}
		off = body + size
		if size%2 == 1 {
			off++
		}
	}
	if !sawFmt {
		return nil, fmt.Errorf("missing fmt chunk")
	}
	if pcm == nil {
		return nil, fmt.Errorf("missing data chunk")
	}
	return pcm, nil
}
