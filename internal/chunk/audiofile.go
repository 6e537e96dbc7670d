package chunk

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
)

// AudioFile is an audio file read into memory, with whatever container
// metadata could be recovered from its header bytes. Immutable once
// probed; callers pass it by reference into Plan.
type AudioFile struct {
	Name     string
	Data     []byte
	Format   string  // "wav", "mp3", "flac", "ogg", "m4a", ...
	Duration float64 // estimated seconds, 0 when unknown

	wav *wavInfo // set for WAV files, nil otherwise
}

// Size returns the file length in bytes.
func (f *AudioFile) Size() int64 {
	return int64(len(f.Data))
}

// UnsupportedFormatError is returned when a file must be split but its
// container format does not expose the offsets needed for safe cuts.
type UnsupportedFormatError struct {
	Format string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported audio format for chunking: %q", e.Format)
}

// Probe inspects the header bytes and builds an AudioFile. The format is
// detected from magic bytes first, falling back to the file extension.
func Probe(name string, data []byte) (*AudioFile, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty audio file: %s", name)
	}

	f := &AudioFile{Name: name, Data: data}

	switch {
	case len(data) >= 12 && bytes.Equal(data[0:4], []byte("RIFF")) && bytes.Equal(data[8:12], []byte("WAVE")):
		f.Format = "wav"
		info, err := parseWAV(data)
		if err != nil {
			return nil, fmt.Errorf("parse wav header: %w", err)
		}
		f.wav = info
		f.Duration = info.duration()
	case len(data) >= 4 && bytes.Equal(data[0:4], []byte("fLaC")):
		f.Format = "flac"
	case len(data) >= 4 && bytes.Equal(data[0:4], []byte("OggS")):
		f.Format = "ogg"
	case len(data) >= 12 && bytes.Equal(data[4:8], []byte("ftyp")):
		f.Format = "m4a"
	case len(data) >= 3 && bytes.Equal(data[0:3], []byte("ID3")),
		len(data) >= 2 && data[0] == 0xFF && data[1]&0xE0 == 0xE0:
		f.Format = "mp3"
		f.Duration = estimateMP3Duration(data)
	default:
		f.Format = strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
	}

	return f, nil
}
