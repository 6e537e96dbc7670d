package chunk

import (
	"fmt"
)

// Segment is one contiguous byte/time slice of an audio file, submitted
// to a provider independently. Indexes are 0-based and contiguous;
// segments never overlap and together span the file exactly once.
type Segment struct {
	Index     int
	ByteStart int64
	ByteEnd   int64 // exclusive
	TimeStart float64
	TimeEnd   float64
	Payload   []byte
}

// ByteRange renders the segment's byte span for warnings and logs.
func (s Segment) ByteRange() string {
	return fmt.Sprintf("bytes %d-%d", s.ByteStart, s.ByteEnd-1)
}

// Plan partitions file into segments no larger than maxPayloadBytes.
// Files within the limit yield a single whole-file segment. Larger files
// are cut at the nearest safe boundary at or before each byte-limit
// boundary: a quiet sample-frame for WAV, a frame-sync byte for MP3.
// Formats without recoverable offsets cannot be split and fail with
// UnsupportedFormatError.
func Plan(file *AudioFile, maxPayloadBytes int64) ([]Segment, error) {
	if maxPayloadBytes <= 0 {
		return nil, fmt.Errorf("invalid payload limit: %d", maxPayloadBytes)
	}

	size := file.Size()
	if size <= maxPayloadBytes {
		return []Segment{{
			Index:     0,
			ByteStart: 0,
			ByteEnd:   size,
			TimeStart: 0,
			TimeEnd:   file.Duration,
			Payload:   file.Data,
		}}, nil
	}

	switch file.Format {
	case "wav", "mp3":
	default:
		return nil, &UnsupportedFormatError{Format: file.Format}
	}

	count := int((size + maxPayloadBytes - 1) / maxPayloadBytes)
	cuts := []int64{0}
	// Each cut advances from the previous one so no segment exceeds the
	// payload limit even when a safe cut lands before the hard boundary.
	for size-cuts[len(cuts)-1] > maxPayloadBytes {
		target := cuts[len(cuts)-1] + maxPayloadBytes
		var cut int64
		switch file.Format {
		case "wav":
			cut = safeCutWAV(file.Data, file.wav, target)
		case "mp3":
			cut = safeCutMP3(file.Data, target)
		}
		if cut > target || cut <= cuts[len(cuts)-1] {
			cut = target
		}
		cuts = append(cuts, cut)
	}
	cuts = append(cuts, size)

	segments := make([]Segment, 0, count)
	for i := 0; i < len(cuts)-1; i++ {
		start, end := cuts[i], cuts[i+1]
		segments = append(segments, Segment{
			Index:     i,
			ByteStart: start,
			ByteEnd:   end,
			TimeStart: file.timeAt(start),
			TimeEnd:   file.timeAt(end),
			Payload:   file.Data[start:end],
		})
	}
	return segments, nil
}

// timeAt maps an absolute byte offset onto the file timeline.
func (f *AudioFile) timeAt(offset int64) float64 {
	if f.wav != nil {
		if offset >= f.Size() {
			return f.Duration
		}
		return f.wav.timeAt(offset)
	}
	// CBR approximation for non-WAV containers.
	if f.Size() == 0 {
		return 0
	}
	return f.Duration * float64(offset) / float64(f.Size())
}
