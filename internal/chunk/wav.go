package chunk

import (
	"encoding/binary"
	"fmt"
)

// wavInfo holds the fields of a RIFF/WAVE header needed to cut the file
// on sample-frame boundaries and to translate byte offsets into time.
type wavInfo struct {
	sampleRate    int
	channels      int
	bitsPerSample int
	blockAlign    int
	byteRate      int
	dataOffset    int64 // first byte of PCM data
	dataSize      int64
}

func (w *wavInfo) duration() float64 {
	if w.byteRate <= 0 {
		return 0
	}
	return float64(w.dataSize) / float64(w.byteRate)
}

// timeAt converts an absolute byte offset into seconds from file start.
func (w *wavInfo) timeAt(offset int64) float64 {
	if w.byteRate <= 0 {
		return 0
	}
	rel := offset - w.dataOffset
	if rel < 0 {
		rel = 0
	}
	return float64(rel) / float64(w.byteRate)
}

// parseWAV walks the RIFF chunk list looking for "fmt " and "data".
func parseWAV(data []byte) (*wavInfo, error) {
	if len(data) < 44 {
		return nil, fmt.Errorf("file too short for RIFF header (%d bytes)", len(data))
	}

	info := &wavInfo{}
	pos := int64(12) // past "RIFF" + size + "WAVE"
	for pos+8 <= int64(len(data)) {
		id := string(data[pos : pos+4])
		size := int64(binary.LittleEndian.Uint32(data[pos+4 : pos+8]))
		body := pos + 8

		switch id {
		case "fmt ":
			if body+16 > int64(len(data)) {
				return nil, fmt.Errorf("truncated fmt chunk")
			}
			info.channels = int(binary.LittleEndian.Uint16(data[body+2 : body+4]))
			info.sampleRate = int(binary.LittleEndian.Uint32(data[body+4 : body+8]))
			info.byteRate = int(binary.LittleEndian.Uint32(data[body+8 : body+12]))
			info.blockAlign = int(binary.LittleEndian.Uint16(data[body+12 : body+14]))
			info.bitsPerSample = int(binary.LittleEndian.Uint16(data[body+14 : body+16]))
		case "data":
			info.dataOffset = body
			info.dataSize = size
			if info.dataOffset+info.dataSize > int64(len(data)) {
				info.dataSize = int64(len(data)) - info.dataOffset
			}
		}

		// Chunks are word-aligned
		pos = body + size
		if size%2 == 1 {
			pos++
		}
	}

	if info.dataOffset == 0 {
		return nil, fmt.Errorf("no data chunk found")
	}
	if info.blockAlign <= 0 || info.byteRate <= 0 {
		return nil, fmt.Errorf("invalid fmt chunk (blockAlign=%d byteRate=%d)", info.blockAlign, info.byteRate)
	}
	return info, nil
}

// silenceWindowBytes bounds how far back from a byte-limit boundary the
// planner searches for a quiet cut point.
const silenceWindowBytes = 256 * 1024

// safeCutWAV returns the best cut offset at or before target: the start
// of the quietest 20ms frame inside the trailing search window, aligned
// to a sample-frame boundary. Falls back to plain alignment when the
// window is empty or the audio is not 16-bit PCM.
func safeCutWAV(data []byte, info *wavInfo, target int64) int64 {
	aligned := alignToBlock(info, target)

	if info.bitsPerSample != 16 {
		return aligned
	}

	frame := int64(info.sampleRate/50) * int64(info.blockAlign) // 20ms
	if frame <= 0 {
		return aligned
	}
	windowStart := aligned - silenceWindowBytes
	if windowStart < info.dataOffset {
		windowStart = info.dataOffset
	}
	windowStart = alignToBlock(info, windowStart)

	best := aligned
	bestEnergy := int64(-1)
	var total, frames int64
	for pos := windowStart; pos+frame <= aligned; pos += frame {
		e := frameEnergy(data[pos : pos+frame])
		total += e
		frames++
		// Ties go to the later frame so the cut stays near the target.
		if bestEnergy < 0 || e <= bestEnergy {
			bestEnergy = e
			best = pos
		}
	}
	if frames == 0 || best <= info.dataOffset {
		return aligned
	}
	// Only move the cut when the quiet frame is actually quiet relative
	// to the window, otherwise keep the aligned boundary.
	if bestEnergy*4 > total/frames {
		return aligned
	}
	return best
}

// alignToBlock snaps an offset down to the nearest sample-frame boundary
// so no PCM frame is split across segments.
func alignToBlock(info *wavInfo, offset int64) int64 {
	rel := offset - info.dataOffset
	if rel < 0 {
		return info.dataOffset
	}
	rel -= rel % int64(info.blockAlign)
	return info.dataOffset + rel
}

// frameEnergy sums absolute 16-bit little-endian sample amplitudes.
func frameEnergy(frame []byte) int64 {
	var sum int64
	for i := 0; i+1 < len(frame); i += 2 {
		s := int16(binary.LittleEndian.Uint16(frame[i : i+2]))
		if s < 0 {
			sum -= int64(s)
		} else {
			sum += int64(s)
		}
	}
	return sum
}
