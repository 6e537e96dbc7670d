package chunk

// MPEG-1 Layer III bitrates in kbps, indexed by the header bitrate field.
var mp3Bitrates = [16]int{0, 32, 40, 48, 56, 64, 80, 96, 112, 128, 160, 192, 224, 256, 320, 0}

// estimateMP3Duration derives a duration from the first frame header's
// bitrate, assuming constant bitrate. Returns 0 when no frame is found.
func estimateMP3Duration(data []byte) float64 {
	start := mp3AudioStart(data)
	for i := start; i+4 <= int64(len(data)); i++ {
		if data[i] != 0xFF || data[i+1]&0xE0 != 0xE0 {
			continue
		}
		bitrate := mp3Bitrates[data[i+2]>>4]
		if bitrate == 0 {
			continue
		}
		return float64(int64(len(data))-start) * 8 / float64(bitrate*1000)
	}
	return 0
}

// mp3AudioStart skips a leading ID3v2 tag if present.
func mp3AudioStart(data []byte) int64 {
	if len(data) < 10 || data[0] != 'I' || data[1] != 'D' || data[2] != '3' {
		return 0
	}
	// Syncsafe 28-bit tag size
	size := int64(data[6]&0x7F)<<21 | int64(data[7]&0x7F)<<14 | int64(data[8]&0x7F)<<7 | int64(data[9]&0x7F)
	return 10 + size
}

// safeCutMP3 walks back from target to the previous frame-sync byte so a
// segment never begins mid-frame. Falls back to the target itself when
// no sync is found inside the search window.
func safeCutMP3(data []byte, target int64) int64 {
	low := target - silenceWindowBytes
	if low < 1 {
		low = 1
	}
	for pos := target; pos >= low; pos-- {
		if pos+1 < int64(len(data)) && data[pos] == 0xFF && data[pos+1]&0xE0 == 0xE0 {
			return pos
		}
	}
	return target
}
