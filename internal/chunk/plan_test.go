package chunk

import (
	"encoding/binary"
	"errors"
	"testing"
)

// buildWAV assembles a minimal RIFF/WAVE file: 8kHz mono 16-bit PCM.
func buildWAV(t *testing.T, pcm []byte) []byte {
	t.Helper()
	const (
		sampleRate = 8000
		channels   = 1
		bits       = 16
	)
	blockAlign := channels * bits / 8
	byteRate := sampleRate * blockAlign

	buf := make([]byte, 0, 44+len(pcm))
	buf = append(buf, []byte("RIFF")...)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(36+len(pcm)))
	buf = append(buf, []byte("WAVE")...)
	buf = append(buf, []byte("fmt ")...)
	buf = binary.LittleEndian.AppendUint32(buf, 16)
	buf = binary.LittleEndian.AppendUint16(buf, 1) // PCM
	buf = binary.LittleEndian.AppendUint16(buf, channels)
	buf = binary.LittleEndian.AppendUint32(buf, sampleRate)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(byteRate))
	buf = binary.LittleEndian.AppendUint16(buf, uint16(blockAlign))
	buf = binary.LittleEndian.AppendUint16(buf, bits)
	buf = append(buf, []byte("data")...)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(pcm)))
	buf = append(buf, pcm...)
	return buf
}

// loudPCM fills a buffer with constant high-amplitude samples.
func loudPCM(n int) []byte {
	pcm := make([]byte, n)
	for i := 0; i+1 < n; i += 2 {
		binary.LittleEndian.PutUint16(pcm[i:], 0x4000)
	}
	return pcm
}

func TestProbeDetectsFormats(t *testing.T) {
	cases := []struct {
		name     string
		fileName string
		data     []byte
		want     string
	}{
		{"wav magic", "a.wav", buildWAV(t, loudPCM(512)), "wav"},
		{"flac magic", "a.flac", append([]byte("fLaC"), make([]byte, 64)...), "flac"},
		{"ogg magic", "a.ogg", append([]byte("OggS"), make([]byte, 64)...), "ogg"},
		{"id3 tag", "a.mp3", append([]byte("ID3\x04\x00\x00\x00\x00\x00\x00"), 0xFF, 0xFB, 0x90, 0x00), "mp3"},
		{"mp3 frame sync", "a.mp3", []byte{0xFF, 0xFB, 0x90, 0x00, 0x00, 0x00}, "mp3"},
		{"m4a ftyp", "a.m4a", append([]byte{0x00, 0x00, 0x00, 0x20}, append([]byte("ftypM4A "), make([]byte, 16)...)...), "m4a"},
		{"extension fallback", "a.opus", []byte{0x01, 0x02, 0x03, 0x04}, "opus"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f, err := Probe(tc.fileName, tc.data)
			if err != nil {
				t.Fatalf("Probe failed: %v", err)
			}
			if f.Format != tc.want {
				t.Errorf("format = %q, want %q", f.Format, tc.want)
			}
		})
	}
}

func TestProbeEmptyFile(t *testing.T) {
	if _, err := Probe("empty.wav", nil); err == nil {
		t.Fatal("expected error for empty file")
	}
}

func TestProbeWAVDuration(t *testing.T) {
	// 16000 bytes of PCM at byteRate 16000 is exactly one second.
	f, err := Probe("one-second.wav", buildWAV(t, loudPCM(16000)))
	if err != nil {
		t.Fatalf("Probe failed: %v", err)
	}
	if f.Duration != 1.0 {
		t.Errorf("duration = %v, want 1.0", f.Duration)
	}
}

func TestPlanSingleSegmentWhenWithinLimit(t *testing.T) {
	f, err := Probe("small.wav", buildWAV(t, loudPCM(1000)))
	if err != nil {
		t.Fatalf("Probe failed: %v", err)
	}

	segs, err := Plan(f, f.Size())
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}
	if len(segs) != 1 {
		t.Fatalf("got %d segments, want 1", len(segs))
	}
	seg := segs[0]
	if seg.Index != 0 || seg.ByteStart != 0 || seg.ByteEnd != f.Size() {
		t.Errorf("segment does not span the whole file: %+v", seg)
	}
	if seg.TimeEnd != f.Duration {
		t.Errorf("TimeEnd = %v, want %v", seg.TimeEnd, f.Duration)
	}
}

func TestPlanSplitCoversFileContiguously(t *testing.T) {
	f, err := Probe("big.wav", buildWAV(t, loudPCM(30000)))
	if err != nil {
		t.Fatalf("Probe failed: %v", err)
	}

	const limit = 12000
	segs, err := Plan(f, limit)
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}

	want := int((f.Size() + limit - 1) / limit)
	if len(segs) != want {
		t.Fatalf("got %d segments, want %d", len(segs), want)
	}

	var prevEnd int64
	for i, seg := range segs {
		if seg.Index != i {
			t.Errorf("segment %d has index %d", i, seg.Index)
		}
		if seg.ByteStart != prevEnd {
			t.Errorf("segment %d starts at %d, previous ended at %d", i, seg.ByteStart, prevEnd)
		}
		if seg.ByteEnd-seg.ByteStart > limit {
			t.Errorf("segment %d is %d bytes, over the %d limit", i, seg.ByteEnd-seg.ByteStart, limit)
		}
		if int64(len(seg.Payload)) != seg.ByteEnd-seg.ByteStart {
			t.Errorf("segment %d payload length mismatch", i)
		}
		prevEnd = seg.ByteEnd
	}
	if prevEnd != f.Size() {
		t.Errorf("segments end at %d, file size is %d", prevEnd, f.Size())
	}
}

func TestPlanCutsAtQuietRegion(t *testing.T) {
	// Loud audio with one silent band ending 2000 bytes before the first
	// hard boundary. The planner should cut inside the silence.
	pcm := loudPCM(30000)
	const limit = 12000
	dataOffset := 44
	quietStart := limit - dataOffset - 4000
	quietEnd := limit - dataOffset - 2000
	for i := quietStart; i < quietEnd; i++ {
		pcm[i] = 0
	}

	f, err := Probe("quiet.wav", buildWAV(t, pcm))
	if err != nil {
		t.Fatalf("Probe failed: %v", err)
	}
	segs, err := Plan(f, limit)
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}

	cut := segs[0].ByteEnd
	if cut < int64(dataOffset+quietStart) || cut > int64(dataOffset+quietEnd) {
		t.Errorf("cut at %d, want inside quiet band [%d, %d]",
			cut, dataOffset+quietStart, dataOffset+quietEnd)
	}
	if (cut-int64(dataOffset))%2 != 0 {
		t.Errorf("cut at %d is not sample-frame aligned", cut)
	}
}

func TestPlanMP3CutsOnFrameSync(t *testing.T) {
	// Sync bytes every 417 bytes, the frame size of 128kbps at 44.1kHz.
	data := make([]byte, 25000)
	for i := 0; i+1 < len(data); i += 417 {
		data[i] = 0xFF
		data[i+1] = 0xFB
	}

	f, err := Probe("cbr.mp3", data)
	if err != nil {
		t.Fatalf("Probe failed: %v", err)
	}
	if f.Format != "mp3" {
		t.Fatalf("format = %q, want mp3", f.Format)
	}

	const limit = 10000
	segs, err := Plan(f, limit)
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}
	if len(segs) < 3 {
		t.Fatalf("got %d segments, want at least 3", len(segs))
	}
	for _, seg := range segs[1:] {
		start := seg.ByteStart
		if data[start] != 0xFF || data[start+1]&0xE0 != 0xE0 {
			t.Errorf("segment %d starts at %d, not on a frame sync", seg.Index, start)
		}
	}
}

func TestPlanRejectsUnsplittableFormat(t *testing.T) {
	data := append([]byte("fLaC"), make([]byte, 5000)...)
	f, err := Probe("a.flac", data)
	if err != nil {
		t.Fatalf("Probe failed: %v", err)
	}

	_, err = Plan(f, 1000)
	var ufe *UnsupportedFormatError
	if !errors.As(err, &ufe) {
		t.Fatalf("expected UnsupportedFormatError, got %v", err)
	}
	if ufe.Format != "flac" {
		t.Errorf("error format = %q, want flac", ufe.Format)
	}
}

func TestSegmentByteRange(t *testing.T) {
	seg := Segment{ByteStart: 100, ByteEnd: 200}
	if got := seg.ByteRange(); got != "bytes 100-199" {
		t.Errorf("ByteRange = %q, want %q", got, "bytes 100-199")
	}
}
