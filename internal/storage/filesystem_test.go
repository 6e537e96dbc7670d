package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/audioscribe/backend/internal/correct"
	"github.com/audioscribe/backend/internal/transcript"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	s, err := NewStore(filepath.Join(dir, "uploads"), filepath.Join(dir, "out"))
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	return s
}

func sampleTranscript() *transcript.Canonical {
	alt := transcript.Alternative{Transcript: "hello world", Confidence: 0.93}
	return &transcript.Canonical{
		Results: transcript.Results{
			Transcripts: []transcript.Alternative{alt},
			Channels:    []transcript.Channel{{Alternatives: []transcript.Alternative{alt}}},
		},
		Metadata: transcript.Metadata{FileName: "meeting.wav", ModelUsed: "nova-2"},
		Entities: map[string][]string{"person": {"Ada"}},
	}
}

func TestSaveAndLoadRaw(t *testing.T) {
	s := newTestStore(t)

	jsonPath, err := s.SaveRaw("meeting.wav", sampleTranscript())
	if err != nil {
		t.Fatalf("SaveRaw failed: %v", err)
	}
	if filepath.Base(jsonPath) != "meeting_raw_transcript.json" {
		t.Errorf("json path = %s", jsonPath)
	}

	// Plain-text sidecar carries the transcript text
	txt, err := os.ReadFile(filepath.Join(s.OutputDir, "meeting_raw_transcript.txt"))
	if err != nil {
		t.Fatalf("read txt sidecar: %v", err)
	}
	if strings.TrimSpace(string(txt)) != "hello world" {
		t.Errorf("sidecar = %q", txt)
	}

	loaded, err := s.LoadRaw("meeting.wav")
	if err != nil {
		t.Fatalf("LoadRaw failed: %v", err)
	}
	if loaded.Text() != "hello world" {
		t.Errorf("loaded text = %q", loaded.Text())
	}
	if got := loaded.Entities["person"]; len(got) != 1 || got[0] != "Ada" {
		t.Errorf("loaded entities = %v", loaded.Entities)
	}
}

func TestSaveCorrected(t *testing.T) {
	s := newTestStore(t)

	c := &correct.Correction{
		Original:  "helo wrld",
		Corrected: "hello world",
		ModelUsed: "gpt-4o",
		Timestamp: time.Now().UTC(),
	}
	jsonPath, err := s.SaveCorrected("meeting.wav", c)
	if err != nil {
		t.Fatalf("SaveCorrected failed: %v", err)
	}
	if filepath.Base(jsonPath) != "meeting_corrected_transcript.json" {
		t.Errorf("json path = %s", jsonPath)
	}

	txt, err := os.ReadFile(filepath.Join(s.OutputDir, "meeting_corrected_transcript.txt"))
	if err != nil {
		t.Fatalf("read txt sidecar: %v", err)
	}
	if strings.TrimSpace(string(txt)) != "hello world" {
		t.Errorf("sidecar = %q", txt)
	}
}

func TestSaveUploadSanitizesName(t *testing.T) {
	s := newTestStore(t)

	path, err := s.SaveUpload("job1", "../outside file?.wav", []byte("data"))
	if err != nil {
		t.Fatalf("SaveUpload failed: %v", err)
	}
	if filepath.Dir(path) != s.UploadDir {
		t.Errorf("upload escaped the upload dir: %s", path)
	}
	base := filepath.Base(path)
	if strings.ContainsAny(base, "/?* ") {
		t.Errorf("unsanitized name: %s", base)
	}
}

func TestOutputPathRejectsTraversal(t *testing.T) {
	s := newTestStore(t)

	if _, err := s.OutputPath("../secrets.txt"); err == nil {
		t.Error("expected traversal to be rejected")
	}
	if _, err := s.OutputPath("meeting_raw_transcript.json"); err != nil {
		t.Errorf("plain name rejected: %v", err)
	}
}

func TestListOutputs(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.SaveRaw("a.wav", sampleTranscript()); err != nil {
		t.Fatal(err)
	}

	entries, err := s.ListOutputs()
	if err != nil {
		t.Fatalf("ListOutputs failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2 (json + txt)", len(entries))
	}
}

func TestIsAudioFile(t *testing.T) {
	cases := map[string]bool{
		"a.WAV": true, "b.mp3": true, "c.flac": true,
		"d.srt": false, "e": false,
	}
	for name, want := range cases {
		if got := IsAudioFile(name); got != want {
			t.Errorf("IsAudioFile(%q) = %v, want %v", name, got, want)
		}
	}
}
