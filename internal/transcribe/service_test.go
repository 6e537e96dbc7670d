package transcribe

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/audioscribe/backend/internal/chunk"
	"github.com/audioscribe/backend/internal/db"
	"github.com/audioscribe/backend/internal/job"
	"github.com/audioscribe/backend/internal/provider"
	"github.com/audioscribe/backend/internal/storage"
)

type stubAdapter struct{ name string }

func (s *stubAdapter) Transcribe(ctx context.Context, seg chunk.Segment, opts provider.Options) (*provider.Result, error) {
	return &provider.Result{Kind: provider.KindWhisper, Whisper: &provider.WhisperResponse{Text: "hello there"}}, nil
}
func (s *stubAdapter) Name() string                  { return s.name }
func (s *stubAdapter) MaxPayloadBytes() int64        { return 1 << 30 }
func (s *stubAdapter) Supports(provider.Option) bool { return true }

func newTestService(t *testing.T) (*Service, *db.Database, *storage.Store) {
	t.Helper()
	dir := t.TempDir()
	database, err := db.NewSQLite(filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	store, err := storage.NewStore(filepath.Join(dir, "uploads"), filepath.Join(dir, "outputs"))
	if err != nil {
		t.Fatalf("create store: %v", err)
	}

	registry := provider.NewRegistry(&stubAdapter{name: "mock"})
	return NewService(registry, store, database, nil, 1), database, store
}

func mp3Bytes() []byte {
	return append([]byte{0xFF, 0xFB, 0x90, 0x64}, make([]byte, 1024)...)
}

func TestApplyDefaultsFromSettings(t *testing.T) {
	svc, database, _ := newTestService(t)
	database.SetSetting("default_provider", "mock")
	database.SetSetting("default_language", "en")
	database.SetSetting("mock_model", "tiny")

	params := job.TranscribeParams{}
	svc.ApplyDefaults(&params)

	if params.Provider != "mock" {
		t.Errorf("provider = %q, want stored default", params.Provider)
	}
	if params.Language != "en" {
		t.Errorf("language = %q, want stored default", params.Language)
	}
	if params.Model != "tiny" {
		t.Errorf("model = %q, want stored per-provider default", params.Model)
	}
}

func TestApplyDefaultsKeepsExplicitValues(t *testing.T) {
	svc, database, _ := newTestService(t)
	database.SetSetting("default_provider", "mock")
	database.SetSetting("default_language", "en")
	database.SetSetting("deepgram_model", "nova-2")

	params := job.TranscribeParams{Provider: "deepgram", Language: "de", Model: "nova-3"}
	svc.ApplyDefaults(&params)

	if params.Provider != "deepgram" || params.Language != "de" || params.Model != "nova-3" {
		t.Errorf("explicit params changed: %+v", params)
	}
}

func TestApplyDefaultsWithoutSettings(t *testing.T) {
	svc, _, _ := newTestService(t)

	params := job.TranscribeParams{}
	svc.ApplyDefaults(&params)

	if params.Provider != "" {
		t.Errorf("provider = %q, want empty when nothing is configured", params.Provider)
	}
}

func TestRunRecordsOriginalFileName(t *testing.T) {
	svc, database, store := newTestService(t)

	path, err := store.SaveUpload("job-1", "board meeting.mp3", mp3Bytes())
	if err != nil {
		t.Fatalf("save upload: %v", err)
	}

	params := job.TranscribeParams{FileName: "board meeting.mp3", Provider: "mock"}
	res, err := svc.Run(context.Background(), "job-1", path, params, func(float64) {})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	rec, err := database.GetTranscript(res.TranscriptID)
	if err != nil {
		t.Fatalf("load record: %v", err)
	}
	if rec.FileName != "board meeting.mp3" {
		t.Errorf("record file name = %q, want the uploaded name", rec.FileName)
	}

	tr, err := store.LoadCanonical(res.RawPath)
	if err != nil {
		t.Fatalf("load transcript: %v", err)
	}
	if tr.Metadata.FileName != "board meeting.mp3" {
		t.Errorf("metadata file name = %q, want the uploaded name", tr.Metadata.FileName)
	}
	if strings.Contains(tr.Metadata.FileName, "job-1") {
		t.Errorf("metadata file name %q leaks the stored upload prefix", tr.Metadata.FileName)
	}

	// Outputs keep the job-scoped name so same-named uploads cannot collide.
	if base := filepath.Base(res.RawPath); !strings.HasPrefix(base, "job-1_") {
		t.Errorf("output file %q not scoped to the job", base)
	}
}
