package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/audioscribe/backend/internal/chunk"
	"github.com/audioscribe/backend/internal/db"
	"github.com/audioscribe/backend/internal/job"
	"github.com/audioscribe/backend/internal/provider"
	"github.com/audioscribe/backend/internal/storage"
	"github.com/audioscribe/backend/internal/transcribe"
)

type stubAdapter struct{ name string }

func (s *stubAdapter) Transcribe(ctx context.Context, seg chunk.Segment, opts provider.Options) (*provider.Result, error) {
	return &provider.Result{Kind: provider.KindWhisper, Whisper: &provider.WhisperResponse{Text: "ok"}}, nil
}
func (s *stubAdapter) Name() string                  { return s.name }
func (s *stubAdapter) MaxPayloadBytes() int64        { return 1 << 30 }
func (s *stubAdapter) Supports(provider.Option) bool { return true }

func newUploadFixture(t *testing.T) (*TranscribeHandler, *db.Database) {
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
	service := transcribe.NewService(registry, store, database, nil, 1)

	queue := job.NewJobQueue(database.DB())
	t.Cleanup(queue.Stop)

	return NewTranscribeHandler(service, store, queue), database
}

func uploadRequest(t *testing.T, fields map[string]string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile("file", "meeting.mp3")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	fw.Write(append([]byte{0xFF, 0xFB, 0x90, 0x64}, make([]byte, 512)...))
	for k, v := range fields {
		w.WriteField(k, v)
	}
	w.Close()

	req := httptest.NewRequest("POST", "/api/transcribe", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func TestCreateRejectsMissingProvider(t *testing.T) {
	handler, _ := newUploadFixture(t)

	rec := httptest.NewRecorder()
	handler.Create(rec, uploadRequest(t, nil))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 without a provider or default", rec.Code)
	}
}

func TestCreateUsesStoredDefaultProvider(t *testing.T) {
	handler, database := newUploadFixture(t)
	database.SetSetting("default_provider", "mock")

	rec := httptest.NewRecorder()
	handler.Create(rec, uploadRequest(t, nil))

	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202 (body %s)", rec.Code, rec.Body.String())
	}

	var j job.Job
	if err := json.Unmarshal(rec.Body.Bytes(), &j); err != nil {
		t.Fatalf("decode job: %v", err)
	}
	var params job.TranscribeParams
	if err := json.Unmarshal(j.Params, &params); err != nil {
		t.Fatalf("decode params: %v", err)
	}
	if params.Provider != "mock" {
		t.Errorf("provider = %q, want the stored default", params.Provider)
	}
	if params.FileName != "meeting.mp3" {
		t.Errorf("file name = %q, want the uploaded name", params.FileName)
	}
}

func TestCreateRejectsUnknownProvider(t *testing.T) {
	handler, _ := newUploadFixture(t)

	rec := httptest.NewRecorder()
	handler.Create(rec, uploadRequest(t, map[string]string{"provider": "azure"}))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 for an unregistered provider", rec.Code)
	}
}
