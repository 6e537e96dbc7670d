package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/audioscribe/backend/internal/job"
	"github.com/audioscribe/backend/internal/storage"
	"github.com/audioscribe/backend/internal/transcribe"
	"github.com/google/uuid"
)

// maxUploadBytes caps a single audio upload. Providers cap per-request
// payloads much lower; uploads above their limit are split into segments.
const maxUploadBytes = 2 << 30

type TranscribeHandler struct {
	service *transcribe.Service
	store   *storage.Store
	queue   *job.JobQueue
}

func NewTranscribeHandler(service *transcribe.Service, store *storage.Store, queue *job.JobQueue) *TranscribeHandler {
	return &TranscribeHandler{service: service, store: store, queue: queue}
}

// Create accepts a multipart audio upload plus transcription parameters
// and enqueues a transcription job.
func (h *TranscribeHandler) Create(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart request: "+err.Error(), http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "missing file field", http.StatusBadRequest)
		return
	}
	defer file.Close()

	if header.Filename != "" && !storage.IsAudioFile(header.Filename) {
		jsonError(w, "unsupported file type: "+header.Filename, http.StatusBadRequest)
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		jsonError(w, "read upload: "+err.Error(), http.StatusBadRequest)
		return
	}

	params, err := parseTranscribeParams(r)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	params.FileName = header.Filename
	h.service.ApplyDefaults(&params)
	if params.Provider == "" {
		jsonError(w, "missing provider and no default_provider configured", http.StatusBadRequest)
		return
	}

	// Reject unknown providers, unsplittable formats and unsupported
	// options before persisting anything.
	if err := h.service.Preflight(header.Filename, data, params); err != nil {
		jsonError(w, err.Error(), errorStatus(err))
		return
	}

	uploadID := uuid.New().String()
	path, err := h.store.SaveUpload(uploadID, header.Filename, data)
	if err != nil {
		jsonError(w, "save upload: "+err.Error(), http.StatusInternalServerError)
		return
	}

	j, err := h.queue.Enqueue(job.JobTranscribe, path, params)
	if err != nil {
		jsonError(w, "enqueue job: "+err.Error(), http.StatusInternalServerError)
		return
	}

	jsonResponse(w, j, http.StatusAccepted)
}

// ListProviders returns the registered providers and their capabilities.
func (h *TranscribeHandler) ListProviders(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, h.service.ProviderInfo(), http.StatusOK)
}

func parseTranscribeParams(r *http.Request) (job.TranscribeParams, error) {
	params := job.TranscribeParams{
		Provider:        r.FormValue("provider"),
		Model:           r.FormValue("model"),
		Language:        r.FormValue("language"),
		Punctuation:     formBool(r, "punctuation", true),
		Diarization:     formBool(r, "diarization", false),
		ProfanityFilter: formBool(r, "profanity_filter", false),
		WordTimestamps:  formBool(r, "word_timestamps", true),
		DetectTopics:    formBool(r, "detect_topics", false),
		Correct:         formBool(r, "correct", false),
	}
	if v := r.FormValue("speaker_count"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return params, errParam("speaker_count")
		}
		params.SpeakerCount = n
	}
	if v := r.FormValue("redact"); v != "" {
		for _, term := range strings.Split(v, ",") {
			term = strings.TrimSpace(term)
			if term != "" {
				params.Redact = append(params.Redact, term)
			}
		}
	}
	if v := r.FormValue("vocabulary"); v != "" {
		// comma-separated or JSON array
		if strings.HasPrefix(strings.TrimSpace(v), "[") {
			if err := json.Unmarshal([]byte(v), &params.Vocabulary); err != nil {
				return params, errParam("vocabulary")
			}
		} else {
			for _, term := range strings.Split(v, ",") {
				term = strings.TrimSpace(term)
				if term != "" {
					params.Vocabulary = append(params.Vocabulary, term)
				}
			}
		}
	}
	return params, nil
}

func formBool(r *http.Request, key string, fallback bool) bool {
	v := r.FormValue(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

type paramError string

func errParam(name string) error { return paramError(name) }

func (e paramError) Error() string { return "invalid parameter: " + string(e) }
