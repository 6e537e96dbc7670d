package handlers

import (
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/audioscribe/backend/internal/db"
	"github.com/audioscribe/backend/internal/entity"
	"github.com/audioscribe/backend/internal/storage"
)

type TranscriptsHandler struct {
	database *db.Database
	store    *storage.Store
}

func NewTranscriptsHandler(database *db.Database, store *storage.Store) *TranscriptsHandler {
	return &TranscriptsHandler{database: database, store: store}
}

// List returns saved transcript records, newest first
func (h *TranscriptsHandler) List(w http.ResponseWriter, r *http.Request) {
	records, err := h.database.ListTranscripts()
	if err != nil {
		jsonError(w, "failed to list transcripts: "+err.Error(), http.StatusInternalServerError)
		return
	}
	jsonResponse(w, records, http.StatusOK)
}

// Get returns one transcript with its full canonical content and the
// categorized entity view
func (h *TranscriptsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		jsonError(w, "invalid transcript ID", http.StatusBadRequest)
		return
	}

	rec, err := h.database.GetTranscript(id)
	if err != nil {
		jsonError(w, "transcript not found", http.StatusNotFound)
		return
	}

	tr, err := h.store.LoadCanonical(rec.RawPath)
	if err != nil {
		jsonError(w, "load transcript: "+err.Error(), http.StatusInternalServerError)
		return
	}

	jsonResponse(w, map[string]any{
		"record":     rec,
		"transcript": tr,
		"entities":   entity.Categorize(tr.Entities),
	}, http.StatusOK)
}

// Download serves a stored transcript output file by name
func (h *TranscriptsHandler) Download(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	path, err := h.store.OutputPath(name)
	if err != nil {
		jsonError(w, "invalid file name", http.StatusBadRequest)
		return
	}
	w.Header().Set("Content-Disposition", "attachment; filename=\""+filepath.Base(path)+"\"")
	http.ServeFile(w, r, path)
}

// Delete removes a transcript record
func (h *TranscriptsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		jsonError(w, "invalid transcript ID", http.StatusBadRequest)
		return
	}
	if err := h.database.DeleteTranscript(id); err != nil {
		jsonError(w, "failed to delete transcript: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
