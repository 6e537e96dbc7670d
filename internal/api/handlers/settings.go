package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/audioscribe/backend/internal/db"
)

// settingsKeys defines which keys are allowed and their display metadata
var settingsKeys = []SettingDef{
	{Key: "deepgram_api_key", Label: "Deepgram API Key", Group: "providers", Placeholder: "dg_...", Secret: true},
	{Key: "deepgram_model", Label: "Deepgram Model", Group: "providers", Placeholder: "nova-2", Secret: false},
	{Key: "assemblyai_api_key", Label: "AssemblyAI API Key", Group: "providers", Placeholder: "xxxxxxxx", Secret: true},
	{Key: "openai_api_key", Label: "OpenAI API Key", Group: "providers", Placeholder: "sk-...", Secret: true},
	{Key: "google_api_key", Label: "Google Speech API Key", Group: "providers", Placeholder: "AIza...", Secret: true},
	{Key: "whisper_url", Label: "Whisper Endpoint", Group: "providers", Placeholder: "https://api.openai.com/v1/audio/transcriptions", Secret: false},
	{Key: "default_provider", Label: "Default Provider", Group: "transcription", Placeholder: "deepgram", Secret: false},
	{Key: "default_language", Label: "Default Language", Group: "transcription", Placeholder: "en", Secret: false},
	{Key: "correction_model", Label: "Correction Model", Group: "correction", Placeholder: "gpt-4o", Secret: false},
}

type SettingDef struct {
	Key         string `json:"key"`
	Label       string `json:"label"`
	Group       string `json:"group"`
	Placeholder string `json:"placeholder"`
	Secret      bool   `json:"secret"`
}

type SettingsHandler struct {
	database *db.Database
}

func NewSettingsHandler(database *db.Database) *SettingsHandler {
	return &SettingsHandler{database: database}
}

const secretMask = "••••••••"

// GetSettings returns all settings (secrets are masked)
func (h *SettingsHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	all, err := h.database.GetAllSettings()
	if err != nil {
		jsonError(w, "failed to load settings", http.StatusInternalServerError)
		return
	}

	type SettingResponse struct {
		SettingDef
		Value    string `json:"value"`
		HasValue bool   `json:"has_value"`
	}

	var result []SettingResponse
	for _, def := range settingsKeys {
		val := all[def.Key]
		masked := val
		hasValue := val != ""
		if def.Secret && hasValue {
			// Show only last 4 chars
			if len(val) > 4 {
				masked = secretMask + val[len(val)-4:]
			} else {
				masked = secretMask
			}
		}
		result = append(result, SettingResponse{
			SettingDef: def,
			Value:      masked,
			HasValue:   hasValue,
		})
	}

	jsonResponse(w, result, http.StatusOK)
}

// UpdateSettings saves settings from the request body
func (h *SettingsHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var updates map[string]string
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
		jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	allowed := make(map[string]bool)
	for _, def := range settingsKeys {
		allowed[def.Key] = true
	}

	for key, value := range updates {
		if !allowed[key] {
			continue
		}
		if value == "" {
			// Explicit clear: drop the row so env/file values apply again
			h.database.DeleteSetting(key)
			continue
		}
		// Skip masked values so a round-tripped form doesn't overwrite secrets
		if strings.HasPrefix(value, secretMask) {
			continue
		}
		if err := h.database.SetSetting(key, value); err != nil {
			jsonError(w, "failed to save setting: "+key, http.StatusInternalServerError)
			return
		}
	}

	w.WriteHeader(http.StatusNoContent)
}
