package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/audioscribe/backend/internal/batch"
	"github.com/audioscribe/backend/internal/chunk"
	"github.com/audioscribe/backend/internal/provider"
)

func jsonResponse(w http.ResponseWriter, data interface{}, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func jsonError(w http.ResponseWriter, msg string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// errorStatus maps pipeline errors onto HTTP status codes.
func errorStatus(err error) int {
	var unknownProvider *provider.UnknownProviderError
	var unsupportedOption *provider.UnsupportedOptionError
	var unsupportedFormat *chunk.UnsupportedFormatError
	var validation validator.ValidationErrors
	switch {
	case errors.As(err, &unknownProvider),
		errors.As(err, &unsupportedOption),
		errors.As(err, &unsupportedFormat),
		errors.As(err, &validation):
		return http.StatusBadRequest
	case errors.Is(err, batch.ErrCancelled):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
