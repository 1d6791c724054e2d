package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/ohulko/matkarnia/internal/model"
)

// jsonResponse writes a JSON response with the given status code.
func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("encoding response", "error", err)
		}
	}
}

// jsonError writes a JSON error response.
func jsonError(w http.ResponseWriter, status int, message string) {
	jsonResponse(w, status, map[string]string{"error": message})
}

// decodeJSON decodes a JSON request body into the given target.
func decodeJSON(r *http.Request, target any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(target)
}

// storeError maps a store error to an HTTP response.
func storeError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, model.ErrNotFound), errors.Is(err, model.ErrOrderNotFound):
		jsonError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, model.ErrValidation):
		jsonError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, model.ErrInsufficientStock), errors.Is(err, model.ErrInvalidTransition):
		jsonError(w, http.StatusConflict, err.Error())
	default:
		slog.Error(fallback, "error", err)
		jsonError(w, http.StatusInternalServerError, fallback)
	}
}
