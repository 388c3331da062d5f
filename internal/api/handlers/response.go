package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/TWRT/pm-dashboard/internal/client"
)

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("encode response", slog.String("error", err.Error()))
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}

// writeFailure logs an internal error and answers with a generic 500 body.
func writeFailure(w http.ResponseWriter, r *http.Request, message string, err error) {
	slog.Error(message,
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("request_id", r.Header.Get("X-Request-Id")),
		slog.String("error", err.Error()),
	)
	writeError(w, http.StatusInternalServerError, message+": "+err.Error())
}

// writeInvalid answers 400 with the first field message and the full field map.
func writeInvalid(w http.ResponseWriter, err error) {
	var validationErr *client.ValidationError
	if !errors.As(err, &validationErr) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusBadRequest, map[string]any{
		"message": validationErr.Error(),
		"fields":  validationErr.Fields,
	})
}

func decode(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}
