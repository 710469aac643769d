package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/mchmarny/menubuilder/pkg/controller"
	"github.com/mchmarny/menubuilder/pkg/menu"
	"github.com/mchmarny/menubuilder/pkg/storage"
)

// errorBody is the response of a failed request that is not a rejection.
type errorBody struct {
	Error string `json:"error"`
}

// statusOf maps a gesture error to an HTTP status.
func statusOf(err error) int {
	if _, ok := menu.AsRejection(err); ok {
		return http.StatusConflict
	}
	switch {
	case errors.Is(err, controller.ErrInvalidItem), errors.Is(err, storage.ErrInvalidName):
		return http.StatusBadRequest
	case errors.Is(err, menu.ErrNotFound), errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, controller.ErrNoConfiguration):
		return http.StatusPreconditionFailed
	default:
		return http.StatusInternalServerError
	}
}

func writeFailure(w http.ResponseWriter, err error) {
	if r, ok := menu.AsRejection(err); ok {
		writeJSON(w, http.StatusConflict, r)
		return
	}
	status := statusOf(err)
	if status == http.StatusInternalServerError {
		slog.Error("request failed", "error", err)
		writeError(w, status, "internal error, see logs for details")
		return
	}
	writeError(w, status, err.Error())
}

func writeError(w http.ResponseWriter, status int, message string) {
	slog.Debug("handling error response",
		"status", status,
		"message", message,
	)
	writeJSON(w, status, errorBody{Error: message})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		slog.Error("failed to marshal JSON response", "error", err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, `{"error": "error, see logs for details"}`)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(jsonData); err != nil {
		slog.Error("failed to write JSON response", "error", err)
	}
}

// decode reads a JSON request body into v. Unknown fields are rejected.
func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("malformed request body: %v: %w", err, controller.ErrInvalidItem)
	}
	return nil
}
