package server

import (
	"encoding/json"
	"errors"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/papyri/archive/internal/service"
	"github.com/sirupsen/logrus"
)

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logrus.Errorf("writing response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]any{
		"error": map[string]any{
			"code":    code,
			"message": message,
		},
	})
}

// writeServiceError maps an engine error to the HTTP surface: lookups that
// miss are NOT_FOUND, bad submissions are VALIDATION_FAILED, operations
// against an empty history are INVALID_STATE, anything else is an upstream
// failure.
func writeServiceError(w http.ResponseWriter, err error) {
	var verrs validation.Errors
	switch {
	case errors.Is(err, service.ErrDocumentNotFound), errors.Is(err, service.ErrVersionNotFound):
		writeError(w, http.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.As(err, &verrs):
		writeError(w, http.StatusBadRequest, "VALIDATION_FAILED", err.Error())
	case errors.Is(err, service.ErrNoVersions):
		writeError(w, http.StatusConflict, "INVALID_STATE", err.Error())
	default:
		logrus.Errorf("request failed: %v", err)
		writeError(w, http.StatusInternalServerError, "UPSTREAM_FAILED", err.Error())
	}
}

func decodeBody(r *http.Request, out any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(out)
}
