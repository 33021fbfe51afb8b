package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"openfeed/internal/core"
)

type errorResponse struct {
	Error string `json:"error"`
}

// writeError maps the service error taxonomy onto HTTP statuses. Anything
// outside the taxonomy is a 500 with a generic body, details stay in logs.
func writeError(w http.ResponseWriter, logger *slog.Logger, err error) {
	status := http.StatusInternalServerError
	message := "internal server error"

	switch {
	case errors.Is(err, core.ErrInvalidInput):
		status = http.StatusBadRequest
		message = err.Error()
	case errors.Is(err, core.ErrUnauthorized):
		status = http.StatusUnauthorized
		message = "authentication required"
	case errors.Is(err, core.ErrForbidden):
		status = http.StatusForbidden
		message = "not allowed"
	case errors.Is(err, core.ErrNotFound):
		status = http.StatusNotFound
		message = "not found"
	case errors.Is(err, core.ErrModerationUnavailable):
		message = "moderation is temporarily unavailable, try again later"
	default:
		logger.Error("request failed", "error", err)
	}

	respond(w, status, errorResponse{Error: message})
}

func respond(w http.ResponseWriter, status int, body any) {
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body) //nolint:errcheck
}
