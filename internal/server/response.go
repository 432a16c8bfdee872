package server

import (
	"encoding/json"
	"errors"
	"net/http"

	errx "github.com/Chative-shop-assistant/server/internal/core/error"
	logx "github.com/Chative-shop-assistant/server/pkg/logger"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// writeJSON sends a JSON response
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logx.Warn().Err(err).Msg("failed to encode response")
	}
}

// writeError sends an error response; AppError statuses and messages win over the fallback status.
func writeError(w http.ResponseWriter, status int, err error) {
	message := err.Error()
	var appErr *errx.AppError
	if errors.As(err, &appErr) {
		status = appErr.Status
		message = appErr.Message
	}

	errorType := "error"
	switch status {
	case http.StatusNotFound:
		errorType = "not_found"
	case http.StatusBadRequest:
		errorType = "bad_request"
	case http.StatusInternalServerError:
		errorType = "internal_server_error"
	case http.StatusBadGateway, http.StatusServiceUnavailable:
		errorType = "unavailable"
	}

	writeJSON(w, status, ErrorResponse{
		Error:   errorType,
		Message: message,
	})
}
