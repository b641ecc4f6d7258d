package server

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/jonathan/resume-screener/internal/types"
)

// writeJSON writes a JSON response
func writeJSON(w http.ResponseWriter, logger *zap.Logger, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil && logger != nil {
		logger.Warn("failed to encode JSON response", zap.Error(err))
	}
}

// writeError writes the standard error body
func writeError(w http.ResponseWriter, logger *zap.Logger, status int, message string) {
	writeJSON(w, logger, status, types.ErrorResponse{
		Success: false,
		Message: message,
		Error:   message,
	})
}

// publicMessage hides internal error details behind 5xx statuses.
func publicMessage(status int, err error) string {
	switch status {
	case http.StatusInternalServerError:
		return "internal server error"
	case http.StatusServiceUnavailable:
		return "storage temporarily unavailable, please retry"
	case http.StatusBadGateway:
		return "resume analysis service failed, please try again later"
	default:
		return err.Error()
	}
}
