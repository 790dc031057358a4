package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"parts-inventory/internal/core"

	log "github.com/sirupsen/logrus"
)

type errorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	RequestID string `json:"request_id,omitempty"`
	Available *int   `json:"available,omitempty"`
}

// writeError writes a structured JSON error response.
func writeError(w http.ResponseWriter, r *http.Request, message, code string, status int) {
	writeErrorBody(w, status, errorResponse{
		Error:     message,
		Code:      code,
		RequestID: requestIDFromContext(r.Context()),
	})
}

func writeErrorBody(w http.ResponseWriter, status int, body errorResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeServiceError maps a domain error to its HTTP status and error code.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var insufficient *core.InsufficientStockError
	switch {
	case errors.As(err, &insufficient):
		available := insufficient.Available
		writeErrorBody(w, http.StatusConflict, errorResponse{
			Error:     err.Error(),
			Code:      "INSUFFICIENT_STOCK",
			RequestID: requestIDFromContext(r.Context()),
			Available: &available,
		})
	case errors.Is(err, core.ErrNotFound):
		writeError(w, r, err.Error(), "NOT_FOUND", http.StatusNotFound)
	case errors.Is(err, core.ErrInvalidArgument):
		writeError(w, r, err.Error(), "BAD_REQUEST", http.StatusBadRequest)
	case errors.Is(err, core.ErrInvalidState):
		writeError(w, r, err.Error(), "INVALID_STATE", http.StatusConflict)
	case errors.Is(err, core.ErrPersistence):
		log.WithFields(log.Fields{"request_id": requestIDFromContext(r.Context()), "error": err}).Error("storage failure")
		writeError(w, r, "storage unavailable, retry later", "STORAGE_UNAVAILABLE", http.StatusServiceUnavailable)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		writeError(w, r, "request cancelled", "CANCELLED", http.StatusServiceUnavailable)
	default:
		log.WithFields(log.Fields{"request_id": requestIDFromContext(r.Context()), "error": err}).Error("unhandled error")
		writeError(w, r, "internal server error", "INTERNAL_ERROR", http.StatusInternalServerError)
	}
}

// writeJSON writes a JSON response with status 200.
func writeJSON(w http.ResponseWriter, v any) {
	writeJSONStatus(w, http.StatusOK, v)
}

func writeJSONStatus(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
