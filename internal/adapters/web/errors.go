package web

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"ops-portal/internal/core"
)

type errorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	RequestID string `json:"request_id,omitempty"`
}

// writeError writes a structured JSON error response.
func writeError(w http.ResponseWriter, r *http.Request, message, code string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	resp := errorResponse{
		Error:     message,
		Code:      code,
		RequestID: requestIDFromContext(r.Context()),
	}
	_ = json.NewEncoder(w).Encode(resp)
}

// writeServiceError maps a domain error from the application layer onto its HTTP status.
// Errors without a domain code are logged and reported as a bare 500.
func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	code := core.ErrorCode(err)
	switch code {
	case core.CodeValidation:
		writeError(w, r, err.Error(), code, http.StatusBadRequest)
	case core.CodeNotFound:
		writeError(w, r, err.Error(), code, http.StatusNotFound)
	case core.CodeConflict, core.CodeState:
		writeError(w, r, err.Error(), code, http.StatusConflict)
	default:
		h.log.Error("request failed",
			zap.String("request_id", requestIDFromContext(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		writeError(w, r, "internal server error", "INTERNAL_ERROR", http.StatusInternalServerError)
	}
}

// writeJSON writes a JSON response with status 200.
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// writeCreated writes a JSON response with status 201.
func writeCreated(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(v)
}
