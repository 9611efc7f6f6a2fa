package httpx

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/harshsindhu0408/beauty-storefront/internal/backend"
)

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{Error: message, Code: code})
}

// handleBackendError maps the adapter's error taxonomy to HTTP. A 401 from
// the remote API has already torn the session down; here only the cookie is
// left to clear.
func handleBackendError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, backend.ErrSessionExpired):
		clearAuthCookie(w)
		respondError(w, http.StatusUnauthorized, "session_expired", "session expired, please sign in again")
	case errors.Is(err, backend.ErrNotFound):
		respondError(w, http.StatusNotFound, "not_found", "not found")
	default:
		respondError(w, http.StatusBadGateway, "backend_error", err.Error())
	}
}
