package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"couple-backend/internal/services"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// SuccessResponse is returned by callables that only report an outcome
type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// respondError sends an error response
func respondError(w http.ResponseWriter, message string, statusCode int) {
	respondJSON(w, statusCode, ErrorResponse{Error: message})
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(body)
}

// respondServiceError maps a service error to a fixed message; the error text
// itself never reaches the client.
func respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrUnauthenticated):
		respondError(w, "User not authenticated.", http.StatusUnauthorized)
	case errors.Is(err, services.ErrInvalidArgument):
		respondError(w, "Invalid request.", http.StatusBadRequest)
	case errors.Is(err, services.ErrMediaDeleteFailed):
		respondError(w, "Media service failed to delete image.", http.StatusBadGateway)
	case errors.Is(err, services.ErrAccountDeletionFailed):
		respondError(w, "Failed to delete account.", http.StatusInternalServerError)
	default:
		respondError(w, "Internal server error.", http.StatusInternalServerError)
	}
}

// Health handles GET /healthz
func Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
