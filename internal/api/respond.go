package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/srujanab94/acp-commerce/internal/checkout"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}

// handleServiceError maps checkout service errors to HTTP responses.
// Payment declines are handled separately by the complete handler.
func handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, checkout.ErrCheckoutNotFound):
		respondError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, checkout.ErrInvalidLineItems),
		errors.Is(err, checkout.ErrProductNotFound),
		errors.Is(err, checkout.ErrProductUnavailable):
		respondError(w, http.StatusBadRequest, "validation_failed", err.Error())
	case errors.Is(err, checkout.ErrInvalidState):
		respondError(w, http.StatusConflict, "precondition_failed", err.Error())
	default:
		log.Printf("internal error: %v", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
