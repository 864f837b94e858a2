package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/BlockchainHB/launchfast-sub005/internal/contracts"
)

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondDomainError maps contract error types onto HTTP statuses
func respondDomainError(w http.ResponseWriter, err error) {
	switch {
	case contracts.IsValidation(err):
		respondError(w, http.StatusBadRequest, err.Error())
	case contracts.IsNotFound(err):
		respondError(w, http.StatusNotFound, err.Error())
	case contracts.IsAggregation(err):
		respondError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		respondError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// userID extracts the requesting user. Auth proper sits in front of this
// service; the gateway forwards the resolved user id.
func userID(r *http.Request) string {
	return r.Header.Get("X-User-ID")
}
