package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/ternarybob/adjutant/internal/models"
)

// Identity headers are set by the upstream gateway after credential
// verification; the service trusts them.
const (
	headerUserID     = "X-User-ID"
	headerUserRole   = "X-User-Role"
	headerDepartment = "X-User-Department"
)

// identityFromRequest extracts the caller's identity from request headers
func identityFromRequest(r *http.Request) models.Identity {
	return models.Identity{
		UserID:     r.Header.Get(headerUserID),
		Role:       r.Header.Get(headerUserRole),
		Department: r.Header.Get(headerDepartment),
	}
}

// writeJSON writes a JSON response with the given status code
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]interface{}{
		"success": false,
		"error":   message,
	})
}
