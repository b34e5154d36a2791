package handlers

import (
	"net/http"
	"time"
)

// HomeHandler reports service liveness.
func HomeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"status":    "success",
			"message":   "Road Damage Detection Server is running",
			"timestamp": time.Now().Format(time.RFC3339),
		})
	}
}
