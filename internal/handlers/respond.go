package handlers

import (
	"encoding/json"
	"net/http"
)

// writeJSON serializes v as the response body with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// errorJSON writes the error envelope shared by every endpoint.
func errorJSON(w http.ResponseWriter, status int, message string, err error) {
	body := map[string]any{
		"status":  "error",
		"message": message,
	}
	if err != nil {
		body["error"] = err.Error()
	}
	writeJSON(w, status, body)
}
