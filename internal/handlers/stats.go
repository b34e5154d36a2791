package handlers

import (
	"net/http"

	"roadserver/internal/logger"
	"roadserver/internal/repository"
)

// StatsHandler returns the total detection count and per-class damage
// distribution across all stored rows.
func StatsHandler(repo repository.DetectionRepository, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := repo.Stats()
		if err != nil {
			logger.Error("Failed to fetch stats: %v", err)
			errorJSON(w, http.StatusInternalServerError, "Failed to fetch statistics", err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"status": "success",
			"stats":  stats,
		})
	}
}
