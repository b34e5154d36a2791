package handlers

import (
	"net/http"
	"os"
	"strconv"

	"roadserver/internal/logger"
	"roadserver/internal/models"
	"roadserver/internal/repository"
)

// ListDetectionsHandler returns every stored detection event, newest first.
func ListDetectionsHandler(repo repository.DetectionRepository, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		events, err := repo.GetAll()
		if err != nil {
			logger.Error("Failed to fetch detections: %v", err)
			errorJSON(w, http.StatusInternalServerError, "Failed to fetch detections", err)
			return
		}

		if events == nil {
			events = []models.DetectionEvent{}
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"status":     "success",
			"detections": events,
			"count":      len(events),
		})
	}
}

// GetDetectionHandler returns a single detection event by id.
func GetDetectionHandler(repo repository.DetectionRepository, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
		if err != nil {
			errorJSON(w, http.StatusNotFound, "Detection not found", nil)
			return
		}

		ev, err := repo.GetByID(id)
		if err != nil {
			logger.Error("Failed to fetch detection %d: %v", id, err)
			errorJSON(w, http.StatusInternalServerError, "Failed to fetch detection", err)
			return
		}
		if ev == nil {
			errorJSON(w, http.StatusNotFound, "Detection not found", nil)
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"status":    "success",
			"detection": ev,
		})
	}
}

// ImageHandler serves the stored original JPEG for a detection id.
func ImageHandler(repo repository.DetectionRepository, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
		if err != nil {
			errorJSON(w, http.StatusNotFound, "Detection not found", nil)
			return
		}

		ev, err := repo.GetByID(id)
		if err != nil {
			logger.Error("Failed to fetch detection %d: %v", id, err)
			errorJSON(w, http.StatusInternalServerError, "Failed to fetch detection", err)
			return
		}
		if ev == nil {
			errorJSON(w, http.StatusNotFound, "Detection not found", nil)
			return
		}

		if _, err := os.Stat(ev.ImagePath); os.IsNotExist(err) {
			errorJSON(w, http.StatusNotFound, "Image file not found", nil)
			return
		}

		http.ServeFile(w, r, ev.ImagePath)
	}
}
