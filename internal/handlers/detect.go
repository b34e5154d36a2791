package handlers

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"roadserver/internal/codec"
	"roadserver/internal/logger"
	"roadserver/internal/models"
	"roadserver/internal/repository"
	"roadserver/internal/services/storage"
	"roadserver/internal/services/websocket"
)

// detectRequest is the payload mobile clients post after running on-device
// detection. Pointer fields distinguish "absent" from zero values.
type detectRequest struct {
	ImageBase64     *string         `json:"image_base64"`
	Latitude        *float64        `json:"latitude"`
	Longitude       *float64        `json:"longitude"`
	DetectedDamages json.RawMessage `json:"detected_damages"`
}

// firstMissingField validates fail-fast, in payload order.
func (req *detectRequest) firstMissingField() string {
	switch {
	case req.ImageBase64 == nil:
		return "image_base64"
	case req.Latitude == nil:
		return "latitude"
	case req.Longitude == nil:
		return "longitude"
	case req.DetectedDamages == nil:
		return "detected_damages"
	}
	return ""
}

// DetectHandler persists a detection result reported by a client: saves the
// original image under a fresh image id and inserts one event row.
func DetectHandler(repo repository.DetectionRepository, store *storage.ImageStore, hub *websocket.HubService, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req detectRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			errorJSON(w, http.StatusBadRequest, "Invalid JSON payload", err)
			return
		}

		if field := req.firstMissingField(); field != "" {
			errorJSON(w, http.StatusBadRequest, "Missing required field: "+field, nil)
			return
		}

		var entries []models.DamageEntry
		if err := json.Unmarshal(req.DetectedDamages, &entries); err != nil {
			errorJSON(w, http.StatusInternalServerError, "Internal server error", err)
			return
		}

		imageID := uuid.New().String()

		data, err := base64.StdEncoding.DecodeString(codec.StripDataURL(*req.ImageBase64))
		if err != nil {
			logger.Error("Failed to decode uploaded image: %v", err)
			errorJSON(w, http.StatusInternalServerError, "Failed to save image", nil)
			return
		}

		imagePath, err := store.Save(imageID, data)
		if err != nil {
			logger.Error("Failed to save image %s: %v", imageID, err)
			errorJSON(w, http.StatusInternalServerError, "Failed to save image", nil)
			return
		}

		// confidence_scores is denormalized from the damage list; legacy
		// entries without a confidence count as 0.
		scores := make([]float64, 0, len(entries))
		for i := range entries {
			scores = append(scores, entries[i].Confidence())
		}
		scoresJSON, _ := json.Marshal(scores)

		ev := &models.DetectionEvent{
			ImageID:          imageID,
			ImagePath:        imagePath,
			Latitude:         *req.Latitude,
			Longitude:        *req.Longitude,
			DetectedDamages:  req.DetectedDamages,
			ConfidenceScores: scoresJSON,
			Timestamp:        time.Now().UTC(),
		}

		detectionID, err := repo.Insert(ev)
		if err != nil {
			logger.Error("Failed to insert detection: %v", err)
			errorJSON(w, http.StatusInternalServerError, "Internal server error", err)
			return
		}
		ev.ID = detectionID

		if hub != nil {
			hub.BroadcastEvent(ev)
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"status":        "success",
			"message":       "Detection saved successfully",
			"detection_id":  detectionID,
			"image_id":      imageID,
			"damages_count": len(entries),
		})
	}
}
