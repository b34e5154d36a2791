package handlers

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"roadserver/internal/codec"
	"roadserver/internal/logger"
	"roadserver/internal/models"
	"roadserver/internal/repository"
	"roadserver/internal/services/ai"
	"roadserver/internal/services/storage"
	"roadserver/internal/services/websocket"
)

type inferRequest struct {
	ImageBase64         *string  `json:"image_base64"`
	ConfidenceThreshold *float64 `json:"confidence_threshold"`
	SaveResult          bool     `json:"save_result"`
	Latitude            *float64 `json:"latitude"`
	Longitude           *float64 `json:"longitude"`
}

// InferHandler runs the detection model on an uploaded image and returns the
// annotated image plus the damages found. With save_result set and a
// geolocation present, non-empty results are also persisted; save failures
// there are logged but never fail the inference response.
func InferHandler(detector *ai.DetectorService, repo repository.DetectionRepository, store *storage.ImageStore, hub *websocket.HubService, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req inferRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			errorJSON(w, http.StatusBadRequest, "Invalid JSON payload", err)
			return
		}

		if req.ImageBase64 == nil {
			errorJSON(w, http.StatusBadRequest, "Missing required field: image_base64", nil)
			return
		}

		threshold := float32(ai.DefaultConfidenceThreshold)
		if req.ConfidenceThreshold != nil {
			threshold = float32(*req.ConfidenceThreshold)
		}

		img, err := codec.Decode(*req.ImageBase64)
		if err != nil {
			var decodeErr *codec.DecodeError
			if errors.As(err, &decodeErr) {
				errorJSON(w, http.StatusBadRequest, "Failed to decode image", err)
				return
			}
			errorJSON(w, http.StatusInternalServerError, "Failed to decode image", err)
			return
		}
		defer img.Close()

		annotated, detections := detector.Detect(img, threshold)
		defer annotated.Close()

		annotatedBase64, err := codec.Encode(annotated, codec.DefaultJPEGQuality)
		if err != nil {
			logger.Error("Failed to encode annotated image: %v", err)
			errorJSON(w, http.StatusInternalServerError, "Failed to encode annotated image", err)
			return
		}

		if detections == nil {
			detections = []models.Damage{}
		}

		result := map[string]any{
			"status":                 "success",
			"annotated_image_base64": annotatedBase64,
			"detections":             detections,
			"detection_count":        len(detections),
		}

		if req.SaveResult && len(detections) > 0 && req.Latitude != nil && req.Longitude != nil {
			if ev := saveInferenceResult(req, detections, repo, store, logger); ev != nil {
				result["saved"] = true
				result["detection_id"] = ev.ID
				result["image_id"] = ev.ImageID
				if hub != nil {
					hub.BroadcastEvent(ev)
				}
			}
		}

		writeJSON(w, http.StatusOK, result)
	}
}

// saveInferenceResult stores the original image and the inference outcome.
// Returns nil when any step fails.
func saveInferenceResult(req inferRequest, detections []models.Damage, repo repository.DetectionRepository, store *storage.ImageStore, logger *logger.Logger) *models.DetectionEvent {
	imageID := uuid.New().String()

	data, err := base64.StdEncoding.DecodeString(codec.StripDataURL(*req.ImageBase64))
	if err != nil {
		logger.Error("Failed to decode image for saving: %v", err)
		return nil
	}

	imagePath, err := store.Save(imageID, data)
	if err != nil {
		logger.Error("Failed to save image %s: %v", imageID, err)
		return nil
	}

	damagesJSON, _ := json.Marshal(detections)
	scores := make([]float64, 0, len(detections))
	for i := range detections {
		scores = append(scores, detections[i].Confidence)
	}
	scoresJSON, _ := json.Marshal(scores)

	ev := &models.DetectionEvent{
		ImageID:          imageID,
		ImagePath:        imagePath,
		Latitude:         *req.Latitude,
		Longitude:        *req.Longitude,
		DetectedDamages:  damagesJSON,
		ConfidenceScores: scoresJSON,
		Timestamp:        time.Now().UTC(),
	}

	detectionID, err := repo.Insert(ev)
	if err != nil {
		logger.Error("Failed to save inference result: %v", err)
		return nil
	}
	ev.ID = detectionID

	return ev
}
