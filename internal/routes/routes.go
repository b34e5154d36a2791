package routes

import (
	"net/http"

	"roadserver/internal/handlers"
	"roadserver/internal/logger"
	"roadserver/internal/repository"
	"roadserver/internal/services/ai"
	"roadserver/internal/services/storage"
	"roadserver/internal/services/websocket"
)

// SetupRoutes registers the API endpoints, the dashboard and the live feed.
func SetupRoutes(detector *ai.DetectorService, repo repository.DetectionRepository, store *storage.ImageStore,
	hub *websocket.HubService, logger *logger.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", handlers.HomeHandler())

	// API endpoints
	mux.HandleFunc("POST /api/detect", handlers.DetectHandler(repo, store, hub, logger))
	mux.HandleFunc("POST /api/infer", handlers.InferHandler(detector, repo, store, hub, logger))
	mux.HandleFunc("GET /api/detections", handlers.ListDetectionsHandler(repo, logger))
	mux.HandleFunc("GET /api/detections/{id}", handlers.GetDetectionHandler(repo, logger))
	mux.HandleFunc("GET /api/stats", handlers.StatsHandler(repo, logger))
	mux.HandleFunc("GET /api/image/{id}", handlers.ImageHandler(repo, logger))
	mux.HandleFunc("GET /api/live", handlers.LiveHandler(hub, logger))

	// Dashboard
	mux.HandleFunc("GET /dashboard", handlers.DashboardHandler(repo, logger))

	return mux
}
