package app

import (
	"fmt"
	"net/http"

	"roadserver/internal/config"
	"roadserver/internal/logger"
	"roadserver/internal/repository/sqlite"
	"roadserver/internal/routes"
	"roadserver/internal/services/ai"
	"roadserver/internal/services/storage"
	"roadserver/internal/services/websocket"
)

type App struct {
	config   *config.Config
	logger   *logger.Logger
	db       *sqlite.DB
	detector *ai.DetectorService
	hub      *websocket.HubService
	router   http.Handler
}

func NewApp() (*App, error) {
	cfg := config.Load()
	log := logger.NewLogger(cfg)

	db, err := sqlite.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	repo := sqlite.NewDetectionRepository(db)
	store := storage.NewImageStore(cfg.UploadDir)
	detector := ai.NewDetectorService(cfg.ModelPath, cfg.InferenceWorkers, log)
	hub := websocket.NewHubService(log)

	router := routes.SetupRoutes(detector, repo, store, hub, log)

	return &App{
		config:   cfg,
		logger:   log,
		db:       db,
		detector: detector,
		hub:      hub,
		router:   router,
	}, nil
}

func (a *App) Run() error {
	// Start background services
	go a.hub.Run()

	a.logger.Info("🚀 Road Damage Detection Server")
	a.logger.Info("📍 URL: http://localhost:%d", a.config.Port)
	a.logger.Info("📁 Uploads: %s", a.config.UploadDir)
	a.logger.Info("🤖 Model: %s (available: %v)", a.config.ModelPath, a.detector.Available())

	return http.ListenAndServe(fmt.Sprintf(":%d", a.config.Port), a.router)
}

func (a *App) Close() error {
	a.detector.Close()
	return a.db.Close()
}
