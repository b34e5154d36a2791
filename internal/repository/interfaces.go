package repository

import "roadserver/internal/models"

// DetectionRepository defines the interface for detection event storage.
type DetectionRepository interface {
	// Create operations
	Insert(ev *models.DetectionEvent) (int64, error)

	// Read operations
	GetAll() ([]models.DetectionEvent, error)
	GetByID(id int64) (*models.DetectionEvent, error)
	Stats() (*models.DetectionStats, error)
}
