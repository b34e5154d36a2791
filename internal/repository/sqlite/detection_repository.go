package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"roadserver/internal/models"
)

// DetectionRepository implements repository.DetectionRepository for SQLite.
type DetectionRepository struct {
	db *DB
}

// NewDetectionRepository creates a new SQLite detection repository.
func NewDetectionRepository(db *DB) *DetectionRepository {
	return &DetectionRepository{db: db}
}

// Insert adds a new detection event. The id is assigned by the store; the
// timestamp defaults to now when unset.
func (r *DetectionRepository) Insert(ev *models.DetectionEvent) (int64, error) {
	r.db.Lock()
	defer r.db.Unlock()

	timestamp := ev.Timestamp
	if timestamp.IsZero() {
		timestamp = time.Now().UTC()
	}

	result, err := r.db.Conn().Exec(`
		INSERT INTO detections (image_id, image_path, latitude, longitude, detected_damages, timestamp, confidence_scores)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, ev.ImageID, ev.ImagePath, ev.Latitude, ev.Longitude, string(ev.DetectedDamages), timestamp, string(ev.ConfidenceScores))
	if err != nil {
		return 0, fmt.Errorf("failed to insert detection: %w", err)
	}

	return result.LastInsertId()
}

// GetAll retrieves every detection event, newest first.
func (r *DetectionRepository) GetAll() ([]models.DetectionEvent, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	rows, err := r.db.Conn().Query(`
		SELECT id, image_id, latitude, longitude, detected_damages, confidence_scores, timestamp
		FROM detections
		ORDER BY timestamp DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query detections: %w", err)
	}
	defer rows.Close()

	var events []models.DetectionEvent
	for rows.Next() {
		var ev models.DetectionEvent
		var damages string
		var scores sql.NullString

		if err := rows.Scan(&ev.ID, &ev.ImageID, &ev.Latitude, &ev.Longitude, &damages, &scores, &ev.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan detection: %w", err)
		}
		ev.DetectedDamages = json.RawMessage(damages)
		if scores.Valid {
			ev.ConfidenceScores = json.RawMessage(scores.String)
		}

		events = append(events, ev)
	}

	return events, rows.Err()
}

// GetByID retrieves a single detection event, or nil when the id is unknown.
func (r *DetectionRepository) GetByID(id int64) (*models.DetectionEvent, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	var ev models.DetectionEvent
	var damages string
	var scores sql.NullString

	err := r.db.Conn().QueryRow(`
		SELECT id, image_id, image_path, latitude, longitude, detected_damages, confidence_scores, timestamp
		FROM detections
		WHERE id = ?
	`, id).Scan(&ev.ID, &ev.ImageID, &ev.ImagePath, &ev.Latitude, &ev.Longitude, &damages, &scores, &ev.Timestamp)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get detection: %w", err)
	}

	ev.DetectedDamages = json.RawMessage(damages)
	if scores.Valid {
		ev.ConfidenceScores = json.RawMessage(scores.String)
	}

	return &ev, nil
}

// Stats returns the total event count and per-class damage occurrence counts,
// computed by scanning every row's damage list. Stored lists may mix
// structured records with legacy plain-string labels.
func (r *DetectionRepository) Stats() (*models.DetectionStats, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	stats := &models.DetectionStats{
		DamageTypeDistribution: make(map[string]int),
	}

	if err := r.db.Conn().QueryRow(`SELECT COUNT(*) FROM detections`).Scan(&stats.TotalDetections); err != nil {
		return nil, fmt.Errorf("failed to count detections: %w", err)
	}

	rows, err := r.db.Conn().Query(`SELECT detected_damages FROM detections`)
	if err != nil {
		return nil, fmt.Errorf("failed to query damages: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var damages string
		if err := rows.Scan(&damages); err != nil {
			return nil, fmt.Errorf("failed to scan damages: %w", err)
		}

		var entries []models.DamageEntry
		if err := json.Unmarshal([]byte(damages), &entries); err != nil {
			return nil, fmt.Errorf("failed to parse stored damages: %w", err)
		}

		for i := range entries {
			stats.DamageTypeDistribution[entries[i].Label()]++
		}
	}

	return stats, rows.Err()
}
