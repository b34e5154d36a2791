package models

import (
	"encoding/json"
	"time"
)

// DamageClasses is the fixed label set of the road damage model, indexed by
// the model's class index.
var DamageClasses = []string{
	"Longitudinal Crack",
	"Transverse Crack",
	"Alligator Crack",
	"Potholes",
}

// UnknownClass is the sentinel label for entries without a usable class.
const UnknownClass = "Unknown"

// Damage is a single detected defect instance. BBox is [x1, y1, x2, y2] in
// original-image pixel coordinates.
type Damage struct {
	Class      string  `json:"class"`
	Confidence float64 `json:"confidence"`
	BBox       [4]int  `json:"bbox"`
}

// DamageEntry tolerates both shapes a stored damage list may contain: the
// structured record and the legacy plain-string label. The union is resolved
// here, at the data-access boundary, and nowhere deeper.
type DamageEntry struct {
	Legacy      bool
	LegacyLabel string
	Damage      Damage
}

func (e *DamageEntry) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		e.Legacy = true
		return json.Unmarshal(data, &e.LegacyLabel)
	}
	return json.Unmarshal(data, &e.Damage)
}

// Label returns the damage class regardless of entry shape.
func (e *DamageEntry) Label() string {
	if e.Legacy {
		if e.LegacyLabel == "" {
			return UnknownClass
		}
		return e.LegacyLabel
	}
	if e.Damage.Class == "" {
		return UnknownClass
	}
	return e.Damage.Class
}

// Confidence returns the entry confidence; legacy labels carry none.
func (e *DamageEntry) Confidence() float64 {
	if e.Legacy {
		return 0
	}
	return e.Damage.Confidence
}

// DetectionEvent is one persisted detection record. The damage list and the
// score list are kept as raw JSON so stored rows round-trip through the API
// exactly as they were inserted.
type DetectionEvent struct {
	ID               int64           `json:"id"`
	ImageID          string          `json:"image_id"`
	ImagePath        string          `json:"image_path,omitempty"`
	Latitude         float64         `json:"latitude"`
	Longitude        float64         `json:"longitude"`
	DetectedDamages  json.RawMessage `json:"detected_damages"`
	ConfidenceScores json.RawMessage `json:"confidence_scores"`
	Timestamp        time.Time       `json:"timestamp"`
}

// DetectionStats summarizes stored detections.
type DetectionStats struct {
	TotalDetections        int            `json:"total_detections"`
	DamageTypeDistribution map[string]int `json:"damage_type_distribution"`
}
