package sqlite

import (
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roadserver/internal/models"
)

func newTestRepo(t *testing.T) *DetectionRepository {
	t.Helper()

	db, err := New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewDetectionRepository(db)
}

func TestInsertAndGetByID(t *testing.T) {
	repo := newTestRepo(t)

	ev := &models.DetectionEvent{
		ImageID:          "img-1",
		ImagePath:        "/uploads/img-1.jpg",
		Latitude:         40.7128,
		Longitude:        -74.006,
		DetectedDamages:  json.RawMessage(`[{"class":"Potholes","confidence":0.91,"bbox":[10,20,110,220]}]`),
		ConfidenceScores: json.RawMessage(`[0.91]`),
	}

	id, err := repo.Insert(ev)
	require.NoError(t, err)
	require.Greater(t, id, int64(0))

	got, err := repo.GetByID(id)
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.Equal(t, id, got.ID)
	assert.Equal(t, "img-1", got.ImageID)
	assert.Equal(t, "/uploads/img-1.jpg", got.ImagePath)
	assert.Equal(t, 40.7128, got.Latitude)
	assert.Equal(t, -74.006, got.Longitude)
	assert.JSONEq(t, string(ev.DetectedDamages), string(got.DetectedDamages))
	assert.JSONEq(t, string(ev.ConfidenceScores), string(got.ConfidenceScores))
	assert.WithinDuration(t, time.Now().UTC(), got.Timestamp, time.Minute)
}

func TestGetByIDUnknown(t *testing.T) {
	repo := newTestRepo(t)

	got, err := repo.GetByID(999999)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestGetAllNewestFirst(t *testing.T) {
	repo := newTestRepo(t)

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	for i, imageID := range []string{"img-a", "img-b", "img-c"} {
		_, err := repo.Insert(&models.DetectionEvent{
			ImageID:         imageID,
			ImagePath:       "/uploads/" + imageID + ".jpg",
			DetectedDamages: json.RawMessage(`[]`),
			Timestamp:       base.Add(time.Duration(i) * time.Hour),
		})
		require.NoError(t, err)
	}

	events, err := repo.GetAll()
	require.NoError(t, err)
	require.Len(t, events, 3)

	assert.Equal(t, "img-c", events[0].ImageID)
	assert.Equal(t, "img-b", events[1].ImageID)
	assert.Equal(t, "img-a", events[2].ImageID)
}

func TestInsertDuplicateImageID(t *testing.T) {
	repo := newTestRepo(t)

	ev := &models.DetectionEvent{
		ImageID:         "img-dup",
		ImagePath:       "/uploads/img-dup.jpg",
		DetectedDamages: json.RawMessage(`[]`),
	}

	_, err := repo.Insert(ev)
	require.NoError(t, err)

	_, err = repo.Insert(ev)
	assert.Error(t, err)
}

func TestStats(t *testing.T) {
	repo := newTestRepo(t)

	rows := []json.RawMessage{
		json.RawMessage(`[{"class":"Potholes","confidence":0.9,"bbox":[0,0,10,10]},{"class":"Potholes","confidence":0.7,"bbox":[5,5,20,20]}]`),
		json.RawMessage(`["Alligator Crack"]`),
		json.RawMessage(`[{"confidence":0.4,"bbox":[1,1,2,2]}]`),
	}
	for i, damages := range rows {
		_, err := repo.Insert(&models.DetectionEvent{
			ImageID:         "img-" + string(rune('a'+i)),
			ImagePath:       "/uploads/x.jpg",
			DetectedDamages: damages,
		})
		require.NoError(t, err)
	}

	stats, err := repo.Stats()
	require.NoError(t, err)

	assert.Equal(t, 3, stats.TotalDetections)
	assert.Equal(t, 2, stats.DamageTypeDistribution["Potholes"])
	assert.Equal(t, 1, stats.DamageTypeDistribution["Alligator Crack"])
	assert.Equal(t, 1, stats.DamageTypeDistribution[models.UnknownClass])
}

func TestStatsEmpty(t *testing.T) {
	repo := newTestRepo(t)

	stats, err := repo.Stats()
	require.NoError(t, err)

	assert.Equal(t, 0, stats.TotalDetections)
	assert.Empty(t, stats.DamageTypeDistribution)
}
