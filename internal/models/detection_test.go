package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDamageEntryStructured(t *testing.T) {
	var entry DamageEntry
	require.NoError(t, json.Unmarshal([]byte(`{"class":"Potholes","confidence":0.85,"bbox":[1,2,3,4]}`), &entry))

	assert.False(t, entry.Legacy)
	assert.Equal(t, "Potholes", entry.Label())
	assert.InDelta(t, 0.85, entry.Confidence(), 1e-9)
	assert.Equal(t, [4]int{1, 2, 3, 4}, entry.Damage.BBox)
}

func TestDamageEntryLegacyLabel(t *testing.T) {
	var entry DamageEntry
	require.NoError(t, json.Unmarshal([]byte(`"Transverse Crack"`), &entry))

	assert.True(t, entry.Legacy)
	assert.Equal(t, "Transverse Crack", entry.Label())
	assert.Zero(t, entry.Confidence())
}

func TestDamageEntryMissingClass(t *testing.T) {
	var entry DamageEntry
	require.NoError(t, json.Unmarshal([]byte(`{"confidence":0.5}`), &entry))

	assert.Equal(t, UnknownClass, entry.Label())
}

func TestDamageEntryMixedList(t *testing.T) {
	var entries []DamageEntry
	raw := `[{"class":"Potholes","confidence":0.9,"bbox":[0,0,10,10]},"Alligator Crack",{}]`
	require.NoError(t, json.Unmarshal([]byte(raw), &entries))
	require.Len(t, entries, 3)

	assert.Equal(t, "Potholes", entries[0].Label())
	assert.Equal(t, "Alligator Crack", entries[1].Label())
	assert.Equal(t, UnknownClass, entries[2].Label())
}
