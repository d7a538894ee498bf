package scoring

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSurgeTrackerFirstObservationNeverSurges(t *testing.T) {
	tracker := NewSurgeTracker(SurgePercentage)
	detected, pct := tracker.Observe("Borno", "Maiduguri", 50)
	assert.False(t, detected, "expected the first observation for a location to never surge")
	assert.Equal(t, 0.0, pct, "expected 0%% increase on first observation")
}

func TestSurgeTrackerDetectsIncreaseAboveThreshold(t *testing.T) {
	tracker := NewSurgeTracker(20)
	tracker.Observe("Borno", "Maiduguri", 50)

	detected, pct := tracker.Observe("Borno", "Maiduguri", 65) // +30%
	assert.True(t, detected, "expected a 30% increase to surge against a 20% threshold")
	assert.InDelta(t, 30, pct, 0.1, "percentIncrease")
}

func TestSurgeTrackerIgnoresIncreaseBelowThreshold(t *testing.T) {
	tracker := NewSurgeTracker(20)
	tracker.Observe("Kano", "Fagge", 50)

	detected, _ := tracker.Observe("Kano", "Fagge", 55) // +10%
	assert.False(t, detected, "expected a 10% increase to not surge against a 20% threshold")
}

func TestSurgeTrackerTracksLocationsIndependently(t *testing.T) {
	tracker := NewSurgeTracker(20)
	tracker.Observe("Borno", "Maiduguri", 80)
	detected, _ := tracker.Observe("Kano", "Fagge", 10)
	assert.False(t, detected, "a different (state,lga) key should never surge off another location's baseline")
}

func TestSurgeTrackerSaveAndLoadSnapshot(t *testing.T) {
	tracker := NewSurgeTracker(20)
	tracker.Observe("Borno", "Maiduguri", 42)
	tracker.Observe("Kano", "Fagge", 17)

	path := filepath.Join(t.TempDir(), "surge_state.msgpack")
	require.NoError(t, tracker.SaveSnapshot(path))

	restored := NewSurgeTracker(20)
	require.NoError(t, restored.LoadSnapshot(path))

	detected, _ := restored.Observe("Borno", "Maiduguri", 50) // +19% over restored baseline of 42
	assert.False(t, detected, "expected the restored baseline to be honored, got a surge where none should occur")

	detected, _ = restored.Observe("Kano", "Fagge", 30) // +76.5% over restored baseline of 17
	assert.True(t, detected, "expected a surge to be detected using the restored baseline")
}

func TestSurgeTrackerLoadSnapshotMissingFileIsNotAnError(t *testing.T) {
	tracker := NewSurgeTracker(20)
	path := filepath.Join(t.TempDir(), "does_not_exist.msgpack")
	assert.NoError(t, tracker.LoadSnapshot(path), "expected no error loading a missing snapshot")
}
