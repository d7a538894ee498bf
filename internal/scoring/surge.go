package scoring

import (
	"fmt"
	"os"
	"sync"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/naija-watch/conflict-monitor/internal/domain"
)

// SurgePercentage is the default percentage-increase threshold that flips
// surge_detected, overridable via SURGE_PERCENTAGE.
const SurgePercentage = 20.0

// surgeSnapshot is the on-disk shape of a SurgeTracker, msgpack-encoded
// rather than JSON: this file is internal warm-restart state, not a wire
// message another service parses, so it doesn't need to follow the JSON
// convention the Message Bus and Document Store use.
type surgeSnapshot struct {
	State string  `msgpack:"state"`
	LGA   string  `msgpack:"lga"`
	Score float64 `msgpack:"score"`
}

// SurgeTracker holds the last-seen risk score per (state,lga) so the
// Scoring Service can detect a sudden jump in consecutive signals for the
// same location, guarded by a mutex since the event-processing worker pool
// calls Observe concurrently.
type SurgeTracker struct {
	mu        sync.Mutex
	threshold float64
	last      domain.SurgeState
}

// NewSurgeTracker builds an empty tracker with the given detection
// threshold (percentage points).
func NewSurgeTracker(threshold float64) *SurgeTracker {
	if threshold <= 0 {
		threshold = SurgePercentage
	}
	return &SurgeTracker{threshold: threshold, last: make(domain.SurgeState)}
}

// Observe records score for (state,lga) and reports whether it constitutes
// a surge relative to the previous observation: a percentage increase
// strictly greater than the configured threshold. The first observation for
// a location never surges, since there's no prior value to compare against.
func (t *SurgeTracker) Observe(state, lga string, score float64) (detected bool, percentIncrease float64) {
	key := domain.LocationKey{State: state, LGA: lga}

	t.mu.Lock()
	defer t.mu.Unlock()

	prev, ok := t.last[key]
	t.last[key] = score
	if !ok || prev <= 0 {
		return false, 0
	}

	increase := ((score - prev) / prev) * 100
	if increase > t.threshold {
		return true, increase
	}
	return false, increase
}

// Snapshot returns a copy of the current (state,lga) -> score map.
func (t *SurgeTracker) Snapshot() domain.SurgeState {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make(domain.SurgeState, len(t.last))
	for k, v := range t.last {
		out[k] = v
	}
	return out
}

// SaveSnapshot msgpack-encodes the current surge state to path, so a
// restarted process doesn't treat every location's first post-restart
// signal as a non-surge baseline.
func (t *SurgeTracker) SaveSnapshot(path string) error {
	t.mu.Lock()
	entries := make([]surgeSnapshot, 0, len(t.last))
	for k, v := range t.last {
		entries = append(entries, surgeSnapshot{State: k.State, LGA: k.LGA, Score: v})
	}
	t.mu.Unlock()

	data, err := msgpack.Marshal(entries)
	if err != nil {
		return fmt.Errorf("failed to encode surge snapshot: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write surge snapshot temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to atomically replace surge snapshot: %w", err)
	}
	return nil
}

// LoadSnapshot restores state previously written by SaveSnapshot. A missing
// file is not an error: it just means a cold start with an empty baseline.
func (t *SurgeTracker) LoadSnapshot(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read surge snapshot: %w", err)
	}
	if len(data) == 0 {
		return nil
	}

	var entries []surgeSnapshot
	if err := msgpack.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("failed to decode surge snapshot: %w", err)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.last = make(domain.SurgeState, len(entries))
	for _, e := range entries {
		t.last[domain.LocationKey{State: e.State, LGA: e.LGA}] = e.Score
	}
	return nil
}
