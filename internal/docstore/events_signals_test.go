package docstore

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/naija-watch/conflict-monitor/internal/domain"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	db, err := New(Config{Path: path, Profile: ProfileStandard})
	require.NoError(t, err, "failed to open test docstore")
	require.NoError(t, db.Migrate(), "failed to migrate test docstore")
	t.Cleanup(func() { db.Close() })
	return db
}

func TestEventRepoInsertAndGet(t *testing.T) {
	db := newTestDB(t)
	repo := NewEventRepo(db)
	ctx := context.Background()

	event := domain.ParsedEvent{
		ID:        "evt-1",
		ArticleID: "art-1",
		EventType: domain.EventTypeClash,
		State:     "Kano",
		LGA:       "Fagge",
		Severity:  domain.SeverityHigh,
		ParsedAt:  time.Now().UTC().Truncate(time.Second),
	}
	require.NoError(t, repo.Insert(ctx, event))

	got, err := repo.Get(ctx, "evt-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, "Kano", got.State)
	require.Equal(t, domain.EventTypeClash, got.EventType)
}

func TestEventRepoListPendingExcludesScoredEvents(t *testing.T) {
	db := newTestDB(t)
	events := NewEventRepo(db)
	signals := NewSignalRepo(db)
	ctx := context.Background()

	for _, id := range []string{"evt-a", "evt-b"} {
		require.NoError(t, events.Insert(ctx, domain.ParsedEvent{
			ID: id, ArticleID: id, EventType: domain.EventTypeAttack, State: "Borno", LGA: "Maiduguri",
			Severity: domain.SeverityMedium, ParsedAt: time.Now().UTC(),
		}))
	}

	signal := domain.RiskSignal{
		ID: "sig-a", EventID: "evt-a", State: "Borno", LGA: "Maiduguri",
		RiskScore: 50, Version: 1, CalculatedAt: time.Now().UTC(),
	}
	require.NoError(t, signals.Insert(ctx, signal))

	pending, err := events.ListPending(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	require.Equal(t, "evt-b", pending[0].ID, "expected only evt-b pending")
}

func TestSignalRepoHasSignalForEventIgnoresSimulationRows(t *testing.T) {
	db := newTestDB(t)
	signals := NewSignalRepo(db)
	ctx := context.Background()

	simSignal := domain.RiskSignal{
		ID: "sig-sim", EventID: "evt-x", State: "Lagos", LGA: "Ikeja",
		RiskScore: 70, Version: 1, CalculatedAt: time.Now().UTC(),
		Simulation: domain.SimulationFields{IsSimulation: true, SimulationID: "sim-1"},
	}
	require.NoError(t, signals.Insert(ctx, simSignal))

	has, err := signals.HasSignalForEvent(ctx, "evt-x")
	require.NoError(t, err)
	require.False(t, has, "a simulation-only signal should not count as an existing signal for the event")
}

func TestSignalRepoNextVersionIncrementsPerLocation(t *testing.T) {
	db := newTestDB(t)
	signals := NewSignalRepo(db)
	ctx := context.Background()

	v1, err := signals.NextVersion(ctx, "Lagos", "Ikeja")
	require.NoError(t, err)
	require.Equal(t, 1, v1, "expected first version to be 1")

	require.NoError(t, signals.Insert(ctx, domain.RiskSignal{
		ID: "sig-1", State: "Lagos", LGA: "Ikeja", RiskScore: 40, Version: v1, CalculatedAt: time.Now().UTC(),
	}))

	v2, err := signals.NextVersion(ctx, "Lagos", "Ikeja")
	require.NoError(t, err)
	require.Equal(t, 2, v2, "expected second version to be 2")

	vOther, err := signals.NextVersion(ctx, "Kano", "Fagge")
	require.NoError(t, err)
	require.Equal(t, 1, vOther, "expected a different location's version to start at 1")
}

func TestSignalRepoListReturnsLatestVersionOnly(t *testing.T) {
	db := newTestDB(t)
	signals := NewSignalRepo(db)
	ctx := context.Background()

	base := time.Now().UTC()
	require.NoError(t, signals.Insert(ctx, domain.RiskSignal{
		ID: "sig-v1", State: "Plateau", LGA: "Jos North", RiskScore: 40, Version: 1, CalculatedAt: base,
	}))
	require.NoError(t, signals.Insert(ctx, domain.RiskSignal{
		ID: "sig-v2", State: "Plateau", LGA: "Jos North", RiskScore: 75, Version: 2, CalculatedAt: base.Add(time.Minute),
	}))

	list, err := signals.List(ctx, "", 10)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, "sig-v2", list[0].ID, "expected only the latest version sig-v2")
}
