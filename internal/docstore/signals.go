package docstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/naija-watch/conflict-monitor/internal/apperrors"
	"github.com/naija-watch/conflict-monitor/internal/domain"
)

// SignalRepo persists domain.RiskSignal rows. A signal is never mutated in
// place; re-scoring produces a new row with a higher Version.
type SignalRepo struct {
	db *DB
}

// NewSignalRepo constructs a SignalRepo over db.
func NewSignalRepo(db *DB) *SignalRepo {
	return &SignalRepo{db: db}
}

// HasSignalForEvent reports whether a non-simulation signal already exists
// for eventID, making re-delivery of the same parsed-event message a
// no-op.
func (r *SignalRepo) HasSignalForEvent(ctx context.Context, eventID string) (bool, error) {
	var count int
	err := r.db.Conn().QueryRowContext(ctx,
		`SELECT COUNT(*) FROM risk_signals WHERE event_id = ? AND is_simulation = 0`, eventID,
	).Scan(&count)
	if err != nil {
		return false, apperrors.TransientExternal(err, "failed to check existing signal for event %q", eventID)
	}
	return count > 0, nil
}

// NextVersion returns the next monotonic version for a (state,lga) bucket.
func (r *SignalRepo) NextVersion(ctx context.Context, state, lga string) (int, error) {
	var maxVersion sql.NullInt64
	err := r.db.Conn().QueryRowContext(ctx,
		`SELECT MAX(version) FROM risk_signals WHERE state = ? AND lga = ?`, state, lga,
	).Scan(&maxVersion)
	if err != nil {
		return 0, apperrors.TransientExternal(err, "failed to compute next signal version for %s/%s", state, lga)
	}
	if !maxVersion.Valid {
		return 1, nil
	}
	return int(maxVersion.Int64) + 1, nil
}

// Insert persists a RiskSignal, JSON-encoding the full payload and
// indexing the fields repositories filter by.
func (r *SignalRepo) Insert(ctx context.Context, s domain.RiskSignal) error {
	payload, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal risk signal %q: %w", s.ID, err)
	}

	isSim := 0
	if s.Simulation.IsSimulation {
		isSim = 1
	}

	_, err = r.db.Conn().ExecContext(ctx,
		`INSERT INTO risk_signals (id, event_id, state, lga, risk_score, version, is_simulation, simulation_id, calculated_at, payload)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.ID, nullableString(s.EventID), s.State, s.LGA, s.RiskScore, s.Version, isSim,
		nullableString(s.Simulation.SimulationID), s.CalculatedAt.Format(time.RFC3339), string(payload),
	)
	if err != nil {
		return apperrors.TransientExternal(err, "failed to insert risk signal %q", s.ID)
	}
	return nil
}

// List returns the latest-version non-simulation signal per (state,lga),
// optionally filtered by state, newest calculated_at first, bounded by
// limit.
func (r *SignalRepo) List(ctx context.Context, stateFilter string, limit int) ([]domain.RiskSignal, error) {
	query := `
		SELECT s.payload FROM risk_signals s
		INNER JOIN (
			SELECT state, lga, MAX(version) AS max_version
			FROM risk_signals WHERE is_simulation = 0
			GROUP BY state, lga
		) latest ON s.state = latest.state AND s.lga = latest.lga AND s.version = latest.max_version
		WHERE s.is_simulation = 0`
	args := []interface{}{}
	if stateFilter != "" {
		query += " AND s.state = ?"
		args = append(args, stateFilter)
	}
	query += " ORDER BY s.calculated_at DESC LIMIT ?"
	args = append(args, limit)

	rows, err := r.db.Conn().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.TransientExternal(err, "failed to list risk signals")
	}
	defer rows.Close()

	var out []domain.RiskSignal
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, apperrors.TransientExternal(err, "failed to scan risk signal row")
		}
		var s domain.RiskSignal
		if err := json.Unmarshal([]byte(payload), &s); err != nil {
			return nil, fmt.Errorf("failed to unmarshal risk signal: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
