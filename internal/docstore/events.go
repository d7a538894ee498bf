package docstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/naija-watch/conflict-monitor/internal/apperrors"
	"github.com/naija-watch/conflict-monitor/internal/domain"
)

// EventRepo persists domain.ParsedEvent rows. Events are immutable once
// written; the Extraction Service is the sole writer.
type EventRepo struct {
	db *DB
}

// NewEventRepo constructs an EventRepo over db.
func NewEventRepo(db *DB) *EventRepo {
	return &EventRepo{db: db}
}

// Insert persists a new parsed event. Re-delivery of the same article_id
// produces a duplicate row by design at this layer; the Extraction Service
// enforces idempotency by flipping the source article's processing_status
// before acking, so a redelivered message never reaches here twice.
func (r *EventRepo) Insert(ctx context.Context, e domain.ParsedEvent) error {
	var confidence interface{}
	if e.ConfidenceScore != nil {
		confidence = *e.ConfidenceScore
	}
	_, err := r.db.Conn().ExecContext(ctx,
		`INSERT INTO parsed_events (id, article_id, event_type, state, lga, severity, fatalities, conflict_actor, parsed_at, confidence_score, title, content)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.ArticleID, string(e.EventType), e.State, e.LGA, string(e.Severity), e.Fatalities,
		nullableString(e.ConflictActor), e.ParsedAt.Format(time.RFC3339), confidence,
		nullableString(e.Title), nullableString(e.Content),
	)
	if err != nil {
		return apperrors.TransientExternal(err, "failed to insert parsed event %q", e.ID)
	}
	return nil
}

// Get fetches a single parsed event by id.
func (r *EventRepo) Get(ctx context.Context, id string) (*domain.ParsedEvent, error) {
	row := r.db.Conn().QueryRowContext(ctx,
		`SELECT id, article_id, event_type, state, lga, severity, fatalities, conflict_actor, parsed_at, confidence_score, title, content
		 FROM parsed_events WHERE id = ?`, id)
	return scanEvent(row)
}

// ListPending returns parsed events that have no corresponding risk_signal
// row yet (i.e. not yet scored), oldest first, used by the scoring
// service's predict() batch.
func (r *EventRepo) ListPending(ctx context.Context, limit int) ([]domain.ParsedEvent, error) {
	rows, err := r.db.Conn().QueryContext(ctx,
		`SELECT e.id, e.article_id, e.event_type, e.state, e.lga, e.severity, e.fatalities, e.conflict_actor, e.parsed_at, e.confidence_score, e.title, e.content
		 FROM parsed_events e
		 WHERE NOT EXISTS (SELECT 1 FROM risk_signals s WHERE s.event_id = e.id)
		 ORDER BY e.parsed_at ASC LIMIT ?`, limit)
	if err != nil {
		return nil, apperrors.TransientExternal(err, "failed to list pending events")
	}
	defer rows.Close()
	return scanEvents(rows)
}

// List returns all persisted events, newest first, bounded by limit. Used
// by simulate(), which scores "all persisted events".
func (r *EventRepo) List(ctx context.Context, limit int) ([]domain.ParsedEvent, error) {
	rows, err := r.db.Conn().QueryContext(ctx,
		`SELECT id, article_id, event_type, state, lga, severity, fatalities, conflict_actor, parsed_at, confidence_score, title, content
		 FROM parsed_events ORDER BY parsed_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, apperrors.TransientExternal(err, "failed to list events")
	}
	defer rows.Close()
	return scanEvents(rows)
}

func scanEvents(rows *sql.Rows) ([]domain.ParsedEvent, error) {
	var out []domain.ParsedEvent
	for rows.Next() {
		e, err := scanEventRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *e)
	}
	return out, rows.Err()
}

func scanEvent(row rowScanner) (*domain.ParsedEvent, error) {
	return scanEventRow(row)
}

func scanEventRow(row rowScanner) (*domain.ParsedEvent, error) {
	var e domain.ParsedEvent
	var eventType, severity, parsedAt string
	var actor, title, content sql.NullString
	var confidence sql.NullFloat64

	if err := row.Scan(&e.ID, &e.ArticleID, &eventType, &e.State, &e.LGA, &severity, &e.Fatalities,
		&actor, &parsedAt, &confidence, &title, &content); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, apperrors.TransientExternal(err, "failed to scan parsed event row")
	}

	parsed, err := time.Parse(time.RFC3339, parsedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse parsed_at %q: %w", parsedAt, err)
	}

	e.EventType = domain.EventType(eventType)
	e.Severity = domain.Severity(severity)
	e.ParsedAt = parsed
	if actor.Valid {
		e.ConflictActor = actor.String
	}
	if title.Valid {
		e.Title = title.String
	}
	if content.Valid {
		e.Content = content.String
	}
	if confidence.Valid {
		v := confidence.Float64
		e.ConfidenceScore = &v
	}
	return &e, nil
}
