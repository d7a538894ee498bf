// Package artifactstore implements the Artifact Store: the shared file
// area holding automation_logs.json, high_risk_alerts.json, and the
// reference GeoJSON/CSV tables, with an optional S3/R2 mirror.
package artifactstore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"

	"github.com/naija-watch/conflict-monitor/internal/domain"
)

const (
	automationLogsFile  = "automation_logs.json"
	highRiskAlertsFile  = "high_risk_alerts.json"
	maxAutomationLogs   = 100
	maxHighRiskAlerts   = 20
)

// Mirror optionally uploads a written artifact to a cloud object store.
// Implemented by S3Mirror; nil means local-disk-only.
type Mirror interface {
	Upload(ctx context.Context, name string, data []byte) error
}

// Store is the single writer of automation_logs.json and
// high_risk_alerts.json, holding an exclusive in-process lock (mu) plus a
// temp-file-rename write pattern so readers always see a complete file.
type Store struct {
	dir    string
	mu     sync.Mutex
	mirror Mirror
	log    zerolog.Logger
}

// New constructs a Store rooted at dir, creating it if necessary.
func New(dir string, mirror Mirror, log zerolog.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create artifact store directory: %w", err)
	}
	return &Store{dir: dir, mirror: mirror, log: log.With().Str("component", "artifactstore").Logger()}, nil
}

// AppendAutomationLog appends entry to automation_logs.json, trimming to
// the newest maxAutomationLogs entries (newest-last).
func (s *Store) AppendAutomationLog(ctx context.Context, entry domain.AutomationLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var logs []domain.AutomationLog
	if err := s.readJSON(automationLogsFile, &logs); err != nil {
		return err
	}
	logs = append(logs, entry)
	if len(logs) > maxAutomationLogs {
		logs = logs[len(logs)-maxAutomationLogs:]
	}
	return s.writeJSON(ctx, automationLogsFile, logs)
}

// AppendHighRiskAlert appends alert to high_risk_alerts.json, trimming to
// the newest maxHighRiskAlerts entries.
func (s *Store) AppendHighRiskAlert(ctx context.Context, alert domain.HighRiskAlert) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var alerts []domain.HighRiskAlert
	if err := s.readJSON(highRiskAlertsFile, &alerts); err != nil {
		return err
	}
	alerts = append(alerts, alert)
	if len(alerts) > maxHighRiskAlerts {
		alerts = alerts[len(alerts)-maxHighRiskAlerts:]
	}
	return s.writeJSON(ctx, highRiskAlertsFile, alerts)
}

// AutomationLogs returns the newest-first slice of up to limit entries.
func (s *Store) AutomationLogs(limit int) ([]domain.AutomationLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var logs []domain.AutomationLog
	if err := s.readJSON(automationLogsFile, &logs); err != nil {
		return nil, err
	}
	reversed := make([]domain.AutomationLog, len(logs))
	for i, l := range logs {
		reversed[len(logs)-1-i] = l
	}
	if limit > 0 && limit < len(reversed) {
		reversed = reversed[:limit]
	}
	return reversed, nil
}

// HighRiskAlerts returns the newest-first slice of up to limit entries.
func (s *Store) HighRiskAlerts(limit int) ([]domain.HighRiskAlert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var alerts []domain.HighRiskAlert
	if err := s.readJSON(highRiskAlertsFile, &alerts); err != nil {
		return nil, err
	}
	reversed := make([]domain.HighRiskAlert, len(alerts))
	for i, a := range alerts {
		reversed[len(alerts)-1-i] = a
	}
	if limit > 0 && limit < len(reversed) {
		reversed = reversed[:limit]
	}
	return reversed, nil
}

func (s *Store) readJSON(name string, out interface{}) error {
	path := filepath.Join(s.dir, name)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read %s: %w", name, err)
	}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to unmarshal %s: %w", name, err)
	}
	return nil
}

// writeJSON writes data to a temp file then renames it over the target,
// giving readers an atomic view of the file at all times.
func (s *Store) writeJSON(ctx context.Context, name string, data interface{}) error {
	encoded, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", name, err)
	}

	path := filepath.Join(s.dir, name)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, encoded, 0o644); err != nil {
		return fmt.Errorf("failed to write temp file for %s: %w", name, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to atomically replace %s: %w", name, err)
	}

	if s.mirror != nil {
		if err := s.mirror.Upload(ctx, name, encoded); err != nil {
			s.log.Warn().Err(err).Str("file", name).Msg("artifact mirror upload failed, continuing with local copy only")
		}
	}
	return nil
}
