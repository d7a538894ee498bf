package artifactstore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/naija-watch/conflict-monitor/internal/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(t.TempDir(), nil, zerolog.Nop())
	require.NoError(t, err, "failed to build test store")
	return store
}

func TestAppendAutomationLogTrimsToBound(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < maxAutomationLogs+10; i++ {
		require.NoError(t, store.AppendAutomationLog(ctx, domain.AutomationLog{
			Timestamp: time.Now().UTC(),
			EventType: "scrape",
			Status:    fmt.Sprintf("run-%d", i),
		}))
	}

	logs, err := store.AutomationLogs(0)
	require.NoError(t, err)
	assert.Len(t, logs, maxAutomationLogs, "expected the log file to be trimmed to its bound")
	assert.Equal(t, fmt.Sprintf("run-%d", maxAutomationLogs+9), logs[0].Status, "expected newest-first ordering")
}

func TestAppendHighRiskAlertTrimsToBound(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < maxHighRiskAlerts+5; i++ {
		require.NoError(t, store.AppendHighRiskAlert(ctx, domain.HighRiskAlert{
			Timestamp: time.Now().UTC(),
			AlertType: "high_risk_articles",
			Count:     i,
		}))
	}

	alerts, err := store.HighRiskAlerts(0)
	require.NoError(t, err)
	assert.Len(t, alerts, maxHighRiskAlerts)
	assert.Equal(t, maxHighRiskAlerts+4, alerts[0].Count, "expected the newest alert first")
}

func TestAutomationLogsHonorsLimit(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, store.AppendAutomationLog(ctx, domain.AutomationLog{
			Timestamp: time.Now().UTC(), EventType: "scrape", Status: "success",
		}))
	}

	logs, err := store.AutomationLogs(2)
	require.NoError(t, err)
	assert.Len(t, logs, 2)
}

func TestWriteIsAtomicOnDisk(t *testing.T) {
	dir := t.TempDir()
	store, err := New(dir, nil, zerolog.Nop())
	require.NoError(t, err)

	require.NoError(t, store.AppendAutomationLog(context.Background(), domain.AutomationLog{
		Timestamp: time.Now().UTC(), EventType: "scrape", Status: "success",
	}))

	_, err = os.Stat(filepath.Join(dir, automationLogsFile+".tmp"))
	assert.True(t, os.IsNotExist(err), "expected the temp file to be renamed away after a write")

	data, err := os.ReadFile(filepath.Join(dir, automationLogsFile))
	require.NoError(t, err)
	var logs []domain.AutomationLog
	require.NoError(t, json.Unmarshal(data, &logs), "expected the on-disk file to be a valid JSON array")
	assert.Len(t, logs, 1)
}

func TestReadMissingFilesReturnsEmpty(t *testing.T) {
	store := newTestStore(t)

	logs, err := store.AutomationLogs(10)
	require.NoError(t, err)
	assert.Empty(t, logs, "expected no logs before any write")

	alerts, err := store.HighRiskAlerts(10)
	require.NoError(t, err)
	assert.Empty(t, alerts, "expected no alerts before any write")
}
