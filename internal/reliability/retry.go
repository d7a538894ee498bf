// Package reliability provides the retry/backoff and circuit-breaker
// helpers shared by the Ingestion Service's fetchers and the Extraction
// Service's LLM calls.
package reliability

import (
	"context"
	"time"

	"github.com/naija-watch/conflict-monitor/internal/apperrors"
)

// BackoffPolicy describes an exponential backoff schedule.
type BackoffPolicy struct {
	Initial    time.Duration
	Factor     float64
	Max        time.Duration
	MaxRetries int
}

// IngestionBackoff is the fetcher retry policy: initial 2s,
// factor 2, max 10s, max 3 attempts.
var IngestionBackoff = BackoffPolicy{Initial: 2 * time.Second, Factor: 2, Max: 10 * time.Second, MaxRetries: 2}

// ExtractionBackoff is the LLM-call retry policy: factor 2,
// min 2s, max 10s, max 3 attempts.
var ExtractionBackoff = BackoffPolicy{Initial: 2 * time.Second, Factor: 2, Max: 10 * time.Second, MaxRetries: 2}

// Retry runs fn up to policy.MaxRetries+1 times, sleeping an exponentially
// increasing backoff between attempts. It stops early if fn's error is not
// a TransientExternal apperrors.Error, since only transient failures are
// retriable.
func Retry(ctx context.Context, policy BackoffPolicy, fn func(ctx context.Context) error) error {
	delay := policy.Initial
	var lastErr error

	for attempt := 0; attempt <= policy.MaxRetries; attempt++ {
		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}
		if !apperrors.Is(lastErr, apperrors.KindTransientExternal) {
			return lastErr
		}
		if attempt == policy.MaxRetries {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}

		delay = time.Duration(float64(delay) * policy.Factor)
		if delay > policy.Max {
			delay = policy.Max
		}
	}
	return lastErr
}
