package reliability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/naija-watch/conflict-monitor/internal/apperrors"
)

func fastPolicy(maxRetries int) BackoffPolicy {
	return BackoffPolicy{Initial: time.Millisecond, Factor: 2, Max: 5 * time.Millisecond, MaxRetries: maxRetries}
}

func TestRetrySucceedsOnFirstAttempt(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), fastPolicy(3), func(ctx context.Context) error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestRetryStopsImmediatelyOnNonTransientError(t *testing.T) {
	calls := 0
	sentinel := apperrors.ValidationFailure("bad payload")
	err := Retry(context.Background(), fastPolicy(3), func(ctx context.Context) error {
		calls++
		return sentinel
	})
	assert.Equal(t, sentinel, err)
	assert.Equal(t, 1, calls, "non-transient errors must not be retried")
}

func TestRetryExhaustsMaxRetriesOnTransientError(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), fastPolicy(3), func(ctx context.Context) error {
		calls++
		return apperrors.TransientExternal(errors.New("timeout"), "fetch failed")
	})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.KindTransientExternal))
	assert.Equal(t, 4, calls, "expected MaxRetries+1 attempts")
}

func TestRetrySucceedsAfterTransientFailures(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), fastPolicy(3), func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return apperrors.TransientExternal(errors.New("timeout"), "fetch failed")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetryStopsOnContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := Retry(ctx, fastPolicy(5), func(ctx context.Context) error {
		calls++
		if calls == 1 {
			cancel()
		}
		return apperrors.TransientExternal(errors.New("timeout"), "fetch failed")
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}
