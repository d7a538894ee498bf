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

func TestBreakerStartsClosed(t *testing.T) {
	b := NewBreaker(BreakerConfig{Name: "test", FailureThreshold: 2, OpenDuration: time.Minute})
	assert.Equal(t, "closed", b.State())
}

func TestBreakerTripsOpenAfterConsecutiveFailures(t *testing.T) {
	b := NewBreaker(BreakerConfig{Name: "test", FailureThreshold: 2, OpenDuration: time.Minute})
	failing := func(ctx context.Context) (interface{}, error) { return nil, errors.New("boom") }

	_, err := b.Execute(context.Background(), failing)
	require.Error(t, err)
	assert.Equal(t, "closed", b.State(), "one failure should not trip a 2-failure threshold")

	_, err = b.Execute(context.Background(), failing)
	require.Error(t, err)
	assert.Equal(t, "open", b.State(), "two consecutive failures should trip the breaker")
}

func TestBreakerRejectsWhileOpen(t *testing.T) {
	b := NewBreaker(BreakerConfig{Name: "test", FailureThreshold: 1, OpenDuration: time.Minute})
	failing := func(ctx context.Context) (interface{}, error) { return nil, errors.New("boom") }

	_, err := b.Execute(context.Background(), failing)
	require.Error(t, err)
	require.Equal(t, "open", b.State())

	_, err = b.Execute(context.Background(), func(ctx context.Context) (interface{}, error) {
		t.Fatal("fn must not run while the circuit is open")
		return nil, nil
	})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.KindCircuitOpen))
}

func TestBreakerHalfOpensAfterTimeoutAndRecovers(t *testing.T) {
	b := NewBreaker(BreakerConfig{Name: "test", FailureThreshold: 1, OpenDuration: 10 * time.Millisecond})
	_, err := b.Execute(context.Background(), func(ctx context.Context) (interface{}, error) {
		return nil, errors.New("boom")
	})
	require.Error(t, err)
	require.Equal(t, "open", b.State())

	time.Sleep(20 * time.Millisecond)

	result, err := b.Execute(context.Background(), func(ctx context.Context) (interface{}, error) {
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", result)
	assert.Equal(t, "closed", b.State(), "a successful half-open probe should close the breaker")
}
