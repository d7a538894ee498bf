package reliability

import (
	"context"
	"time"

	"github.com/sony/gobreaker"

	"github.com/naija-watch/conflict-monitor/internal/apperrors"
)

// Breaker wraps gobreaker.CircuitBreaker with the policy: 5
// consecutive failures trips the circuit open for 30s.
type Breaker struct {
	cb *gobreaker.CircuitBreaker
}

// BreakerConfig configures a Breaker.
type BreakerConfig struct {
	Name                string
	FailureThreshold    uint32
	OpenDuration        time.Duration
}

// DefaultExtractionBreaker is the LLM-call policy: open after 5
// consecutive failures, stay open 30s.
var DefaultExtractionBreaker = BreakerConfig{
	Name:             "llm-analyzer",
	FailureThreshold: 5,
	OpenDuration:     30 * time.Second,
}

// NewBreaker constructs a Breaker from cfg.
func NewBreaker(cfg BreakerConfig) *Breaker {
	settings := gobreaker.Settings{
		Name:    cfg.Name,
		Timeout: cfg.OpenDuration,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
	}
	return &Breaker{cb: gobreaker.NewCircuitBreaker(settings)}
}

// Execute runs fn through the circuit breaker, translating an open-circuit
// rejection into an apperrors.CircuitOpen error.
func (b *Breaker) Execute(ctx context.Context, fn func(ctx context.Context) (interface{}, error)) (interface{}, error) {
	result, err := b.cb.Execute(func() (interface{}, error) {
		return fn(ctx)
	})
	if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
		return nil, apperrors.CircuitOpen(err, "llm analyzer circuit is open")
	}
	return result, err
}

// State exposes the breaker's current state for /api/v1/status reporting.
func (b *Breaker) State() string {
	return b.cb.State().String()
}
