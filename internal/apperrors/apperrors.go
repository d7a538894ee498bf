// Package apperrors gives the error taxonomy of the pipeline concrete Go
// types so callers can branch on error kind with errors.As instead of
// exception-style control flow.
package apperrors

import "fmt"

// Kind identifies which branch of the error taxonomy an error belongs to.
type Kind string

const (
	// KindTransientExternal covers network/LLM/doc-store timeouts: retry
	// with backoff, surface as partial failure once exhausted.
	KindTransientExternal Kind = "transient_external"
	// KindValidationFailure covers terminal per-item failures (missing
	// fields, non-JSON, out-of-range values). Never retried.
	KindValidationFailure Kind = "validation_failure"
	// KindDuplicateItem covers URL or content-hash collisions. Dropped
	// silently, counted in logs.
	KindDuplicateItem Kind = "duplicate_item"
	// KindSchedulerBusy is returned by an on-demand trigger when a run is
	// already active.
	KindSchedulerBusy Kind = "scheduler_busy"
	// KindCircuitOpen indicates the circuit breaker rejected the call.
	KindCircuitOpen Kind = "circuit_open"
	// KindConfigurationError covers missing reference data; the service
	// starts in degraded mode rather than failing outright.
	KindConfigurationError Kind = "configuration_error"
)

// Error is the concrete type backing every Kind above.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newf(kind Kind, err error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

// TransientExternal wraps a retriable external-dependency failure.
func TransientExternal(err error, format string, args ...interface{}) *Error {
	return newf(KindTransientExternal, err, format, args...)
}

// ValidationFailure wraps a terminal per-item validation failure.
func ValidationFailure(format string, args ...interface{}) *Error {
	return newf(KindValidationFailure, nil, format, args...)
}

// DuplicateItem wraps a dedup-gate rejection.
func DuplicateItem(format string, args ...interface{}) *Error {
	return newf(KindDuplicateItem, nil, format, args...)
}

// SchedulerBusy wraps an on-demand-trigger rejection while a run is active.
func SchedulerBusy(format string, args ...interface{}) *Error {
	return newf(KindSchedulerBusy, nil, format, args...)
}

// CircuitOpen wraps a circuit-breaker rejection.
func CircuitOpen(err error, format string, args ...interface{}) *Error {
	return newf(KindCircuitOpen, err, format, args...)
}

// ConfigurationError wraps a missing-reference-data condition.
func ConfigurationError(err error, format string, args ...interface{}) *Error {
	return newf(KindConfigurationError, err, format, args...)
}

// Is reports whether err carries the given Kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if ok := asError(err, &e); !ok {
		return false
	}
	return e.Kind == kind
}

func asError(err error, target **Error) bool {
	for err != nil {
		if e, ok := err.(*Error); ok {
			*target = e
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}

// Code maps a Kind to the stable error_code surfaced on API responses.
func Code(kind Kind) string {
	return string(kind)
}
