package apperrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsMatchesDirectKind(t *testing.T) {
	err := TransientExternal(errors.New("boom"), "fetch failed")
	assert.True(t, Is(err, KindTransientExternal), "expected Is to match the error's own kind")
	assert.False(t, Is(err, KindValidationFailure), "expected Is to reject a mismatched kind")
}

func TestIsUnwrapsWrappedErrors(t *testing.T) {
	inner := ValidationFailure("missing field %s", "state")
	wrapped := fmt.Errorf("processing article: %w", inner)
	assert.True(t, Is(wrapped, KindValidationFailure), "expected Is to see through fmt.Errorf wrapping")
}

func TestIsFalseForPlainError(t *testing.T) {
	assert.False(t, Is(errors.New("plain"), KindCircuitOpen), "expected Is to return false for an error with no apperrors.Error in its chain")
}

func TestErrorMessageIncludesWrappedCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := TransientExternal(cause, "failed to reach bus")
	assert.Equal(t, cause, err.Unwrap(), "expected Unwrap to return the original cause")
	assert.NotEmpty(t, err.Error(), "expected a non-empty error message")
}

func TestCodeReturnsKindString(t *testing.T) {
	assert.Equal(t, "circuit_open", Code(KindCircuitOpen))
}
