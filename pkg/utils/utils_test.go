package utils

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetrySucceedsAfterTransientFailures(t *testing.T) {
	attempts := 0
	err := Retry(3, 0, func() error {
		attempts++
		if attempts < 3 {
			return errors.New("transient")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestRetryReturnsLastError(t *testing.T) {
	attempts := 0
	lastErr := errors.New("still broken")
	err := Retry(3, 0, func() error {
		attempts++
		return lastErr
	})

	assert.Equal(t, lastErr, err)
	assert.Equal(t, 3, attempts)
}

func TestRetryWithBackoffStopsOnFirstSuccess(t *testing.T) {
	attempts := 0
	err := RetryWithBackoff(5, 0, 0, func() error {
		attempts++
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, attempts)
}

func TestRetryWithBackoffExhaustsAttempts(t *testing.T) {
	attempts := 0
	err := RetryWithBackoff(4, 0, 0, func() error {
		attempts++
		return errors.New("down")
	})

	assert.Error(t, err)
	assert.Equal(t, 4, attempts)
}

func TestSnowflakeIDsAreUnique(t *testing.T) {
	gen := NewSnowflakeID(1)

	seen := make(map[int64]struct{})
	for i := 0; i < 10000; i++ {
		id := gen.Generate()
		_, dup := seen[id]
		require.False(t, dup, "duplicate id %d", id)
		seen[id] = struct{}{}
	}
}
