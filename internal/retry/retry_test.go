package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type transientErr struct{ retry bool }

func (e *transientErr) Error() string     { return "transient" }
func (e *transientErr) IsRetryable() bool { return e.retry }

var fastConfig = Config{
	MaxAttempts: 3,
	BaseDelay:   time.Millisecond,
	MaxDelay:    5 * time.Millisecond,
	Backoff:     BackoffExponential,
}

func TestDo_SucceedsAfterTransientFailures(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastConfig, func(attempt int) error {
		calls++
		if attempt < 3 {
			return &transientErr{retry: true}
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDo_StopsOnPermanentError(t *testing.T) {
	calls := 0
	permanent := errors.New("permanent")
	err := Do(context.Background(), fastConfig, func(int) error {
		calls++
		return permanent
	})

	assert.ErrorIs(t, err, permanent)
	assert.Equal(t, 1, calls)
}

func TestDo_Exhausted(t *testing.T) {
	err := Do(context.Background(), fastConfig, func(int) error {
		return &transientErr{retry: true}
	})

	var exhausted *ExhaustedError
	require.True(t, errors.As(err, &exhausted))
	assert.Equal(t, 3, exhausted.Attempts)
	assert.Contains(t, err.Error(), "giving up after 3 attempts")
}

func TestDo_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	config := fastConfig
	config.BaseDelay = time.Hour
	config.MaxDelay = time.Hour

	err := Do(ctx, config, func(int) error {
		return &transientErr{retry: true}
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestIsRetryable(t *testing.T) {
	assert.False(t, IsRetryable(nil))
	assert.False(t, IsRetryable(errors.New("plain")))
	assert.False(t, IsRetryable(context.Canceled))
	assert.True(t, IsRetryable(&transientErr{retry: true}))
	assert.False(t, IsRetryable(&transientErr{retry: false}))
	assert.True(t, IsRetryable(&ExhaustedError{Err: &transientErr{retry: true}}))
}

func TestCalculateDelay(t *testing.T) {
	config := Config{BaseDelay: time.Second, MaxDelay: 3 * time.Second}

	config.Backoff = BackoffExponential
	assert.Equal(t, time.Second, calculateDelay(config, 1))
	assert.Equal(t, 2*time.Second, calculateDelay(config, 2))
	assert.Equal(t, 3*time.Second, calculateDelay(config, 5))

	config.Backoff = BackoffLinear
	assert.Equal(t, 2*time.Second, calculateDelay(config, 2))

	config.Backoff = BackoffFixed
	assert.Equal(t, time.Second, calculateDelay(config, 4))
}
