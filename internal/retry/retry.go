package retry

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"
)

// Config holds configuration for retry behavior
type Config struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	Jitter      bool
	Backoff     BackoffStrategy
}

// BackoffStrategy defines the backoff algorithm
type BackoffStrategy int

const (
	BackoffExponential BackoffStrategy = iota
	BackoffLinear
	BackoffFixed
)

// DefaultConfig is used for local file and record operations
var DefaultConfig = Config{
	MaxAttempts: 3,
	BaseDelay:   100 * time.Millisecond,
	MaxDelay:    2 * time.Second,
	Jitter:      true,
	Backoff:     BackoffExponential,
}

// Func is a function that can be retried; attempt starts at 1
type Func func(attempt int) error

// ExhaustedError is returned when every attempt failed with a retryable error
type ExhaustedError struct {
	Err      error
	Attempts int
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("giving up after %d attempts: %v", e.Attempts, e.Err)
}

func (e *ExhaustedError) Unwrap() error {
	return e.Err
}

// retryable is implemented by errors that know whether they are transient
type retryable interface {
	IsRetryable() bool
}

// IsRetryable reports whether any error in the chain declares itself retryable.
// Context cancellation is never retried.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var r retryable
	if errors.As(err, &r) {
		return r.IsRetryable()
	}
	return false
}

// Do executes fn until it succeeds, returns a permanent error, runs out of
// attempts, or ctx is done
func Do(ctx context.Context, config Config, fn Func) error {
	if config.MaxAttempts < 1 {
		config.MaxAttempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= config.MaxAttempts; attempt++ {
		err := fn(attempt)
		if err == nil {
			return nil
		}
		lastErr = err

		if !IsRetryable(err) {
			return err
		}
		if attempt >= config.MaxAttempts {
			break
		}

		delay := calculateDelay(config, attempt)
		if config.Jitter {
			delay = applyJitter(delay)
		}

		timer := time.NewTimer(delay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("retry cancelled: %w", ctx.Err())
		}
	}

	return &ExhaustedError{Err: lastErr, Attempts: config.MaxAttempts}
}

// calculateDelay computes the delay before the next attempt
func calculateDelay(config Config, attempt int) time.Duration {
	var delay time.Duration

	switch config.Backoff {
	case BackoffExponential:
		delay = config.BaseDelay * time.Duration(math.Pow(2, float64(attempt-1)))
	case BackoffLinear:
		delay = config.BaseDelay * time.Duration(attempt)
	default:
		delay = config.BaseDelay
	}

	if config.MaxDelay > 0 && delay > config.MaxDelay {
		delay = config.MaxDelay
	}
	return delay
}

// applyJitter spreads the delay by ±25%
func applyJitter(delay time.Duration) time.Duration {
	jitter := (rand.Float64() - 0.5) * 0.5
	return time.Duration(float64(delay) * (1 + jitter))
}
