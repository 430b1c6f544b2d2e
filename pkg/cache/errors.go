package cache

import (
	"context"
	"errors"
	"time"
)

// ErrUnavailable is returned when a cache backend cannot be reached.
var ErrUnavailable = errors.New("cache backend unavailable")

// RetryableError wraps an error to indicate it should trigger a retry.
type RetryableError struct{ Err error }

// Retryable wraps an error as a RetryableError.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err}
}

// Error returns the error message of the wrapped error.
func (e *RetryableError) Error() string { return e.Err.Error() }

// Unwrap returns the wrapped error.
func (e *RetryableError) Unwrap() error { return e.Err }

// IsRetryable checks if an error is wrapped with RetryableError.
func IsRetryable(err error) bool {
	var re *RetryableError
	return errors.As(err, &re)
}

// RetryPolicy bounds RetryWithBackoff.
type RetryPolicy struct {
	Attempts int           // total tries; less than 1 means one try
	Delay    time.Duration // first backoff, doubled after every failure
}

// DefaultRetryPolicy is used when a backend is given a zero policy.
var DefaultRetryPolicy = RetryPolicy{Attempts: 3, Delay: 200 * time.Millisecond}

// RetryWithBackoff calls fn until it succeeds, returns an error not wrapped
// with Retryable, or the policy's attempts run out.
func RetryWithBackoff(ctx context.Context, policy RetryPolicy, fn func() error) error {
	attempts := max(policy.Attempts, 1)
	delay := policy.Delay
	var lastErr error

	for i := range attempts {
		lastErr = fn()
		if lastErr == nil || !IsRetryable(lastErr) {
			return lastErr
		}
		if i == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
			delay *= 2
		}
	}
	return lastErr
}
