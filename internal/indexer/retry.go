package indexer

import (
	"context"
	"time"
)

// RetryPolicy controls the shared retry behavior of the pipeline steps that
// talk to external services.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	IsRetryable func(error) bool
}

// Retry runs fn up to MaxAttempts times with exponential backoff (BaseDelay,
// 2x per attempt). Errors the policy classifies as permanent are returned
// immediately. Context cancellation interrupts the backoff wait.
func Retry[T any](ctx context.Context, policy RetryPolicy, fn func() (T, error)) (T, error) {
	var zero T
	attempts := policy.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for i := 0; i < attempts; i++ {
		var result T
		result, err = fn()
		if err == nil {
			return result, nil
		}

		last := i == attempts-1
		if last || policy.IsRetryable == nil || !policy.IsRetryable(err) {
			return zero, err
		}

		wait := policy.BaseDelay << uint(i)
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, ctx.Err()
		case <-timer.C:
		}
	}
	return zero, err
}
