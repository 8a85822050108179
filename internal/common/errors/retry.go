package errors

import (
	"context"
	"errors"
	"math/rand"
	"net"
	"time"

	"postforge/internal/common/metrics"
)

// RetryHandler re-invokes an operation on transient failure with exponential
// backoff. Total attempts = MaxRetries + 1. Non-transient errors propagate
// on first occurrence without consuming a retry.
type RetryHandler struct {
	MaxRetries int
	BaseDelay  time.Duration
	// Jitter randomizes each delay to half its value plus a random half,
	// spreading concurrent retriers apart.
	Jitter bool
}

func NewRetryHandler(maxRetries int, baseDelay time.Duration) *RetryHandler {
	if maxRetries < 0 {
		maxRetries = 0
	}
	if baseDelay <= 0 {
		baseDelay = 100 * time.Millisecond
	}
	return &RetryHandler{MaxRetries: maxRetries, BaseDelay: baseDelay, Jitter: true}
}

// Execute runs op until it succeeds, fails non-transiently, exhausts the
// retry budget, or ctx is cancelled. The backoff wait is abortable: a
// cancelled context ends the loop without a further attempt. On exhaustion
// the last error is re-raised unchanged.
func (r *RetryHandler) Execute(ctx context.Context, op func(ctx context.Context) error) error {
	var lastErr error
	for attempt := 0; attempt <= r.MaxRetries; attempt++ {
		if attempt > 0 {
			metrics.RetryAttempts.Inc()
			select {
			case <-time.After(r.delay(attempt - 1)):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		lastErr = op(ctx)
		if lastErr == nil {
			return nil
		}
		if !IsTransient(lastErr) {
			return lastErr
		}
	}
	return lastErr
}

// delay computes BaseDelay * 2^attempt, jittered when enabled.
func (r *RetryHandler) delay(attempt int) time.Duration {
	if attempt > 30 {
		attempt = 30
	}
	d := r.BaseDelay * (1 << uint(attempt))
	if r.Jitter && d > 1 {
		half := d / 2
		d = half + time.Duration(rand.Int63n(int64(half)))
	}
	return d
}

// RetryValue is Execute for value-returning operations.
func RetryValue[T any](ctx context.Context, r *RetryHandler, op func(ctx context.Context) (T, error)) (T, error) {
	var result T
	err := r.Execute(ctx, func(ctx context.Context) error {
		var opErr error
		result, opErr = op(ctx)
		return opErr
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return result, nil
}

// IsTransient reports whether err is classified as likely to succeed on
// retry: transient taxonomy kinds and raw network failures. Validation and
// business-rule errors are never transient, nor are context cancellations.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if appErr, ok := AsAppError(err); ok {
		return appErr.Transient()
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var opErr *net.OpError
	return errors.As(err, &opErr)
}
