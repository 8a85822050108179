package errors

import (
	"context"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Retry Execution Tests
// ==========================

func testRetryHandler(maxRetries int) *RetryHandler {
	r := NewRetryHandler(maxRetries, time.Millisecond)
	r.Jitter = false
	return r
}

func TestExecute_FailTwiceThenSucceed(t *testing.T) {
	r := testRetryHandler(3)

	calls := 0
	err := r.Execute(context.Background(), func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return NewNetworkError(KindNetworkTimeout, "slow upstream")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestExecute_NonRetryableFailsOnce(t *testing.T) {
	r := testRetryHandler(3)

	calls := 0
	wantErr := NewValidationError(KindInvalidInput, "bad topic")
	err := r.Execute(context.Background(), func(ctx context.Context) error {
		calls++
		return wantErr
	})

	assert.Equal(t, 1, calls)
	assert.Same(t, wantErr, err)
}

func TestExecute_ExhaustionReturnsLastErrorUnchanged(t *testing.T) {
	r := testRetryHandler(2)

	calls := 0
	wantErr := NewNetworkError(KindNetworkUnreachable, "connection refused")
	err := r.Execute(context.Background(), func(ctx context.Context) error {
		calls++
		return wantErr
	})

	assert.Equal(t, 3, calls, "total attempts = retries + 1")
	assert.Same(t, wantErr, err)
}

func TestExecute_ZeroRetriesSingleAttempt(t *testing.T) {
	r := testRetryHandler(0)

	calls := 0
	_ = r.Execute(context.Background(), func(ctx context.Context) error {
		calls++
		return NewNetworkError(KindNetworkTimeout, "slow upstream")
	})

	assert.Equal(t, 1, calls)
}

func TestExecute_CancelledDuringBackoff(t *testing.T) {
	r := NewRetryHandler(5, time.Hour)
	r.Jitter = false

	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	done := make(chan error, 1)
	go func() {
		done <- r.Execute(ctx, func(ctx context.Context) error {
			calls++
			return NewNetworkError(KindNetworkTimeout, "slow upstream")
		})
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 1, calls, "no further attempt after cancellation")
	case <-time.After(2 * time.Second):
		t.Fatal("Execute did not abort the backoff wait")
	}
}

func TestRetryValue_ReturnsResult(t *testing.T) {
	r := testRetryHandler(3)

	calls := 0
	got, err := RetryValue(context.Background(), r, func(ctx context.Context) (string, error) {
		calls++
		if calls < 3 {
			return "", NewNetworkError(KindNetworkTimeout, "slow upstream")
		}
		return "draft text", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "draft text", got)
	assert.Equal(t, 3, calls)
}

func TestRetryValue_ZeroValueOnFailure(t *testing.T) {
	r := testRetryHandler(0)

	got, err := RetryValue(context.Background(), r, func(ctx context.Context) (int, error) {
		return 42, NewValidationError(KindInvalidInput, "bad input")
	})

	assert.Error(t, err)
	assert.Zero(t, got)
}

// ==========================
// Backoff Tests
// ==========================

func TestDelay_ExponentialWithoutJitter(t *testing.T) {
	r := &RetryHandler{BaseDelay: 100 * time.Millisecond}

	assert.Equal(t, 100*time.Millisecond, r.delay(0))
	assert.Equal(t, 200*time.Millisecond, r.delay(1))
	assert.Equal(t, 400*time.Millisecond, r.delay(2))
}

func TestDelay_JitterStaysInRange(t *testing.T) {
	r := &RetryHandler{BaseDelay: 100 * time.Millisecond, Jitter: true}

	for i := 0; i < 100; i++ {
		d := r.delay(2) // 400ms before jitter
		assert.GreaterOrEqual(t, d, 200*time.Millisecond)
		assert.Less(t, d, 400*time.Millisecond)
	}
}

// ==========================
// Transience Classification Tests
// ==========================

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"context canceled", context.Canceled, false},
		{"context deadline", context.DeadlineExceeded, false},
		{"validation error", NewValidationError(KindInvalidInput, "bad"), false},
		{"credits exhausted", NewCreditsExhaustedError(100, 100), false},
		{"network timeout kind", NewNetworkError(KindNetworkTimeout, "slow"), true},
		{"db connection kind", NewDatabaseError(KindDBConnectionFailed, "refused"), true},
		{"ai rate limited", NewAIRateLimitError("openai", 30), true},
		{"raw net op error", &net.OpError{Op: "dial", Err: fmt.Errorf("refused")}, true},
		{"plain error", fmt.Errorf("who knows"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsTransient(tt.err))
		})
	}
}
