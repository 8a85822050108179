package credits

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"postforge/internal/common/database"
	"postforge/internal/common/errors"
)

// ==========================
// Test Helper Functions
// ==========================

func createTestLedger(t *testing.T, limit int) (*Ledger, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewLedger(&database.RedisClient{Client: client}, limit), mr
}

func monthKey(userID string) string {
	return fmt.Sprintf("credits:%s:%s", userID, time.Now().UTC().Format("200601"))
}

// ==========================
// Consume Tests
// ==========================

func TestConsume_WithinLimit(t *testing.T) {
	ledger, mr := createTestLedger(t, 100)

	for i := 0; i < 3; i++ {
		require.NoError(t, ledger.Consume(context.Background(), "user-123", "generate", 1))
	}

	stored, err := mr.Get(monthKey("user-123"))
	require.NoError(t, err)
	assert.Equal(t, "3", stored)
}

func TestConsume_ExhaustionReturnsTypedError(t *testing.T) {
	ledger, _ := createTestLedger(t, 2)

	require.NoError(t, ledger.Consume(context.Background(), "user-123", "generate", 1))
	require.NoError(t, ledger.Consume(context.Background(), "user-123", "generate", 1))

	err := ledger.Consume(context.Background(), "user-123", "generate", 1)

	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindCreditsExhausted))

	appErr, _ := errors.AsAppError(err)
	assert.Equal(t, 2, appErr.Details["credits_used"])
	assert.Equal(t, 2, appErr.Details["credits_limit"])
}

func TestConsume_ExhaustionRollsBackCounter(t *testing.T) {
	ledger, _ := createTestLedger(t, 2)

	require.NoError(t, ledger.Consume(context.Background(), "user-123", "generate", 2))
	require.Error(t, ledger.Consume(context.Background(), "user-123", "generate", 1))

	used, err := ledger.Used(context.Background(), "user-123")
	require.NoError(t, err)
	assert.Equal(t, 2, used, "failed consume must not burn credits")
}

func TestConsume_UsersAreIsolated(t *testing.T) {
	ledger, _ := createTestLedger(t, 1)

	require.NoError(t, ledger.Consume(context.Background(), "user-a", "generate", 1))
	require.NoError(t, ledger.Consume(context.Background(), "user-b", "generate", 1))

	assert.Error(t, ledger.Consume(context.Background(), "user-a", "generate", 1))
}

func TestConsume_RedisDownIsNetworkError(t *testing.T) {
	ledger, mr := createTestLedger(t, 10)
	mr.Close()

	err := ledger.Consume(context.Background(), "user-123", "generate", 1)

	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindNetworkUnreachable))
}

// ==========================
// Balance Tests
// ==========================

func TestUsed_NoHistoryIsZero(t *testing.T) {
	ledger, _ := createTestLedger(t, 100)

	used, err := ledger.Used(context.Background(), "fresh-user")
	require.NoError(t, err)
	assert.Zero(t, used)
}

func TestRemaining(t *testing.T) {
	ledger, _ := createTestLedger(t, 5)

	require.NoError(t, ledger.Consume(context.Background(), "user-123", "generate", 3))

	remaining, err := ledger.Remaining(context.Background(), "user-123")
	require.NoError(t, err)
	assert.Equal(t, 2, remaining)
}

func TestRemaining_NeverNegative(t *testing.T) {
	ledger, mr := createTestLedger(t, 5)
	mr.Set(monthKey("user-123"), "9")

	remaining, err := ledger.Remaining(context.Background(), "user-123")
	require.NoError(t, err)
	assert.Zero(t, remaining)
}

func TestUsed_MalformedCounter(t *testing.T) {
	ledger, mr := createTestLedger(t, 5)
	mr.Set(monthKey("user-123"), "not-a-number")

	_, err := ledger.Used(context.Background(), "user-123")
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindUnexpected))
}
