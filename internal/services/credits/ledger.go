// Package credits meters content generation against each user's monthly
// allowance. The counter lives in Redis, one key per user per calendar month,
// incremented atomically so concurrent requests cannot double-spend.
package credits

import (
	"context"
	stderrors "errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"postforge/internal/common/database"
	"postforge/internal/common/errors"
	"postforge/internal/common/metrics"
)

type Ledger struct {
	redis *database.RedisClient
	limit int
}

func NewLedger(redis *database.RedisClient, monthlyLimit int) *Ledger {
	return &Ledger{redis: redis, limit: monthlyLimit}
}

// key is credits:<user>:<YYYYMM>; the month boundary resets usage without
// any cleanup job.
func (l *Ledger) key(userID string, now time.Time) string {
	return fmt.Sprintf("credits:%s:%s", userID, now.UTC().Format("200601"))
}

// Consume spends amount credits for the operation. Exceeding the allowance
// rolls the increment back and returns the credits-exhausted error with
// current usage attached.
func (l *Ledger) Consume(ctx context.Context, userID, operation string, amount int) error {
	key := l.key(userID, time.Now())

	newTotal, err := l.redis.IncrBy(ctx, key, int64(amount))
	if err != nil {
		return errors.NewNetworkError(errors.KindNetworkUnreachable, err.Error()).WithCause(err)
	}

	if newTotal > int64(l.limit) {
		if _, rbErr := l.redis.IncrBy(ctx, key, int64(-amount)); rbErr != nil {
			// Rollback failed; the counter over-reads until month end.
			return errors.NewCreditsExhaustedError(l.limit, l.limit).WithCause(rbErr)
		}
		return errors.NewCreditsExhaustedError(int(newTotal)-amount, l.limit)
	}

	metrics.CreditsConsumed.WithLabelValues(operation).Add(float64(amount))
	return nil
}

// Used returns credits consumed in the current month.
func (l *Ledger) Used(ctx context.Context, userID string) (int, error) {
	val, err := l.redis.Get(ctx, l.key(userID, time.Now()))
	if err != nil {
		if stderrors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, errors.NewNetworkError(errors.KindNetworkUnreachable, err.Error()).WithCause(err)
	}
	used, convErr := strconv.Atoi(val)
	if convErr != nil {
		return 0, errors.NewUnexpectedError("malformed credits counter: " + val)
	}
	return used, nil
}

// Remaining returns credits left this month, never negative.
func (l *Ledger) Remaining(ctx context.Context, userID string) (int, error) {
	used, err := l.Used(ctx, userID)
	if err != nil {
		return 0, err
	}
	if used >= l.limit {
		return 0, nil
	}
	return l.limit - used, nil
}
