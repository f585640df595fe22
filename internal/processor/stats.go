package processor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/MrJamesThe3rd/tally/internal/queue"
)

// Stats maintains per-user usage statistics: a per-day transaction counter
// and a running mean transaction amount.
type Stats struct {
	rdb *redis.Client
}

func NewStats(rdb *redis.Client) *Stats {
	return &Stats{rdb: rdb}
}

func (s *Stats) List() string {
	return queue.ListStats
}

func statsKey(userID int64) string {
	return fmt.Sprintf("user:%d:stats", userID)
}

func countKey(userID int64) string {
	return fmt.Sprintf("user:%d:tx_count", userID)
}

func avgKey(userID int64) string {
	return fmt.Sprintf("user:%d:avg_transaction", userID)
}

func (s *Stats) Handle(ctx context.Context, ev queue.TransactionEvent) error {
	day := ev.Date.Format(time.DateOnly)
	if err := s.rdb.HIncrBy(ctx, statsKey(ev.UserID), "tx_count:"+day, 1).Err(); err != nil {
		return fmt.Errorf("incrementing daily count: %w", err)
	}

	mean, err := s.rdb.Get(ctx, avgKey(ev.UserID)).Float64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("reading mean: %w", err)
	}

	count, err := s.rdb.Get(ctx, countKey(ev.UserID)).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("reading count: %w", err)
	}

	count++
	mean += (ev.Amount - mean) / float64(count)

	pipe := s.rdb.TxPipeline()
	pipe.Set(ctx, avgKey(ev.UserID), mean, 0)
	pipe.Set(ctx, countKey(ev.UserID), count, 0)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("storing stats: %w", err)
	}

	return nil
}
