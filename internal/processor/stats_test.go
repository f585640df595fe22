package processor_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/tally/internal/processor"
	"github.com/MrJamesThe3rd/tally/internal/queue"
	"github.com/MrJamesThe3rd/tally/internal/transaction"
)

func newTestClient(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	return rdb, mr
}

func event(userID int64, amount float64, txType transaction.Type) queue.TransactionEvent {
	return queue.TransactionEvent{
		TransactionID: 1,
		UserID:        userID,
		FullName:      "Grace Hopper",
		Email:         "grace@example.com",
		Amount:        amount,
		Type:          txType,
		Date:          time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC),
	}
}

func TestStats_RunningMean(t *testing.T) {
	rdb, _ := newTestClient(t)
	ctx := context.Background()

	stats := processor.NewStats(rdb)

	require.NoError(t, stats.Handle(ctx, event(7, 100, transaction.TypeCredit)))
	require.NoError(t, stats.Handle(ctx, event(7, 200, transaction.TypeDebit)))
	require.NoError(t, stats.Handle(ctx, event(7, 600, transaction.TypeCredit)))

	mean, err := rdb.Get(ctx, "user:7:avg_transaction").Float64()
	require.NoError(t, err)
	assert.InDelta(t, 300.0, mean, 1e-9)

	count, err := rdb.Get(ctx, "user:7:tx_count").Int64()
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}

func TestStats_DailyCounter(t *testing.T) {
	rdb, _ := newTestClient(t)
	ctx := context.Background()

	stats := processor.NewStats(rdb)

	require.NoError(t, stats.Handle(ctx, event(7, 50, transaction.TypeCredit)))
	require.NoError(t, stats.Handle(ctx, event(7, 50, transaction.TypeCredit)))

	other := event(7, 50, transaction.TypeCredit)
	other.Date = time.Date(2025, 3, 15, 9, 0, 0, 0, time.UTC)
	require.NoError(t, stats.Handle(ctx, other))

	first, err := rdb.HGet(ctx, "user:7:stats", "tx_count:2025-03-14").Int64()
	require.NoError(t, err)
	assert.Equal(t, int64(2), first)

	second, err := rdb.HGet(ctx, "user:7:stats", "tx_count:2025-03-15").Int64()
	require.NoError(t, err)
	assert.Equal(t, int64(1), second)
}

func TestStats_UsersIndependent(t *testing.T) {
	rdb, _ := newTestClient(t)
	ctx := context.Background()

	stats := processor.NewStats(rdb)

	require.NoError(t, stats.Handle(ctx, event(7, 100, transaction.TypeCredit)))
	require.NoError(t, stats.Handle(ctx, event(8, 900, transaction.TypeCredit)))

	mean7, err := rdb.Get(ctx, "user:7:avg_transaction").Float64()
	require.NoError(t, err)
	assert.InDelta(t, 100.0, mean7, 1e-9)

	mean8, err := rdb.Get(ctx, "user:8:avg_transaction").Float64()
	require.NoError(t, err)
	assert.InDelta(t, 900.0, mean8, 1e-9)
}
