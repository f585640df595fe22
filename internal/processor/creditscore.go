package processor

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/redis/go-redis/v9"

	"github.com/MrJamesThe3rd/tally/internal/queue"
	"github.com/MrJamesThe3rd/tally/internal/transaction"
)

const (
	scoreDefault = 700.0
	scoreMin     = 300.0
	scoreMax     = 850.0

	// A large deposit earns at most 5 points; a large withdrawal costs at
	// most 3. Amounts are in display units.
	creditDivisor  = 1000.0
	maxCreditBoost = 5.0
	debitDivisor   = 2000.0
	maxDebitCost   = 3.0
)

// CreditScore maintains a per-user score bounded to [300, 850], adjusted by a
// bounded delta per settled transaction. Adjustments are deterministic but
// order-dependent on delivery order for a given user.
type CreditScore struct {
	rdb *redis.Client
}

func NewCreditScore(rdb *redis.Client) *CreditScore {
	return &CreditScore{rdb: rdb}
}

func (c *CreditScore) List() string {
	return queue.ListCreditScore
}

func scoreKey(userID int64) string {
	return fmt.Sprintf("user:%d:credit_score", userID)
}

func (c *CreditScore) Handle(ctx context.Context, ev queue.TransactionEvent) error {
	key := scoreKey(ev.UserID)

	score, err := c.rdb.Get(ctx, key).Float64()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			return fmt.Errorf("reading score: %w", err)
		}

		score = scoreDefault
	}

	var adjustment float64
	if ev.Type == transaction.TypeCredit {
		adjustment = math.Min(ev.Amount/creditDivisor, maxCreditBoost)
	} else {
		adjustment = math.Max(-ev.Amount/debitDivisor, -maxDebitCost)
	}

	score = math.Max(math.Min(score+adjustment, scoreMax), scoreMin)

	if err := c.rdb.Set(ctx, key, score, 0).Err(); err != nil {
		return fmt.Errorf("storing score: %w", err)
	}

	return nil
}
