package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
)

// Delivery lists, one per downstream processor. Each list is independent: a
// stalled consumer on one list never blocks delivery to the others.
const (
	ListStats         = "queue:user_stats"
	ListCreditScore   = "queue:credit_score"
	ListNotifications = "queue:notifications"

	// BroadcastChannel carries every published event to live subscribers.
	BroadcastChannel = "transactions:new"
)

// Lists returns the full set of delivery lists an event fans out to.
func Lists() []string {
	return []string{ListStats, ListCreditScore, ListNotifications}
}

var (
	eventsPublished = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tally_queue_events_published_total",
		Help: "Number of transaction events fanned out to the delivery lists.",
	})
	publishFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tally_queue_publish_failures_total",
		Help: "Number of fan-out attempts that failed before reaching any list.",
	})
)

type Publisher struct {
	rdb *redis.Client
}

func NewPublisher(rdb *redis.Client) *Publisher {
	return &Publisher{rdb: rdb}
}

// Publish pushes the event onto every delivery list and the broadcast channel
// as one pipelined batch: either every list receives it or none does.
func (p *Publisher) Publish(ctx context.Context, ev TransactionEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encoding event: %w", err)
	}

	pipe := p.rdb.TxPipeline()
	for _, list := range Lists() {
		pipe.LPush(ctx, list, payload)
	}

	pipe.Publish(ctx, BroadcastChannel, payload)

	if _, err := pipe.Exec(ctx); err != nil {
		publishFailures.Inc()
		return fmt.Errorf("publishing event: %w", err)
	}

	eventsPublished.Inc()

	return nil
}

type Consumer struct {
	rdb *redis.Client
}

func NewConsumer(rdb *redis.Client) *Consumer {
	return &Consumer{rdb: rdb}
}

// Pop blocks on the list until an event arrives or the timeout elapses. A
// timeout returns (nil, nil) so the calling loop can re-check cancellation.
//
// The popped item is off the list before processing starts: a consumer crash
// mid-processing loses that one delivery for that one list.
func (c *Consumer) Pop(ctx context.Context, list string, timeout time.Duration) (*TransactionEvent, error) {
	res, err := c.rdb.BRPop(ctx, timeout, list).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}

		return nil, fmt.Errorf("popping from %s: %w", list, err)
	}

	// BRPop returns [list, payload].
	var ev TransactionEvent
	if err := json.Unmarshal([]byte(res[1]), &ev); err != nil {
		return nil, fmt.Errorf("decoding event from %s: %w", list, err)
	}

	return &ev, nil
}
