package settlement

import (
	"context"
	"log/slog"
	"time"

	"github.com/MrJamesThe3rd/tally/internal/queue"
	"github.com/MrJamesThe3rd/tally/internal/transaction"
)

// Publisher delivers a settled transaction event to the downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, ev queue.TransactionEvent) error
}

// Orchestrator is the control point between transaction creation and the
// settlement pipeline: it runs the worker and, on success, fans the enriched
// event out through the queue transport.
type Orchestrator struct {
	worker    *Worker
	publisher Publisher
}

func NewOrchestrator(worker *Worker, publisher Publisher) *Orchestrator {
	return &Orchestrator{worker: worker, publisher: publisher}
}

// SettleCreated settles a freshly created transaction and publishes the
// resulting event.
//
// A publish failure does not unwind the settlement: the ledger is correct,
// only the downstream side effects are missing, so the failure is logged and
// swallowed.
func (o *Orchestrator) SettleCreated(ctx context.Context, txID, userID, amount int64, txType transaction.Type) error {
	u, err := o.worker.Settle(ctx, SettleParams{
		TransactionID: txID,
		UserID:        userID,
		Amount:        amount,
		Type:          txType,
	})
	if err != nil {
		return err
	}

	if u == nil {
		// Already terminal, nothing to deliver.
		return nil
	}

	ev, err := queue.NewTransactionEvent(queue.EventParams{
		TransactionID: txID,
		UserID:        userID,
		FullName:      u.FullName,
		Email:         u.Email,
		Amount:        float64(amount) / 100,
		Type:          txType,
		Date:          time.Now().UTC(),
	})
	if err != nil {
		slog.Error("building transaction event", "transaction_id", txID, "error", err)
		return nil
	}

	if err := o.publisher.Publish(ctx, ev); err != nil {
		slog.Error("publishing transaction event",
			"transaction_id", txID, "user_id", userID, "error", err)
	}

	return nil
}
