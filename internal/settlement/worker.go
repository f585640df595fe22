package settlement

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/MrJamesThe3rd/tally/internal/transaction"
	"github.com/MrJamesThe3rd/tally/internal/user"
)

var ErrInvalidType = errors.New("unsupported transaction type")

var settlements = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "tally_settlements_total",
	Help: "Settlement attempts by outcome.",
}, []string{"outcome"})

//go:generate mockgen -source=worker.go -destination=store_mock.go -package=settlement
type Store interface {
	GetTransaction(ctx context.Context, id int64) (*transaction.Transaction, error)

	// ApplyBalance locks the user row, shifts the balance by delta, and marks
	// the transaction successful, all within a single database transaction.
	// It returns the user as of the commit.
	ApplyBalance(ctx context.Context, txID, userID, delta int64) (*user.User, error)

	MarkFailed(ctx context.Context, txID int64) error
}

// Worker applies a single transaction's balance effect and finalizes its
// status.
type Worker struct {
	store Store
}

func NewWorker(store Store) *Worker {
	return &Worker{store: store}
}

type SettleParams struct {
	TransactionID int64
	UserID        int64
	Amount        int64 // cents, non-negative magnitude
	Type          transaction.Type
}

// Settle moves the transaction from pending to a terminal state. On success
// it returns the user carrying the settled balance, so the caller can enrich
// the downstream event without a second read. A transaction already in a
// terminal state is a no-op: Settle returns (nil, nil) and mutates nothing.
//
// Any failure marks the transaction failed with a separate best-effort write;
// the balance mutation itself either commits with the status or rolls back
// with it.
func (w *Worker) Settle(ctx context.Context, params SettleParams) (*user.User, error) {
	tx, err := w.store.GetTransaction(ctx, params.TransactionID)
	if err != nil {
		return nil, fmt.Errorf("loading transaction: %w", err)
	}

	if tx.Status.Terminal() {
		slog.Info("transaction already settled, skipping",
			"transaction_id", tx.ID, "status", tx.Status)

		return nil, nil
	}

	var delta int64

	switch params.Type {
	case transaction.TypeCredit:
		delta = params.Amount
	case transaction.TypeDebit:
		// No floor is enforced here: a debit may take the balance negative.
		delta = -params.Amount
	default:
		w.markFailed(ctx, params.TransactionID)
		settlements.WithLabelValues("invalid_type").Inc()

		return nil, fmt.Errorf("%w: %q", ErrInvalidType, params.Type)
	}

	u, err := w.store.ApplyBalance(ctx, params.TransactionID, params.UserID, delta)
	if err != nil {
		w.markFailed(ctx, params.TransactionID)
		settlements.WithLabelValues("failed").Inc()

		return nil, fmt.Errorf("applying balance: %w", err)
	}

	settlements.WithLabelValues("success").Inc()

	return u, nil
}

func (w *Worker) markFailed(ctx context.Context, id int64) {
	if err := w.store.MarkFailed(ctx, id); err != nil {
		slog.Error("failed to mark transaction failed", "transaction_id", id, "error", err)
	}
}
