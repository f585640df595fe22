package settlement_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/tally/internal/queue"
	"github.com/MrJamesThe3rd/tally/internal/settlement"
	"github.com/MrJamesThe3rd/tally/internal/transaction"
	"github.com/MrJamesThe3rd/tally/internal/user"
)

// fakePublisher records published events and optionally fails.
type fakePublisher struct {
	publishErr error
	events     []queue.TransactionEvent
}

func (f *fakePublisher) Publish(_ context.Context, ev queue.TransactionEvent) error {
	if f.publishErr != nil {
		return f.publishErr
	}

	f.events = append(f.events, ev)

	return nil
}

func TestOrchestrator_SettleCreated(t *testing.T) {
	t.Run("PublishesEnrichedEvent", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		store := settlement.NewMockStore(ctrl)
		store.EXPECT().
			GetTransaction(gomock.Any(), int64(1)).
			Return(pendingTransaction(1, 7, 5000, transaction.TypeCredit), nil)
		store.EXPECT().
			ApplyBalance(gomock.Any(), int64(1), int64(7), int64(5000)).
			Return(&user.User{
				ID:       7,
				FullName: "Grace Hopper",
				Email:    "grace@example.com",
				Balance:  5000,
			}, nil)

		pub := &fakePublisher{}
		orch := settlement.NewOrchestrator(settlement.NewWorker(store), pub)

		err := orch.SettleCreated(context.Background(), 1, 7, 5000, transaction.TypeCredit)
		require.NoError(t, err)

		require.Len(t, pub.events, 1)

		ev := pub.events[0]
		assert.Equal(t, int64(1), ev.TransactionID)
		assert.Equal(t, int64(7), ev.UserID)
		assert.Equal(t, "Grace Hopper", ev.FullName)
		assert.Equal(t, "grace@example.com", ev.Email)
		assert.Equal(t, 50.0, ev.Amount) // 5000 cents in display units
		assert.Equal(t, transaction.TypeCredit, ev.Type)
		assert.NotEmpty(t, ev.EventID)
	})

	t.Run("PublishFailureDoesNotUnwindSettlement", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		store := settlement.NewMockStore(ctrl)
		store.EXPECT().
			GetTransaction(gomock.Any(), int64(2)).
			Return(pendingTransaction(2, 7, 1000, transaction.TypeDebit), nil)
		store.EXPECT().
			ApplyBalance(gomock.Any(), int64(2), int64(7), int64(-1000)).
			Return(&user.User{ID: 7, FullName: "Grace Hopper", Balance: -1000}, nil)

		pub := &fakePublisher{publishErr: errors.New("transport down")}
		orch := settlement.NewOrchestrator(settlement.NewWorker(store), pub)

		// The ledger is correct; the missing fan-out is a delivery-layer
		// concern and must not surface to the caller.
		err := orch.SettleCreated(context.Background(), 2, 7, 1000, transaction.TypeDebit)
		assert.NoError(t, err)
	})

	t.Run("SettlementFailureDoesNotPublish", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		store := settlement.NewMockStore(ctrl)
		store.EXPECT().
			GetTransaction(gomock.Any(), int64(3)).
			Return(pendingTransaction(3, 7, 1000, "wire"), nil)
		store.EXPECT().
			MarkFailed(gomock.Any(), int64(3)).
			Return(nil)

		pub := &fakePublisher{}
		orch := settlement.NewOrchestrator(settlement.NewWorker(store), pub)

		err := orch.SettleCreated(context.Background(), 3, 7, 1000, "wire")
		require.ErrorIs(t, err, settlement.ErrInvalidType)
		assert.Empty(t, pub.events)
	})

	t.Run("TerminalTransactionDoesNotPublish", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		tx := pendingTransaction(4, 7, 1000, transaction.TypeCredit)
		tx.Status = transaction.StatusFailed

		store := settlement.NewMockStore(ctrl)
		store.EXPECT().
			GetTransaction(gomock.Any(), int64(4)).
			Return(tx, nil)

		pub := &fakePublisher{}
		orch := settlement.NewOrchestrator(settlement.NewWorker(store), pub)

		err := orch.SettleCreated(context.Background(), 4, 7, 1000, transaction.TypeCredit)
		require.NoError(t, err)
		assert.Empty(t, pub.events)
	})
}
