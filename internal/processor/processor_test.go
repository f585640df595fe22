package processor_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/tally/internal/processor"
	"github.com/MrJamesThe3rd/tally/internal/queue"
	"github.com/MrJamesThe3rd/tally/internal/transaction"
)

type recordingHandler struct {
	list    string
	handled chan queue.TransactionEvent
}

func (h *recordingHandler) List() string {
	return h.list
}

func (h *recordingHandler) Handle(_ context.Context, ev queue.TransactionEvent) error {
	h.handled <- ev
	return nil
}

func TestRunner_ProcessesAndStops(t *testing.T) {
	rdb, _ := newTestClient(t)

	pub := queue.NewPublisher(rdb)

	ev, err := queue.NewTransactionEvent(queue.EventParams{
		TransactionID: 1,
		UserID:        7,
		FullName:      "Grace Hopper",
		Amount:        50,
		Type:          transaction.TypeCredit,
		Date:          time.Now().UTC(),
	})
	require.NoError(t, err)
	require.NoError(t, pub.Publish(context.Background(), ev))

	handler := &recordingHandler{
		list:    queue.ListStats,
		handled: make(chan queue.TransactionEvent, 1),
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})

	runner := processor.NewRunner(queue.NewConsumer(rdb), handler)

	go func() {
		defer close(done)
		runner.Run(ctx)
	}()

	select {
	case got := <-handler.handled:
		assert.Equal(t, ev.TransactionID, got.TransactionID)
	case <-time.After(3 * time.Second):
		t.Fatal("event was not processed")
	}

	cancel()

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("runner did not stop after cancellation")
	}
}
