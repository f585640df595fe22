package processor

import (
	"context"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/MrJamesThe3rd/tally/internal/queue"
)

// Handler consumes events from a single delivery list and maintains its own
// derived state. Handlers never communicate with each other.
type Handler interface {
	List() string
	Handle(ctx context.Context, ev queue.TransactionEvent) error
}

const (
	// popTimeout exists purely to yield control for cancellation checks, not
	// as a correctness deadline.
	popTimeout = time.Second

	// errorBackoff keeps an unexpected failure from turning into a tight loop.
	errorBackoff = time.Second
)

var (
	eventsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tally_processor_events_total",
		Help: "Events successfully processed per delivery list.",
	}, []string{"list"})
	processorErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tally_processor_errors_total",
		Help: "Pop and processing failures per delivery list.",
	}, []string{"list"})
)

// Runner drives one handler's polling loop.
type Runner struct {
	consumer *queue.Consumer
	handler  Handler
}

func NewRunner(consumer *queue.Consumer, handler Handler) *Runner {
	return &Runner{consumer: consumer, handler: handler}
}

// Run polls the handler's list until ctx is cancelled. An in-flight pop or
// handle finishes before the loop exits, so a controlled shutdown loses
// nothing; only a crash mid-handle loses the single popped delivery.
func (r *Runner) Run(ctx context.Context) {
	list := r.handler.List()

	slog.Info("processor started", "list", list)

	for {
		if ctx.Err() != nil {
			slog.Info("processor stopped", "list", list)
			return
		}

		ev, err := r.consumer.Pop(ctx, list, popTimeout)
		if err != nil {
			if ctx.Err() != nil {
				slog.Info("processor stopped", "list", list)
				return
			}

			slog.Error("popping event", "list", list, "error", err)
			processorErrors.WithLabelValues(list).Inc()
			sleep(ctx, errorBackoff)

			continue
		}

		if ev == nil {
			// Timeout; loop back to re-check cancellation.
			continue
		}

		if err := r.handler.Handle(ctx, *ev); err != nil {
			slog.Error("processing event",
				"list", list, "transaction_id", ev.TransactionID, "error", err)
			processorErrors.WithLabelValues(list).Inc()
			sleep(ctx, errorBackoff)

			continue
		}

		eventsProcessed.WithLabelValues(list).Inc()
	}
}

func sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
