package processor

import (
	"context"
	"fmt"

	"github.com/MrJamesThe3rd/tally/internal/notification"
	"github.com/MrJamesThe3rd/tally/internal/queue"
)

// Sender delivers a rendered notification to a single address.
type Sender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// Notification emails the user about a settled transaction. A user without a
// registered address is a silent no-op, not an error.
type Notification struct {
	sender Sender
}

func NewNotification(sender Sender) *Notification {
	return &Notification{sender: sender}
}

func (n *Notification) List() string {
	return queue.ListNotifications
}

func (n *Notification) Handle(ctx context.Context, ev queue.TransactionEvent) error {
	if ev.Email == "" {
		return nil
	}

	subject, body, err := notification.RenderTransaction(ev)
	if err != nil {
		return fmt.Errorf("rendering notification: %w", err)
	}

	if err := n.sender.Send(ctx, ev.Email, subject, body); err != nil {
		return fmt.Errorf("sending notification: %w", err)
	}

	return nil
}
