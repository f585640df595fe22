package queue

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/tally/internal/transaction"
)

var (
	ErrMissingTransaction = errors.New("event requires a transaction id")
	ErrMissingUser        = errors.New("event requires a user id")
	ErrMissingName        = errors.New("event requires the user's full name")
)

// TransactionEvent is the denormalized snapshot of a settled transaction
// fanned out to every delivery list. It is a message, not a record: consumers
// never read it back from the ledger.
type TransactionEvent struct {
	EventID       uuid.UUID        `json:"event_id"`
	TransactionID int64            `json:"transaction_id"`
	UserID        int64            `json:"user_id"`
	FullName      string           `json:"full_name"`
	Email         string           `json:"email,omitempty"`
	Amount        float64          `json:"transaction_amount"` // display units, not cents
	Type          transaction.Type `json:"transaction_type"`
	Date          time.Time        `json:"transaction_date"`
}

type EventParams struct {
	TransactionID int64
	UserID        int64
	FullName      string
	Email         string
	Amount        float64
	Type          transaction.Type
	Date          time.Time
}

// NewTransactionEvent validates the required fields and stamps the event with
// a fresh id for tracing.
func NewTransactionEvent(params EventParams) (TransactionEvent, error) {
	switch {
	case params.TransactionID <= 0:
		return TransactionEvent{}, ErrMissingTransaction
	case params.UserID <= 0:
		return TransactionEvent{}, ErrMissingUser
	case params.FullName == "":
		return TransactionEvent{}, ErrMissingName
	}

	if !params.Type.Valid() {
		return TransactionEvent{}, fmt.Errorf("unsupported event type %q", params.Type)
	}

	return TransactionEvent{
		EventID:       uuid.New(),
		TransactionID: params.TransactionID,
		UserID:        params.UserID,
		FullName:      params.FullName,
		Email:         params.Email,
		Amount:        params.Amount,
		Type:          params.Type,
		Date:          params.Date,
	}, nil
}
