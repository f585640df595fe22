package transaction

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("transaction not found")

// Type represents the direction of a transaction's balance effect.
type Type string

const (
	TypeCredit Type = "credit"
	TypeDebit  Type = "debit"
)

// Valid reports whether t is a supported transaction type.
func (t Type) Valid() bool {
	return t == TypeCredit || t == TypeDebit
}

// Status represents the lifecycle state of a transaction. A transaction
// starts pending and transitions exactly once to success or failed.
type Status string

const (
	StatusPending Status = "pending"
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
)

// Terminal reports whether s is a final state that settlement must not revisit.
func (s Status) Terminal() bool {
	return s == StatusSuccess || s == StatusFailed
}

// Transaction represents a ledger entry against a user's balance.
type Transaction struct {
	ID          int64
	UserID      int64
	Amount      int64 // Amount in cents, non-negative; the sign is carried by Type.
	Type        Type
	Status      Status
	Description string
	Date        time.Time
	CreatedAt   time.Time
	UpdatedAt   *time.Time
}

// Analytics summarizes a user's settled transactions.
type Analytics struct {
	UserID        int64
	AverageAmount float64    // mean settled amount in cents
	MaxDate       *time.Time // most recent settled transaction date, nil if none
	TotalCredits  int64      // sum of settled credit amounts in cents
	TotalDebits   int64      // sum of settled debit amounts in cents
}
