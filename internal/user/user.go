package user

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("user not found")

// User represents an account holder in the ledger.
type User struct {
	ID        int64
	FullName  string
	Email     string
	Balance   int64 // Balance in cents; settlement is the only writer.
	CreatedAt time.Time
	UpdatedAt *time.Time
}
