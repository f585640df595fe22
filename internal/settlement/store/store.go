package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/MrJamesThe3rd/tally/internal/transaction"
	"github.com/MrJamesThe3rd/tally/internal/user"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) GetTransaction(ctx context.Context, id int64) (*transaction.Transaction, error) {
	query := `
		SELECT id, user_id, amount, type, status, description, date, created_at, updated_at
		FROM transactions WHERE id = $1
	`

	var tx transaction.Transaction

	var typeStr, statusStr string

	var desc sql.NullString

	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&tx.ID, &tx.UserID, &tx.Amount, &typeStr, &statusStr, &desc, &tx.Date,
		&tx.CreatedAt, &tx.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, transaction.ErrNotFound
		}

		return nil, fmt.Errorf("getting transaction: %w", err)
	}

	tx.Type = transaction.Type(typeStr)
	tx.Status = transaction.Status(statusStr)
	tx.Description = desc.String

	return &tx, nil
}

// ApplyBalance commits the balance mutation and the success status as one
// durable unit. The user row is locked FOR UPDATE so concurrent settlements
// against the same user serialize instead of losing an update.
func (s *Store) ApplyBalance(ctx context.Context, txID, userID, delta int64) (*user.User, error) {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning settlement tx: %w", err)
	}
	defer dbTx.Rollback()

	lockQuery := `
		SELECT id, full_name, email, balance, created_at, updated_at
		FROM users WHERE id = $1 FOR UPDATE
	`

	var u user.User

	var email sql.NullString

	err = dbTx.QueryRowContext(ctx, lockQuery, userID).
		Scan(&u.ID, &u.FullName, &email, &u.Balance, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, user.ErrNotFound
		}

		return nil, fmt.Errorf("locking user row: %w", err)
	}

	u.Email = email.String
	u.Balance += delta

	balanceQuery := `
		UPDATE users SET balance = $1, updated_at = NOW() WHERE id = $2
	`
	if _, err := dbTx.ExecContext(ctx, balanceQuery, u.Balance, userID); err != nil {
		return nil, fmt.Errorf("updating balance: %w", err)
	}

	statusQuery := `
		UPDATE transactions SET status = $1, updated_at = NOW() WHERE id = $2
	`
	if _, err := dbTx.ExecContext(ctx, statusQuery, transaction.StatusSuccess, txID); err != nil {
		return nil, fmt.Errorf("updating transaction status: %w", err)
	}

	if err := dbTx.Commit(); err != nil {
		return nil, fmt.Errorf("committing settlement: %w", err)
	}

	return &u, nil
}

func (s *Store) MarkFailed(ctx context.Context, txID int64) error {
	query := `
		UPDATE transactions SET status = $1, updated_at = NOW() WHERE id = $2
	`

	if _, err := s.db.ExecContext(ctx, query, transaction.StatusFailed, txID); err != nil {
		return fmt.Errorf("marking transaction failed: %w", err)
	}

	return nil
}
