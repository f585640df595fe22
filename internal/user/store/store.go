package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/MrJamesThe3rd/tally/internal/user"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// scanUser reads a user row from the scanner.
// Expected column order: id, full_name, email, balance, created_at, updated_at
func scanUser(s scanner) (*user.User, error) {
	var u user.User

	var email sql.NullString

	if err := s.Scan(&u.ID, &u.FullName, &email, &u.Balance, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}

	u.Email = email.String

	return &u, nil
}

const selectUserColumns = `id, full_name, email, balance, created_at, updated_at`

func (s *Store) CreateUser(ctx context.Context, u *user.User) error {
	query := `
		INSERT INTO users (full_name, email, balance, created_at, updated_at)
		VALUES ($1, $2, 0, NOW(), NOW())
		RETURNING id, balance, created_at, updated_at
	`

	var email any
	if u.Email != "" {
		email = u.Email
	}

	err := s.db.QueryRowContext(ctx, query, u.FullName, email).
		Scan(&u.ID, &u.Balance, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return fmt.Errorf("creating user: %w", err)
	}

	return nil
}

func (s *Store) GetUser(ctx context.Context, id int64) (*user.User, error) {
	query := `SELECT ` + selectUserColumns + ` FROM users WHERE id = $1`

	u, err := scanUser(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, user.ErrNotFound
		}

		return nil, fmt.Errorf("getting user: %w", err)
	}

	return u, nil
}
