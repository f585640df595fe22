package transaction

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var ErrInvalidAmount = errors.New("amount must be non-negative")

//go:generate mockgen -source=service.go -destination=service_mock.go -package=transaction
type Repository interface {
	CreateTransaction(ctx context.Context, tx *Transaction) error
	GetTransaction(ctx context.Context, id int64) (*Transaction, error)
	UpdateStatus(ctx context.Context, id int64, status Status) error
	ListTransactions(ctx context.Context, filter ListFilter) ([]*Transaction, error)
	DeleteTransaction(ctx context.Context, id int64) error
	Analytics(ctx context.Context, userID int64) (*Analytics, error)
}

// Settler finalizes a freshly created transaction: it applies the balance
// mutation, reconciles the status, and hands the settled event downstream.
type Settler interface {
	SettleCreated(ctx context.Context, txID, userID, amount int64, txType Type) error
}

type Service struct {
	repo    Repository
	settler Settler
}

func NewService(repo Repository, settler Settler) *Service {
	return &Service{repo: repo, settler: settler}
}

type CreateParams struct {
	UserID      int64
	Amount      int64
	Type        Type
	Description string
	Date        time.Time
}

type ListFilter struct {
	UserID    *int64
	Status    *Status
	StartDate *time.Time
	EndDate   *time.Time
	OrderBy   string
	Skip      int
	Limit     int
}

// Create records the transaction as pending and settles it synchronously.
// The returned transaction reflects the settled status; a settlement failure
// is surfaced to the caller after the row has been marked failed.
func (s *Service) Create(ctx context.Context, params CreateParams) (*Transaction, error) {
	if params.Amount < 0 {
		return nil, ErrInvalidAmount
	}

	tx := &Transaction{
		UserID:      params.UserID,
		Amount:      params.Amount,
		Type:        params.Type,
		Status:      StatusPending,
		Description: params.Description,
		Date:        params.Date,
	}
	if err := s.repo.CreateTransaction(ctx, tx); err != nil {
		return nil, err
	}

	if err := s.settler.SettleCreated(ctx, tx.ID, tx.UserID, tx.Amount, tx.Type); err != nil {
		return nil, fmt.Errorf("settling transaction %d: %w", tx.ID, err)
	}

	tx.Status = StatusSuccess

	return tx, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Transaction, error) {
	return s.repo.GetTransaction(ctx, id)
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Transaction, error) {
	return s.repo.ListTransactions(ctx, filter)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.DeleteTransaction(ctx, id)
}

// Analytics aggregates the user's settled transactions; failed transactions
// contribute nothing.
func (s *Service) Analytics(ctx context.Context, userID int64) (*Analytics, error) {
	return s.repo.Analytics(ctx, userID)
}
