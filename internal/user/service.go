package user

import (
	"context"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=user
type Repository interface {
	CreateUser(ctx context.Context, u *User) error
	GetUser(ctx context.Context, id int64) (*User, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

type CreateParams struct {
	FullName string
	Email    string
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*User, error) {
	u := &User{
		FullName: params.FullName,
		Email:    params.Email,
	}
	if err := s.repo.CreateUser(ctx, u); err != nil {
		return nil, err
	}

	return u, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*User, error) {
	return s.repo.GetUser(ctx, id)
}

// Balance returns the user's current balance in cents.
func (s *Service) Balance(ctx context.Context, id int64) (int64, error) {
	u, err := s.repo.GetUser(ctx, id)
	if err != nil {
		return 0, err
	}

	return u.Balance, nil
}
