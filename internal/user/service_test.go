package user_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/tally/internal/user"
)

func TestService_Create(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := user.NewMockRepository(ctrl)
	repo.EXPECT().
		CreateUser(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, u *user.User) error {
			u.ID = 7
			return nil
		})

	svc := user.NewService(repo)

	got, err := svc.Create(context.Background(), user.CreateParams{
		FullName: "Grace Hopper",
		Email:    "grace@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(7), got.ID)
	assert.Zero(t, got.Balance)
}

func TestService_Balance(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := user.NewMockRepository(ctrl)
	repo.EXPECT().
		GetUser(gomock.Any(), int64(7)).
		Return(&user.User{ID: 7, Balance: -2000}, nil)

	svc := user.NewService(repo)

	balance, err := svc.Balance(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, int64(-2000), balance)
}

func TestService_BalanceNotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := user.NewMockRepository(ctrl)
	repo.EXPECT().
		GetUser(gomock.Any(), int64(99)).
		Return(nil, user.ErrNotFound)

	svc := user.NewService(repo)

	_, err := svc.Balance(context.Background(), 99)
	assert.ErrorIs(t, err, user.ErrNotFound)
}
