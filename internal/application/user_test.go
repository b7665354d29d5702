package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"tumorviz/internal/domain/entity"
	"tumorviz/internal/infrastructure/storage"
)

func TestUserService_BeginCheckAndCancel(t *testing.T) {
	repo := storage.NewMemoryUserRepository()
	svc := NewUserService(repo)
	ctx := context.Background()

	user, err := svc.BeginCheck(ctx, 1, 10)
	require.NoError(t, err)
	require.Equal(t, entity.StateAwaitingPhoto, user.State)

	user, err = svc.Cancel(ctx, 1, 10)
	require.NoError(t, err)
	require.Equal(t, entity.StateMainMenu, user.State)
}

func TestUserService_SetState(t *testing.T) {
	repo := storage.NewMemoryUserRepository()
	svc := NewUserService(repo)
	ctx := context.Background()

	user, err := svc.BeginProcessing(ctx, 2, 20)
	require.NoError(t, err)
	require.Equal(t, entity.StateProcessing, user.State)
}

func TestUserService_SelectModel(t *testing.T) {
	repo := storage.NewMemoryUserRepository()
	svc := NewUserService(repo)
	ctx := context.Background()

	user, err := svc.SelectModel(ctx, 3, 30, "cnn")
	require.NoError(t, err)
	require.Equal(t, "cnn", user.Model)

	user, err = svc.Get(ctx, 3, 30)
	require.NoError(t, err)
	require.Equal(t, "cnn", user.Model)
}
