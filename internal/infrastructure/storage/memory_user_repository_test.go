package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"tumorviz/internal/domain/entity"
)

func TestMemoryUserRepository_GetCreatesOnce(t *testing.T) {
	repo := NewMemoryUserRepository()
	ctx := context.Background()

	u1, err := repo.Get(ctx, 1, 10)
	require.NoError(t, err)
	u2, err := repo.Get(ctx, 1, 10)
	require.NoError(t, err)
	require.Same(t, u1, u2)
}

func TestMemoryUserRepository_Updates(t *testing.T) {
	repo := NewMemoryUserRepository()
	ctx := context.Background()

	_, err := repo.Get(ctx, 1, 10)
	require.NoError(t, err)
	require.NoError(t, repo.UpdateState(ctx, 1, entity.StateAwaitingPhoto))
	require.NoError(t, repo.UpdateModel(ctx, 1, "cnn"))

	u, err := repo.Get(ctx, 1, 10)
	require.NoError(t, err)
	require.Equal(t, entity.StateAwaitingPhoto, u.State)
	require.Equal(t, "cnn", u.Model)
}
