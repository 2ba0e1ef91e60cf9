package profile_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/collegepedia/collegepedia/internal/database/dbtest"
	"github.com/collegepedia/collegepedia/internal/profile"
)

func TestProfileRepo_CreateAndExists(t *testing.T) {
	pool := dbtest.Open(t)
	repo := profile.NewRepository(pool)
	ctx := context.Background()

	userID := uuid.MustParse(dbtest.CreateUser(t, pool, "p@example.com"))

	exists, err := repo.Exists(ctx, userID)
	require.NoError(t, err)
	assert.False(t, exists)

	p := &profile.Profile{UserID: userID, FullName: "Meena"}
	require.NoError(t, repo.Create(ctx, p))
	assert.False(t, p.CreatedAt.IsZero())

	exists, err = repo.Exists(ctx, userID)
	require.NoError(t, err)
	assert.True(t, exists)

	err = repo.Create(ctx, &profile.Profile{UserID: userID, FullName: "Again"})
	assert.ErrorIs(t, err, profile.ErrProfileExists)
}

func TestProfileRepo_ListRecentAndCount(t *testing.T) {
	pool := dbtest.Open(t)
	repo := profile.NewRepository(pool)
	ctx := context.Background()

	for _, email := range []string{"a@example.com", "b@example.com", "c@example.com"} {
		id := uuid.MustParse(dbtest.CreateUser(t, pool, email))
		require.NoError(t, repo.Create(ctx, &profile.Profile{UserID: id, FullName: email}))
	}

	recent, err := repo.ListRecent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "c@example.com", recent[0].Email)

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}
