package repositories_test

import (
	"context"
	"testing"

	"github.com/anonto42/vortex/backend/internal/apperrors"
	"github.com/anonto42/vortex/backend/internal/models"
	"github.com/anonto42/vortex/backend/internal/repositories"
	"github.com/anonto42/vortex/backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLPostRepository(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repositories.NewSQLPostRepository(db)
	ctx := context.Background()

	alice := testutil.CreateUser(t, db, "alice", models.RoleUser)
	older := testutil.CreatePost(t, db, alice, "older")
	newer := testutil.CreatePost(t, db, alice, "newer")

	all, err := repo.GetAllPosts(ctx, 0, 10)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, newer.ID, all[0].ID)

	byIDs, err := repo.GetPostsByIDs(ctx, []string{older.ID, "missing", newer.ID})
	require.NoError(t, err)
	require.Len(t, byIDs, 2)
	assert.Equal(t, older.ID, byIDs[0].ID)

	older.Title = "edited"
	older.Tags = []string{"go"}
	require.NoError(t, repo.UpdatePost(ctx, older))
	got, err := repo.GetPostByID(ctx, older.ID)
	require.NoError(t, err)
	assert.Equal(t, "edited", got.Title)
	assert.Equal(t, []string{"go"}, got.Tags)

	n, err := repo.CountPostsByUserID(ctx, alice.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	require.NoError(t, repo.DeletePost(ctx, older.ID))
	assert.ErrorIs(t, repo.DeletePost(ctx, older.ID), apperrors.ErrNotFound)
	_, err = repo.GetPostByID(ctx, older.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
