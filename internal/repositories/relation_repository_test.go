package repositories_test

import (
	"context"
	"sync"
	"testing"

	"github.com/anonto42/vortex/backend/internal/models"
	"github.com/anonto42/vortex/backend/internal/repositories"
	"github.com/anonto42/vortex/backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToggleFlipsState(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repositories.NewSQLRelationRepository(db)
	ctx := context.Background()

	alice := testutil.CreateUser(t, db, "alice", models.RoleUser)
	bob := testutil.CreateUser(t, db, "bob", models.RoleUser)
	post := testutil.CreatePost(t, db, bob, "hello")

	cases := []struct {
		kind   models.RelationKind
		target string
	}{
		{models.RelationLike, post.ID},
		{models.RelationSave, post.ID},
		{models.RelationFollow, bob.ID},
	}
	for _, tc := range cases {
		t.Run(tc.kind.String(), func(t *testing.T) {
			out, err := repo.Toggle(ctx, tc.kind, alice.ID, tc.target)
			require.NoError(t, err)
			assert.Equal(t, repositories.ToggleOutcome{Active: true, Created: true}, out)

			exists, err := repo.Exists(ctx, tc.kind, alice.ID, tc.target)
			require.NoError(t, err)
			assert.True(t, exists)

			n, err := repo.CountByTarget(ctx, tc.kind, tc.target)
			require.NoError(t, err)
			assert.EqualValues(t, 1, n)

			out, err = repo.Toggle(ctx, tc.kind, alice.ID, tc.target)
			require.NoError(t, err)
			assert.Equal(t, repositories.ToggleOutcome{Active: false}, out)

			n, err = repo.CountByTarget(ctx, tc.kind, tc.target)
			require.NoError(t, err)
			assert.Zero(t, n)
		})
	}
}

func TestConcurrentTogglesNeverDuplicate(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repositories.NewSQLRelationRepository(db)
	ctx := context.Background()

	alice := testutil.CreateUser(t, db, "alice", models.RoleUser)
	post := testutil.CreatePost(t, db, alice, "hello")

	const workers = 16
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.Toggle(ctx, models.RelationLike, alice.ID, post.ID)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	var rows int64
	require.NoError(t, db.Model(&models.Like{}).Where("user_id = ? AND post_id = ?", alice.ID, post.ID).Count(&rows).Error)
	assert.LessOrEqual(t, rows, int64(1))
}

func TestCountByActor(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repositories.NewSQLRelationRepository(db)
	ctx := context.Background()

	alice := testutil.CreateUser(t, db, "alice", models.RoleUser)
	bob := testutil.CreateUser(t, db, "bob", models.RoleUser)
	carol := testutil.CreateUser(t, db, "carol", models.RoleUser)

	for _, target := range []*models.User{bob, carol} {
		_, err := repo.Toggle(ctx, models.RelationFollow, alice.ID, target.ID)
		require.NoError(t, err)
	}

	following, err := repo.CountByActor(ctx, models.RelationFollow, alice.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, following)

	followers, err := repo.CountByTarget(ctx, models.RelationFollow, alice.ID)
	require.NoError(t, err)
	assert.Zero(t, followers)
}

func TestPurgePostRemovesDependents(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repositories.NewSQLRelationRepository(db)
	ctx := context.Background()

	alice := testutil.CreateUser(t, db, "alice", models.RoleUser)
	post := testutil.CreatePost(t, db, alice, "doomed")
	other := testutil.CreatePost(t, db, alice, "kept")

	for _, id := range []string{post.ID, other.ID} {
		_, err := repo.Toggle(ctx, models.RelationLike, alice.ID, id)
		require.NoError(t, err)
		_, err = repo.Toggle(ctx, models.RelationSave, alice.ID, id)
		require.NoError(t, err)
		require.NoError(t, db.Create(&models.Comment{PostID: id, AuthorID: alice.ID, Content: "hi"}).Error)
	}

	require.NoError(t, repo.PurgePost(ctx, post.ID))

	for _, model := range []any{&models.Like{}, &models.SavedPost{}, &models.Comment{}} {
		var gone, kept int64
		require.NoError(t, db.Model(model).Where("post_id = ?", post.ID).Count(&gone).Error)
		require.NoError(t, db.Model(model).Where("post_id = ?", other.ID).Count(&kept).Error)
		assert.Zero(t, gone)
		assert.EqualValues(t, 1, kept)
	}
}
