package services

import (
	"context"
	"sync"
	"testing"

	"github.com/anonto42/vortex/backend/internal/apperrors"
	"github.com/anonto42/vortex/backend/internal/models"
	"github.com/anonto42/vortex/backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLikeUnlikeEndToEnd(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	a := testutil.CreateUser(t, e.db, "alice", models.RoleUser)
	b := testutil.CreateUser(t, e.db, "bob", models.RoleUser)
	post := testutil.CreatePost(t, e.db, b, "bob's post")

	res, err := e.toggles.Toggle(ctx, models.RelationLike, a.ID, post.ID)
	require.NoError(t, err)
	assert.True(t, res.Active)
	require.NotNil(t, res.Count)
	assert.EqualValues(t, 1, *res.Count)

	inbox, err := e.notifier.List(ctx, b.ID, 0)
	require.NoError(t, err)
	require.Len(t, inbox, 1)
	assert.Equal(t, models.NotificationLike, inbox[0].Type)
	assert.Equal(t, a.ID, inbox[0].ActorID)
	assert.Equal(t, b.ID, inbox[0].UserID)

	res, err = e.toggles.Toggle(ctx, models.RelationLike, a.ID, post.ID)
	require.NoError(t, err)
	assert.False(t, res.Active)
	require.NotNil(t, res.Count)
	assert.Zero(t, *res.Count)

	inbox, err = e.notifier.List(ctx, b.ID, 0)
	require.NoError(t, err)
	assert.Len(t, inbox, 1, "unlike is silent and keeps the old notification")
	assert.False(t, inbox[0].Read)

	// re-like notifies again
	_, err = e.toggles.Toggle(ctx, models.RelationLike, a.ID, post.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, e.notificationCount(t))
}

func TestToggleIsAnInvolution(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	a := testutil.CreateUser(t, e.db, "alice", models.RoleUser)
	b := testutil.CreateUser(t, e.db, "bob", models.RoleUser)
	post := testutil.CreatePost(t, e.db, b, "p")

	cases := []struct {
		kind   models.RelationKind
		object string
	}{
		{models.RelationLike, post.ID},
		{models.RelationSave, post.ID},
		{models.RelationFollow, b.ID},
	}
	for _, tc := range cases {
		t.Run(tc.kind.String(), func(t *testing.T) {
			before, err := e.relations.Exists(ctx, tc.kind, a.ID, tc.object)
			require.NoError(t, err)

			_, err = e.toggles.Toggle(ctx, tc.kind, a.ID, tc.object)
			require.NoError(t, err)
			_, err = e.toggles.Toggle(ctx, tc.kind, a.ID, tc.object)
			require.NoError(t, err)

			after, err := e.relations.Exists(ctx, tc.kind, a.ID, tc.object)
			require.NoError(t, err)
			assert.Equal(t, before, after)
		})
	}
}

func TestSaveIsSilentAndCountless(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	a := testutil.CreateUser(t, e.db, "alice", models.RoleUser)
	b := testutil.CreateUser(t, e.db, "bob", models.RoleUser)
	post := testutil.CreatePost(t, e.db, b, "p")

	res, err := e.toggles.Toggle(ctx, models.RelationSave, a.ID, post.ID)
	require.NoError(t, err)
	assert.True(t, res.Active)
	assert.Nil(t, res.Count)
	assert.Zero(t, e.notificationCount(t))
}

func TestFollowNotifiesFollowedUser(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	a := testutil.CreateUser(t, e.db, "alice", models.RoleUser)
	b := testutil.CreateUser(t, e.db, "bob", models.RoleUser)

	res, err := e.toggles.Toggle(ctx, models.RelationFollow, a.ID, b.ID)
	require.NoError(t, err)
	assert.True(t, res.Active)

	inbox, err := e.notifier.List(ctx, b.ID, 0)
	require.NoError(t, err)
	require.Len(t, inbox, 1)
	assert.Equal(t, models.NotificationFollow, inbox[0].Type)
	assert.Nil(t, inbox[0].PostID)
}

func TestSelfFollowRejectedForEveryRole(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	for _, role := range []models.Role{models.RoleUser, models.RoleAdmin} {
		u := testutil.CreateUser(t, e.db, "self_"+string(role), role)
		_, err := e.toggles.Toggle(ctx, models.RelationFollow, u.ID, u.ID)
		assert.ErrorIs(t, err, apperrors.ErrSelfFollow)
		assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
	}
	assert.Zero(t, e.notificationCount(t))
}

func TestLikingOwnPostDoesNotNotify(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	a := testutil.CreateUser(t, e.db, "alice", models.RoleUser)
	post := testutil.CreatePost(t, e.db, a, "mine")

	_, err := e.toggles.Toggle(ctx, models.RelationLike, a.ID, post.ID)
	require.NoError(t, err)
	assert.Zero(t, e.notificationCount(t))
}

func TestToggleMissingTarget(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	a := testutil.CreateUser(t, e.db, "alice", models.RoleUser)

	_, err := e.toggles.Toggle(ctx, models.RelationLike, a.ID, "nope")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	_, err = e.toggles.Toggle(ctx, models.RelationFollow, a.ID, "nope")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestConcurrentLikesKeepOneRow(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	a := testutil.CreateUser(t, e.db, "alice", models.RoleUser)
	b := testutil.CreateUser(t, e.db, "bob", models.RoleUser)
	post := testutil.CreatePost(t, e.db, b, "p")

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := e.toggles.Toggle(ctx, models.RelationLike, a.ID, post.ID)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	count, err := e.relations.CountByTarget(ctx, models.RelationLike, post.ID)
	require.NoError(t, err)
	assert.LessOrEqual(t, count, int64(1))
}
