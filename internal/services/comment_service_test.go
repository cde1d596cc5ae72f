package services

import (
	"context"
	"testing"

	"github.com/anonto42/vortex/backend/internal/apperrors"
	"github.com/anonto42/vortex/backend/internal/models"
	"github.com/anonto42/vortex/backend/internal/session"
	"github.com/anonto42/vortex/backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func inbox(t *testing.T, e *env, userID string) []models.Notification {
	t.Helper()
	list, err := e.notifier.List(context.Background(), userID, 0)
	require.NoError(t, err)
	return list
}

func TestCommentNotifiesPostAuthor(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	author := testutil.CreateUser(t, e.db, "author", models.RoleUser)
	reader := testutil.CreateUser(t, e.db, "reader", models.RoleUser)
	post := testutil.CreatePost(t, e.db, author, "p")

	node, err := e.comments.Create(ctx, reader.ID, post.ID, models.CreateCommentRequest{Content: "nice <script>x</script>post"})
	require.NoError(t, err)
	assert.Equal(t, "nice post", node.Content)
	require.NotNil(t, node.Author)
	assert.Equal(t, "reader", node.Author.Username)

	got := inbox(t, e, author.ID)
	require.Len(t, got, 1)
	assert.Equal(t, models.NotificationComment, got[0].Type)
	assert.Equal(t, reader.ID, got[0].ActorID)
}

func TestReplyFanOut(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	owner := testutil.CreateUser(t, e.db, "owner", models.RoleUser)
	first := testutil.CreateUser(t, e.db, "first", models.RoleUser)
	replier := testutil.CreateUser(t, e.db, "replier", models.RoleUser)
	post := testutil.CreatePost(t, e.db, owner, "p")

	parent, err := e.comments.Create(ctx, first.ID, post.ID, models.CreateCommentRequest{Content: "first!"})
	require.NoError(t, err)
	require.Len(t, inbox(t, e, owner.ID), 1)

	_, err = e.comments.Create(ctx, replier.ID, post.ID, models.CreateCommentRequest{Content: "reply", ParentCommentID: &parent.ID})
	require.NoError(t, err)

	assert.Len(t, inbox(t, e, first.ID), 1, "parent author")
	assert.Len(t, inbox(t, e, owner.ID), 2, "post author")
	assert.Empty(t, inbox(t, e, replier.ID))
}

func TestReplyToPostAuthorNotifiesOnce(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	owner := testutil.CreateUser(t, e.db, "owner", models.RoleUser)
	replier := testutil.CreateUser(t, e.db, "replier", models.RoleUser)
	post := testutil.CreatePost(t, e.db, owner, "p")

	parent, err := e.comments.Create(ctx, owner.ID, post.ID, models.CreateCommentRequest{Content: "mine"})
	require.NoError(t, err)
	assert.Zero(t, e.notificationCount(t))

	_, err = e.comments.Create(ctx, replier.ID, post.ID, models.CreateCommentRequest{Content: "hi", ParentCommentID: &parent.ID})
	require.NoError(t, err)
	assert.Len(t, inbox(t, e, owner.ID), 1)
}

func TestReplyParentMustShareThePost(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	u := testutil.CreateUser(t, e.db, "u", models.RoleUser)
	p1 := testutil.CreatePost(t, e.db, u, "one")
	p2 := testutil.CreatePost(t, e.db, u, "two")

	parent, err := e.comments.Create(ctx, u.ID, p1.ID, models.CreateCommentRequest{Content: "on one"})
	require.NoError(t, err)

	_, err = e.comments.Create(ctx, u.ID, p2.ID, models.CreateCommentRequest{Content: "x", ParentCommentID: &parent.ID})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = e.comments.Create(ctx, u.ID, p2.ID, models.CreateCommentRequest{Content: "x", ParentCommentID: ptr("missing")})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	_, err = e.comments.Create(ctx, u.ID, p2.ID, models.CreateCommentRequest{Content: "<script>alert(1)</script>"})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = e.comments.Create(ctx, u.ID, "missing", models.CreateCommentRequest{Content: "x"})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestDeleteCommentPermissionsAndOrphans(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	author := testutil.CreateUser(t, e.db, "author", models.RoleUser)
	other := testutil.CreateUser(t, e.db, "other", models.RoleUser)
	admin := testutil.CreateUser(t, e.db, "admin", models.RoleAdmin)
	post := testutil.CreatePost(t, e.db, author, "p")

	parent, err := e.comments.Create(ctx, author.ID, post.ID, models.CreateCommentRequest{Content: "parent"})
	require.NoError(t, err)
	reply, err := e.comments.Create(ctx, other.ID, post.ID, models.CreateCommentRequest{Content: "reply", ParentCommentID: &parent.ID})
	require.NoError(t, err)

	err = e.comments.Delete(ctx, &session.Info{UserID: other.ID, Role: models.RoleUser}, parent.ID)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	require.NoError(t, e.comments.Delete(ctx, &session.Info{UserID: admin.ID, Role: models.RoleAdmin}, parent.ID))

	thread, err := e.comments.Thread(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, thread, 1)
	assert.Equal(t, reply.ID, thread[0].ID, "reply survives as a root")

	require.NoError(t, e.comments.Delete(ctx, &session.Info{UserID: other.ID, Role: models.RoleUser}, reply.ID))
	err = e.comments.Delete(ctx, &session.Info{UserID: other.ID, Role: models.RoleUser}, reply.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
