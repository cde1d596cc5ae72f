package services

import (
	"context"
	"testing"

	"github.com/anonto42/vortex/backend/internal/models"
	"github.com/anonto42/vortex/backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecipients(t *testing.T) {
	tests := []struct {
		name string
		ev   Event
		want []Delivery
	}{
		{
			name: "comment notifies post author",
			ev:   Event{Action: ActionComment, ActorID: "a", PostAuthorID: "p"},
			want: []Delivery{{models.NotificationComment, "p"}},
		},
		{
			name: "reply notifies parent and post authors",
			ev:   Event{Action: ActionReply, ActorID: "a", PostAuthorID: "p", ParentAuthorID: "c"},
			want: []Delivery{{models.NotificationComment, "c"}, {models.NotificationComment, "p"}},
		},
		{
			name: "reply collapses same recipient",
			ev:   Event{Action: ActionReply, ActorID: "a", PostAuthorID: "p", ParentAuthorID: "p"},
			want: []Delivery{{models.NotificationComment, "p"}},
		},
		{
			name: "like notifies post author",
			ev:   Event{Action: ActionLike, ActorID: "a", PostAuthorID: "p"},
			want: []Delivery{{models.NotificationLike, "p"}},
		},
		{
			name: "follow notifies followed user",
			ev:   Event{Action: ActionFollow, ActorID: "a", FollowedID: "f"},
			want: []Delivery{{models.NotificationFollow, "f"}},
		},
		{
			name: "unknown action has no rule",
			ev:   Event{Action: Action(99), ActorID: "a"},
			want: nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Recipients(tt.ev))
		})
	}
}

func TestNotifySkipsSelf(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	alice := testutil.CreateUser(t, e.db, "alice", models.RoleUser)
	bob := testutil.CreateUser(t, e.db, "bob", models.RoleUser)

	for _, typ := range []models.NotificationType{models.NotificationLike, models.NotificationComment, models.NotificationFollow} {
		n, err := e.notifier.Notify(ctx, typ, alice.ID, alice.ID, nil)
		require.NoError(t, err)
		assert.Nil(t, n)
	}
	assert.Zero(t, e.notificationCount(t))

	n, err := e.notifier.Notify(ctx, models.NotificationFollow, alice.ID, bob.ID, nil)
	require.NoError(t, err)
	require.NotNil(t, n)
	assert.NotEmpty(t, n.ID)
	assert.False(t, n.Read)

	_, err = e.notifier.Notify(ctx, models.NotificationType("poke"), alice.ID, bob.ID, nil)
	assert.Error(t, err)
}

func TestDispatchExcludesActor(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	alice := testutil.CreateUser(t, e.db, "alice", models.RoleUser)
	bob := testutil.CreateUser(t, e.db, "bob", models.RoleUser)

	// alice replies to bob on her own post: only bob hears about it
	out, err := e.notifier.Dispatch(ctx, Event{
		Action:         ActionReply,
		ActorID:        alice.ID,
		PostID:         "post-1",
		PostAuthorID:   alice.ID,
		ParentAuthorID: bob.ID,
	})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, bob.ID, out[0].UserID)
	require.NotNil(t, out[0].PostID)
	assert.Equal(t, "post-1", *out[0].PostID)
}

func TestListCapsAndMarksRead(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	alice := testutil.CreateUser(t, e.db, "alice", models.RoleUser)
	bob := testutil.CreateUser(t, e.db, "bob", models.RoleUser)

	for i := 0; i < DefaultNotificationLimit+5; i++ {
		_, err := e.notifier.Notify(ctx, models.NotificationFollow, bob.ID, alice.ID, nil)
		require.NoError(t, err)
	}

	list, err := e.notifier.List(ctx, alice.ID, 0)
	require.NoError(t, err)
	assert.Len(t, list, DefaultNotificationLimit)

	list, err = e.notifier.List(ctx, alice.ID, 5)
	require.NoError(t, err)
	assert.Len(t, list, 5)

	changed, err := e.notifier.MarkAllRead(ctx, alice.ID)
	require.NoError(t, err)
	assert.EqualValues(t, DefaultNotificationLimit+5, changed)

	unread, err := e.notifier.UnreadCount(ctx, alice.ID)
	require.NoError(t, err)
	assert.Zero(t, unread)
}
