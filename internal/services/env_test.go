package services

import (
	"testing"
	"time"

	"github.com/anonto42/vortex/backend/internal/repositories"
	"github.com/anonto42/vortex/backend/internal/session"
	"github.com/anonto42/vortex/backend/internal/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// env wires every service against one in-memory database.
type env struct {
	db *gorm.DB

	users     *repositories.SQLUserRepository
	posts     *repositories.SQLPostRepository
	relations *repositories.SQLRelationRepository

	notifier *NotificationDispatcher
	toggles  *ToggleService
	comments *CommentService
	postsSvc *PostService
	usersSvc *UserService
	admin    *AdminService
	auth     *AuthService
}

func newEnv(t *testing.T, opts ...AuthOption) *env {
	t.Helper()
	db := testutil.NewDB(t)
	logger := zaptest.NewLogger(t)

	users := repositories.NewSQLUserRepository(db)
	posts := repositories.NewSQLPostRepository(db)
	relations := repositories.NewSQLRelationRepository(db)
	engagement := repositories.NewSQLEngagementRepository(db)
	comments := repositories.NewSQLCommentRepository(db)
	notifications := repositories.NewSQLNotificationRepository(db)
	sanitizer := NewSanitizer()

	codec, err := session.NewCodec("test-secret")
	require.NoError(t, err)

	notifier := NewNotificationDispatcher(notifications, logger)
	opts = append([]AuthOption{WithBcryptCost(bcrypt.MinCost), WithSessionTTL(time.Hour)}, opts...)

	return &env{
		db:        db,
		users:     users,
		posts:     posts,
		relations: relations,
		notifier:  notifier,
		toggles:   NewToggleService(relations, posts, users, notifier, logger),
		comments:  NewCommentService(comments, posts, users, notifier, sanitizer, logger),
		postsSvc: NewPostService(posts, users, relations, engagement,
			repositories.NewSQLSavedPostRepository(db), sanitizer, logger),
		usersSvc: NewUserService(users, posts, relations, repositories.NewSQLFollowRepository(db), sanitizer, logger),
		admin:    NewAdminService(users, posts, comments, engagement, logger),
		auth:     NewAuthService(users, codec, logger, opts...),
	}
}

func (e *env) notificationCount(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, e.db.Table("notifications").Count(&n).Error)
	return n
}
