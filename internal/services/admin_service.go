package services

import (
	"context"
	"fmt"
	"math"
	"strconv"

	"github.com/anonto42/vortex/backend/internal/apperrors"
	"github.com/anonto42/vortex/backend/internal/models"
	"github.com/anonto42/vortex/backend/internal/repositories"
	"go.uber.org/zap"
)

// Stats is the admin dashboard summary.
type Stats struct {
	TotalUsers    int64  `json:"total_users"`
	TotalAdmins   int64  `json:"total_admins"`
	TotalPosts    int64  `json:"total_posts"`
	TotalComments int64  `json:"total_comments"`
	TotalLikes    int64  `json:"total_likes"`
	Engagement    string `json:"engagement"`
}

// AdminService performs role changes and deletions without ever leaving
// the platform without an admin.
type AdminService struct {
	users      repositories.UserRepository
	posts      repositories.PostRepository
	comments   repositories.CommentRepository
	engagement repositories.EngagementRepository
	logger     *zap.Logger
}

func NewAdminService(
	users repositories.UserRepository,
	posts repositories.PostRepository,
	comments repositories.CommentRepository,
	engagement repositories.EngagementRepository,
	logger *zap.Logger,
) *AdminService {
	return &AdminService{users: users, posts: posts, comments: comments, engagement: engagement, logger: logger}
}

func (s *AdminService) ListUsers(ctx context.Context, page, limit int) ([]models.User, int64, error) {
	skip, size := ClampPage(page, limit)
	users, total, err := s.users.GetUsers(ctx, skip, size)
	if err != nil {
		return nil, 0, fmt.Errorf("listing users: %w", err)
	}
	return users, total, nil
}

// ChangeRole validates rawRole and applies it to userID.
func (s *AdminService) ChangeRole(ctx context.Context, actorID, userID, rawRole string) (*models.User, error) {
	role, ok := models.ParseRole(rawRole)
	if !ok {
		return nil, apperrors.Validation(fmt.Sprintf("invalid role %q: must be user or admin", rawRole))
	}
	user, err := s.users.ChangeRole(ctx, userID, role)
	if err != nil {
		return nil, err
	}
	s.logger.Info("role changed",
		zap.String("actor_id", actorID),
		zap.String("user_id", userID),
		zap.String("role", string(role)),
	)
	return user, nil
}

// DeleteUser removes a user with their posts, comments, relations and
// notifications.
func (s *AdminService) DeleteUser(ctx context.Context, actorID, userID string) error {
	if userID == "" {
		return apperrors.Validation("user id is required")
	}
	postIDs, err := s.posts.GetPostIDsByUserID(ctx, userID)
	if err != nil {
		return fmt.Errorf("listing user posts: %w", err)
	}
	if err := s.users.DeleteUser(ctx, userID, postIDs); err != nil {
		return err
	}
	// posts kept outside the relational store go separately
	if err := s.posts.DeletePostsByUserID(ctx, userID); err != nil {
		return fmt.Errorf("deleting user posts: %w", err)
	}
	s.logger.Info("user deleted",
		zap.String("actor_id", actorID),
		zap.String("user_id", userID),
		zap.Int("posts", len(postIDs)),
	)
	return nil
}

func (s *AdminService) Stats(ctx context.Context) (*Stats, error) {
	var (
		st  Stats
		err error
	)
	if st.TotalUsers, err = s.users.CountUsers(ctx); err != nil {
		return nil, fmt.Errorf("counting users: %w", err)
	}
	if st.TotalAdmins, err = s.users.CountAdmins(ctx); err != nil {
		return nil, fmt.Errorf("counting admins: %w", err)
	}
	if st.TotalPosts, err = s.posts.CountPosts(ctx); err != nil {
		return nil, fmt.Errorf("counting posts: %w", err)
	}
	if st.TotalComments, err = s.comments.CountComments(ctx); err != nil {
		return nil, fmt.Errorf("counting comments: %w", err)
	}
	if st.TotalLikes, err = s.engagement.TotalLikes(ctx); err != nil {
		return nil, fmt.Errorf("counting likes: %w", err)
	}
	st.Engagement = Engagement(st.TotalLikes, st.TotalComments, st.TotalPosts)
	return &st, nil
}

// Engagement is interactions per post rounded to one decimal, e.g. "2.5x".
func Engagement(likes, comments, posts int64) string {
	if posts <= 0 {
		return "0x"
	}
	ratio := math.Round(float64(likes+comments)/float64(posts)*10) / 10
	return strconv.FormatFloat(ratio, 'f', -1, 64) + "x"
}
