package services

import (
	"context"
	"fmt"

	"github.com/anonto42/vortex/backend/internal/models"
	"github.com/anonto42/vortex/backend/internal/repositories"
	"go.uber.org/zap"
)

type UserService struct {
	users     repositories.UserRepository
	posts     repositories.PostRepository
	relations repositories.RelationRepository
	follows   repositories.FollowRepository
	sanitizer *Sanitizer
	logger    *zap.Logger
}

func NewUserService(
	users repositories.UserRepository,
	posts repositories.PostRepository,
	relations repositories.RelationRepository,
	follows repositories.FollowRepository,
	sanitizer *Sanitizer,
	logger *zap.Logger,
) *UserService {
	return &UserService{
		users:     users,
		posts:     posts,
		relations: relations,
		follows:   follows,
		sanitizer: sanitizer,
		logger:    logger,
	}
}

func (s *UserService) GetByID(ctx context.Context, id string) (*models.User, error) {
	return s.users.GetUserByID(ctx, id)
}

func (s *UserService) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.users.GetUserByUsername(ctx, username)
}

// Profile returns a user with derived counts. viewerID may be empty.
func (s *UserService) Profile(ctx context.Context, viewerID, username string) (*models.UserProfile, error) {
	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	profile := &models.UserProfile{User: *user}

	if profile.PostsCount, err = s.posts.CountPostsByUserID(ctx, user.ID); err != nil {
		return nil, fmt.Errorf("counting posts: %w", err)
	}
	if profile.FollowersCount, err = s.relations.CountByTarget(ctx, models.RelationFollow, user.ID); err != nil {
		return nil, fmt.Errorf("counting followers: %w", err)
	}
	if profile.FollowingCount, err = s.relations.CountByActor(ctx, models.RelationFollow, user.ID); err != nil {
		return nil, fmt.Errorf("counting following: %w", err)
	}
	if viewerID != "" && viewerID != user.ID {
		if profile.IsFollowing, err = s.relations.Exists(ctx, models.RelationFollow, viewerID, user.ID); err != nil {
			return nil, fmt.Errorf("checking follow: %w", err)
		}
	}
	return profile, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, userID string, req models.UpdateProfileRequest) (*models.User, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if req.Name != "" {
		user.Name = s.sanitizer.Line(req.Name)
	}
	if req.Bio != "" {
		user.Bio = s.sanitizer.Line(req.Bio)
	}
	if req.Avatar != "" {
		user.Avatar = req.Avatar
	}
	if err := s.users.UpdateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("updating profile: %w", err)
	}
	return user, nil
}

func (s *UserService) Followers(ctx context.Context, username string, page, limit int) ([]models.UserCompact, error) {
	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	skip, size := ClampPage(page, limit)
	users, err := s.follows.GetFollowers(ctx, user.ID, skip, size)
	if err != nil {
		return nil, fmt.Errorf("listing followers: %w", err)
	}
	return compact(users), nil
}

func (s *UserService) Following(ctx context.Context, username string, page, limit int) ([]models.UserCompact, error) {
	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	skip, size := ClampPage(page, limit)
	users, err := s.follows.GetFollowing(ctx, user.ID, skip, size)
	if err != nil {
		return nil, fmt.Errorf("listing following: %w", err)
	}
	return compact(users), nil
}

func compact(users []models.User) []models.UserCompact {
	out := make([]models.UserCompact, len(users))
	for i := range users {
		out[i] = users[i].ToCompact()
	}
	return out
}

// Compacts returns the public view of each known id.
func (s *UserService) Compacts(ctx context.Context, ids []string) (map[string]models.UserCompact, error) {
	users, err := s.users.GetUsersByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("loading users: %w", err)
	}
	out := make(map[string]models.UserCompact, len(users))
	for id, u := range users {
		out[id] = u.ToCompact()
	}
	return out, nil
}
