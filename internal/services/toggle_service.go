package services

import (
	"context"
	"fmt"

	"github.com/anonto42/vortex/backend/internal/apperrors"
	"github.com/anonto42/vortex/backend/internal/models"
	"github.com/anonto42/vortex/backend/internal/repositories"
	"go.uber.org/zap"
)

// ToggleResult is the relation state after a toggle. Count is set for likes
// only and is recounted after the write.
type ToggleResult struct {
	Active bool   `json:"active"`
	Count  *int64 `json:"count,omitempty"`
}

// ToggleService flips likes, follows and saves.
type ToggleService struct {
	relations repositories.RelationRepository
	posts     repositories.PostRepository
	users     repositories.UserRepository
	notifier  *NotificationDispatcher
	logger    *zap.Logger
}

func NewToggleService(
	relations repositories.RelationRepository,
	posts repositories.PostRepository,
	users repositories.UserRepository,
	notifier *NotificationDispatcher,
	logger *zap.Logger,
) *ToggleService {
	return &ToggleService{relations: relations, posts: posts, users: users, notifier: notifier, logger: logger}
}

// Toggle flips the kind relation from subjectID to objectID. objectID is a
// post id for likes and saves and a user id for follows. Only the call that
// creates the relation emits a notification.
func (s *ToggleService) Toggle(ctx context.Context, kind models.RelationKind, subjectID, objectID string) (ToggleResult, error) {
	var event *Event
	switch kind {
	case models.RelationLike, models.RelationSave:
		post, err := s.posts.GetPostByID(ctx, objectID)
		if err != nil {
			return ToggleResult{}, err
		}
		if kind == models.RelationLike {
			event = &Event{Action: ActionLike, ActorID: subjectID, PostID: post.ID, PostAuthorID: post.AuthorID}
		}
	case models.RelationFollow:
		if subjectID == objectID {
			return ToggleResult{}, apperrors.ErrSelfFollow
		}
		if _, err := s.users.GetUserByID(ctx, objectID); err != nil {
			return ToggleResult{}, err
		}
		event = &Event{Action: ActionFollow, ActorID: subjectID, FollowedID: objectID}
	default:
		return ToggleResult{}, apperrors.Validation(fmt.Sprintf("unknown relation %s", kind))
	}

	out, err := s.relations.Toggle(ctx, kind, subjectID, objectID)
	if err != nil {
		return ToggleResult{}, fmt.Errorf("toggling %s: %w", kind, err)
	}
	s.logger.Debug("relation toggled",
		zap.Stringer("kind", kind),
		zap.String("subject_id", subjectID),
		zap.String("object_id", objectID),
		zap.Bool("active", out.Active),
		zap.Bool("created", out.Created),
	)

	if out.Created && event != nil {
		s.notifier.dispatchBestEffort(ctx, *event)
	}

	res := ToggleResult{Active: out.Active}
	if kind == models.RelationLike {
		count, err := s.relations.CountByTarget(ctx, kind, objectID)
		if err != nil {
			return ToggleResult{}, fmt.Errorf("counting likes: %w", err)
		}
		res.Count = &count
	}
	return res, nil
}
