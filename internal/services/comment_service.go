package services

import (
	"context"
	"fmt"

	"github.com/anonto42/vortex/backend/internal/apperrors"
	"github.com/anonto42/vortex/backend/internal/models"
	"github.com/anonto42/vortex/backend/internal/repositories"
	"github.com/anonto42/vortex/backend/internal/session"
	"go.uber.org/zap"
)

type CommentService struct {
	comments  repositories.CommentRepository
	posts     repositories.PostRepository
	users     repositories.UserRepository
	notifier  *NotificationDispatcher
	sanitizer *Sanitizer
	logger    *zap.Logger
}

func NewCommentService(
	comments repositories.CommentRepository,
	posts repositories.PostRepository,
	users repositories.UserRepository,
	notifier *NotificationDispatcher,
	sanitizer *Sanitizer,
	logger *zap.Logger,
) *CommentService {
	return &CommentService{
		comments:  comments,
		posts:     posts,
		users:     users,
		notifier:  notifier,
		sanitizer: sanitizer,
		logger:    logger,
	}
}

// Create adds a comment or, when req names a parent, a reply. The parent
// must be a comment on the same post.
func (s *CommentService) Create(ctx context.Context, authorID, postID string, req models.CreateCommentRequest) (*CommentNode, error) {
	content := s.sanitizer.Body(req.Content)
	if content == "" {
		return nil, apperrors.Validation("comment content is required")
	}

	post, err := s.posts.GetPostByID(ctx, postID)
	if err != nil {
		return nil, err
	}

	ev := Event{Action: ActionComment, ActorID: authorID, PostID: post.ID, PostAuthorID: post.AuthorID}
	var parentID *string
	if req.ParentCommentID != nil && *req.ParentCommentID != "" {
		parent, err := s.comments.GetCommentByID(ctx, *req.ParentCommentID)
		if err != nil {
			return nil, err
		}
		if parent.PostID != post.ID {
			return nil, apperrors.Validation("parent comment belongs to a different post")
		}
		parentID = &parent.ID
		ev.Action = ActionReply
		ev.ParentAuthorID = parent.AuthorID
	}

	comment := &models.Comment{
		PostID:          post.ID,
		AuthorID:        authorID,
		ParentCommentID: parentID,
		Content:         content,
	}
	if err := s.comments.CreateComment(ctx, comment); err != nil {
		return nil, fmt.Errorf("creating comment: %w", err)
	}

	s.notifier.dispatchBestEffort(ctx, ev)

	node := &CommentNode{Comment: *comment, Replies: []*CommentNode{}}
	if author, err := s.users.GetUserByID(ctx, authorID); err == nil {
		compact := author.ToCompact()
		node.Author = &compact
	}
	return node, nil
}

// Delete removes a comment if actor wrote it or is an admin. Replies are
// left in place.
func (s *CommentService) Delete(ctx context.Context, actor *session.Info, commentID string) error {
	comment, err := s.comments.GetCommentByID(ctx, commentID)
	if err != nil {
		return err
	}
	if err := canModify(actor, comment.AuthorID, "comment"); err != nil {
		return err
	}
	if err := s.comments.DeleteComment(ctx, commentID); err != nil {
		return fmt.Errorf("deleting comment: %w", err)
	}
	s.logger.Info("comment deleted",
		zap.String("comment_id", commentID),
		zap.String("actor_id", actor.UserID),
		zap.Bool("by_admin", comment.AuthorID != actor.UserID),
	)
	return nil
}

// Thread returns the comments of a post as a forest, newest first.
func (s *CommentService) Thread(ctx context.Context, postID string) ([]*CommentNode, error) {
	if _, err := s.posts.GetPostByID(ctx, postID); err != nil {
		return nil, err
	}
	comments, err := s.comments.GetCommentsByPostID(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("listing comments: %w", err)
	}

	authorIDs := make([]string, 0, len(comments))
	seen := make(map[string]bool, len(comments))
	for _, c := range comments {
		if !seen[c.AuthorID] {
			seen[c.AuthorID] = true
			authorIDs = append(authorIDs, c.AuthorID)
		}
	}
	users, err := s.users.GetUsersByIDs(ctx, authorIDs)
	if err != nil {
		return nil, fmt.Errorf("loading comment authors: %w", err)
	}
	authors := make(map[string]models.UserCompact, len(users))
	for id, u := range users {
		authors[id] = u.ToCompact()
	}
	return BuildThread(comments, authors), nil
}
