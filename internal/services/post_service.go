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

const (
	DefaultPageSize = 20
	MaxPageSize     = 50
)

// PostView is a post decorated with its author, derived counts and the
// viewer's own relations to it.
type PostView struct {
	models.Post
	Author        *models.UserCompact `json:"author,omitempty"`
	Likes         int64               `json:"likes"`
	CommentsCount int64               `json:"comments_count"`
	Liked         bool                `json:"liked"`
	Saved         bool                `json:"saved"`
}

type PostService struct {
	posts      repositories.PostRepository
	users      repositories.UserRepository
	relations  repositories.RelationRepository
	engagement repositories.EngagementRepository
	saved      repositories.SavedPostRepository
	sanitizer  *Sanitizer
	logger     *zap.Logger
}

func NewPostService(
	posts repositories.PostRepository,
	users repositories.UserRepository,
	relations repositories.RelationRepository,
	engagement repositories.EngagementRepository,
	saved repositories.SavedPostRepository,
	sanitizer *Sanitizer,
	logger *zap.Logger,
) *PostService {
	return &PostService{
		posts:      posts,
		users:      users,
		relations:  relations,
		engagement: engagement,
		saved:      saved,
		sanitizer:  sanitizer,
		logger:     logger,
	}
}

// ClampPage normalizes a page/limit pair into skip and limit.
func ClampPage(page, limit int) (skip, size int) {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	if page < 1 {
		page = 1
	}
	return (page - 1) * limit, limit
}

func (s *PostService) Create(ctx context.Context, authorID string, req models.CreatePostRequest) (*PostView, error) {
	post := &models.Post{
		AuthorID: authorID,
		Title:    s.sanitizer.Line(req.Title),
		Content:  s.sanitizer.Body(req.Content),
		Image:    req.Image,
		Tags:     s.cleanTags(req.Tags),
	}
	if post.Title == "" || post.Content == "" {
		return nil, apperrors.Validation("title and content are required")
	}
	if err := s.posts.CreatePost(ctx, post); err != nil {
		return nil, fmt.Errorf("creating post: %w", err)
	}
	views, err := s.decorate(ctx, authorID, []models.Post{*post})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

func (s *PostService) Get(ctx context.Context, viewerID, id string) (*PostView, error) {
	post, err := s.posts.GetPostByID(ctx, id)
	if err != nil {
		return nil, err
	}
	views, err := s.decorate(ctx, viewerID, []models.Post{*post})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// List returns all posts, newest first.
func (s *PostService) List(ctx context.Context, viewerID string, page, limit int) ([]PostView, error) {
	skip, size := ClampPage(page, limit)
	posts, err := s.posts.GetAllPosts(ctx, int64(skip), int64(size))
	if err != nil {
		return nil, fmt.Errorf("listing posts: %w", err)
	}
	return s.decorate(ctx, viewerID, posts)
}

// ListByAuthor returns one user's posts, newest first.
func (s *PostService) ListByAuthor(ctx context.Context, viewerID, authorID string, page, limit int) ([]PostView, error) {
	skip, size := ClampPage(page, limit)
	posts, err := s.posts.GetPostsByUserID(ctx, authorID, int64(skip), int64(size))
	if err != nil {
		return nil, fmt.Errorf("listing posts by author: %w", err)
	}
	return s.decorate(ctx, viewerID, posts)
}

// ListSaved returns the posts userID saved, most recently saved first.
func (s *PostService) ListSaved(ctx context.Context, userID string, page, limit int) ([]PostView, error) {
	skip, size := ClampPage(page, limit)
	ids, err := s.saved.GetSavedPostIDs(ctx, userID, skip, size)
	if err != nil {
		return nil, fmt.Errorf("listing saved posts: %w", err)
	}
	posts, err := s.posts.GetPostsByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("loading saved posts: %w", err)
	}
	return s.decorate(ctx, userID, posts)
}

func (s *PostService) Update(ctx context.Context, actor *session.Info, id string, req models.UpdatePostRequest) (*PostView, error) {
	post, err := s.posts.GetPostByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := canModify(actor, post.AuthorID, "post"); err != nil {
		return nil, err
	}

	if req.Title != "" {
		post.Title = s.sanitizer.Line(req.Title)
	}
	if req.Content != "" {
		post.Content = s.sanitizer.Body(req.Content)
	}
	if req.Image != nil {
		post.Image = *req.Image
	}
	if req.Tags != nil {
		post.Tags = s.cleanTags(req.Tags)
	}
	if post.Title == "" || post.Content == "" {
		return nil, apperrors.Validation("title and content cannot be empty")
	}

	if err := s.posts.UpdatePost(ctx, post); err != nil {
		return nil, fmt.Errorf("updating post: %w", err)
	}
	views, err := s.decorate(ctx, actor.UserID, []models.Post{*post})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// Delete removes a post and every like, save, comment and notification
// that refers to it.
func (s *PostService) Delete(ctx context.Context, actor *session.Info, id string) error {
	post, err := s.posts.GetPostByID(ctx, id)
	if err != nil {
		return err
	}
	if err := canModify(actor, post.AuthorID, "post"); err != nil {
		return err
	}
	if err := s.posts.DeletePost(ctx, id); err != nil {
		return fmt.Errorf("deleting post: %w", err)
	}
	if err := s.relations.PurgePost(ctx, id); err != nil {
		return fmt.Errorf("purging post relations: %w", err)
	}
	s.logger.Info("post deleted", zap.String("post_id", id), zap.String("actor_id", actor.UserID))
	return nil
}

func (s *PostService) decorate(ctx context.Context, viewerID string, posts []models.Post) ([]PostView, error) {
	views := make([]PostView, len(posts))
	if len(posts) == 0 {
		return views, nil
	}

	postIDs := make([]string, len(posts))
	authorIDs := make([]string, 0, len(posts))
	seen := make(map[string]bool)
	for i, p := range posts {
		postIDs[i] = p.ID
		if !seen[p.AuthorID] {
			seen[p.AuthorID] = true
			authorIDs = append(authorIDs, p.AuthorID)
		}
	}

	authors, err := s.users.GetUsersByIDs(ctx, authorIDs)
	if err != nil {
		return nil, fmt.Errorf("loading authors: %w", err)
	}
	likes, err := s.engagement.LikeCounts(ctx, postIDs)
	if err != nil {
		return nil, fmt.Errorf("counting likes: %w", err)
	}
	comments, err := s.engagement.CommentCounts(ctx, postIDs)
	if err != nil {
		return nil, fmt.Errorf("counting comments: %w", err)
	}
	liked, err := s.engagement.LikedBy(ctx, viewerID, postIDs)
	if err != nil {
		return nil, fmt.Errorf("loading viewer likes: %w", err)
	}
	saved, err := s.engagement.SavedBy(ctx, viewerID, postIDs)
	if err != nil {
		return nil, fmt.Errorf("loading viewer saves: %w", err)
	}

	for i, p := range posts {
		v := PostView{
			Post:          p,
			Likes:         likes[p.ID],
			CommentsCount: comments[p.ID],
			Liked:         liked[p.ID],
			Saved:         saved[p.ID],
		}
		if a, ok := authors[p.AuthorID]; ok {
			compact := a.ToCompact()
			v.Author = &compact
		}
		views[i] = v
	}
	return views, nil
}

func (s *PostService) cleanTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, t := range tags {
		t = s.sanitizer.Line(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

func canModify(actor *session.Info, ownerID, what string) error {
	if actor == nil {
		return apperrors.ErrUnauthorized
	}
	if actor.UserID != ownerID && !actor.IsAdmin() {
		return apperrors.New(apperrors.ErrForbidden, "only the author or an admin can modify this "+what)
	}
	return nil
}
