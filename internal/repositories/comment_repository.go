package repositories

import (
	"context"

	"github.com/anonto42/vortex/backend/internal/models"
	"gorm.io/gorm"
)

// CommentRepository defines the interface for comment data operations
type CommentRepository interface {
	CreateComment(ctx context.Context, comment *models.Comment) error
	GetCommentByID(ctx context.Context, id string) (*models.Comment, error)
	GetCommentsByPostID(ctx context.Context, postID string) ([]models.Comment, error)
	DeleteComment(ctx context.Context, id string) error
	CountComments(ctx context.Context) (int64, error)
}

type SQLCommentRepository struct {
	db *gorm.DB
}

func NewSQLCommentRepository(db *gorm.DB) *SQLCommentRepository {
	return &SQLCommentRepository{db: db}
}

func (r *SQLCommentRepository) CreateComment(ctx context.Context, comment *models.Comment) error {
	return r.db.WithContext(ctx).Create(comment).Error
}

func (r *SQLCommentRepository) GetCommentByID(ctx context.Context, id string) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.WithContext(ctx).First(&comment, "id = ?", id).Error; err != nil {
		return nil, translate(err, "comment")
	}
	return &comment, nil
}

// GetCommentsByPostID returns every comment on a post, newest first.
func (r *SQLCommentRepository) GetCommentsByPostID(ctx context.Context, postID string) ([]models.Comment, error) {
	var comments []models.Comment
	err := r.db.WithContext(ctx).
		Where("post_id = ?", postID).
		Order("created_at DESC").Order("id DESC").
		Find(&comments).Error
	return comments, err
}

// DeleteComment removes a comment. Its replies are kept and surface as
// top-level comments.
func (r *SQLCommentRepository) DeleteComment(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Comment{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return translate(gorm.ErrRecordNotFound, "comment")
	}
	return nil
}

func (r *SQLCommentRepository) CountComments(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Comment{}).Count(&count).Error
	return count, err
}
