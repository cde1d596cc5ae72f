package repositories

import (
	"context"

	"github.com/anonto42/vortex/backend/internal/models"
	"gorm.io/gorm"
)

// PostRepository defines the interface for post data operations. Engagement
// counts live in the relational tables regardless of where posts are kept.
type PostRepository interface {
	CreatePost(ctx context.Context, post *models.Post) error
	GetPostByID(ctx context.Context, id string) (*models.Post, error)
	GetPostsByIDs(ctx context.Context, ids []string) ([]models.Post, error)
	GetPostsByUserID(ctx context.Context, userID string, skip, limit int64) ([]models.Post, error)
	GetAllPosts(ctx context.Context, skip, limit int64) ([]models.Post, error)
	GetPostIDsByUserID(ctx context.Context, userID string) ([]string, error)
	UpdatePost(ctx context.Context, post *models.Post) error
	DeletePost(ctx context.Context, id string) error
	DeletePostsByUserID(ctx context.Context, userID string) error
	CountPosts(ctx context.Context) (int64, error)
	CountPostsByUserID(ctx context.Context, userID string) (int64, error)
}

// SQLPostRepository implements PostRepository on gorm.
type SQLPostRepository struct {
	db *gorm.DB
}

func NewSQLPostRepository(db *gorm.DB) *SQLPostRepository {
	return &SQLPostRepository{db: db}
}

func (r *SQLPostRepository) CreatePost(ctx context.Context, post *models.Post) error {
	return r.db.WithContext(ctx).Create(post).Error
}

func (r *SQLPostRepository) GetPostByID(ctx context.Context, id string) (*models.Post, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).First(&post, "id = ?", id).Error; err != nil {
		return nil, translate(err, "post")
	}
	return &post, nil
}

// GetPostsByIDs loads posts in the order of ids, skipping missing ones.
func (r *SQLPostRepository) GetPostsByIDs(ctx context.Context, ids []string) ([]models.Post, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var posts []models.Post
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&posts).Error; err != nil {
		return nil, err
	}
	return orderByIDs(posts, ids), nil
}

func (r *SQLPostRepository) GetPostsByUserID(ctx context.Context, userID string, skip, limit int64) ([]models.Post, error) {
	var posts []models.Post
	err := r.db.WithContext(ctx).
		Where("author_id = ?", userID).
		Order("created_at DESC").
		Offset(int(skip)).Limit(int(limit)).
		Find(&posts).Error
	return posts, err
}

func (r *SQLPostRepository) GetAllPosts(ctx context.Context, skip, limit int64) ([]models.Post, error) {
	var posts []models.Post
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Offset(int(skip)).Limit(int(limit)).
		Find(&posts).Error
	return posts, err
}

func (r *SQLPostRepository) GetPostIDsByUserID(ctx context.Context, userID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Model(&models.Post{}).Where("author_id = ?", userID).Pluck("id", &ids).Error
	return ids, err
}

func (r *SQLPostRepository) UpdatePost(ctx context.Context, post *models.Post) error {
	res := r.db.WithContext(ctx).Model(&models.Post{}).
		Where("id = ?", post.ID).
		Select("title", "content", "image", "tags", "updated_at").
		Updates(post)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return translate(gorm.ErrRecordNotFound, "post")
	}
	return nil
}

func (r *SQLPostRepository) DeletePost(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Post{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return translate(gorm.ErrRecordNotFound, "post")
	}
	return nil
}

func (r *SQLPostRepository) DeletePostsByUserID(ctx context.Context, userID string) error {
	return r.db.WithContext(ctx).Where("author_id = ?", userID).Delete(&models.Post{}).Error
}

func (r *SQLPostRepository) CountPosts(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Post{}).Count(&count).Error
	return count, err
}

func (r *SQLPostRepository) CountPostsByUserID(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Post{}).Where("author_id = ?", userID).Count(&count).Error
	return count, err
}

func orderByIDs(posts []models.Post, ids []string) []models.Post {
	byID := make(map[string]models.Post, len(posts))
	for _, p := range posts {
		byID[p.ID] = p
	}
	out := make([]models.Post, 0, len(posts))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			out = append(out, p)
		}
	}
	return out
}
