package repositories

import (
	"context"

	"github.com/anonto42/vortex/backend/internal/models"
	"gorm.io/gorm"
)

// EngagementRepository answers batched per-post questions for listings so
// a page of posts costs a fixed number of queries.
type EngagementRepository interface {
	LikeCounts(ctx context.Context, postIDs []string) (map[string]int64, error)
	CommentCounts(ctx context.Context, postIDs []string) (map[string]int64, error)
	LikedBy(ctx context.Context, userID string, postIDs []string) (map[string]bool, error)
	SavedBy(ctx context.Context, userID string, postIDs []string) (map[string]bool, error)
	TotalLikes(ctx context.Context) (int64, error)
}

type SQLEngagementRepository struct {
	db *gorm.DB
}

func NewSQLEngagementRepository(db *gorm.DB) *SQLEngagementRepository {
	return &SQLEngagementRepository{db: db}
}

type postCount struct {
	PostID string
	Total  int64
}

func (r *SQLEngagementRepository) countsBy(ctx context.Context, model any, postIDs []string) (map[string]int64, error) {
	out := make(map[string]int64, len(postIDs))
	if len(postIDs) == 0 {
		return out, nil
	}
	var rows []postCount
	err := r.db.WithContext(ctx).Model(model).
		Select("post_id, COUNT(*) AS total").
		Where("post_id IN ?", postIDs).
		Group("post_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.PostID] = row.Total
	}
	return out, nil
}

func (r *SQLEngagementRepository) LikeCounts(ctx context.Context, postIDs []string) (map[string]int64, error) {
	return r.countsBy(ctx, &models.Like{}, postIDs)
}

func (r *SQLEngagementRepository) CommentCounts(ctx context.Context, postIDs []string) (map[string]int64, error) {
	return r.countsBy(ctx, &models.Comment{}, postIDs)
}

func (r *SQLEngagementRepository) markedBy(ctx context.Context, model any, userID string, postIDs []string) (map[string]bool, error) {
	out := make(map[string]bool, len(postIDs))
	if userID == "" || len(postIDs) == 0 {
		return out, nil
	}
	var ids []string
	err := r.db.WithContext(ctx).Model(model).
		Where("user_id = ? AND post_id IN ?", userID, postIDs).
		Pluck("post_id", &ids).Error
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		out[id] = true
	}
	return out, nil
}

func (r *SQLEngagementRepository) LikedBy(ctx context.Context, userID string, postIDs []string) (map[string]bool, error) {
	return r.markedBy(ctx, &models.Like{}, userID, postIDs)
}

func (r *SQLEngagementRepository) SavedBy(ctx context.Context, userID string, postIDs []string) (map[string]bool, error) {
	return r.markedBy(ctx, &models.SavedPost{}, userID, postIDs)
}

func (r *SQLEngagementRepository) TotalLikes(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Like{}).Count(&count).Error
	return count, err
}
