package repositories

import (
	"context"

	"github.com/anonto42/vortex/backend/internal/models"
	"gorm.io/gorm"
)

// FollowRepository lists the follow graph around a profile.
type FollowRepository interface {
	GetFollowers(ctx context.Context, userID string, skip, limit int) ([]models.User, error)
	GetFollowing(ctx context.Context, userID string, skip, limit int) ([]models.User, error)
}

type SQLFollowRepository struct {
	db *gorm.DB
}

func NewSQLFollowRepository(db *gorm.DB) *SQLFollowRepository {
	return &SQLFollowRepository{db: db}
}

func (r *SQLFollowRepository) GetFollowers(ctx context.Context, userID string, skip, limit int) ([]models.User, error) {
	var users []models.User
	err := r.db.WithContext(ctx).
		Joins("JOIN follows ON follows.follower_id = profiles.id").
		Where("follows.following_id = ?", userID).
		Order("follows.created_at DESC").
		Offset(skip).Limit(limit).
		Find(&users).Error
	return users, err
}

func (r *SQLFollowRepository) GetFollowing(ctx context.Context, userID string, skip, limit int) ([]models.User, error) {
	var users []models.User
	err := r.db.WithContext(ctx).
		Joins("JOIN follows ON follows.following_id = profiles.id").
		Where("follows.follower_id = ?", userID).
		Order("follows.created_at DESC").
		Offset(skip).Limit(limit).
		Find(&users).Error
	return users, err
}
