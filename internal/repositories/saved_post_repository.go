package repositories

import (
	"context"

	"github.com/anonto42/vortex/backend/internal/models"
	"gorm.io/gorm"
)

// SavedPostRepository lists a user's bookmarks.
type SavedPostRepository interface {
	GetSavedPostIDs(ctx context.Context, userID string, skip, limit int) ([]string, error)
}

type SQLSavedPostRepository struct {
	db *gorm.DB
}

func NewSQLSavedPostRepository(db *gorm.DB) *SQLSavedPostRepository {
	return &SQLSavedPostRepository{db: db}
}

// GetSavedPostIDs returns saved post ids, most recently saved first.
func (r *SQLSavedPostRepository) GetSavedPostIDs(ctx context.Context, userID string, skip, limit int) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Model(&models.SavedPost{}).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Offset(skip).Limit(limit).
		Pluck("post_id", &ids).Error
	return ids, err
}
