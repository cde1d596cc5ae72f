package repositories

import (
	"context"

	"github.com/anonto42/vortex/backend/internal/models"
	"gorm.io/gorm"
)

// NotificationRepository defines the interface for notification operations
type NotificationRepository interface {
	CreateNotifications(ctx context.Context, notifications []models.Notification) error
	GetByRecipientID(ctx context.Context, recipientID string, limit int) ([]models.Notification, error)
	GetUnreadCount(ctx context.Context, recipientID string) (int64, error)
	MarkAllAsRead(ctx context.Context, recipientID string) (int64, error)
}

type SQLNotificationRepository struct {
	db *gorm.DB
}

func NewSQLNotificationRepository(db *gorm.DB) *SQLNotificationRepository {
	return &SQLNotificationRepository{db: db}
}

func (r *SQLNotificationRepository) CreateNotifications(ctx context.Context, notifications []models.Notification) error {
	if len(notifications) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&notifications).Error
}

// GetByRecipientID returns the newest notifications for a recipient.
func (r *SQLNotificationRepository) GetByRecipientID(ctx context.Context, recipientID string, limit int) ([]models.Notification, error) {
	var notifications []models.Notification
	err := r.db.WithContext(ctx).
		Where("user_id = ?", recipientID).
		Order("created_at DESC").
		Limit(limit).
		Find(&notifications).Error
	return notifications, err
}

func (r *SQLNotificationRepository) GetUnreadCount(ctx context.Context, recipientID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", recipientID, false).
		Count(&count).Error
	return count, err
}

// MarkAllAsRead flags every unread notification of the recipient and
// returns how many changed.
func (r *SQLNotificationRepository) MarkAllAsRead(ctx context.Context, recipientID string) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", recipientID, false).
		Update("is_read", true)
	return res.RowsAffected, res.Error
}
