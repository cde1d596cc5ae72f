package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// NotificationType is the closed set of notification kinds.
type NotificationType string

const (
	NotificationLike    NotificationType = "like"
	NotificationComment NotificationType = "comment"
	NotificationFollow  NotificationType = "follow"
)

func (t NotificationType) Valid() bool {
	switch t {
	case NotificationLike, NotificationComment, NotificationFollow:
		return true
	}
	return false
}

// Notification is immutable once written except for Read.
type Notification struct {
	ID        string           `json:"id" gorm:"primaryKey;size:36"`
	UserID    string           `json:"user_id" gorm:"size:36;not null;index"` // recipient
	ActorID   string           `json:"actor_id" gorm:"size:36;not null;index"`
	Type      NotificationType `json:"type" gorm:"size:20;not null"`
	PostID    *string          `json:"post_id,omitempty" gorm:"size:36"`
	Read      bool             `json:"read" gorm:"column:is_read;not null;default:false;index"`
	CreatedAt time.Time        `json:"created_at" gorm:"index"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	return nil
}
