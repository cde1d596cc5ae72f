package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Comment is a reply to a post, optionally nested under another comment of
// the same post. ParentCommentID has no foreign key: deleting a parent
// leaves its replies pointing at a missing id.
type Comment struct {
	ID              string    `json:"id" gorm:"primaryKey;size:36"`
	PostID          string    `json:"post_id" gorm:"size:36;index;not null"`
	AuthorID        string    `json:"author_id" gorm:"size:36;index;not null"`
	ParentCommentID *string   `json:"parent_comment_id" gorm:"size:36;index"`
	Content         string    `json:"content" gorm:"not null"`
	CreatedAt       time.Time `json:"created_at" gorm:"index"`
}

func (c *Comment) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// CreateCommentRequest defines the request body for creating a new comment
type CreateCommentRequest struct {
	Content         string  `json:"content" validate:"required,min=1,max=500"`
	ParentCommentID *string `json:"parent_comment_id,omitempty" validate:"omitempty,min=1"`
}
