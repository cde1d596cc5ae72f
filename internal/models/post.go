package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Post is authored content. Like, save and comment counts are never stored
// on the row; they are derived from the relation tables on read.
type Post struct {
	ID        string    `json:"id" gorm:"primaryKey;size:36" bson:"_id"`
	AuthorID  string    `json:"author_id" gorm:"size:36;index;not null" bson:"author_id"`
	Title     string    `json:"title" gorm:"not null" bson:"title"`
	Content   string    `json:"content" gorm:"not null" bson:"content"`
	Image     string    `json:"image,omitempty" bson:"image,omitempty"`
	Tags      []string  `json:"tags" gorm:"serializer:json" bson:"tags"`
	CreatedAt time.Time `json:"created_at" gorm:"index" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

func (p *Post) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// PostStats are the derived aggregates for one post.
type PostStats struct {
	Likes    int64 `json:"likes"`
	Comments int64 `json:"comments_count"`
}

type CreatePostRequest struct {
	Title   string   `json:"title" validate:"required,min=1,max=200"`
	Content string   `json:"content" validate:"required,min=1,max=20000"`
	Image   string   `json:"image,omitempty" validate:"omitempty,url"`
	Tags    []string `json:"tags,omitempty" validate:"omitempty,max=10,dive,min=1,max=30"`
}

type UpdatePostRequest struct {
	Title   string   `json:"title,omitempty" validate:"omitempty,min=1,max=200"`
	Content string   `json:"content,omitempty" validate:"omitempty,min=1,max=20000"`
	Image   *string  `json:"image,omitempty" validate:"omitempty"`
	Tags    []string `json:"tags,omitempty" validate:"omitempty,max=10,dive,min=1,max=30"`
}
