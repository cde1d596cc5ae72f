package models

import "time"

// RelationKind enumerates the toggleable relations between users and posts.
type RelationKind int

const (
	RelationLike RelationKind = iota + 1
	RelationFollow
	RelationSave
)

func (k RelationKind) String() string {
	switch k {
	case RelationLike:
		return "like"
	case RelationFollow:
		return "follow"
	case RelationSave:
		return "save"
	default:
		return "unknown"
	}
}

// Like represents a like on a post
type Like struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	PostID    string    `json:"post_id" gorm:"size:36;not null;uniqueIndex:idx_post_user_like"`
	UserID    string    `json:"user_id" gorm:"size:36;not null;index;uniqueIndex:idx_post_user_like"`
	CreatedAt time.Time `json:"created_at"`
}

func (Like) TableName() string { return "post_likes" }

// Follow is a directed follower -> following edge.
type Follow struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	FollowerID  string    `json:"follower_id" gorm:"size:36;not null;index;uniqueIndex:idx_follower_following"`
	FollowingID string    `json:"following_id" gorm:"size:36;not null;index;uniqueIndex:idx_follower_following"`
	CreatedAt   time.Time `json:"created_at"`
}

// SavedPost represents a bookmarked/saved post by a user
type SavedPost struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    string    `json:"user_id" gorm:"size:36;not null;index;uniqueIndex:idx_user_post_save"`
	PostID    string    `json:"post_id" gorm:"size:36;not null;uniqueIndex:idx_user_post_save"`
	CreatedAt time.Time `json:"created_at"`
}

func (SavedPost) TableName() string { return "saved_posts" }
