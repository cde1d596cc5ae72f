package repositories

import (
	"context"
	"fmt"

	"github.com/anonto42/vortex/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ToggleOutcome is the state of a relation after a toggle.
type ToggleOutcome struct {
	Active bool
	// Created is true only for the call whose insert made the relation
	// active. Concurrent toggles that found the row already present report
	// Active without Created.
	Created bool
}

// RelationRepository owns the pair tables behind likes, follows and saves.
type RelationRepository interface {
	Toggle(ctx context.Context, kind models.RelationKind, actorID, targetID string) (ToggleOutcome, error)
	Exists(ctx context.Context, kind models.RelationKind, actorID, targetID string) (bool, error)
	CountByTarget(ctx context.Context, kind models.RelationKind, targetID string) (int64, error)
	CountByActor(ctx context.Context, kind models.RelationKind, actorID string) (int64, error)
	PurgePost(ctx context.Context, postID string) error
}

type relationTable struct {
	actorCol  string
	targetCol string
	newRow    func(actorID, targetID string) any
}

var relationTables = map[models.RelationKind]relationTable{
	models.RelationLike: {
		actorCol: "user_id", targetCol: "post_id",
		newRow: func(a, t string) any { return &models.Like{UserID: a, PostID: t} },
	},
	models.RelationFollow: {
		actorCol: "follower_id", targetCol: "following_id",
		newRow: func(a, t string) any { return &models.Follow{FollowerID: a, FollowingID: t} },
	},
	models.RelationSave: {
		actorCol: "user_id", targetCol: "post_id",
		newRow: func(a, t string) any { return &models.SavedPost{UserID: a, PostID: t} },
	},
}

func tableFor(kind models.RelationKind) (relationTable, error) {
	t, ok := relationTables[kind]
	if !ok {
		return relationTable{}, fmt.Errorf("unknown relation kind %d", kind)
	}
	return t, nil
}

// SQLRelationRepository implements RelationRepository on gorm.
type SQLRelationRepository struct {
	db *gorm.DB
}

func NewSQLRelationRepository(db *gorm.DB) *SQLRelationRepository {
	return &SQLRelationRepository{db: db}
}

// Toggle flips the (actor, target) relation. It deletes first; if nothing was
// deleted it inserts with ON CONFLICT DO NOTHING, so the unique index is the
// only arbiter and concurrent toggles can never produce a duplicate row.
func (r *SQLRelationRepository) Toggle(ctx context.Context, kind models.RelationKind, actorID, targetID string) (ToggleOutcome, error) {
	t, err := tableFor(kind)
	if err != nil {
		return ToggleOutcome{}, err
	}
	db := r.db.WithContext(ctx)

	res := db.Where(t.actorCol+" = ? AND "+t.targetCol+" = ?", actorID, targetID).Delete(t.newRow("", ""))
	if res.Error != nil {
		return ToggleOutcome{}, res.Error
	}
	if res.RowsAffected > 0 {
		return ToggleOutcome{Active: false}, nil
	}

	res = db.Clauses(clause.OnConflict{DoNothing: true}).Create(t.newRow(actorID, targetID))
	if res.Error != nil && isDuplicate(res.Error) {
		return ToggleOutcome{Active: true}, nil
	}
	if res.Error != nil {
		return ToggleOutcome{}, res.Error
	}
	return ToggleOutcome{Active: true, Created: res.RowsAffected == 1}, nil
}

func (r *SQLRelationRepository) Exists(ctx context.Context, kind models.RelationKind, actorID, targetID string) (bool, error) {
	t, err := tableFor(kind)
	if err != nil {
		return false, err
	}
	var count int64
	err = r.db.WithContext(ctx).Model(t.newRow("", "")).
		Where(t.actorCol+" = ? AND "+t.targetCol+" = ?", actorID, targetID).
		Count(&count).Error
	return count > 0, err
}

// CountByTarget counts likes or saves on a post, or followers of a user.
func (r *SQLRelationRepository) CountByTarget(ctx context.Context, kind models.RelationKind, targetID string) (int64, error) {
	t, err := tableFor(kind)
	if err != nil {
		return 0, err
	}
	var count int64
	err = r.db.WithContext(ctx).Model(t.newRow("", "")).Where(t.targetCol+" = ?", targetID).Count(&count).Error
	return count, err
}

// CountByActor counts what a user has liked, followed or saved.
func (r *SQLRelationRepository) CountByActor(ctx context.Context, kind models.RelationKind, actorID string) (int64, error) {
	t, err := tableFor(kind)
	if err != nil {
		return 0, err
	}
	var count int64
	err = r.db.WithContext(ctx).Model(t.newRow("", "")).Where(t.actorCol+" = ?", actorID).Count(&count).Error
	return count, err
}

// PurgePost removes every row that references a deleted post.
func (r *SQLRelationRepository) PurgePost(ctx context.Context, postID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return purgePosts(tx, []string{postID})
	})
}

func purgePosts(tx *gorm.DB, postIDs []string) error {
	for _, model := range []any{&models.Like{}, &models.SavedPost{}, &models.Comment{}, &models.Notification{}} {
		if err := tx.Where("post_id IN ?", postIDs).Delete(model).Error; err != nil {
			return err
		}
	}
	return nil
}
