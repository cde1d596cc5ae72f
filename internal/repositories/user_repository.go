package repositories

import (
	"context"
	"strings"

	"github.com/anonto42/vortex/backend/internal/apperrors"
	"github.com/anonto42/vortex/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UserRepository defines the interface for profile data operations
type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUsersByIDs(ctx context.Context, ids []string) (map[string]models.User, error)
	GetUsers(ctx context.Context, skip, limit int) ([]models.User, int64, error)
	UpdateUser(ctx context.Context, user *models.User) error
	CountUsers(ctx context.Context) (int64, error)
	CountAdmins(ctx context.Context) (int64, error)
	ChangeRole(ctx context.Context, id string, role models.Role) (*models.User, error)
	DeleteUser(ctx context.Context, id string, postIDs []string) error
}

// SQLUserRepository implements UserRepository on gorm.
type SQLUserRepository struct {
	db *gorm.DB
}

func NewSQLUserRepository(db *gorm.DB) *SQLUserRepository {
	return &SQLUserRepository{db: db}
}

func (r *SQLUserRepository) CreateUser(ctx context.Context, user *models.User) error {
	return translate(r.db.WithContext(ctx).Create(user).Error, "user")
}

func (r *SQLUserRepository) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, translate(err, "user")
	}
	return &user, nil
}

func (r *SQLUserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&user).Error
	if err != nil {
		return nil, translate(err, "user")
	}
	return &user, nil
}

func (r *SQLUserRepository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, translate(err, "user")
	}
	return &user, nil
}

// GetUsersByIDs loads the given profiles keyed by id; unknown ids are skipped.
func (r *SQLUserRepository) GetUsersByIDs(ctx context.Context, ids []string) (map[string]models.User, error) {
	out := make(map[string]models.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var users []models.User
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, err
	}
	for _, u := range users {
		out[u.ID] = u
	}
	return out, nil
}

// GetUsers lists profiles newest first along with the total count.
func (r *SQLUserRepository) GetUsers(ctx context.Context, skip, limit int) ([]models.User, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.User{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var users []models.User
	err := r.db.WithContext(ctx).Order("created_at DESC").Offset(skip).Limit(limit).Find(&users).Error
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (r *SQLUserRepository) UpdateUser(ctx context.Context, user *models.User) error {
	return translate(r.db.WithContext(ctx).Save(user).Error, "user")
}

func (r *SQLUserRepository) CountUsers(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.User{}).Count(&count).Error
	return count, err
}

func (r *SQLUserRepository) CountAdmins(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.User{}).Where("role = ?", models.RoleAdmin).Count(&count).Error
	return count, err
}

// ChangeRole sets a profile's role. Demoting the only remaining admin fails
// with ErrCannotRemoveLastAdmin; the admin count and the update happen in one
// transaction with the admin rows locked.
func (r *SQLUserRepository) ChangeRole(ctx context.Context, id string, role models.Role) (*models.User, error) {
	var target models.User
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := guardLastAdmin(tx, id, &target, role != models.RoleAdmin); err != nil {
			return err
		}
		if target.Role == role {
			return nil
		}
		if err := tx.Model(&target).Update("role", role).Error; err != nil {
			return err
		}
		target.Role = role
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &target, nil
}

// DeleteUser removes a profile and everything that hangs off it: relations
// in either direction, comments, notifications and authored posts. postIDs
// are the ids of the user's posts, so relations on them go too. Deleting the
// only remaining admin fails with ErrCannotRemoveLastAdmin.
func (r *SQLUserRepository) DeleteUser(ctx context.Context, id string, postIDs []string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var target models.User
		if err := guardLastAdmin(tx, id, &target, true); err != nil {
			return err
		}

		if err := tx.Where("follower_id = ? OR following_id = ?", id, id).Delete(&models.Follow{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ? OR actor_id = ?", id, id).Delete(&models.Notification{}).Error; err != nil {
			return err
		}
		if err := tx.Where("author_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&models.Like{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&models.SavedPost{}).Error; err != nil {
			return err
		}
		if len(postIDs) > 0 {
			if err := purgePosts(tx, postIDs); err != nil {
				return err
			}
		}
		if err := tx.Where("author_id = ?", id).Delete(&models.Post{}).Error; err != nil {
			return err
		}
		return tx.Delete(&target).Error
	})
}

// guardLastAdmin loads the target row into target and rejects the change
// when removing would leave no admin. Admin rows stay locked until the
// surrounding transaction ends.
func guardLastAdmin(tx *gorm.DB, id string, target *models.User, removing bool) error {
	var adminIDs []string
	if err := tx.Model(&models.User{}).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("role = ?", models.RoleAdmin).
		Pluck("id", &adminIDs).Error; err != nil {
		return err
	}

	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(target, "id = ?", id).Error; err != nil {
		return translate(err, "user")
	}
	if removing && target.IsAdmin() && len(adminIDs) <= 1 {
		return apperrors.ErrCannotRemoveLastAdmin
	}
	return nil
}
