package repository

import (
	"context"
	"errors"
	"time"

	"aura/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProfileUpdate carries the user-editable profile fields. Nil fields are left unchanged.
type ProfileUpdate struct {
	FirstName       *string
	LastName        *string
	ProfileImageURL *string
	DisplayName     *string
	Bio             *string
	Location        *string
	TreeType        *string
}

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	Upsert(ctx context.Context, user *models.User) error
	UpdateProfile(ctx context.Context, id string, update ProfileUpdate) (*models.User, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository returns a new UserRepository implementation.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("User", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

// Upsert inserts the user or refreshes the identity fields owned by the
// identity provider. Aura-owned fields (points, tree, profile) are never
// overwritten.
func (r *userRepository) Upsert(ctx context.Context, user *models.User) error {
	if user.TreeLevel == 0 {
		user.TreeLevel = 1
	}
	if user.TreeType == "" {
		user.TreeType = "oak"
	}
	user.UpdatedAt = time.Now().UTC()

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"email", "first_name", "last_name", "profile_image_url", "updated_at"}),
	}).Create(user).Error
}

func (r *userRepository) UpdateProfile(ctx context.Context, id string, update ProfileUpdate) (*models.User, error) {
	updates := map[string]interface{}{}
	if update.FirstName != nil {
		updates["first_name"] = *update.FirstName
	}
	if update.LastName != nil {
		updates["last_name"] = *update.LastName
	}
	if update.ProfileImageURL != nil {
		updates["profile_image_url"] = *update.ProfileImageURL
	}
	if update.DisplayName != nil {
		updates["display_name"] = *update.DisplayName
	}
	if update.Bio != nil {
		updates["bio"] = *update.Bio
	}
	if update.Location != nil {
		updates["location"] = *update.Location
	}
	if update.TreeType != nil {
		updates["tree_type"] = *update.TreeType
	}

	if len(updates) > 0 {
		updates["updated_at"] = time.Now().UTC()
		result := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(updates)
		if result.Error != nil {
			return nil, models.NewInternalError(result.Error)
		}
		if result.RowsAffected == 0 {
			return nil, models.NewNotFoundError("User", id)
		}
	}
	return r.GetByID(ctx, id)
}
