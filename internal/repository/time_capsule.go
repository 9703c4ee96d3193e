package repository

import (
	"context"
	"time"

	"aura/internal/models"

	"gorm.io/gorm"
)

// CapsuleUpdate carries editable capsule fields. Nil fields are left unchanged.
type CapsuleUpdate struct {
	Content    *string
	Mood       *models.Mood
	UnlockDate *time.Time
	IsPublic   *bool
}

// TimeCapsuleRepository defines persistence operations for time capsules.
type TimeCapsuleRepository interface {
	Create(ctx context.Context, capsule *models.TimeCapsule) error
	GetByID(ctx context.Context, id string) (*models.TimeCapsule, error)
	ListByUser(ctx context.Context, userID string) ([]models.TimeCapsule, error)
	ListOpenedByUser(ctx context.Context, userID string) ([]models.TimeCapsule, error)
	ListCommunity(ctx context.Context, now time.Time, limit int) ([]models.TimeCapsule, error)
	MarkOpened(ctx context.Context, id string, at time.Time) (bool, error)
	Update(ctx context.Context, id string, update CapsuleUpdate) error
	Delete(ctx context.Context, id string) error
}

type timeCapsuleRepository struct {
	db *gorm.DB
}

// NewTimeCapsuleRepository returns a new TimeCapsuleRepository implementation.
func NewTimeCapsuleRepository(db *gorm.DB) TimeCapsuleRepository {
	return &timeCapsuleRepository{db: db}
}

func (r *timeCapsuleRepository) Create(ctx context.Context, capsule *models.TimeCapsule) error {
	return r.db.WithContext(ctx).Create(capsule).Error
}

func (r *timeCapsuleRepository) GetByID(ctx context.Context, id string) (*models.TimeCapsule, error) {
	var capsule models.TimeCapsule
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&capsule).Error; err != nil {
		return nil, err
	}
	return &capsule, nil
}

func (r *timeCapsuleRepository) ListByUser(ctx context.Context, userID string) ([]models.TimeCapsule, error) {
	var capsules []models.TimeCapsule
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&capsules).Error
	return capsules, err
}

func (r *timeCapsuleRepository) ListOpenedByUser(ctx context.Context, userID string) ([]models.TimeCapsule, error) {
	var capsules []models.TimeCapsule
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND is_opened = ?", userID, true).
		Order("opened_at DESC").
		Find(&capsules).Error
	return capsules, err
}

// ListCommunity returns public capsules that are still sealed and not yet due,
// soonest first.
func (r *timeCapsuleRepository) ListCommunity(ctx context.Context, now time.Time, limit int) ([]models.TimeCapsule, error) {
	var capsules []models.TimeCapsule
	err := r.db.WithContext(ctx).
		Where("is_public = ? AND unlock_date >= ? AND is_opened = ?", true, now, false).
		Order("unlock_date ASC").
		Limit(limit).
		Find(&capsules).Error
	return capsules, err
}

// MarkOpened flips a sealed capsule to opened. It reports false when the
// capsule was already open.
func (r *timeCapsuleRepository) MarkOpened(ctx context.Context, id string, at time.Time) (bool, error) {
	result := r.db.WithContext(ctx).Model(&models.TimeCapsule{}).
		Where("id = ? AND is_opened = ?", id, false).
		Updates(map[string]interface{}{"is_opened": true, "opened_at": at})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *timeCapsuleRepository) Update(ctx context.Context, id string, update CapsuleUpdate) error {
	updates := map[string]interface{}{}
	if update.Content != nil {
		updates["content"] = *update.Content
	}
	if update.Mood != nil {
		updates["mood"] = *update.Mood
	}
	if update.UnlockDate != nil {
		updates["unlock_date"] = update.UnlockDate.UTC()
	}
	if update.IsPublic != nil {
		updates["is_public"] = *update.IsPublic
	}
	if len(updates) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&models.TimeCapsule{}).Where("id = ?", id).Updates(updates).Error
}

func (r *timeCapsuleRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.TimeCapsule{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
