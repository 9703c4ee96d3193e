package repository

import (
	"context"

	"aura/internal/models"

	"gorm.io/gorm"
)

// VibeRepository defines persistence operations for vibes.
type VibeRepository interface {
	Find(ctx context.Context, postID, userID string) (*models.Vibe, error)
	Create(ctx context.Context, vibe *models.Vibe) error
	Delete(ctx context.Context, postID, userID string) (bool, error)
	ListByPost(ctx context.Context, postID string) ([]models.Vibe, error)
}

type vibeRepository struct {
	db *gorm.DB
}

// NewVibeRepository returns a new VibeRepository implementation.
func NewVibeRepository(db *gorm.DB) VibeRepository {
	return &vibeRepository{db: db}
}

// Find returns the caller's vibe on a post, or nil when there is none.
func (r *vibeRepository) Find(ctx context.Context, postID, userID string) (*models.Vibe, error) {
	var vibes []models.Vibe
	if err := r.db.WithContext(ctx).
		Where("post_id = ? AND user_id = ?", postID, userID).
		Limit(1).
		Find(&vibes).Error; err != nil {
		return nil, err
	}
	if len(vibes) == 0 {
		return nil, nil
	}
	return &vibes[0], nil
}

func (r *vibeRepository) Create(ctx context.Context, vibe *models.Vibe) error {
	return r.db.WithContext(ctx).Create(vibe).Error
}

func (r *vibeRepository) Delete(ctx context.Context, postID, userID string) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("post_id = ? AND user_id = ?", postID, userID).
		Delete(&models.Vibe{})
	return result.RowsAffected > 0, result.Error
}

func (r *vibeRepository) ListByPost(ctx context.Context, postID string) ([]models.Vibe, error) {
	var vibes []models.Vibe
	err := r.db.WithContext(ctx).
		Where("post_id = ?", postID).
		Order("created_at DESC").
		Find(&vibes).Error
	return vibes, err
}
