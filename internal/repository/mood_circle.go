package repository

import (
	"context"

	"aura/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MoodCircleRepository defines persistence operations for mood circles and their members.
type MoodCircleRepository interface {
	Create(ctx context.Context, circle *models.MoodCircle) error
	GetByID(ctx context.Context, id string) (*models.MoodCircle, error)
	List(ctx context.Context, mood models.Mood, limit int) ([]models.MoodCircle, error)
	AddMember(ctx context.Context, circleID, userID string) error
	RemoveMember(ctx context.Context, circleID, userID string) error
	IsMember(ctx context.Context, circleID, userID string) (bool, error)
	RecountMembers(ctx context.Context, circleID string) (int, error)
}

type moodCircleRepository struct {
	db *gorm.DB
}

// NewMoodCircleRepository returns a new MoodCircleRepository implementation.
func NewMoodCircleRepository(db *gorm.DB) MoodCircleRepository {
	return &moodCircleRepository{db: db}
}

func (r *moodCircleRepository) Create(ctx context.Context, circle *models.MoodCircle) error {
	return r.db.WithContext(ctx).Create(circle).Error
}

func (r *moodCircleRepository) GetByID(ctx context.Context, id string) (*models.MoodCircle, error) {
	var circle models.MoodCircle
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&circle).Error; err != nil {
		return nil, err
	}
	return &circle, nil
}

// List returns circles ordered by size, optionally restricted to one mood.
func (r *moodCircleRepository) List(ctx context.Context, mood models.Mood, limit int) ([]models.MoodCircle, error) {
	q := r.db.WithContext(ctx).Model(&models.MoodCircle{})
	if mood != "" {
		q = q.Where("mood = ?", mood)
	}
	var circles []models.MoodCircle
	err := q.Order("member_count DESC").Order("created_at ASC").Limit(limit).Find(&circles).Error
	return circles, err
}

// AddMember is idempotent: joining twice leaves a single membership row.
func (r *moodCircleRepository) AddMember(ctx context.Context, circleID, userID string) error {
	member := &models.CircleMember{CircleID: circleID, UserID: userID}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "circle_id"}, {Name: "user_id"}},
			DoNothing: true,
		}).
		Create(member).Error
}

func (r *moodCircleRepository) RemoveMember(ctx context.Context, circleID, userID string) error {
	return r.db.WithContext(ctx).
		Where("circle_id = ? AND user_id = ?", circleID, userID).
		Delete(&models.CircleMember{}).Error
}

func (r *moodCircleRepository) IsMember(ctx context.Context, circleID, userID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.CircleMember{}).
		Where("circle_id = ? AND user_id = ?", circleID, userID).
		Count(&count).Error
	return count > 0, err
}

// RecountMembers stores the true membership count on the circle row and returns it.
func (r *moodCircleRepository) RecountMembers(ctx context.Context, circleID string) (int, error) {
	db := r.db.WithContext(ctx)

	var count int64
	if err := db.Model(&models.CircleMember{}).Where("circle_id = ?", circleID).Count(&count).Error; err != nil {
		return 0, err
	}
	if err := db.Model(&models.MoodCircle{}).Where("id = ?", circleID).
		Update("member_count", count).Error; err != nil {
		return 0, err
	}
	return int(count), nil
}
