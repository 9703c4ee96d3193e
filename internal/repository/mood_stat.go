package repository

import (
	"context"
	"time"

	"aura/internal/models"

	"gorm.io/gorm"
)

// MoodStatRepository defines persistence operations for daily mood counters.
type MoodStatRepository interface {
	Record(ctx context.Context, mood models.Mood, country string, at time.Time) error
	ListSince(ctx context.Context, since time.Time) ([]models.GlobalMoodStat, error)
	ListByCountry(ctx context.Context, country string, limit int) ([]models.GlobalMoodStat, error)
}

type moodStatRepository struct {
	db *gorm.DB
}

// NewMoodStatRepository returns a new MoodStatRepository implementation.
func NewMoodStatRepository(db *gorm.DB) MoodStatRepository {
	return &moodStatRepository{db: db}
}

// Record increments today's counter for (mood, country), creating it with a
// count of one on the first post of the day.
func (r *moodStatRepository) Record(ctx context.Context, mood models.Mood, country string, at time.Time) error {
	db := r.db.WithContext(ctx)
	day := models.StartOfDay(at)

	result := db.Model(&models.GlobalMoodStat{}).
		Where("mood = ? AND country = ? AND date >= ?", mood, country, day).
		Update("count", gorm.Expr("count + 1"))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		return nil
	}

	return db.Create(&models.GlobalMoodStat{
		Mood:    mood,
		Country: country,
		Count:   1,
		Date:    at.UTC(),
	}).Error
}

func (r *moodStatRepository) ListSince(ctx context.Context, since time.Time) ([]models.GlobalMoodStat, error) {
	var stats []models.GlobalMoodStat
	err := r.db.WithContext(ctx).
		Where("date >= ?", since).
		Order("count DESC").
		Find(&stats).Error
	return stats, err
}

func (r *moodStatRepository) ListByCountry(ctx context.Context, country string, limit int) ([]models.GlobalMoodStat, error) {
	var stats []models.GlobalMoodStat
	err := r.db.WithContext(ctx).
		Where("country = ?", country).
		Order("date DESC").
		Order("count DESC").
		Limit(limit).
		Find(&stats).Error
	return stats, err
}
