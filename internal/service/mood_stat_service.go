package service

import (
	"context"
	"strings"
	"time"

	"aura/internal/cache"
	"aura/internal/models"
	"aura/internal/repository"

	"github.com/redis/go-redis/v9"
)

const regionHistoryLimit = 90

type MoodStatService struct {
	store repository.Store
	rdb   *redis.Client
	now   func() time.Time
}

func NewMoodStatService(store repository.Store, rdb *redis.Client) *MoodStatService {
	return &MoodStatService{store: store, rdb: rdb, now: time.Now}
}

// GlobalStats returns every counter from the start of date (YYYY-MM-DD,
// default today) onwards, largest first. Percentages are returned as stored.
func (s *MoodStatService) GlobalStats(ctx context.Context, date string) ([]models.GlobalMoodStat, error) {
	day := models.StartOfDay(s.now())
	if date != "" {
		parsed, err := time.Parse(time.DateOnly, date)
		if err != nil {
			return nil, models.NewValidationError("date must be formatted as YYYY-MM-DD")
		}
		day = models.StartOfDay(parsed)
	}

	stats := []models.GlobalMoodStat{}
	err := cache.Aside(ctx, s.rdb, cache.GlobalMoodStatsKey(day.Format(time.DateOnly)), &stats, cache.MoodStatsTTL, func() error {
		rows, err := s.store.MoodStats().ListSince(ctx, day)
		if err != nil {
			return err
		}
		stats = append(stats, rows...)
		return nil
	})
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return stats, nil
}

// RegionStats returns the daily history of a country, newest first.
func (s *MoodStatService) RegionStats(ctx context.Context, country string) ([]models.GlobalMoodStat, error) {
	country = strings.TrimSpace(country)
	if country == "" {
		return nil, models.NewValidationError("country is required")
	}

	stats := []models.GlobalMoodStat{}
	err := cache.Aside(ctx, s.rdb, cache.RegionMoodStatsKey(country), &stats, cache.MoodStatsTTL, func() error {
		rows, err := s.store.MoodStats().ListByCountry(ctx, country, regionHistoryLimit)
		if err != nil {
			return err
		}
		stats = append(stats, rows...)
		return nil
	})
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return stats, nil
}
