// Package service holds the business rules that sit between HTTP handlers and repositories.
package service

import (
	"context"
	"errors"
	"log/slog"

	"aura/internal/cache"
	"aura/internal/middleware"
	"aura/internal/models"
	"aura/internal/observability"
	"aura/internal/repository"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// MoodBroadcaster receives mood updates originating on the server, such as a
// newly created post with a location.
type MoodBroadcaster interface {
	BroadcastMoodUpdate(ctx context.Context, mood models.Mood, location string)
}

// asAppError converts repository errors into AppErrors. Record-not-found
// becomes NOT_FOUND for resource/id; AppErrors pass through.
func asAppError(err error, resource, id string) error {
	if err == nil {
		return nil
	}
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		return err
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.NewNotFoundError(resource, id)
	}
	return models.NewInternalError(err)
}

func clampLimit(limit, def int) int {
	if limit <= 0 {
		return def
	}
	if limit > maxListLimit {
		return maxListLimit
	}
	return limit
}

// award appends a ledger entry inside tx. The counter is bumped by the caller
// once the transaction commits.
func award(ctx context.Context, tx repository.Store, userID string, kind models.ActivityType, points int, description string) error {
	return tx.Aura().Append(ctx, &models.AuraActivity{
		UserID:      userID,
		Type:        kind,
		Points:      points,
		Description: description,
	})
}

// recordAward runs after the awarding transaction commits. The cached profile
// carries aura_points, so it is dropped.
func recordAward(ctx context.Context, rdb *redis.Client, userID string, kind models.ActivityType, points int) {
	cache.InvalidateUser(ctx, rdb, userID)
	observability.AuraPointsAwarded.WithLabelValues(string(kind)).Add(float64(points))
	middleware.Logger.DebugContext(ctx, "aura points awarded",
		slog.String("user_id", userID),
		slog.String("activity_type", string(kind)),
		slog.Int("points", points),
	)
}
