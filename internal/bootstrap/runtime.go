package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"aura/internal/cache"
	"aura/internal/config"
	"aura/internal/database"
	"aura/internal/middleware"
	"aura/internal/seed"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	SeedCircles bool
}

// InitRuntime connects to DB and Redis, applies the schema and optionally
// seeds the built-in mood circles.
func InitRuntime(ctx context.Context, cfg *config.Config, opts Options) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	if err := database.ApplySchema(ctx, db, cfg); err != nil {
		return nil, nil, fmt.Errorf("apply schema: %w", err)
	}

	// Init Redis (may result in nil client if unreachable)
	r := cache.InitRedis(cfg.RedisURL)

	if opts.SeedCircles {
		if err := SeedCircles(ctx, db); err != nil {
			return nil, nil, err
		}
	}

	return db, r, nil
}

// SeedCircles makes sure the built-in mood circles exist.
func SeedCircles(ctx context.Context, db *gorm.DB) error {
	seeder, err := seed.NewSeeder(db, seed.Options{})
	if err != nil {
		return fmt.Errorf("load seed catalog: %w", err)
	}
	circles, err := seeder.Circles(ctx)
	if err != nil {
		return fmt.Errorf("failed to seed built-in mood circles: %w", err)
	}
	middleware.Logger.InfoContext(ctx, "built-in mood circles ensured", slog.Int("count", len(circles)))
	return nil
}
