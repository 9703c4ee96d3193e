package service

import (
	"context"
	"fmt"
	"log/slog"

	"aura/internal/cache"
	"aura/internal/middleware"
	"aura/internal/observability"
	"aura/internal/repository"

	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
)

const reconcileBatchSize = 500

// AuraReconciler repairs users whose cached aura_points drifted from the sum
// of their ledger.
type AuraReconciler struct {
	store repository.Store
	rdb   *redis.Client
}

func NewAuraReconciler(store repository.Store, rdb *redis.Client) *AuraReconciler {
	return &AuraReconciler{store: store, rdb: rdb}
}

// Run repairs every drifted user and returns how many were fixed.
func (r *AuraReconciler) Run(ctx context.Context) (int, error) {
	repaired := 0
	for {
		drift, err := r.store.Aura().Drifted(ctx, reconcileBatchSize)
		if err != nil {
			return repaired, fmt.Errorf("list drifted users: %w", err)
		}
		if len(drift) == 0 {
			return repaired, nil
		}

		for _, d := range drift {
			if err := r.store.Aura().SetPoints(ctx, d.UserID, d.LedgerPoints); err != nil {
				return repaired, fmt.Errorf("repair user %s: %w", d.UserID, err)
			}
			cache.InvalidateUser(ctx, r.rdb, d.UserID)
			observability.AuraReconcileRepairs.Inc()
			middleware.Logger.WarnContext(ctx, "aura points repaired from ledger",
				slog.String("user_id", d.UserID),
				slog.Int("cached", d.AuraPoints),
				slog.Int("ledger", d.LedgerPoints),
			)
			repaired++
		}

		if len(drift) < reconcileBatchSize {
			return repaired, nil
		}
	}
}

// Schedule starts a cron runner that calls Run on spec. Stop the returned
// runner on shutdown. An empty spec disables the job and returns nil.
func (r *AuraReconciler) Schedule(ctx context.Context, spec string) (*cron.Cron, error) {
	if spec == "" {
		return nil, nil
	}

	runner := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	_, err := runner.AddFunc(spec, func() {
		repaired, err := r.Run(ctx)
		if err != nil {
			middleware.Logger.ErrorContext(ctx, "aura reconcile failed", slog.String("error", err.Error()))
			return
		}
		if repaired > 0 {
			middleware.Logger.InfoContext(ctx, "aura reconcile finished", slog.Int("repaired", repaired))
		}
	})
	if err != nil {
		return nil, fmt.Errorf("invalid AURA_RECONCILE_SCHEDULE %q: %w", spec, err)
	}
	runner.Start()
	return runner, nil
}
