package service

import (
	"context"

	"aura/internal/models"
	"aura/internal/repository"
)

const defaultActivityLimit = 50

type AuraService struct {
	store repository.Store
}

func NewAuraService(store repository.Store) *AuraService {
	return &AuraService{store: store}
}

// ListActivities returns the user's ledger, newest first.
func (s *AuraService) ListActivities(ctx context.Context, userID string, limit int) ([]models.AuraActivity, error) {
	activities, err := s.store.Aura().ListByUser(ctx, userID, clampLimit(limit, defaultActivityLimit))
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return activities, nil
}

// Summary describes the user's tree: level, name and progress to the next level.
func (s *AuraService) Summary(ctx context.Context, userID string) (*models.AuraSummary, error) {
	user, err := s.store.Users().GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	summary := models.SummarizeAura(user)
	return &summary, nil
}
