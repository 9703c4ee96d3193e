package service

import (
	"context"
	"fmt"

	"aura/internal/models"
	"aura/internal/repository"
	"aura/internal/validation"

	"github.com/redis/go-redis/v9"
)

type VibeService struct {
	store repository.Store
	rdb   *redis.Client
}

type ToggleVibeInput struct {
	UserID string `json:"-" validate:"required"`
	PostID string `json:"postId" validate:"required"`
	Type   string `json:"type" validate:"required,vibetype"`
}

// VibeToggleResult reports the state after a toggle. Vibe is set only when
// the toggle created one.
type VibeToggleResult struct {
	Vibed bool         `json:"vibed"`
	Vibe  *models.Vibe `json:"vibe,omitempty"`
}

func NewVibeService(store repository.Store, rdb *redis.Client) *VibeService {
	return &VibeService{store: store, rdb: rdb}
}

// ToggleVibe removes the caller's vibe on a post if present, otherwise sends
// one and awards the sender.
func (s *VibeService) ToggleVibe(ctx context.Context, in ToggleVibeInput) (*VibeToggleResult, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	if _, err := s.store.Posts().GetByID(ctx, in.PostID); err != nil {
		return nil, asAppError(err, "Post", in.PostID)
	}

	result := &VibeToggleResult{}
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		existing, err := tx.Vibes().Find(ctx, in.PostID, in.UserID)
		if err != nil {
			return err
		}
		if existing != nil {
			_, err := tx.Vibes().Delete(ctx, in.PostID, in.UserID)
			return err
		}

		vibe := &models.Vibe{PostID: in.PostID, UserID: in.UserID, Type: in.Type}
		if err := tx.Vibes().Create(ctx, vibe); err != nil {
			return err
		}
		result.Vibed = true
		result.Vibe = vibe
		return award(ctx, tx, in.UserID, models.ActivitySupportiveGesture, models.PointsSupportiveGesture, fmt.Sprintf("Sent %s vibe", in.Type))
	})
	if err != nil {
		if repository.IsUniqueViolation(err) {
			// A concurrent toggle from the same user won the insert.
			return &VibeToggleResult{Vibed: true}, nil
		}
		return nil, asAppError(err, "User", in.UserID)
	}
	if result.Vibed {
		recordAward(ctx, s.rdb, in.UserID, models.ActivitySupportiveGesture, models.PointsSupportiveGesture)
	}
	return result, nil
}

// RemoveVibe deletes the caller's vibe on a post. Awarded points are kept.
func (s *VibeService) RemoveVibe(ctx context.Context, userID, postID string) error {
	if _, err := s.store.Vibes().Delete(ctx, postID, userID); err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (s *VibeService) ListPostVibes(ctx context.Context, postID string) ([]models.Vibe, error) {
	vibes, err := s.store.Vibes().ListByPost(ctx, postID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return vibes, nil
}
