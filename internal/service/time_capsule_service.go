package service

import (
	"context"
	"strings"
	"time"

	"aura/internal/featureflags"
	"aura/internal/models"
	"aura/internal/repository"
	"aura/internal/validation"

	"github.com/redis/go-redis/v9"
)

// CommunityCapsuleLimit is the default page size of the community listing.
const CommunityCapsuleLimit = 10

type TimeCapsuleService struct {
	store repository.Store
	rdb   *redis.Client
	flags *featureflags.Manager
	now   func() time.Time
}

type CreateCapsuleInput struct {
	UserID     string      `json:"-" validate:"required"`
	Content    string      `json:"content" validate:"required,max=5000"`
	Mood       models.Mood `json:"mood" validate:"required,mood"`
	ImageURL   string      `json:"imageUrl" validate:"max=1024"`
	MusicURL   string      `json:"musicUrl" validate:"max=1024"`
	MusicTitle string      `json:"musicTitle" validate:"max=255"`
	UnlockDate time.Time   `json:"unlockDate" validate:"required"`
	IsPublic   bool        `json:"isPublic"`
}

type UpdateCapsuleInput struct {
	UserID     string       `json:"-" validate:"required"`
	CapsuleID  string       `json:"-" validate:"required"`
	Content    *string      `json:"content" validate:"omitempty,min=1,max=5000"`
	Mood       *models.Mood `json:"mood" validate:"omitempty,mood"`
	UnlockDate *time.Time   `json:"unlockDate"`
	IsPublic   *bool        `json:"isPublic"`
}

func NewTimeCapsuleService(store repository.Store, rdb *redis.Client, flags *featureflags.Manager) *TimeCapsuleService {
	return &TimeCapsuleService{store: store, rdb: rdb, flags: flags, now: time.Now}
}

// CreateCapsule seals a new capsule and awards its author.
func (s *TimeCapsuleService) CreateCapsule(ctx context.Context, in CreateCapsuleInput) (*models.TimeCapsule, error) {
	in.Content = strings.TrimSpace(in.Content)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	if !in.UnlockDate.After(s.now()) {
		return nil, models.NewValidationError("unlockDate must be in the future")
	}

	capsule := &models.TimeCapsule{
		UserID:     in.UserID,
		Content:    in.Content,
		Mood:       in.Mood,
		ImageURL:   in.ImageURL,
		MusicURL:   in.MusicURL,
		MusicTitle: in.MusicTitle,
		UnlockDate: in.UnlockDate.UTC(),
		IsPublic:   in.IsPublic,
	}

	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		if err := tx.Capsules().Create(ctx, capsule); err != nil {
			return err
		}
		return award(ctx, tx, in.UserID, models.ActivityTimeCapsule, models.PointsTimeCapsule, "Created a time capsule")
	})
	if err != nil {
		return nil, asAppError(err, "User", in.UserID)
	}
	recordAward(ctx, s.rdb, in.UserID, models.ActivityTimeCapsule, models.PointsTimeCapsule)
	return capsule, nil
}

func (s *TimeCapsuleService) ListUserCapsules(ctx context.Context, userID string) ([]models.TimeCapsule, error) {
	capsules, err := s.store.Capsules().ListByUser(ctx, userID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return capsules, nil
}

func (s *TimeCapsuleService) ListUnlockedCapsules(ctx context.Context, userID string) ([]models.TimeCapsule, error) {
	capsules, err := s.store.Capsules().ListOpenedByUser(ctx, userID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return capsules, nil
}

// ListCommunityCapsules returns public capsules that have not reached their
// unlock date, soonest first. A non-positive limit uses CommunityCapsuleLimit.
func (s *TimeCapsuleService) ListCommunityCapsules(ctx context.Context, limit int) ([]models.TimeCapsule, error) {
	if limit <= 0 {
		limit = CommunityCapsuleLimit
	}
	capsules, err := s.store.Capsules().ListCommunity(ctx, s.now().UTC(), limit)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return capsules, nil
}

// UnlockCapsule opens the caller's capsule. Opening is allowed before the
// unlock date unless the capsule_unlock_date_gate flag is on. A second unlock
// returns the capsule as it is.
func (s *TimeCapsuleService) UnlockCapsule(ctx context.Context, userID, capsuleID string) (*models.TimeCapsule, error) {
	capsule, err := s.ownedCapsule(ctx, userID, capsuleID, "You can only unlock your own time capsules")
	if err != nil {
		return nil, err
	}
	if capsule.IsOpened {
		return capsule, nil
	}

	now := s.now().UTC()
	if s.flags.Enabled(featureflags.CapsuleUnlockDateGate, userID) && capsule.UnlockDate.After(now) {
		return nil, models.NewValidationError("This time capsule cannot be opened before " + capsule.UnlockDate.Format(time.DateOnly))
	}

	if _, err := s.store.Capsules().MarkOpened(ctx, capsuleID, now); err != nil {
		return nil, models.NewInternalError(err)
	}
	capsule, err = s.store.Capsules().GetByID(ctx, capsuleID)
	if err != nil {
		return nil, asAppError(err, "Time capsule", capsuleID)
	}
	return capsule, nil
}

// UpdateCapsule edits a capsule that is still sealed.
func (s *TimeCapsuleService) UpdateCapsule(ctx context.Context, in UpdateCapsuleInput) (*models.TimeCapsule, error) {
	if in.Content != nil {
		trimmed := strings.TrimSpace(*in.Content)
		in.Content = &trimmed
	}
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	capsule, err := s.ownedCapsule(ctx, in.UserID, in.CapsuleID, "You can only edit your own time capsules")
	if err != nil {
		return nil, err
	}
	if capsule.IsOpened {
		return nil, models.NewValidationError("Opened time capsules cannot be edited")
	}
	if in.UnlockDate != nil && !in.UnlockDate.After(s.now()) {
		return nil, models.NewValidationError("unlockDate must be in the future")
	}

	update := repository.CapsuleUpdate{
		Content:    in.Content,
		Mood:       in.Mood,
		UnlockDate: in.UnlockDate,
		IsPublic:   in.IsPublic,
	}
	if err := s.store.Capsules().Update(ctx, in.CapsuleID, update); err != nil {
		return nil, models.NewInternalError(err)
	}
	capsule, err = s.store.Capsules().GetByID(ctx, in.CapsuleID)
	if err != nil {
		return nil, asAppError(err, "Time capsule", in.CapsuleID)
	}
	return capsule, nil
}

func (s *TimeCapsuleService) DeleteCapsule(ctx context.Context, userID, capsuleID string) error {
	if _, err := s.ownedCapsule(ctx, userID, capsuleID, "You can only delete your own time capsules"); err != nil {
		return err
	}
	return asAppError(s.store.Capsules().Delete(ctx, capsuleID), "Time capsule", capsuleID)
}

func (s *TimeCapsuleService) ownedCapsule(ctx context.Context, userID, capsuleID, denied string) (*models.TimeCapsule, error) {
	capsule, err := s.store.Capsules().GetByID(ctx, capsuleID)
	if err != nil {
		return nil, asAppError(err, "Time capsule", capsuleID)
	}
	if capsule.UserID != userID {
		return nil, models.NewForbiddenError(denied)
	}
	return capsule, nil
}
